package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"forumapi/configs"
	"forumapi/internal/dispatch"
	"forumapi/internal/services"
	dynamostore "forumapi/internal/store/dynamo"
)

func main() {
	cfg := configs.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("aws config load failed", "error", err)
		os.Exit(1)
	}
	st := dynamostore.New(dynamodb.NewFromConfig(awsCfg), cfg.Tables(), logger)

	d := dispatch.New(
		services.NewPostService(st, logger),
		services.NewCommentService(st, logger),
		services.NewUserService(st, logger),
		logger,
		cfg.DevMode(),
	)

	lambda.Start(func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		req := dispatch.Request{
			Method:   event.HTTPMethod,
			Path:     event.Path,
			Body:     []byte(event.Body),
			Query:    event.QueryStringParameters,
			Identity: identityFromAuthorizer(event.RequestContext.Authorizer),
		}

		resp := d.Handle(ctx, req)

		var body string
		if resp.Body != nil {
			encoded, err := json.Marshal(resp.Body)
			if err != nil {
				return events.APIGatewayProxyResponse{}, err
			}
			body = string(encoded)
		}
		return events.APIGatewayProxyResponse{
			StatusCode: resp.Status,
			Headers:    resp.Headers,
			Body:       body,
		}, nil
	})
}

// identityFromAuthorizer lifts the claims the gateway authorizer
// attaches to the request context. No claims means anonymous.
func identityFromAuthorizer(authorizer map[string]interface{}) *dispatch.Identity {
	claims, ok := authorizer["claims"].(map[string]interface{})
	if !ok {
		return nil
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}
	email, _ := claims["email"].(string)
	username, _ := claims["preferred_username"].(string)
	return &dispatch.Identity{Subject: sub, Email: email, Username: username}
}
