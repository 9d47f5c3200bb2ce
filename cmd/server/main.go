package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"forumapi/bootstrap"
	"forumapi/configs"
	"forumapi/database"
	"forumapi/internal/dispatch"
	"forumapi/internal/handlers"
	"forumapi/internal/middleware"
	"forumapi/internal/services"
	"forumapi/internal/store"
	dynamostore "forumapi/internal/store/dynamo"
	memorystore "forumapi/internal/store/memory"
	mongostore "forumapi/internal/store/mongo"
)

func init() {
	if err := godotenv.Overload(".env"); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}

func main() {
	cfg := configs.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	st, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store init failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	d := dispatch.New(
		services.NewPostService(st, logger),
		services.NewCommentService(st, logger),
		services.NewUserService(st, logger),
		logger,
		cfg.DevMode(),
	)

	app := fiber.New()
	app.Get("/health", handlers.Health)
	app.Use(middleware.JWTIdentity(cfg.JWTSecret))
	app.All("/*", handlers.NewGateway(d).Handle)

	logger.Info("listening", "port", cfg.Port, "store", cfg.StoreDriver)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg configs.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := bootstrap.EnsureIndexes(ctx, db); err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = database.DisconnectMongo(context.Background(), client)
		}
		return mongostore.New(db, logger), cleanup, nil
	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		return dynamostore.New(dynamodb.NewFromConfig(awsCfg), cfg.Tables(), logger), func() {}, nil
	case "memory":
		return memorystore.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
