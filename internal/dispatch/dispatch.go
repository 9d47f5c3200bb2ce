// Package dispatch turns transport-agnostic requests into service calls.
// Both the Fiber server and the Lambda entrypoint feed the same
// dispatcher, so routing, CORS and error mapping behave identically no
// matter how the request arrived.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/samber/lo"

	"forumapi/dto"
	"forumapi/internal/apperr"
	"forumapi/internal/services"
)

// Identity is the authenticated caller as supplied by the upstream
// gateway. A nil Identity on a Request means anonymous.
type Identity struct {
	Subject  string
	Email    string
	Username string
}

// DisplayName resolves the name snapshotted onto created entities:
// preferred username, then the email local part, then "Anonymous".
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	if at := strings.IndexByte(i.Email, '@'); at > 0 {
		return i.Email[:at]
	}
	return "Anonymous"
}

type Request struct {
	Method   string
	Path     string
	Body     []byte
	Query    map[string]string
	Identity *Identity
}

type Response struct {
	Status  int
	Body    any
	Headers map[string]string
}

type handlerFunc func(ctx context.Context, req Request, id string) (Response, error)

type Dispatcher struct {
	users   *services.UserService
	logger  *slog.Logger
	devMode bool
	table   map[string]handlerFunc
}

// New wires the fixed route table. devMode gates stack traces on 500
// responses.
func New(posts *services.PostService, comments *services.CommentService, users *services.UserService, logger *slog.Logger, devMode bool) *Dispatcher {
	d := &Dispatcher{users: users, logger: logger, devMode: devMode}
	d.table = map[string]handlerFunc{
		"GET /posts": func(ctx context.Context, req Request, _ string) (Response, error) {
			list, err := posts.List(ctx)
			if err != nil {
				return Response{}, err
			}
			return Response{Status: http.StatusOK, Body: list}, nil
		},
		"POST /posts": func(ctx context.Context, req Request, _ string) (Response, error) {
			var body dto.CreatePostReq
			if err := decodeBody(req.Body, &body); err != nil {
				return Response{}, err
			}
			authorID, authorName := author(req)
			post, err := posts.Create(ctx, body, authorID, authorName)
			if err != nil {
				return Response{}, err
			}
			return Response{Status: http.StatusCreated, Body: post}, nil
		},
		"POST /posts/{id}/vote": func(ctx context.Context, req Request, id string) (Response, error) {
			var body dto.VoteReq
			if err := decodeBody(req.Body, &body); err != nil {
				return Response{}, err
			}
			userID, _ := author(req)
			if err := posts.Vote(ctx, id, userID, body.IsUpvote); err != nil {
				return Response{}, err
			}
			return ok()
		},
		"GET /posts/{id}/comments": func(ctx context.Context, req Request, id string) (Response, error) {
			list, err := comments.ListForPost(ctx, id)
			if err != nil {
				return Response{}, err
			}
			return Response{Status: http.StatusOK, Body: list}, nil
		},
		"POST /posts/{id}/comments": func(ctx context.Context, req Request, id string) (Response, error) {
			var body dto.CreateCommentReq
			if err := decodeBody(req.Body, &body); err != nil {
				return Response{}, err
			}
			authorID, authorName := author(req)
			comment, err := comments.Create(ctx, id, body, authorID, authorName)
			if err != nil {
				return Response{}, err
			}
			return Response{Status: http.StatusCreated, Body: comment}, nil
		},
		"POST /comments/{id}/vote": func(ctx context.Context, req Request, id string) (Response, error) {
			var body dto.VoteReq
			if err := decodeBody(req.Body, &body); err != nil {
				return Response{}, err
			}
			userID, _ := author(req)
			if err := comments.Vote(ctx, id, userID, body.IsUpvote); err != nil {
				return Response{}, err
			}
			return ok()
		},
		"GET /users/online": func(ctx context.Context, req Request, _ string) (Response, error) {
			list, err := users.Online(ctx)
			if err != nil {
				return Response{}, err
			}
			return Response{Status: http.StatusOK, Body: list}, nil
		},
		"GET /users/{id}": func(ctx context.Context, req Request, id string) (Response, error) {
			user, err := users.Get(ctx, id)
			if err != nil {
				return Response{}, err
			}
			return Response{Status: http.StatusOK, Body: user}, nil
		},
		"PUT /users/{id}/status": func(ctx context.Context, req Request, id string) (Response, error) {
			var body dto.UpdateStatusReq
			if err := decodeBody(req.Body, &body); err != nil {
				return Response{}, err
			}
			if err := users.UpdateStatus(ctx, id, body); err != nil {
				return Response{}, err
			}
			return ok()
		},
		"PUT /posts/{id}/pin": func(ctx context.Context, req Request, id string) (Response, error) {
			var body dto.PinReq
			if err := decodeBody(req.Body, &body); err != nil {
				return Response{}, err
			}
			if err := posts.SetPinned(ctx, id, body.IsPinned); err != nil {
				return Response{}, err
			}
			return ok()
		},
		"PUT /posts/{id}/lock": func(ctx context.Context, req Request, id string) (Response, error) {
			var body dto.LockReq
			if err := decodeBody(req.Body, &body); err != nil {
				return Response{}, err
			}
			if err := posts.SetLocked(ctx, id, body.IsLocked); err != nil {
				return Response{}, err
			}
			return ok()
		},
		"DELETE /posts/{id}": func(ctx context.Context, req Request, id string) (Response, error) {
			if err := posts.Delete(ctx, id); err != nil {
				return Response{}, err
			}
			return ok()
		},
	}
	return d
}

// Handle runs one request through the dispatcher: OPTIONS short-circuit,
// best-effort user upsert, route classification, handler invocation and
// error mapping, in that order.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (resp Response) {
	headers := corsHeaders()

	if req.Method == http.MethodOptions {
		return Response{Status: http.StatusOK, Headers: headers}
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked",
				"method", req.Method, "path", req.Path, "panic", r)
			body := dto.ErrorResponse{Error: fmt.Sprint(r)}
			if d.devMode {
				body.Stack = string(debug.Stack())
			}
			resp = Response{Status: http.StatusInternalServerError, Body: body, Headers: headers}
		}
	}()

	if req.Identity != nil {
		d.users.BestEffortUpsert(ctx, req.Identity.Subject, req.Identity.DisplayName(), req.Identity.Email)
	}

	template, ids := TemplatePath(req.Path)
	handler, found := d.table[req.Method+" "+template]
	if !found {
		d.logger.Info("route not found", "method", req.Method, "path", req.Path)
		return Response{
			Status:  http.StatusNotFound,
			Body:    dto.ErrorResponse{Error: "route not found", Path: req.Path, Method: req.Method},
			Headers: headers,
		}
	}

	var id string
	if len(ids) > 0 {
		id = ids[0]
	}
	out, err := handler(ctx, req, id)
	if err != nil {
		status := apperr.HTTPStatus(err)
		body := dto.ErrorResponse{Error: err.Error()}
		if status == http.StatusInternalServerError {
			d.logger.Error("request failed",
				"method", req.Method, "path", req.Path, "error", err)
			if d.devMode {
				body.Stack = string(debug.Stack())
			}
		}
		return Response{Status: status, Body: body, Headers: headers}
	}

	out.Headers = lo.Assign(headers, out.Headers)
	return out
}

func ok() (Response, error) {
	return Response{Status: http.StatusOK, Body: dto.SuccessResponse{Success: true}}, nil
}

func author(req Request) (id, name string) {
	if req.Identity == nil {
		return "", Identity{}.DisplayName()
	}
	return req.Identity.Subject, req.Identity.DisplayName()
}

func decodeBody(body []byte, dst any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}
