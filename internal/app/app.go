package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/google/uuid"

	"github.com/jun/gophbox/internal/config"
	"github.com/jun/gophbox/internal/handler"
	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/registry"
	"github.com/jun/gophbox/internal/secret"
	"github.com/jun/gophbox/internal/session"
)

// App holds the dependencies for the Lambda function.
type App struct {
	cfg    *config.Config
	logger logging.Logger

	registry *registry.Registry
	close    func() error

	webhookHandler *handler.WebhookHandler
	fileHandler    *handler.FileHandler
	folderHandler  *handler.FolderHandler
	searchHandler  *handler.SearchHandler
}

// NewApp initializes the application dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	// ---------- Secret Resolver ----------
	var resolver secret.Resolver
	if cfg.DevMode {
		resolver = secret.NewEnvResolver()
		logger.Info(ctx, "using EnvResolver (DEV_MODE=true)")
	} else {
		awsCfg, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(awsCfg))
		logger.Info(ctx, "using SSMResolver (SSM Parameter Store)")
	}

	webhookSecret, err := resolver.GetSecret(ctx, cfg.WebhookSecretParam)
	if err != nil {
		if cfg.DevMode {
			logger.Warn(ctx, "webhook secret not set, accepting unsigned updates", "error", err)
		} else {
			logger.Error(ctx, "failed to resolve webhook secret, all updates will be rejected", "error", err)
		}
	}

	jwtSecret, err := resolver.GetSecret(ctx, cfg.JWTSecretParam)
	if err != nil {
		if cfg.DevMode {
			logger.Warn(ctx, "failed to resolve JWT secret, using dev default", "error", err)
			jwtSecret = "default-dev-secret"
		} else {
			logger.Error(ctx, "failed to resolve JWT secret, API tokens cannot be verified", "error", err)
			jwtSecret = uuid.NewString()
		}
	}

	reg, closeFn, err := OpenRegistry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions := session.NewActiveFolders(reg)
	verify := !cfg.DevMode || webhookSecret != ""

	return &App{
		cfg:            cfg,
		logger:         logger,
		registry:       reg,
		close:          closeFn,
		webhookHandler: handler.NewWebhookHandler(reg, sessions, webhookSecret, verify, cfg.ListDisplayLimit, logger),
		fileHandler:    handler.NewFileHandler(reg, jwtSecret, logger),
		folderHandler:  handler.NewFolderHandler(reg, jwtSecret, logger),
		searchHandler:  handler.NewSearchHandler(reg, jwtSecret),
	}, nil
}

// Registry returns the loaded registry.
func (app *App) Registry() *registry.Registry {
	return app.registry
}

// Close releases the store backend.
func (app *App) Close() error {
	return app.close()
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (app *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.RequestContext.RequestID == "" {
		req.RequestContext.RequestID = uuid.NewString()
	}
	start := time.Now()
	resp := app.route(ctx, req)
	app.logger.Info(ctx, "request",
		"request_id", req.RequestContext.RequestID,
		"method", req.HTTPMethod,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

func (app *App) route(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	method := req.HTTPMethod

	// CORS Preflight
	if method == http.MethodOptions {
		return app.corsResponse(events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent})
	}

	// Strip /api prefix if present (for CloudFront proxying)
	path := strings.TrimPrefix(req.Path, "/api")

	if req.PathParameters == nil {
		req.PathParameters = make(map[string]string)
	}

	if path == "/telegram/webhook" && method == http.MethodPost {
		return app.must(app.webhookHandler.Handle(ctx, req))
	}

	parts, ok := splitPath(path)
	if !ok {
		return app.notFound(method, path)
	}

	switch {
	// /files
	case len(parts) == 1 && parts[0] == "files" && method == http.MethodGet:
		return app.corsResponse(app.must(app.fileHandler.ListFiles(ctx, req)))
	case len(parts) == 2 && parts[0] == "files":
		req.PathParameters["id"] = parts[1]
		switch method {
		case http.MethodGet:
			return app.corsResponse(app.must(app.fileHandler.GetFile(ctx, req)))
		case http.MethodPatch:
			return app.corsResponse(app.must(app.fileHandler.MoveFile(ctx, req)))
		case http.MethodDelete:
			return app.corsResponse(app.must(app.fileHandler.DeleteFile(ctx, req)))
		}

	// /folders
	case len(parts) == 1 && parts[0] == "folders":
		switch method {
		case http.MethodGet:
			return app.corsResponse(app.must(app.folderHandler.ListFolders(ctx, req)))
		case http.MethodPost:
			return app.corsResponse(app.must(app.folderHandler.CreateFolder(ctx, req)))
		}
	case len(parts) == 2 && parts[0] == "folders":
		req.PathParameters["key"] = parts[1]
		switch method {
		case http.MethodPatch:
			return app.corsResponse(app.must(app.folderHandler.RenameFolder(ctx, req)))
		case http.MethodDelete:
			return app.corsResponse(app.must(app.folderHandler.DeleteFolder(ctx, req)))
		}
	case len(parts) == 3 && parts[0] == "folders" && parts[2] == "files" && method == http.MethodGet:
		req.PathParameters["key"] = parts[1]
		return app.corsResponse(app.must(app.folderHandler.ListFolderFiles(ctx, req)))

	// /search
	case len(parts) == 1 && parts[0] == "search" && method == http.MethodGet:
		return app.corsResponse(app.must(app.searchHandler.Search(ctx, req)))
	}

	return app.notFound(method, path)
}

// splitPath splits a path into unescaped segments. Folder keys may contain
// spaces, so segments arrive percent-encoded.
func splitPath(path string) ([]string, bool) {
	raw := strings.Split(strings.Trim(path, "/"), "/")
	parts := make([]string, len(raw))
	for i, p := range raw {
		s, err := url.PathUnescape(p)
		if err != nil || s == "" {
			return nil, false
		}
		parts[i] = s
	}
	return parts, true
}

func (app *App) notFound(method, path string) events.APIGatewayProxyResponse {
	return app.corsResponse(events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Body:       fmt.Sprintf("Not Found: %s %s", method, path),
	})
}

// corsResponse adds CORS headers to an API Gateway response.
func (app *App) corsResponse(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["Access-Control-Allow-Origin"] = app.cfg.FrontendURL
	resp.Headers["Access-Control-Allow-Credentials"] = "true"
	resp.Headers["Access-Control-Allow-Methods"] = "GET,POST,DELETE,OPTIONS,PATCH"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type,Authorization"
	resp.Headers["Access-Control-Expose-Headers"] = handler.StoreWarningHeader
	return resp
}

// must unwraps a handler response, turning an error into a 500.
func (app *App) must(resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
	if err != nil {
		app.logger.Error(context.Background(), "handler error", "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Internal Server Error"}
	}
	return resp
}
