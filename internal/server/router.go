package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppOptions controls how the admin Fiber application is built.
type AppOptions struct {
	Logger       *logrus.Logger
	BodyLimit    int
	AllowOrigins []string
}

const contextKeyRequestID = "_mpadmin_request_id"

// NewApp builds a Fiber application with request IDs, CORS and JSON error
// rendering. Routes are registered by the caller (see package routes).
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		BodyLimit:     opts.BodyLimit,
		ErrorHandler:  errorHandler(opts.Logger),
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	return app, nil
}

// requestIDMiddleware 为每个请求生成 ID，写入 Locals 与 X-Request-ID 响应头。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// errorHandler 把未被路由处理的错误（404、body 过大、panic 等）统一渲染为 JSON。
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		logger.WithFields(logrus.Fields{
			"action":     "http_error",
			"path":       c.Path(),
			"status":     code,
			"request_id": RequestID(c),
		}).WithError(err).Warn("request failed")

		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
