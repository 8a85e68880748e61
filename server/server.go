// Package server assembles the fiber application: engine settings, global
// middleware, static uploads and every route group.
package server

import (
	"errors"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/middleware"
	adminRoutes "coursehub/routers/adminRoutes"
	authRoutes "coursehub/routers/authRoutes"
	contactRoutes "coursehub/routers/contactRoutes"
	courseRoutes "coursehub/routers/courseRoutes"
	homeRoutes "coursehub/routers/homeRoutes"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const requestTimeout = 2 * time.Minute

// Options tunes New. The zero value suits tests.
type Options struct {
	AccessLog bool
}

// bodyLimit leaves room for one video plus a handful of materials per request.
func bodyLimit(cfg *config.Config) int {
	return (cfg.MaxVideoMB + 5*cfg.MaxMaterialMB + 1) * 1024 * 1024
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong!"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logger.Log.Error("unhandled error", "path", c.OriginalURL(), "error", err)
	}
	return middleware.JsonResponse(c, code, false, message, nil)
}

func New(opts Options) *fiber.App {
	cfg := config.Current()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             bodyLimit(cfg),
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID(requestTimeout))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,X-Requested-With,X-Request-ID",
	}))
	app.Use(compress.New())

	if opts.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// Uploaded thumbnails, videos and materials
	app.Static("/uploads", cfg.UploadDir)

	homeRoutes.SetupHomeRoutes(app)
	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	contactRoutes.SetupContactRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	return app
}
