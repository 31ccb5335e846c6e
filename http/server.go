package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/notepads/auth"
	"github.com/ViniZap4/notepads/controller"
	"github.com/ViniZap4/notepads/events"
	"github.com/ViniZap4/notepads/filesystem"
)

type Submitter interface {
	Submit(ctx context.Context, in controller.Intent) (controller.View, error)
}

type Subscriber interface {
	Subscribe() (<-chan events.Event, func())
}

// Server is the HTTP shell over the note store. Every request becomes an
// intent submitted to the controller loop.
type Server struct {
	loop Submitter
	hub  Subscriber
	log  zerolog.Logger
}

func NewServer(loop Submitter, hub Subscriber, log zerolog.Logger) *Server {
	return &Server{loop: loop, hub: hub, log: log}
}

// App builds the fiber application. passwordHash guards everything under /api.
func (s *Server) App(passwordHash []byte) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "notepads",
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger(s.log))
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type," + auth.Header,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api", auth.Middleware(passwordHash))
	api.Get("/folders", s.HandleFolders)
	api.Post("/folders", s.HandleCreateFolder)
	api.Get("/notes", s.HandleNotes)
	api.Post("/notes", s.HandleCreateNote)
	api.Get("/notes/resolve", s.HandleResolveNote)
	api.Get("/notes/:file", s.HandleGetNote)
	api.Put("/notes/:file", s.HandleUpdateNote)
	api.Delete("/notes/:file", s.HandleDeleteNote)
	api.Post("/notes/:file/rename", s.HandleRenameNote)
	api.Post("/intents", s.HandleIntent)
	api.Use("/ws", requireUpgrade)
	api.Get("/ws", websocket.New(s.HandleWebSocket))

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code, kind := fiber.StatusInternalServerError, filesystem.KindOf(err)

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code, kind = fe.Code, "request"
	case errors.Is(err, controller.ErrBadIntent):
		code, kind = fiber.StatusBadRequest, "bad_intent"
	case errors.Is(err, controller.ErrStopped):
		code, kind = fiber.StatusServiceUnavailable, "stopped"
	case errors.Is(err, filesystem.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, filesystem.ErrAlreadyExists):
		code = fiber.StatusConflict
	case errors.Is(err, filesystem.ErrInvalidName):
		code = fiber.StatusBadRequest
	case errors.Is(err, filesystem.ErrReadDecode):
		code = fiber.StatusUnprocessableEntity
	}
	if kind == "" {
		kind = "internal"
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error(), "kind": kind})
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}
