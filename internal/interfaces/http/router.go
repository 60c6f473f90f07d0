package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/auth"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/notification"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	OrderUC        *tracking.OrderUseCase
	RepositionUC   *tracking.RepositionUseCase
	TransferUC     *tracking.TransferUseCase
	LifecycleUC    *tracking.LifecycleUseCase
	QueryUC        *tracking.QueryUseCase
	NotificationUC *notification.UseCase
	JWTSecret      string
	Log            *logger.Logger
}

// NewApp crea la app Fiber con los middlewares comunes y /health.
func NewApp(name string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(requestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})
	return app
}

// requestLogger registra método, ruta, status y duración de cada petición.
func requestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("http")
		return err
	}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC, log)
	subjectHandler := NewSubjectHandler(deps.QueryUC, log)

	// Público
	api.Post("/auth/login", authHandler.Login)
	api.Get("/areas", subjectHandler.Areas)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	users := protected.Group("/users")
	users.Post("/", RequireRole(entity.RoleAdmin), authHandler.Register)
	users.Get("/", authHandler.ListByArea)

	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.LifecycleUC, deps.QueryUC, log)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Post("/:id/pause", orderHandler.Pause)
	orders.Post("/:id/resume", orderHandler.Resume)
	orders.Post("/:id/complete", orderHandler.Complete)

	repositions := protected.Group("/repositions")
	repositionHandler := NewRepositionHandler(deps.RepositionUC, deps.LifecycleUC, deps.QueryUC, log)
	repositions.Post("/", repositionHandler.Create)
	repositions.Get("/", repositionHandler.List)
	repositions.Get("/:id", repositionHandler.GetByID)
	repositions.Delete("/:id", repositionHandler.Delete)
	repositions.Post("/:id/approve", repositionHandler.Approve)
	repositions.Post("/:id/reject", repositionHandler.Reject)
	repositions.Post("/:id/cancel", repositionHandler.Cancel)
	repositions.Post("/:id/pause", repositionHandler.Pause)
	repositions.Post("/:id/resume", repositionHandler.Resume)
	repositions.Post("/:id/complete", repositionHandler.Complete)

	subjects := protected.Group("/subjects")
	subjects.Get("/:id/pieces", subjectHandler.Pieces)
	subjects.Get("/:id/history", subjectHandler.History)

	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC, deps.QueryUC, log)
	transfers.Post("/", transferHandler.Propose)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/incoming", transferHandler.Incoming)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/accept", transferHandler.Accept)
	transfers.Post("/:id/reject", transferHandler.Reject)

	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC, log)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
}
