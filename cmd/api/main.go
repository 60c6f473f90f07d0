package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/auth"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/notification"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
	"github.com/jhoicas/seguimiento-confeccion/internal/infrastructure/memory"
	"github.com/jhoicas/seguimiento-confeccion/internal/infrastructure/postgres"
	"github.com/jhoicas/seguimiento-confeccion/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/seguimiento-confeccion/internal/interfaces/http"
	"github.com/jhoicas/seguimiento-confeccion/pkg/config"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios según DB_DRIVER.
type storage struct {
	tx            tracking.TxRunner
	repos         tracking.Repos
	users         repository.UserRepository
	notifications repository.NotificationRepository
	close         func()
}

func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			tx:            store,
			repos:         store.Repos(),
			users:         store.Users(),
			notifications: store.Notifications(),
			close:         func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	return &storage{
		tx:            postgres.NewTxRunner(pool),
		repos:         postgres.NewRepos(pool),
		users:         postgres.NewUserRepository(pool),
		notifications: postgres.NewNotificationRepository(pool),
		close:         pool.Close,
	}, nil
}

// @title                       Seguimiento de Confección API
// @version                     1.0
// @description                 Pedidos, reposiciones y transferencias de piezas entre áreas del taller.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
//
//go:generate swag init -g cmd/api/main.go -o docs --outputTypes json
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}

// run arma y sirve la aplicación hasta que ctx se cancela. Los recursos abiertos se cierran
// con defer antes de devolver cualquier error.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	terminal, ok := entity.ParseArea(cfg.Tracking.TerminalArea)
	if !ok {
		return fmt.Errorf("TERMINAL_AREA desconocida %q", cfg.Tracking.TerminalArea)
	}

	store, err := openStorage(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		return fmt.Errorf("conexión a la base de datos: %w", err)
	}
	defer store.close()

	// Tiempo real: sin Redis el hub local es el publicador; con Redis cada instancia
	// publica al canal y todas entregan a sus propios clientes.
	hub := realtime.NewHub(log.Component("ws"))
	var publisher notification.Publisher = hub
	var broker *realtime.RedisBroker
	if cfg.Redis.Enabled() {
		client, err := realtime.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis %s: %w", cfg.Redis.Addr, err)
		}
		defer client.Close()
		broker = realtime.NewRedisBroker(client, cfg.Redis.Channel, hub, log.Component("redis"))
		publisher = broker
	}

	notificationUC := notification.NewUseCase(store.notifications, publisher, log.Component("notification"))

	deps := tracking.Deps{
		Tx:       store.tx,
		Notifier: notificationUC,
		Policy: tracking.Policy{
			TransferCooldown:     cfg.Tracking.TransferCooldown,
			PauseReasonMinLength: cfg.Tracking.PauseReasonMinLength,
			TerminalArea:         terminal,
		},
		Log:   log.Component("tracking"),
		Clock: tracking.NewClock(nil),
	}

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("crear administrador inicial: %w", err)
	} else if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("administrador inicial creado")
	}

	app := httpRouter.NewApp(cfg.App.Name, log.Component("http"))
	if _, err := os.Stat(swaggerFile); err == nil {
		// Swagger UI en local: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Seguimiento de Confección API",
		}))
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		OrderUC:        tracking.NewOrderUseCase(deps),
		RepositionUC:   tracking.NewRepositionUseCase(deps),
		TransferUC:     tracking.NewTransferUseCase(deps),
		LifecycleUC:    tracking.NewLifecycleUseCase(deps),
		QueryUC:        tracking.NewQueryUseCase(store.repos),
		NotificationUC: notificationUC,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Component("http"),
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler(cfg.JWT.Secret))
	wsServer := &http.Server{
		Addr:              cfg.HTTP.WSAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		log.Info().Str("addr", wsServer.Addr).Msg("servidor websocket escuchando")
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return hub.Run(gctx) })
	if broker != nil {
		g.Go(func() error { return broker.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidores...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor HTTP")
		}
		if err := wsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor websocket")
		}
		return nil
	})

	return g.Wait()
}
