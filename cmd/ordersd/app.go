package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"

	"github.com/agamariel/orderdesk/internal/clock"
	"github.com/agamariel/orderdesk/internal/config"
	"github.com/agamariel/orderdesk/internal/server"
	"github.com/agamariel/orderdesk/internal/server/handlers"
	"github.com/agamariel/orderdesk/internal/server/migrations"
	"github.com/agamariel/orderdesk/internal/server/service"
	"github.com/agamariel/orderdesk/internal/server/storage"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg    *config.Config
	dbPool *pgxpool.Pool
	echo   *echo.Echo
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{cfg: cfg}

	orderStore, productStore, err := app.initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	orderService := service.NewOrderService(orderStore, clock.NewSystem())
	productService := service.NewProductService(productStore)

	app.echo = server.NewRouter(
		handlers.NewOrderHandler(orderService),
		handlers.NewProductHandler(productService),
	)

	return app, nil
}

// initStorage выбирает хранилище: PostgreSQL при заданном DATABASE_URI, иначе память.
func (app *App) initStorage(ctx context.Context) (storage.OrderStore, storage.ProductStore, error) {
	if app.cfg.DatabaseURI == "" {
		log.Println("DATABASE_URI is not set, using in-memory store (data is lost on restart)")
		store := storage.NewMemoryStore()
		return store, store, nil
	}

	// Применение миграций
	log.Println("Running database migrations...")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("unable to ping database: %w", err)
	}
	app.dbPool = dbPool
	log.Println("Successfully connected to database")

	store := storage.NewPostgresStore(dbPool)
	return store, store, nil
}

// Start запускает HTTP-сервер.
func (app *App) Start() error {
	log.Printf("Starting server on %s", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	log.Println("Server gracefully stopped")
	return nil
}
