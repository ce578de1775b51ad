package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/gorilla/mux"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/rs/zerolog"

	"github.com/Rifaque/ZeroLink/internal/auth"
	"github.com/Rifaque/ZeroLink/internal/config"
	"github.com/Rifaque/ZeroLink/internal/repository/mongo"
	"github.com/Rifaque/ZeroLink/internal/repository/postgres"
	"github.com/Rifaque/ZeroLink/internal/storage"
)

// App is the main application container.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Router *mux.Router
}

func provideLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	}
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()
}

func providePostgresDB(cfg *config.Config) (*sql.DB, func(), error) {
	if err := postgres.RunMigrations(cfg.PostgresURL); err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewDB(cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { db.Close() }
	return db, cleanup, nil
}

func provideMongoDB(ctx context.Context, cfg *config.Config) (*mongodriver.Database, func(), error) {
	db, err := mongo.NewDB(ctx, cfg.MongoURL)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { db.Client().Disconnect(ctx) }
	return db, cleanup, nil
}

func provideContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	return ctx, func() { cancel() }
}

func provideVerifier(cfg *config.Config) auth.TokenVerifier {
	return auth.NewJWTVerifier([]byte(cfg.JWTSecret))
}

func provideBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	return storage.NewDiskStore(cfg.UploadDir)
}
