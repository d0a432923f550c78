package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MinSomai/payload/graph"
	"github.com/MinSomai/payload/internal/auth"
	"github.com/MinSomai/payload/internal/collection"
	"github.com/MinSomai/payload/internal/config"
	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/internal/handler"
	"github.com/MinSomai/payload/internal/schema"
	"github.com/MinSomai/payload/internal/storage/memory"
	"github.com/MinSomai/payload/internal/storage/postgres"
)

func main() {
	storageType := flag.String("storage", "", "Тип хранилища: memory или postgres (по умолчанию STORAGE)")
	printSchema := flag.Bool("print-schema", false, "Напечатать SDL схемы и выйти")
	override := flag.Bool("override", false, "Разрешить повторную регистрацию полей, последняя побеждает")
	flag.Parse()

	// загружаем .env из нашего config.go
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *storageType != "" {
		cfg.Storage = *storageType
	}
	setupLogger(cfg)

	collections, err := loadCollections(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load collections")
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("failed to open storage")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token service")
	}

	resolver := &graph.Resolver{
		Store:        store,
		Tokens:       tokens,
		Localization: cfg.Localization,
		Override:     *override,
		Logger:       log.Logger,
	}

	s, err := resolver.NewSchema(collections...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build schema")
	}

	if *printSchema {
		fmt.Print(schema.PrintSDL(s))
		return
	}

	mux := http.NewServeMux()
	// Middleware извлекает JWT из заголовка и кладет сессию в context
	mux.Handle("/graphql", auth.Middleware(tokens)(handler.New(s, log.Logger)))
	// Страница с тестовым интерфейсом Playground
	mux.Handle("/", playground.Handler("GraphQL Playground", "/graphql"))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ListenAndServe блокирует поток до server.Shutdown(), поэтому запускаем в goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server started")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shut down server")
	}

	if cfg.Storage == "postgres" {
		if err := postgres.CloseDB(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func loadCollections(cfg *config.Config) ([]*collection.Collection, error) {
	if cfg.CollectionsFile == "" {
		log.Info().Msg("COLLECTIONS_FILE not set, using default users collection")
		return []*collection.Collection{collection.DefaultUsers()}, nil
	}

	file, err := collection.LoadFile(cfg.CollectionsFile)
	if err != nil {
		return nil, err
	}
	if file.Localization.Enabled() {
		cfg.Localization = file.Localization
	}
	return file.Collections, nil
}

func openStorage(cfg *config.Config) (document.Storage, error) {
	switch cfg.Storage {
	case "postgres":
		db, err := config.LoadDatabase()
		if err != nil {
			return nil, err
		}
		if err := postgres.InitDB(db); err != nil {
			return nil, err
		}
		if err := postgres.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info().Msg("using PostgreSQL storage")
		return postgres.NewDocumentPostgresStorage(), nil

	case "memory":
		log.Info().Msg("using in-memory storage")
		return memory.NewDocumentMemoryStorage(), nil
	}
	return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage)
}
