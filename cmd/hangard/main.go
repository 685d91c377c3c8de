package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hangar/internal/api"
	"hangar/internal/artifact"
	"hangar/internal/auth"
	"hangar/internal/blob"
	"hangar/internal/catalog"
	"hangar/internal/config"
	"hangar/internal/event"
	"hangar/internal/otel"
	"hangar/pkg/bus"
	"hangar/pkg/db"
	gos3 "hangar/pkg/s3"
)

const serviceName = "hangard"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	cleanup, err := otel.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open database pool")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	orm, err := db.ConnectORM(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect orm")
	}
	defer func() {
		if err := db.CloseORM(orm); err != nil {
			log.Error().Err(err).Msg("close orm")
		}
	}()

	s3Client, err := gos3.New(ctx, gos3.Options{
		Endpoint:       cfg.S3Endpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Region:         cfg.S3Region,
		DisableTLS:     cfg.S3DisableTLS,
		ForcePathStyle: cfg.S3ForcePathStyle,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init s3 client")
	}

	blobs, err := blob.NewS3Store(s3Client, cfg.S3Bucket, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("init blob store")
	}

	apps, err := catalog.NewPostgres(orm)
	if err != nil {
		log.Fatal().Err(err).Msg("init catalog")
	}

	sinks := event.Fanout{event.NewLogger(log.Logger)}
	if cfg.NATSURL != "" {
		eventBus, err := bus.New(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect nats")
		}
		defer eventBus.Close()
		sinks = append(sinks, event.NewPublisher(eventBus))
	}

	svc, err := artifact.New(artifact.Config{
		Blobs:  blobs,
		Apps:   apps,
		Events: sinks,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init artifact service")
	}

	creds, err := auth.NewPostgresStore(orm)
	if err != nil {
		log.Fatal().Err(err).Msg("init credential store")
	}

	authn, err := auth.New(creds, cfg.JWTSigningKey, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("init authenticator")
	}

	apiLayer, err := api.New(svc, authn, pool, api.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init api")
	}

	routes, err := apiLayer.Routes()
	if err != nil {
		log.Fatal().Err(err).Msg("build routes")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(routes, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting hangard")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
