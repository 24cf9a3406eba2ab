package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/nestegg-backend/internal/adapter/events"
	grpcadapter "github.com/simaogato/nestegg-backend/internal/adapter/grpc"
	httpadapter "github.com/simaogato/nestegg-backend/internal/adapter/http"
	"github.com/simaogato/nestegg-backend/internal/adapter/repository/boltdb"
	"github.com/simaogato/nestegg-backend/internal/adapter/repository/memory"
	"github.com/simaogato/nestegg-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/nestegg-backend/internal/config"
	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/identity"
	"github.com/simaogato/nestegg-backend/internal/usecase/audit"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
	"github.com/simaogato/nestegg-backend/internal/usecase/seeder"
	"github.com/simaogato/nestegg-backend/internal/usecase/summary"
)

const shutdownTimeout = 10 * time.Second

func main() {
	issueFor := flag.String("issue-token", "", "print a bearer token for the given user id and exit")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// 1. Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Configuration validation failed")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	if *issueFor != "" {
		if err := printToken(cfg, *issueFor); err != nil {
			logger.WithError(err).Fatal("Failed to issue token")
		}
		return
	}

	// 2. Setup store
	store, err := openStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer store.Close()

	// 3. Setup event publisher
	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open event publisher")
	}
	if publisher != nil {
		defer publisher.Close()
	}

	// 4. Initialize services
	coordinator := ledger.NewCoordinator(store, publisher, logger)
	summaryService := summary.NewSummaryService(store)
	auditor := audit.NewAuditor(store, logger)
	verifier := identity.NewVerifier(cfg.JWTSecret)

	if cfg.SeedDemoOwner != "" {
		owner := uuid.MustParse(cfg.SeedDemoOwner)
		created, err := seeder.NewDemoSeeder(coordinator).Seed(context.Background(), owner)
		if err != nil {
			logger.WithError(err).Fatal("Failed to seed demo data")
		}
		logger.WithFields(logrus.Fields{"owner_id": owner, "created": created}).Info("Demo data seeded")
	}

	// 5. Build servers
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.AuthInterceptor(verifier),
			grpcadapter.LoggingInterceptor(logger),
		),
	)
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(coordinator, summaryService, cfg.SummaryMonths))
	reflection.Register(grpcServer)

	handler := httpadapter.NewHandler(coordinator, summaryService, cfg.SummaryMonths, logger)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpadapter.NewRouter(handler, verifier, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.WithError(err).Fatalf("Failed to listen on %s", cfg.GRPCAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.AuditSchedule != "" {
		if err := auditor.Start(ctx, cfg.AuditSchedule); err != nil {
			logger.WithError(err).Fatal("Failed to start ledger auditor")
		}
		defer auditor.Stop()
	}

	// 6. Serve until a signal arrives or a server fails
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("gRPC server listening on %s", cfg.GRPCAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		waitForShutdown(grpcServer, httpServer, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
	}
}

func openStore(cfg *config.Config, logger logrus.FieldLogger) (domain.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.NewDB(cfg.DBConnStr)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				db.Close()
				return nil, err
			}
			logger.Info("Database migrations applied")
		}
		return postgres.NewStore(db), nil
	case config.StoreBolt:
		store, err := boltdb.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}
}

// openPublisher builds one publisher per EVENTS_BACKEND entry and fans out when there are several
func openPublisher(cfg *config.Config, logger logrus.FieldLogger) (domain.EventPublisher, error) {
	var sinks events.Fanout
	for _, name := range cfg.EventSinks() {
		if name == config.EventsNone {
			continue
		}
		sink, err := openSink(cfg, name, logger)
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("open %s events: %w", name, err)
		}
		sinks = append(sinks, sink)
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

func openSink(cfg *config.Config, name string, logger logrus.FieldLogger) (domain.EventPublisher, error) {
	switch name {
	case config.EventsKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsAMQP:
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case config.EventsLog:
		return events.NewLogPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unknown event backend %q", name)
	}
}

func printToken(cfg *config.Config, rawID string) error {
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	token, err := identity.NewIssuer(cfg.JWTSecret, cfg.JWTTTL).Issue(userID)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// waitForShutdown gracefully shuts down both servers
func waitForShutdown(grpcServer *grpclib.Server, httpServer *http.Server, logger logrus.FieldLogger) {
	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown incomplete")
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}
