package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ocanamx/salud-rural/backend/internal/config"
	"github.com/ocanamx/salud-rural/backend/internal/handler"
	"github.com/ocanamx/salud-rural/backend/internal/platform/doctor"
	"github.com/ocanamx/salud-rural/backend/internal/platform/emergency"
	"github.com/ocanamx/salud-rural/backend/internal/platform/mail"
	"github.com/ocanamx/salud-rural/backend/internal/platform/payment"
	"github.com/ocanamx/salud-rural/backend/internal/platform/research"
	"github.com/ocanamx/salud-rural/backend/internal/service/agent"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
	"github.com/ocanamx/salud-rural/backend/internal/service/history"
	"github.com/ocanamx/salud-rural/backend/internal/service/report"
	"github.com/ocanamx/salud-rural/backend/internal/service/session"
	"github.com/ocanamx/salud-rural/backend/internal/service/tools"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The gateway is the conversational core; without it there is no
	// service to run.
	gw, err := gateway.NewService(ctx, cfg.Gateway)
	if err != nil {
		log.Fatalf("failed to initialize model gateway: %v", err)
	}
	log.Println("model gateway initialized successfully")

	store := newHistoryStore(ctx, cfg.History)
	sessions := session.NewService()

	confirmer := agent.NewConfirmer(gw)
	pharmacies := tools.NewDirectory(tools.SeedPharmacies())

	registry := tools.NewRegistry(
		tools.NewEmergency(gw, emergency.NewLogDispatcher(), emergency.NewLogAccelerator()),
		tools.NewPayment(confirmer, payment.NewClient(cfg.Payment)),
		tools.NewAppointment(confirmer, gw, mail.NewSMTPMessenger(cfg.Mail)),
		tools.NewDiagnosis(gw, report.NewRenderer()),
		tools.NewResearch(gw, research.NewClient(cfg.Research)),
	)

	agentSvc := agent.NewService(gw, sessions, store, registry, pharmacies)
	images := tools.NewImageDelivery(confirmer, doctor.NewClient(cfg.Doctor))

	router := handler.NewRouter(sessions, agentSvc, store, images)

	startServer(ctx, cfg.Server, router)
}

// newHistoryStore picks the Postgres store when DATABASE_URL is set and
// falls back to the in-memory store otherwise.
func newHistoryStore(ctx context.Context, cfg config.HistoryConfig) history.Store {
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, using in-memory case history")
		return history.NewMemoryStore()
	}

	store, err := history.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: failed to connect to database: %v", err)
		log.Println("falling back to in-memory case history")
		return history.NewMemoryStore()
	}
	log.Println("case history backed by Postgres")
	return store
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Salud Rural backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
