package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/achievement"
	"ustazhub.kz/internal/httpapi"
	"ustazhub.kz/internal/leaderboard"
	"ustazhub.kz/internal/obs"
	"ustazhub.kz/internal/storage"
	"ustazhub.kz/internal/store/pg"
	"ustazhub.kz/internal/stream"
)

var version = "0.3.0"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	obs.Init()

	var (
		accountStore account.Store
		recordStore  achievement.Store
		pgStore      *pg.Store
	)
	if dsn := os.Getenv("USTAZHUB_PG_DSN"); dsn != "" {
		var err error
		pgStore, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		accountStore = pgStore.Accounts()
		recordStore = pgStore.Records()
	} else {
		log.Println("USTAZHUB_PG_DSN not set, using in-memory stores")
		accountStore = account.NewInMemory()
		recordStore = achievement.NewInMemory()
	}

	uploadDir := envOr("USTAZHUB_UPLOAD_DIR", "uploads")
	files, err := storage.NewLocal(uploadDir)
	if err != nil {
		log.Fatalf("init upload dir: %v", err)
	}

	events := stream.New()

	achOpts := []achievement.Option{achievement.WithEvents(events)}
	if raw := os.Getenv("USTAZHUB_MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			log.Fatalf("invalid USTAZHUB_MAX_UPLOAD_BYTES: %q", raw)
		}
		achOpts = append(achOpts, achievement.WithMaxUploadBytes(n))
	}
	achievements := achievement.NewService(recordStore, files, achOpts...)
	accounts := account.NewService(accountStore, achievements)
	board := leaderboard.NewAggregator(accountStore, recordStore)

	if adminUser := os.Getenv("USTAZHUB_ADMIN_USER"); adminUser != "" {
		adminPass := os.Getenv("USTAZHUB_ADMIN_PASS")
		if adminPass == "" {
			log.Fatal("USTAZHUB_ADMIN_USER set without USTAZHUB_ADMIN_PASS")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := accounts.Bootstrap(ctx, adminUser, adminPass); err != nil {
			cancel()
			log.Fatalf("bootstrap admin: %v", err)
		}
		cancel()
	}

	api := httpapi.New(httpapi.Config{
		Accounts:     accounts,
		Achievements: achievements,
		Leaderboard:  board,
		Files:        files,
		Events:       events,
		ReadyProbe:   readyProbe(pgStore),
		Version:      version,
	})

	// request body cap leaves headroom above the attachment limit for the
	// multipart framing and form fields
	maxBody := achievements.MaxUploadBytes() + 1<<20

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	handler := httpapi.RequestID(
		httpapi.LoggingJSON(
			httpapi.RateLimit(runCtx,
				httpapi.MaxBodyBytes(
					httpapi.SecurityHeaders(
						httpapi.CORS(api.Handler()),
					),
					maxBody,
				),
				50, 25,
			),
		),
	)

	srv := &http.Server{
		Addr:              envOr("USTAZHUB_ADDR", ":8080"),
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting ustazhub-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

func readyProbe(store *pg.Store) httpapi.ReadyProbe {
	if store == nil {
		return httpapi.ReadyProbe{}
	}
	return httpapi.ReadyProbe{DB: store.DB()}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
