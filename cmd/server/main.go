package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/weiwei-tsao/tgchecker/internal/business/lookup"
	"github.com/weiwei-tsao/tgchecker/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/tgchecker/internal/platform/firestore"
	apirouter "github.com/weiwei-tsao/tgchecker/internal/platform/http"
	"github.com/weiwei-tsao/tgchecker/internal/repository"
	"github.com/weiwei-tsao/tgchecker/pkg/tgchecker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	checker := tgchecker.New(nil, tgchecker.Config{
		APIKey:  cfg.CheckerAPIKey,
		BaseURL: cfg.CheckerBaseURL,
		Timeout: cfg.CheckerTimeout,
	})
	if !checker.IsConfigured() {
		log.Printf("TGCHECKER_API_KEY is not set; check endpoints will answer 503")
	}

	var history lookup.HistoryStore
	if cfg.HistoryEnabled {
		firestoreClient, credsSource, err := firestoreclient.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("firestore init: %v", err)
		}
		defer firestoreClient.Close()

		if err := firestoreclient.Ping(ctx, firestoreClient, repository.ChecksCollection); err != nil {
			log.Fatalf("firestore ping: %v", err)
		}
		log.Printf("recording check history in Firestore project %s using %s credentials", cfg.FirebaseProjectID, credsSource)
		history = repository.NewCheckRepository(firestoreClient)
	}

	svc := lookup.NewService(checker, history)
	router := apirouter.NewRouter(svc, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on :%s", cfg.Port)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("server exited")
}
