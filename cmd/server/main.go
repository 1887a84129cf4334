package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"booktracker/internal/auth"
	"booktracker/internal/books"
	"booktracker/internal/config"
	"booktracker/internal/server"
	"booktracker/internal/store"
)

func main() {
	_ = godotenv.Load(".env.local")
	cfg := config.Load()
	ctx := context.Background()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Println("WARNING: JWT_SECRET not set, using insecure default")
	}

	// ── PostgreSQL (users) ───────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	userStore := store.NewPostgresStore(pgPool)
	if err := userStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB (books) ──────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	bookStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := bookStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenService(cfg.JWTSecret, auth.TokenTTL)
	authHandler := auth.NewHandler(userStore, tokens)
	bookHandler := books.NewHandler(bookStore)

	r := server.NewRouter(authHandler, bookHandler, tokens, userStore)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
