package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/jiffoo/mall-backend/internal/modules/agent"
	"github.com/jiffoo/mall-backend/internal/modules/auth"
	"github.com/jiffoo/mall-backend/internal/modules/authorization"
	"github.com/jiffoo/mall-backend/internal/modules/catalog"
	"github.com/jiffoo/mall-backend/internal/modules/order"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Catalog ─────────────────────────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	// ── Agent hierarchy ─────────────────────────────────────
	agentRepo := agent.NewPostgresRepository(db)
	agentService := agent.NewService(agentRepo)
	agent.NewHandler(agentService).RegisterRoutes(router)

	authService := auth.NewService(agentRepo, os.Getenv("JWT_SECRET"))
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Authorization & pricing engine ──────────────────────
	authzRepo := authorization.NewPostgresRepository(db)
	authzService := authorization.NewService(authzRepo)
	authorization.NewHandler(authzService).RegisterRoutes(router)

	// ── Orders ──────────────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, authzService)
	order.NewHandler(orderService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Mall API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
