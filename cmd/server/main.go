package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heriawanfx/pos-bakery/internal/config"
	"github.com/heriawanfx/pos-bakery/internal/db"
	"github.com/heriawanfx/pos-bakery/internal/migrations"
	"github.com/heriawanfx/pos-bakery/internal/pricing"
	"github.com/heriawanfx/pos-bakery/internal/seed"
)

type server struct {
	auth       *authService
	db         *sql.DB
	costPolicy pricing.CostPolicy
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	if _, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}

	srv := &server{
		auth:       newAuthService(database, cfg.SessionSecret),
		db:         database,
		costPolicy: cfg.CostPolicy,
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (cost policy: %s)", addr, cfg.CostPolicy)
	if err := http.ListenAndServe(addr, srv.router()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)

	r.Get("/health", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleCategoriesList)
		r.Post("/", s.handleCategoriesCreate)
		r.Put("/{id}", s.handleCategoriesUpdate)
		r.Delete("/{id}", s.handleCategoriesDelete)
	})

	r.Route("/ingredients", func(r chi.Router) {
		r.Get("/", s.handleIngredientsList)
		r.Post("/", s.handleIngredientsCreate)
		r.Put("/{id}", s.handleIngredientsUpdate)
		r.Delete("/{id}", s.handleIngredientsDelete)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", s.handleCustomersList)
		r.Post("/", s.handleCustomersCreate)
		r.Put("/{id}", s.handleCustomersUpdate)
		r.Delete("/{id}", s.handleCustomersDelete)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handleProductsList)
		r.Post("/", s.handleProductsCreate)
		r.Post("/preview", s.handleProductsPreview)
		r.Put("/{id}", s.handleProductsUpdate)
		r.Delete("/{id}", s.handleProductsDelete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", s.handleOrdersList)
		r.Post("/", s.handleOrdersCreate)
		r.Put("/{id}", s.handleOrdersUpdate)
		r.Delete("/{id}", s.handleOrdersDelete)
	})

	r.Get("/settings", s.handleSettingsGet)
	r.Put("/settings", s.handleSettingsUpdate)
	r.Get("/dashboard", s.handleDashboard)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
