package main

import (
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/heriawanfx/pos-bakery/internal/db"
	"github.com/heriawanfx/pos-bakery/internal/migrations"
	"github.com/heriawanfx/pos-bakery/internal/pricing"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "server-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close()
	})

	return &server{
		auth:       newAuthService(database, "test-secret"),
		db:         database,
		costPolicy: pricing.PolicyProportional,
	}
}

func seedUser(t *testing.T, s *server, email, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := s.db.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedIngredient(t *testing.T, s *server, name string, quantity, purchasePrice float64) int64 {
	t.Helper()

	result, err := s.db.Exec(`
		INSERT INTO ingredients (name, quantity, unit, purchase_price)
		VALUES (?, ?, 'gram', ?)
	`, name, quantity, purchasePrice)
	if err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("seed ingredient id: %v", err)
	}
	return id
}

func seedProduct(t *testing.T, s *server, name string, sellingPrice float64, usages []productUsage) int64 {
	t.Helper()

	result, err := s.db.Exec(`
		INSERT INTO products (name, selling_price)
		VALUES (?, ?)
	`, name, sellingPrice)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("seed product id: %v", err)
	}

	for _, usage := range usages {
		if _, err := s.db.Exec(`
			INSERT INTO product_ingredients (product_id, ingredient_id, quantity)
			VALUES (?, ?, ?)
		`, id, usage.IngredientID, usage.Quantity); err != nil {
			t.Fatalf("seed product usage: %v", err)
		}
	}

	return id
}

func productCostColumns(t *testing.T, s *server, productID int64) (float64, float64) {
	t.Helper()

	var cost, margin float64
	if err := s.db.QueryRow(`
		SELECT cost_of_goods, margin_percentage FROM products WHERE id = ?
	`, productID).Scan(&cost, &margin); err != nil {
		t.Fatalf("query product cost columns: %v", err)
	}
	return cost, margin
}
