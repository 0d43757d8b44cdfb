package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/heriawanfx/pos-bakery/internal/pricing"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so cost recomputation
// can run inside whichever write is triggering it.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type productUsage struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type product struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	CategoryID       int64          `json:"category_id,omitempty"`
	SellingPrice     float64        `json:"selling_price"`
	CostOfGoods      float64        `json:"cost_of_goods"`
	MarginPercentage float64        `json:"margin_percentage"`
	Ingredients      []productUsage `json:"ingredients"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at,omitempty"`
}

type productRequest struct {
	Name         string         `json:"name"`
	CategoryID   int64          `json:"category_id"`
	SellingPrice float64        `json:"selling_price"`
	Ingredients  []productUsage `json:"ingredients"`
}

func (req *productRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.SellingPrice <= 0 {
		return fmt.Errorf("selling_price must be greater than 0")
	}
	for _, usage := range req.Ingredients {
		if usage.IngredientID <= 0 {
			return fmt.Errorf("ingredient_id must be greater than 0")
		}
		if usage.Quantity <= 0 {
			return fmt.Errorf("usage quantity must be greater than 0")
		}
	}
	return nil
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := s.listProducts()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *server) handleProductsCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO products (name, category_id, selling_price)
		VALUES (?, NULLIF(?, 0), ?)
	`, req.Name, req.CategoryID, req.SellingPrice)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	if err := replaceProductUsages(tx, id, req.Ingredients); err != nil {
		respondError(w, http.StatusBadRequest, "failed to save ingredient usages")
		return
	}

	if err := s.recomputeProduct(tx, id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute product cost")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *server) handleProductsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE products
		SET name = ?, category_id = NULLIF(?, 0), selling_price = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.Name, req.CategoryID, req.SellingPrice, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	if err := replaceProductUsages(tx, id, req.Ingredients); err != nil {
		respondError(w, http.StatusBadRequest, "failed to save ingredient usages")
		return
	}

	if err := s.recomputeProduct(tx, id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute product cost")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) handleProductsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	result, err := s.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type productPreview struct {
	CostOfGoods      float64 `json:"cost_of_goods"`
	MarginPercentage float64 `json:"margin_percentage"`
}

// handleProductsPreview computes cost and margin for a draft product
// without persisting anything. The product form calls it as the user
// edits usage rows.
func (s *server) handleProductsPreview(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	catalog, err := pricingIngredients(s.db)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load ingredients")
		return
	}

	usages := make([]pricing.Usage, 0, len(req.Ingredients))
	for _, u := range req.Ingredients {
		usages = append(usages, pricing.Usage{IngredientID: u.IngredientID, Quantity: u.Quantity})
	}

	cost := pricing.CostOfGoods(usages, catalog, s.costPolicy)
	respondJSON(w, http.StatusOK, productPreview{
		CostOfGoods:      float64(cost),
		MarginPercentage: pricing.MarginPercentage(float64(cost), req.SellingPrice),
	})
}

func replaceProductUsages(tx dbtx, productID int64, usages []productUsage) error {
	if _, err := tx.Exec(`DELETE FROM product_ingredients WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("clear product usages: %w", err)
	}

	for _, usage := range usages {
		if _, err := tx.Exec(`
			INSERT INTO product_ingredients (product_id, ingredient_id, quantity)
			VALUES (?, ?, ?)
		`, productID, usage.IngredientID, usage.Quantity); err != nil {
			return fmt.Errorf("insert product usage: %w", err)
		}
	}

	return nil
}

// recomputeProduct refreshes the cached cost_of_goods and
// margin_percentage columns of one product from its current usage rows
// and the ingredient catalog.
func (s *server) recomputeProduct(tx dbtx, productID int64) error {
	var sellingPrice float64
	if err := tx.QueryRow(`SELECT selling_price FROM products WHERE id = ?`, productID).Scan(&sellingPrice); err != nil {
		return fmt.Errorf("query product selling price: %w", err)
	}

	usages, err := productUsages(tx, productID)
	if err != nil {
		return err
	}

	catalog, err := pricingIngredients(tx)
	if err != nil {
		return err
	}

	cost := pricing.CostOfGoods(usages, catalog, s.costPolicy)
	margin := pricing.MarginPercentage(float64(cost), sellingPrice)

	if _, err := tx.Exec(`
		UPDATE products
		SET cost_of_goods = ?, margin_percentage = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, cost, margin, productID); err != nil {
		return fmt.Errorf("update product cost columns: %w", err)
	}

	return nil
}

func (s *server) recomputeProductsUsingIngredient(tx dbtx, ingredientID int64) error {
	productIDs, err := productsUsingIngredient(tx, ingredientID)
	if err != nil {
		return err
	}

	for _, productID := range productIDs {
		if err := s.recomputeProduct(tx, productID); err != nil {
			return err
		}
	}

	return nil
}

func productsUsingIngredient(tx dbtx, ingredientID int64) ([]int64, error) {
	rows, err := tx.Query(`SELECT product_id FROM product_ingredients WHERE ingredient_id = ?`, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("query products using ingredient: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}

	return ids, nil
}

func productUsages(tx dbtx, productID int64) ([]pricing.Usage, error) {
	rows, err := tx.Query(`
		SELECT ingredient_id, quantity
		FROM product_ingredients
		WHERE product_id = ?
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("query product usages: %w", err)
	}
	defer rows.Close()

	usages := make([]pricing.Usage, 0)
	for rows.Next() {
		var u pricing.Usage
		if err := rows.Scan(&u.IngredientID, &u.Quantity); err != nil {
			return nil, fmt.Errorf("scan product usage: %w", err)
		}
		usages = append(usages, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product usages: %w", err)
	}

	return usages, nil
}

func pricingIngredients(tx dbtx) ([]pricing.Ingredient, error) {
	rows, err := tx.Query(`SELECT id, quantity, purchase_price FROM ingredients`)
	if err != nil {
		return nil, fmt.Errorf("query ingredient catalog: %w", err)
	}
	defer rows.Close()

	catalog := make([]pricing.Ingredient, 0)
	for rows.Next() {
		var ing pricing.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Quantity, &ing.PurchasePrice); err != nil {
			return nil, fmt.Errorf("scan ingredient catalog row: %w", err)
		}
		catalog = append(catalog, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredient catalog: %w", err)
	}

	return catalog, nil
}

func (s *server) listProducts() ([]product, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(category_id, 0), selling_price, cost_of_goods, margin_percentage, created_at, COALESCE(updated_at, '')
		FROM products
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]product, 0)
	for rows.Next() {
		var p product
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.SellingPrice, &p.CostOfGoods, &p.MarginPercentage, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	for i := range products {
		usages, err := productUsages(s.db, products[i].ID)
		if err != nil {
			return nil, err
		}
		rowsOut := make([]productUsage, 0, len(usages))
		for _, u := range usages {
			rowsOut = append(rowsOut, productUsage{IngredientID: u.IngredientID, Quantity: u.Quantity})
		}
		products[i].Ingredients = rowsOut
	}

	return products, nil
}
