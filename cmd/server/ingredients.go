package main

import (
	"fmt"
	"net/http"
	"strings"
)

var ingredientUnits = []string{"gram", "kg", "ml", "liter", "pcs"}

type ingredient struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	PurchasePrice float64 `json:"purchase_price"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

type ingredientRequest struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	PurchasePrice float64 `json:"purchase_price"`
}

func (req *ingredientRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Quantity < 0 {
		return fmt.Errorf("quantity must be greater than or equal to 0")
	}
	if req.PurchasePrice < 0 {
		return fmt.Errorf("purchase_price must be greater than or equal to 0")
	}
	if !validUnit(req.Unit) {
		return fmt.Errorf("unit must be one of: %s", strings.Join(ingredientUnits, ", "))
	}
	return nil
}

func validUnit(unit string) bool {
	for _, u := range ingredientUnits {
		if unit == u {
			return true
		}
	}
	return false
}

func (s *server) handleIngredientsList(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.listIngredients()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load ingredients")
		return
	}
	respondJSON(w, http.StatusOK, ingredients)
}

func (s *server) handleIngredientsCreate(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		INSERT INTO ingredients (name, quantity, unit, purchase_price)
		VALUES (?, ?, ?, ?)
	`, req.Name, req.Quantity, req.Unit, req.PurchasePrice)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create ingredient")
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create ingredient")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *server) handleIngredientsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid ingredient id")
		return
	}

	var req ingredientRequest
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
		respondError(w, http.StatusInternalServerError, "failed to update ingredient")
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE ingredients
		SET name = ?, quantity = ?, unit = ?, purchase_price = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.Name, req.Quantity, req.Unit, req.PurchasePrice, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update ingredient")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	// Stock or price changes shift the cost basis of every product
	// whose recipe uses this ingredient.
	if err := s.recomputeProductsUsingIngredient(tx, id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to recompute product costs")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update ingredient")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) handleIngredientsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid ingredient id")
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete ingredient")
		return
	}
	defer tx.Rollback()

	// Collect dependents before the delete cascades their usage rows away.
	productIDs, err := productsUsingIngredient(tx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete ingredient")
		return
	}

	result, err := tx.Exec(`DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete ingredient")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	for _, productID := range productIDs {
		if err := s.recomputeProduct(tx, productID); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to recompute product costs")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete ingredient")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *server) listIngredients() ([]ingredient, error) {
	rows, err := s.db.Query(`
		SELECT id, name, quantity, unit, purchase_price, created_at, COALESCE(updated_at, '')
		FROM ingredients
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]ingredient, 0)
	for rows.Next() {
		var ing ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Quantity, &ing.Unit, &ing.PurchasePrice, &ing.CreatedAt, &ing.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	return ingredients, nil
}
