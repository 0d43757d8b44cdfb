package main

import (
	"fmt"
	"net/http"
	"strings"
)

type category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req *categoryRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func (s *server) handleCategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := s.listCategories()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *server) handleCategoriesCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		INSERT INTO categories (name, description)
		VALUES (?, ?)
	`, req.Name, req.Description)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *server) handleCategoriesUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		UPDATE categories
		SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.Name, req.Description, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) handleCategoriesDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	result, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *server) listCategories() ([]category, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(description, ''), created_at, COALESCE(updated_at, '')
		FROM categories
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]category, 0)
	for rows.Next() {
		var c category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}
