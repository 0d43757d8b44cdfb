package main

import (
	"fmt"
	"net/http"
	"strings"
)

type customer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type customerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (req *customerRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func (s *server) handleCustomersList(w http.ResponseWriter, r *http.Request) {
	customers, err := s.listCustomers()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (s *server) handleCustomersCreate(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		INSERT INTO customers (name, address, phone)
		VALUES (?, ?, ?)
	`, req.Name, req.Address, req.Phone)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *server) handleCustomersUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		UPDATE customers
		SET name = ?, address = ?, phone = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.Name, req.Address, req.Phone, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) handleCustomersDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	result, err := s.db.Exec(`DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *server) listCustomers() ([]customer, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(address, ''), COALESCE(phone, ''), created_at, COALESCE(updated_at, '')
		FROM customers
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]customer, 0)
	for rows.Next() {
		var c customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}
