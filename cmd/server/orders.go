package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/heriawanfx/pos-bakery/internal/pricing"
)

type orderItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type order struct {
	ID            int64       `json:"id"`
	CustomerID    int64       `json:"customer_id,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	OrderVia      string      `json:"order_via"`
	TotalPrice    float64     `json:"total_price"`
	Items         []orderItem `json:"items"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at,omitempty"`
}

type orderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type orderRequest struct {
	CustomerID    int64              `json:"customer_id"`
	PaymentMethod string             `json:"payment_method"`
	OrderVia      string             `json:"order_via"`
	Items         []orderItemRequest `json:"items"`
}

func (req *orderRequest) validate() error {
	req.OrderVia = strings.TrimSpace(req.OrderVia)
	if req.PaymentMethod != "cash" && req.PaymentMethod != "transfer" {
		return fmt.Errorf("payment_method must be cash or transfer")
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("at least one order item is required")
	}
	for _, item := range req.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("product_id must be greater than 0")
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item quantity must be greater than 0")
		}
	}
	return nil
}

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	orders, err := s.listOrders()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *server) handleOrdersCreate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
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
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO orders (customer_id, payment_method, order_via, total_price)
		VALUES (NULLIF(?, 0), ?, ?, 0)
	`, req.CustomerID, req.PaymentMethod, req.OrderVia)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	total, err := writeOrderItems(tx, id, req.Items)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := tx.Exec(`UPDATE orders SET total_price = ? WHERE id = ?`, total, id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "total_price": total})
}

func (s *server) handleOrdersUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req orderRequest
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
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE orders
		SET customer_id = NULLIF(?, 0), payment_method = ?, order_via = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.CustomerID, req.PaymentMethod, req.OrderVia, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	if _, err := tx.Exec(`DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	total, err := writeOrderItems(tx, id, req.Items)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := tx.Exec(`UPDATE orders SET total_price = ? WHERE id = ?`, total, id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "total_price": total})
}

func (s *server) handleOrdersDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	result, err := s.db.Exec(`DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}

	if !rowsAffected(w, result) {
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// writeOrderItems inserts the order's lines, snapshotting each product's
// current selling price as the line's unit_price, and returns the order
// total as computed by the pricing core.
func writeOrderItems(tx dbtx, orderID int64, items []orderItemRequest) (int64, error) {
	catalog, err := pricingProducts(tx)
	if err != nil {
		return 0, err
	}

	prices := make(map[int64]float64, len(catalog))
	for _, p := range catalog {
		prices[p.ID] = p.SellingPrice
	}

	pricingItems := make([]pricing.OrderItem, 0, len(items))
	for _, item := range items {
		unitPrice, ok := prices[item.ProductID]
		if !ok {
			return 0, fmt.Errorf("unknown product id %d", item.ProductID)
		}

		if _, err := tx.Exec(`
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?)
		`, orderID, item.ProductID, item.Quantity, unitPrice); err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}

		pricingItems = append(pricingItems, pricing.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return pricing.OrderTotal(pricingItems, catalog), nil
}

func pricingProducts(tx dbtx) ([]pricing.Product, error) {
	rows, err := tx.Query(`SELECT id, selling_price FROM products`)
	if err != nil {
		return nil, fmt.Errorf("query product catalog: %w", err)
	}
	defer rows.Close()

	catalog := make([]pricing.Product, 0)
	for rows.Next() {
		var p pricing.Product
		if err := rows.Scan(&p.ID, &p.SellingPrice); err != nil {
			return nil, fmt.Errorf("scan product catalog row: %w", err)
		}
		catalog = append(catalog, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product catalog: %w", err)
	}

	return catalog, nil
}

func (s *server) listOrders() ([]order, error) {
	rows, err := s.db.Query(`
		SELECT id, COALESCE(customer_id, 0), payment_method, order_via, total_price, created_at, COALESCE(updated_at, '')
		FROM orders
		ORDER BY datetime(created_at) DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]order, 0)
	for rows.Next() {
		var o order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.PaymentMethod, &o.OrderVia, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := orderItems(s.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func orderItems(tx dbtx, orderID int64) ([]orderItem, error) {
	rows, err := tx.Query(`
		SELECT product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ?
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]orderItem, 0)
	for rows.Next() {
		var item orderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}
