package main

import (
	"fmt"
	"net/http"
)

type lowStockIngredient struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type recentOrder struct {
	ID         int64   `json:"id"`
	TotalPrice float64 `json:"total_price"`
	CreatedAt  string  `json:"created_at"`
}

type dashboardData struct {
	IngredientCount int64                `json:"ingredient_count"`
	ProductCount    int64                `json:"product_count"`
	CustomerCount   int64                `json:"customer_count"`
	OrderCount      int64                `json:"order_count"`
	LowStock        []lowStockIngredient `json:"low_stock"`
	RecentOrders    []recentOrder        `json:"recent_orders"`
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (s *server) dashboard() (dashboardData, error) {
	var data dashboardData

	counts := []struct {
		query string
		dst   *int64
	}{
		{`SELECT COUNT(*) FROM ingredients`, &data.IngredientCount},
		{`SELECT COUNT(*) FROM products`, &data.ProductCount},
		{`SELECT COUNT(*) FROM customers`, &data.CustomerCount},
		{`SELECT COUNT(*) FROM orders`, &data.OrderCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return dashboardData{}, fmt.Errorf("count query: %w", err)
		}
	}

	lowStock, err := s.lowStockIngredients()
	if err != nil {
		return dashboardData{}, err
	}
	data.LowStock = lowStock

	recent, err := s.recentOrders()
	if err != nil {
		return dashboardData{}, err
	}
	data.RecentOrders = recent

	return data, nil
}

func (s *server) lowStockIngredients() ([]lowStockIngredient, error) {
	rows, err := s.db.Query(`
		SELECT i.id, i.name, i.quantity, i.unit
		FROM ingredients i, settings s
		WHERE s.id = 1 AND i.quantity < s.low_stock_threshold
		ORDER BY i.quantity ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query low stock ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]lowStockIngredient, 0)
	for rows.Next() {
		var ing lowStockIngredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Quantity, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan low stock ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock ingredients: %w", err)
	}

	return ingredients, nil
}

func (s *server) recentOrders() ([]recentOrder, error) {
	rows, err := s.db.Query(`
		SELECT id, total_price, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("query recent orders: %w", err)
	}
	defer rows.Close()

	orders := make([]recentOrder, 0)
	for rows.Next() {
		var o recentOrder
		if err := rows.Scan(&o.ID, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent orders: %w", err)
	}

	return orders, nil
}
