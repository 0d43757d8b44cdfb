package main

import (
	"testing"
)

func TestWriteOrderItemsComputesTotalAndSnapshotsPrices(t *testing.T) {
	s := newTestServer(t)

	breadID := seedProduct(t, s, "Roti tawar", 15000, nil)
	cookieID := seedProduct(t, s, "Kue kering", 8500, nil)
	orderID := seedOrder(t, s)

	total, err := writeOrderItems(s.db, orderID, []orderItemRequest{
		{ProductID: breadID, Quantity: 3},
		{ProductID: cookieID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("writeOrderItems returned error: %v", err)
	}

	if total != 62000 {
		t.Fatalf("total = %d, want 62000", total)
	}

	var unitPrice float64
	if err := s.db.QueryRow(`
		SELECT unit_price FROM order_items WHERE order_id = ? AND product_id = ?
	`, orderID, breadID).Scan(&unitPrice); err != nil {
		t.Fatalf("query order item: %v", err)
	}
	if unitPrice != 15000 {
		t.Fatalf("unit_price snapshot = %v, want 15000", unitPrice)
	}
}

func TestWriteOrderItemsRejectsUnknownProduct(t *testing.T) {
	s := newTestServer(t)

	orderID := seedOrder(t, s)

	if _, err := writeOrderItems(s.db, orderID, []orderItemRequest{
		{ProductID: 999, Quantity: 1},
	}); err == nil {
		t.Fatalf("expected error for unknown product")
	}
}

func TestOrderTotalSurvivesLaterPriceChange(t *testing.T) {
	s := newTestServer(t)

	breadID := seedProduct(t, s, "Roti tawar", 15000, nil)
	orderID := seedOrder(t, s)

	total, err := writeOrderItems(s.db, orderID, []orderItemRequest{
		{ProductID: breadID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("writeOrderItems returned error: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE orders SET total_price = ? WHERE id = ?`, total, orderID); err != nil {
		t.Fatalf("store total: %v", err)
	}

	// Raising the selling price afterwards must not disturb the stored
	// snapshot or total.
	if _, err := s.db.Exec(`UPDATE products SET selling_price = 20000 WHERE id = ?`, breadID); err != nil {
		t.Fatalf("update selling price: %v", err)
	}

	orders, err := s.listOrders()
	if err != nil {
		t.Fatalf("listOrders returned error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].TotalPrice != 30000 {
		t.Fatalf("total_price = %v, want 30000", orders[0].TotalPrice)
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].UnitPrice != 15000 {
		t.Fatalf("unexpected items: %+v", orders[0].Items)
	}
}

func TestOrderRequestValidate(t *testing.T) {
	valid := orderRequest{
		PaymentMethod: "cash",
		Items:         []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []orderRequest{
		{PaymentMethod: "credit", Items: []orderItemRequest{{ProductID: 1, Quantity: 1}}},
		{PaymentMethod: "cash"},
		{PaymentMethod: "cash", Items: []orderItemRequest{{ProductID: 0, Quantity: 1}}},
		{PaymentMethod: "transfer", Items: []orderItemRequest{{ProductID: 1, Quantity: 0}}},
	}
	for i, req := range cases {
		if err := req.validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func seedOrder(t *testing.T, s *server) int64 {
	t.Helper()

	result, err := s.db.Exec(`
		INSERT INTO orders (payment_method, order_via, total_price)
		VALUES ('cash', 'WhatsApp', 0)
	`)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("seed order id: %v", err)
	}
	return id
}
