package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestRecomputeProductCachesCostAndMargin(t *testing.T) {
	s := newTestServer(t)

	flourID := seedIngredient(t, s, "Tepung terigu", 1000, 23000)
	productID := seedProduct(t, s, "Roti tawar", 10000, []productUsage{
		{IngredientID: flourID, Quantity: 250},
	})

	if err := s.recomputeProduct(s.db, productID); err != nil {
		t.Fatalf("recomputeProduct returned error: %v", err)
	}

	cost, margin := productCostColumns(t, s, productID)
	if cost != 5750 {
		t.Fatalf("cost_of_goods = %v, want 5750", cost)
	}
	if margin != 73.9 {
		t.Fatalf("margin_percentage = %v, want 73.9", margin)
	}
}

func TestRecomputeProductsUsingIngredient(t *testing.T) {
	s := newTestServer(t)

	flourID := seedIngredient(t, s, "Tepung terigu", 1000, 23000)
	sugarID := seedIngredient(t, s, "Gula pasir", 500, 8000)

	withFlour := seedProduct(t, s, "Roti tawar", 10000, []productUsage{
		{IngredientID: flourID, Quantity: 100},
	})
	withoutFlour := seedProduct(t, s, "Kue kering", 5000, []productUsage{
		{IngredientID: sugarID, Quantity: 50},
	})

	// Double the flour stock; only the flour-based product should move.
	if _, err := s.db.Exec(`UPDATE ingredients SET quantity = 2000 WHERE id = ?`, flourID); err != nil {
		t.Fatalf("update flour stock: %v", err)
	}
	if err := s.recomputeProductsUsingIngredient(s.db, flourID); err != nil {
		t.Fatalf("recomputeProductsUsingIngredient returned error: %v", err)
	}

	flourCost, _ := productCostColumns(t, s, withFlour)
	if flourCost != 1150 {
		t.Fatalf("flour product cost = %v, want 1150", flourCost)
	}

	otherCost, _ := productCostColumns(t, s, withoutFlour)
	if otherCost != 0 {
		t.Fatalf("unrelated product cost = %v, want untouched 0", otherCost)
	}
}

func TestRecomputeProductSkipsDanglingUsage(t *testing.T) {
	s := newTestServer(t)

	flourID := seedIngredient(t, s, "Tepung terigu", 1000, 23000)
	productID := seedProduct(t, s, "Roti tawar", 10000, []productUsage{
		{IngredientID: flourID, Quantity: 250},
	})

	// Deleting the ingredient cascades the usage row away; the recompute
	// sees an empty recipe and the cached cost falls back to zero.
	if _, err := s.db.Exec(`DELETE FROM ingredients WHERE id = ?`, flourID); err != nil {
		t.Fatalf("delete ingredient: %v", err)
	}
	if err := s.recomputeProduct(s.db, productID); err != nil {
		t.Fatalf("recomputeProduct returned error: %v", err)
	}

	cost, margin := productCostColumns(t, s, productID)
	if cost != 0 || margin != 0 {
		t.Fatalf("cost/margin = %v/%v, want 0/0", cost, margin)
	}
}

func TestHandleProductsPreviewComputesWithoutPersisting(t *testing.T) {
	s := newTestServer(t)

	flourID := seedIngredient(t, s, "Tepung terigu", 1000, 23000)

	body, err := json.Marshal(productRequest{
		Name:         "Draft roti",
		SellingPrice: 10000,
		Ingredients:  []productUsage{{IngredientID: flourID, Quantity: 250}},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", "/products/preview", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleProductsPreview(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var preview productPreview
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("unmarshal preview: %v", err)
	}
	if preview.CostOfGoods != 5750 {
		t.Fatalf("preview cost = %v, want 5750", preview.CostOfGoods)
	}
	if preview.MarginPercentage != 73.9 {
		t.Fatalf("preview margin = %v, want 73.9", preview.MarginPercentage)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 0 {
		t.Fatalf("preview persisted %d products, want 0", count)
	}
}

func TestProductRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  productRequest
		ok   bool
	}{
		{"valid", productRequest{Name: "Roti", SellingPrice: 1000}, true},
		{"empty name", productRequest{SellingPrice: 1000}, false},
		{"zero price", productRequest{Name: "Roti"}, false},
		{"negative usage", productRequest{Name: "Roti", SellingPrice: 1000, Ingredients: []productUsage{{IngredientID: 1, Quantity: -1}}}, false},
		{"zero ingredient id", productRequest{Name: "Roti", SellingPrice: 1000, Ingredients: []productUsage{{Quantity: 5}}}, false},
	}

	for _, tc := range cases {
		err := tc.req.validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
