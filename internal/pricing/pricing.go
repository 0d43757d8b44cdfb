// Package pricing computes product cost-of-goods, profit margins, and
// order totals. All functions are pure: they read the snapshots they are
// given and return a number, so callers may invoke them on every form
// edit without coordination.
package pricing

import (
	"fmt"
	"math"
)

// CostPolicy selects how a single ingredient usage is priced.
type CostPolicy int

const (
	// PolicyProportional prices a usage as the fraction of current stock
	// it consumes, scaled by the purchase price of that stock batch:
	// usage/stock * purchase_price.
	PolicyProportional CostPolicy = iota

	// PolicyPerUnit treats purchase_price as a per-unit price:
	// usage * purchase_price.
	PolicyPerUnit
)

// ParsePolicy maps a configuration string to a CostPolicy.
func ParsePolicy(s string) (CostPolicy, error) {
	switch s {
	case "", "proportional":
		return PolicyProportional, nil
	case "per_unit":
		return PolicyPerUnit, nil
	}
	return PolicyProportional, fmt.Errorf("unknown cost policy %q", s)
}

func (p CostPolicy) String() string {
	if p == PolicyPerUnit {
		return "per_unit"
	}
	return "proportional"
}

// Ingredient is the catalog view the cost calculation reads: current
// stock on hand and the purchase price recorded for it.
type Ingredient struct {
	ID            int64
	Quantity      float64
	PurchasePrice float64
}

// Usage is one recipe row: how much of an ingredient one unit of a
// product consumes.
type Usage struct {
	IngredientID int64
	Quantity     float64
}

// Product is the catalog view the order total reads.
type Product struct {
	ID           int64
	SellingPrice float64
}

// OrderItem is one order line: a product and a unit count.
type OrderItem struct {
	ProductID int64
	Quantity  int64
}

// CostOfGoods computes the production cost of one unit of a product from
// its usage rows and the ingredient catalog, rounded to the nearest whole
// currency unit.
//
// Rows that cannot be priced contribute zero rather than failing: a usage
// whose ingredient is missing from the catalog, a non-positive usage
// quantity, and (under PolicyProportional) an ingredient with no stock on
// hand are all skipped. Partially loaded catalogs therefore degrade to a
// lower cost instead of an error.
func CostOfGoods(usages []Usage, ingredients []Ingredient, policy CostPolicy) int64 {
	if len(usages) == 0 {
		return 0
	}

	catalog := make(map[int64]Ingredient, len(ingredients))
	for _, ing := range ingredients {
		catalog[ing.ID] = ing
	}

	total := 0.0
	for _, usage := range usages {
		if usage.Quantity <= 0 {
			continue
		}
		ing, ok := catalog[usage.IngredientID]
		if !ok {
			continue
		}

		switch policy {
		case PolicyPerUnit:
			total += usage.Quantity * ing.PurchasePrice
		default:
			if ing.Quantity <= 0 {
				continue
			}
			total += (usage.Quantity / ing.Quantity) * ing.PurchasePrice
		}
	}

	return int64(math.Round(total))
}

// MarginPercentage computes profit as a percentage of cost-of-goods,
// rounded to one decimal place. Non-positive cost or price yields 0;
// selling below cost yields a negative margin.
func MarginPercentage(costOfGoods, sellingPrice float64) float64 {
	if costOfGoods <= 0 || sellingPrice <= 0 {
		return 0
	}
	ratio := (sellingPrice - costOfGoods) / costOfGoods
	return math.Round(ratio*1000) / 10
}

// OrderTotal sums quantity * selling_price over the order's lines,
// resolving products by id, rounded to the nearest whole currency unit.
// Lines referencing an unknown product or carrying a non-positive
// quantity contribute zero.
func OrderTotal(items []OrderItem, products []Product) int64 {
	if len(items) == 0 {
		return 0
	}

	catalog := make(map[int64]Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	total := 0.0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		p, ok := catalog[item.ProductID]
		if !ok {
			continue
		}
		total += float64(item.Quantity) * p.SellingPrice
	}

	return int64(math.Round(total))
}
