// Package cart mirrors the server-side shopping cart. The server copy is
// authoritative; the mirror is rebuilt wholesale after every mutation rather
// than patched incrementally.
package cart

import "github.com/shopie/shopie-cli/internal/domain/catalog"

// Item is one line of the cart as returned by the backend.
type Item struct {
	ID       int64            `json:"id"`
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantite"`
}

// addRequest is the POST /cart body.
type addRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantite"`
}

// Total computes the cart total over the given items. Derived on demand,
// never cached: a missing product or price counts as 0.
func Total(items []Item) float64 {
	var total float64
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// Count computes the total quantity across all items.
func Count(items []Item) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
