// Package catalog provides read access to the product listing.
package catalog

// Product is a catalog entry as returned by the backend.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nom"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"prix"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Stock       int     `json:"stock"`
}
