package models

// Product mirrors the record returned by the product catalog service's
// validate_products command. Products are owned by that service and are never
// persisted here; they are fetched live for order creation and enrichment.
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}
