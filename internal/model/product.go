package model

// Product represents a redeemable item registered on the remote API.
type Product struct {
	UUID      string     `json:"uuid" validate:"required"`
	Code      string     `json:"code" validate:"required"`
	Summary   string     `json:"summary"`
	Taken     bool       `json:"taken"`
	CreatedAt *Timestamp `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at"`
}

// ProductCreation holds the values required to register a new product.
type ProductCreation struct {
	Code    string `json:"code" validate:"required"`
	Summary string `json:"summary"`
}

// ProductEdit identifies a product and carries its new values.
type ProductEdit struct {
	UUID    string `json:"-" validate:"required"`
	Code    string `json:"code" validate:"required"`
	Summary string `json:"summary"`
}

// ProductDelete identifies the product to be removed.
type ProductDelete struct {
	UUID string `validate:"required"`
}

// ProductQuery holds the filters used when listing products.
type ProductQuery struct {
	Taken bool
	Desc  bool
	// Limit is the maximum number of rows; zero lets the server decide.
	Limit int `validate:"gte=0"`
}

// DefaultProductQuery returns the query used when the caller gives no filters:
// available products, newest first.
func DefaultProductQuery() ProductQuery {
	return ProductQuery{Taken: false, Desc: true}
}

// ProductTotal holds the aggregate product counters.
// The remote API guarantees All == Taken + Available.
type ProductTotal struct {
	All       int `json:"all"`
	Taken     int `json:"taken"`
	Available int `json:"available"`
}

// ProductResponse is the full product listing result.
type ProductResponse struct {
	Total    ProductTotal `json:"total"`
	Products []Product    `json:"products" validate:"dive"`
}

// ProductDeleteResponse reports the outcome of a product removal.
type ProductDeleteResponse struct {
	Deleted bool `json:"deleted"`
}
