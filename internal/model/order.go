package model

// Order represents a product delivered by a moderator to a user.
// Product is the snapshot of the product at delivery time.
type Order struct {
	ModID            string    `json:"mod_id" validate:"required"`
	ModDisplayName   string    `json:"mod_display_name"`
	OwnerDisplayName string    `json:"owner_display_name"`
	UUID             string    `json:"uuid" validate:"required"`
	RequestedAt      Timestamp `json:"requested_at"`
	Product          Product   `json:"product"`
}

// OrderQuery holds the pagination and filters used when listing orders.
type OrderQuery struct {
	Skip      int `validate:"gte=0"`
	Limit     int `validate:"gte=0"`
	Moderator string
	Owner     string
	Desc      bool
}

// DefaultOrderQuery returns the query for the latest delivered orders.
func DefaultOrderQuery() OrderQuery {
	return OrderQuery{Skip: 0, Limit: 8}
}

// OrderWithTotal is the order listing result.
type OrderWithTotal struct {
	Total  int     `json:"total"`
	Orders []Order `json:"orders" validate:"dive"`
}
