package api

// Remote API paths, relative to the configured endpoint.
const (
	PathAuth      = "/auth/"
	PathHeartbeat = "/hb/"
	PathProducts  = "/products/"
	PathOrders    = "/orders/"
)

// Operation names used for spans, metrics and log fields.
const (
	opAuthenticate  = "authenticate"
	opHeartbeat     = "heartbeat"
	opAddProduct    = "add_product"
	opEditProduct   = "edit_product"
	opDeleteProduct = "delete_product"
	opListProducts  = "list_products"
	opListOrders    = "list_orders"
)

// Human readable actions used in network error messages.
const (
	actionAuthenticate  = "authenticate"
	actionAddProduct    = "add a product"
	actionEditProduct   = "edit a product"
	actionDeleteProduct = "remove a product"
	actionListProducts  = "list the products"
	actionListOrders    = "list the orders"
)

func productPath(uuid string) string {
	return PathProducts + uuid
}
