// Package messages holds the chat reply catalog. Every reply the bot sends is
// a named text/template that can be overridden from a YAML document.
package messages

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Reply keys.
const (
	KeyPermissionDenied      = "permission_denied"
	KeyNetworkError          = "network_error"
	KeyHelp                  = "help"
	KeyFooter                = "footer"
	KeyAddUsage              = "add_usage"
	KeyAddedTitle            = "added_title"
	KeyAddedDescription      = "added_description"
	KeyCodeAlreadyRegistered = "code_already_registered"
	KeyEditUsage             = "edit_usage"
	KeyUpdatedTitle          = "updated_title"
	KeyUpdatedDescription    = "updated_description"
	KeyProductNotFound       = "product_not_found"
	KeyRemoveUsage           = "remove_usage"
	KeyRemoved               = "removed"
	KeyNotRemoved            = "not_removed"
	KeyProductAlreadyTaken   = "product_already_taken"
	KeyListUsage             = "ls_usage"
	KeyReportTitle           = "report_title"
	KeyReportDescription     = "report_description"
	KeyReportEnd             = "report_end"
	KeyNoProducts            = "no_products"
	KeyOrdersUsage           = "orders_usage"
	KeyNoOrders              = "no_orders"
	KeyLatestOrdersTitle     = "latest_orders_title"
	KeyLatestOrdersDesc      = "latest_orders_description"
	KeyAllOrdersHeader       = "all_orders_header"
	KeyOrdersTitle           = "orders_title"
	KeyOrdersDescription     = "orders_description"
)

var defaults = map[string]string{
	KeyPermissionDenied: "Hey {{.Mention}}, you are not allowed to use this command.",
	KeyNetworkError:     "Hey {{.Mention}}, something went wrong with my connection. Maybe this helps: {{.Error}}",
	KeyHelp: "Hey {{.Mention}}, these are the commands I know:\n" +
		"`{{.Prefix}}add <code> [summary]` registers a new product.\n" +
		"`{{.Prefix}}edit <uuid> <code> [summary]` updates a product.\n" +
		"`{{.Prefix}}rm <uuid>` removes a product.\n" +
		"`{{.Prefix}}ls [limit]` lists the available products.\n" +
		"`{{.Prefix}}orders [latest|all|<limit>]` lists the delivered products.",
	KeyFooter:                "This message will be removed after {{.DeleteAfter}} seconds.",
	KeyAddUsage:              "Hey {{.Mention}}, tell me the code of the new product. Example: `{{.Prefix}}add <code> <summary>`",
	KeyAddedTitle:            "New Item",
	KeyAddedDescription:      "I just added a new item to be redeemed.",
	KeyCodeAlreadyRegistered: "Hey {{.Mention}}, the code {{.Code}} is already associated with another product.",
	KeyEditUsage:             "Hey {{.Mention}}, tell me the product UUID and the new code. Example: `{{.Prefix}}edit <uuid> <code> <summary>`",
	KeyUpdatedTitle:          "Update Successful",
	KeyUpdatedDescription:    "I just updated the product data.",
	KeyProductNotFound:       "Hey {{.Mention}}, I could not find the product {{.UUID}}.",
	KeyRemoveUsage:           "Hey {{.Mention}}, tell me the UUID of the product to remove. Example: `{{.Prefix}}rm <uuid>`",
	KeyRemoved:               "Hey {{.Mention}}, I just removed the product with UUID {{.UUID}}.",
	KeyNotRemoved:            "Hey {{.Mention}}, the product with UUID {{.UUID}} was not removed.",
	KeyProductAlreadyTaken:   "Hey {{.Mention}}, the product {{.UUID}} was already redeemed and cannot be removed.",
	KeyListUsage:             "Hey {{.Mention}}, the limit must be a positive number. Example: `{{.Prefix}}ls 5`",
	KeyReportTitle:           "Details",
	KeyReportDescription:     "This is the data I have so far:",
	KeyReportEnd:             "End of report.",
	KeyNoProducts:            "No product registered yet. To add one, use `{{.Prefix}}add <code> <summary>`.",
	KeyOrdersUsage: "Hey {{.Mention}}, use `{{.Prefix}}orders latest` to show the last 8 deliveries, " +
		"`{{.Prefix}}orders all` to show every delivery or `{{.Prefix}}orders <limit>`.",
	KeyNoOrders:          "No product has been delivered yet!",
	KeyLatestOrdersTitle: "Latest Deliveries",
	KeyLatestOrdersDesc:  "{{.Mention}} these are the last {{.Count}} items I delivered, out of **{{.Total}}** so far.",
	KeyAllOrdersHeader:   "{{.Mention}}, here is every delivery I registered.\nSo far **{{.Total}}** items were delivered:\n\n",
	KeyOrdersTitle:       "Latest redeemed items",
	KeyOrdersDescription: "Here are {{.Count}} redeemed items out of {{.Total}}.",
}

// Data is the value every reply template is executed against.
type Data struct {
	Mention     string
	Prefix      string
	UUID        string
	Code        string
	Error       string
	Total       int
	Count       int
	DeleteAfter int
}

// Loader loads a reply catalog from a source.
type Loader interface {
	Load(ctx context.Context, path string) (*Catalog, error)
}

// Catalog is an immutable set of parsed reply templates.
type Catalog struct {
	templates map[string]*template.Template
}

// Default returns the catalog with the built-in English replies.
func Default() *Catalog {
	catalog, err := NewCatalog(nil)
	if err != nil {
		panic(err)
	}
	return catalog
}

// NewCatalog builds a catalog from the defaults with overrides applied on top.
// Unknown keys and templates that do not execute against Data are rejected.
func NewCatalog(overrides map[string]string) (*Catalog, error) {
	sources := make(map[string]string, len(defaults))
	for key, text := range defaults {
		sources[key] = text
	}
	for key, text := range overrides {
		if _, ok := defaults[key]; !ok {
			return nil, fmt.Errorf("unknown message key %q", key)
		}
		sources[key] = text
	}

	catalog := &Catalog{templates: make(map[string]*template.Template, len(sources))}
	for key, text := range sources {
		tmpl, err := template.New(key).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse message %q: %w", key, err)
		}
		if err := tmpl.Execute(&bytes.Buffer{}, Data{}); err != nil {
			return nil, fmt.Errorf("invalid message %q: %w", key, err)
		}
		catalog.templates[key] = tmpl
	}

	return catalog, nil
}

// Parse builds a catalog from a YAML document mapping keys to templates.
func Parse(content []byte) (*Catalog, error) {
	var overrides map[string]string
	if err := yaml.Unmarshal(content, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return NewCatalog(overrides)
}

// Render executes the template stored under key.
func (c *Catalog) Render(key string, data Data) (string, error) {
	tmpl, ok := c.templates[key]
	if !ok {
		return "", fmt.Errorf("unknown message key %q", key)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render message %q: %w", key, err)
	}
	return buf.String(), nil
}

// Keys returns the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.templates))
	for key := range c.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
