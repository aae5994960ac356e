package cmd

import (
	"io"

	"micebot/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func renderProduct(out io.Writer, product *model.Product, layout string) {
	t := newTable(out)
	t.AppendHeader(table.Row{"UUID", "Code", "Summary", "Taken", "Created at", "Updated at"})
	t.AppendRow(productRow(product, layout))
	t.Render()
}

func renderProducts(out io.Writer, resp *model.ProductResponse, layout string) {
	t := newTable(out)
	t.AppendHeader(table.Row{"UUID", "Code", "Summary", "Taken", "Created at", "Updated at"})
	for i := range resp.Products {
		t.AppendRow(productRow(&resp.Products[i], layout))
	}
	t.AppendFooter(table.Row{"Total", resp.Total.All, "Available", resp.Total.Available, "Taken", resp.Total.Taken})
	t.Render()
}

func productRow(p *model.Product, layout string) table.Row {
	return table.Row{p.UUID, p.Code, p.Summary, p.Taken, p.CreatedAt.Display(layout), p.UpdatedAt.Display(layout)}
}

func renderOrders(out io.Writer, resp *model.OrderWithTotal, layout string) {
	t := newTable(out)
	t.AppendHeader(table.Row{"UUID", "Code", "Moderator", "Owner", "Requested at"})
	for i := range resp.Orders {
		order := &resp.Orders[i]
		t.AppendRow(table.Row{
			order.UUID,
			order.Product.Code,
			order.ModDisplayName,
			order.OwnerDisplayName,
			order.RequestedAt.Display(layout),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", resp.Total})
	t.Render()
}
