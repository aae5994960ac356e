package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"micebot/internal/messages"
	"micebot/internal/model"
)

const (
	allOrdersLimit = 200
	ordersPerChunk = 5
)

// orders handles `orders [latest|all|<limit>]`, defaulting to latest.
func (b *Bot) orders(ctx context.Context, cmd command) (*Response, error) {
	mode := "latest"
	if len(cmd.args) > 0 {
		mode = strings.ToLower(cmd.args[0])
	}

	switch mode {
	case "latest":
		return b.latestOrders(ctx, cmd)
	case "all":
		return b.allOrders(ctx, cmd)
	}

	limit, err := strconv.Atoi(mode)
	if err != nil || limit < 1 {
		return b.textResponse(true, messages.KeyOrdersUsage, b.data(cmd.msg))
	}
	return b.limitedOrders(ctx, cmd, limit)
}

// fetchOrders runs fetch and maps the empty and network cases to replies.
// A nil result with a nil error means resp already holds the reply.
func (b *Bot) fetchOrders(cmd command, fetch func() (*model.OrderWithTotal, error)) (*model.OrderWithTotal, *Response, error) {
	result, err := fetch()
	switch {
	case err == nil:
	case errors.Is(err, model.ErrOrderNotFound):
		resp, err := b.textResponse(true, messages.KeyNoOrders, b.data(cmd.msg))
		return nil, resp, err
	case errors.Is(err, model.ErrUnknownNetwork):
		resp, err := b.networkError(cmd, err)
		return nil, resp, err
	default:
		return nil, nil, err
	}

	if result.Total == 0 || len(result.Orders) == 0 {
		resp, err := b.textResponse(true, messages.KeyNoOrders, b.data(cmd.msg))
		return nil, resp, err
	}
	return result, nil, nil
}

// latestOrders renders the latest orders as a single card.
func (b *Bot) latestOrders(ctx context.Context, cmd command) (*Response, error) {
	result, resp, err := b.fetchOrders(cmd, func() (*model.OrderWithTotal, error) {
		return b.api.ListLatestOrders(ctx)
	})
	if result == nil {
		return resp, err
	}

	data := b.data(cmd.msg)
	data.Total = result.Total
	data.Count = len(result.Orders)

	texts, err := b.renderAll(data, messages.KeyLatestOrdersTitle, messages.KeyLatestOrdersDesc)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(result.Orders)*3)
	for i := range result.Orders {
		order := &result.Orders[i]
		fields = append(fields,
			Field{Name: labelCode, Value: order.Product.Code, Inline: true},
			Field{Name: labelFromTo, Value: order.ModDisplayName + "/" + order.OwnerDisplayName, Inline: true},
			Field{Name: labelRequestedAt, Value: b.formatTime(&order.RequestedAt), Inline: true},
		)
	}

	return &Response{
		DeleteTrigger: true,
		Replies:       []Reply{{Embed: b.embed(texts[0], texts[1], fields...)}},
	}, nil
}

// allOrders renders every order as plain text split into chunks.
func (b *Bot) allOrders(ctx context.Context, cmd command) (*Response, error) {
	result, resp, err := b.fetchOrders(cmd, func() (*model.OrderWithTotal, error) {
		return b.api.ListOrders(ctx, model.OrderQuery{Limit: allOrdersLimit})
	})
	if result == nil {
		return resp, err
	}

	data := b.data(cmd.msg)
	data.Total = result.Total

	header, err := b.catalog.Render(messages.KeyAllOrdersHeader, data)
	if err != nil {
		return nil, err
	}

	var (
		replies []Reply
		chunk   strings.Builder
	)
	chunk.WriteString(header)

	for i := range result.Orders {
		b.writeOrder(&chunk, &result.Orders[i])

		if (i+1)%ordersPerChunk == 0 {
			replies = append(replies, Reply{Content: chunk.String()})
			chunk.Reset()
		}
	}
	if chunk.Len() > 0 {
		replies = append(replies, Reply{Content: chunk.String()})
	}

	return &Response{DeleteTrigger: true, Replies: replies}, nil
}

func (b *Bot) writeOrder(w *strings.Builder, order *model.Order) {
	fmt.Fprintf(w, "**Code**: %s\n", order.Product.Code)
	fmt.Fprintf(w, "**Created at**: %s\n", b.formatTime(order.Product.CreatedAt))
	fmt.Fprintf(w, "**Summary**: %s\n", order.Product.Summary)
	fmt.Fprintf(w, "**Delivered by**: %s\n", order.ModDisplayName)
	fmt.Fprintf(w, "**Moderator ID**: %s\n", order.ModID)
	fmt.Fprintf(w, "**Delivered to**: %s\n", order.OwnerDisplayName)
	fmt.Fprintf(w, "**Requested at**: %s\n", b.formatTime(&order.RequestedAt))
	w.WriteString(strings.Repeat("-", 15) + "\n")
}

// limitedOrders renders a summary card followed by one card per order.
func (b *Bot) limitedOrders(ctx context.Context, cmd command, limit int) (*Response, error) {
	result, resp, err := b.fetchOrders(cmd, func() (*model.OrderWithTotal, error) {
		query := model.DefaultOrderQuery()
		query.Limit = limit
		return b.api.ListOrders(ctx, query)
	})
	if result == nil {
		return resp, err
	}

	data := b.data(cmd.msg)
	data.Total = result.Total
	data.Count = len(result.Orders)

	texts, err := b.renderAll(data, messages.KeyOrdersTitle, messages.KeyOrdersDescription)
	if err != nil {
		return nil, err
	}

	replies := make([]Reply, 0, len(result.Orders)+1)
	replies = append(replies, Reply{Embed: b.embed(texts[0], texts[1])})
	for i := range result.Orders {
		order := &result.Orders[i]
		replies = append(replies, Reply{Embed: b.embed(order.UUID, "",
			Field{Name: labelDeliveredAt, Value: b.formatTime(&order.RequestedAt)},
			Field{Name: labelFromTo, Value: order.ModDisplayName + " / " + order.OwnerDisplayName, Inline: true},
			Field{Name: labelCode, Value: order.Product.Code, Inline: true},
			Field{Name: labelUUID, Value: order.Product.UUID, Inline: true},
		)})
	}

	return &Response{DeleteTrigger: true, Replies: replies}, nil
}
