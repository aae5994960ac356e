package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"micebot/internal/model"
)

// ListOrders returns the delivered orders matching query.
//
// 200 returns the listing, 404 ErrOrderNotFound and any other status
// ErrUnknownNetwork.
func (c *Client) ListOrders(ctx context.Context, query model.OrderQuery) (*model.OrderWithTotal, error) {
	if err := model.Validate(query); err != nil {
		return nil, err
	}

	params := url.Values{}
	if query.Moderator != "" {
		params.Set("moderator", query.Moderator)
	}
	if query.Owner != "" {
		params.Set("owner", query.Owner)
	}
	params.Set("skip", strconv.Itoa(query.Skip))
	params.Set("limit", strconv.Itoa(query.Limit))
	params.Set("desc", formatBool(query.Desc))

	resp, err := c.authorized(ctx, request{
		operation: opListOrders,
		action:    actionListOrders,
		method:    http.MethodGet,
		path:      PathOrders,
		query:     params,
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var listing model.OrderWithTotal
		if err := decode(actionListOrders, resp, &listing); err != nil {
			return nil, err
		}
		c.logger.Debug().
			Int("count", len(listing.Orders)).
			Int("total", listing.Total).
			Msg("retrieved orders")
		return &listing, nil
	case http.StatusNotFound:
		return nil, model.NewOrderNotFound()
	default:
		return nil, model.NewUnknownNetworkError(actionListOrders, resp.status, string(resp.body))
	}
}

// ListLatestOrders returns the orders selected by model.DefaultOrderQuery.
func (c *Client) ListLatestOrders(ctx context.Context) (*model.OrderWithTotal, error) {
	return c.ListOrders(ctx, model.DefaultOrderQuery())
}
