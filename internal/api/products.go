package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"micebot/internal/model"
)

// AddProduct registers a new product.
//
// 201 returns the created product, 409 ErrCodeAlreadyRegistered and any other
// status ErrUnknownNetwork.
func (c *Client) AddProduct(ctx context.Context, product model.ProductCreation) (*model.Product, error) {
	if err := model.Validate(product); err != nil {
		return nil, err
	}

	body, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	resp, err := c.authorized(ctx, request{
		operation:   opAddProduct,
		action:      actionAddProduct,
		method:      http.MethodPost,
		path:        PathProducts,
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusCreated:
		var created model.Product
		if err := decode(actionAddProduct, resp, &created); err != nil {
			return nil, err
		}
		c.logger.Info().Str("uuid", created.UUID).Str("code", created.Code).Msg("product added")
		return &created, nil
	case http.StatusConflict:
		return nil, model.NewCodeAlreadyRegistered(product.Code)
	default:
		return nil, model.NewUnknownNetworkError(actionAddProduct, resp.status, string(resp.body))
	}
}

// EditProduct replaces the code and summary of an existing product.
//
// 200 returns the updated product, 404 ErrProductNotFound, 409
// ErrCodeAlreadyRegistered and any other status ErrUnknownNetwork.
func (c *Client) EditProduct(ctx context.Context, product model.ProductEdit) (*model.Product, error) {
	if err := model.Validate(product); err != nil {
		return nil, err
	}

	body, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	resp, err := c.authorized(ctx, request{
		operation:   opEditProduct,
		action:      actionEditProduct,
		method:      http.MethodPut,
		path:        productPath(product.UUID),
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var updated model.Product
		if err := decode(actionEditProduct, resp, &updated); err != nil {
			return nil, err
		}
		c.logger.Info().Str("uuid", updated.UUID).Str("code", updated.Code).Msg("product edited")
		return &updated, nil
	case http.StatusNotFound:
		return nil, model.NewProductNotFound(product.UUID)
	case http.StatusConflict:
		return nil, model.NewCodeAlreadyRegistered(product.Code)
	default:
		return nil, model.NewUnknownNetworkError(actionEditProduct, resp.status, string(resp.body))
	}
}

// DeleteProduct removes a product that was not redeemed yet.
//
// 200 returns the removal outcome, 404 ErrProductNotFound, 401
// ErrProductAlreadyTaken and any other status ErrUnknownNetwork. The 401 is
// the API's answer for a redeemed product; the session was already checked.
func (c *Client) DeleteProduct(ctx context.Context, product model.ProductDelete) (*model.ProductDeleteResponse, error) {
	if err := model.Validate(product); err != nil {
		return nil, err
	}

	resp, err := c.authorized(ctx, request{
		operation: opDeleteProduct,
		action:    actionDeleteProduct,
		method:    http.MethodDelete,
		path:      productPath(product.UUID),
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var result model.ProductDeleteResponse
		if err := decode(actionDeleteProduct, resp, &result); err != nil {
			return nil, err
		}
		c.logger.Info().Str("uuid", product.UUID).Bool("deleted", result.Deleted).Msg("product removal answered")
		return &result, nil
	case http.StatusNotFound:
		return nil, model.NewProductNotFound(product.UUID)
	case http.StatusUnauthorized:
		return nil, model.NewProductAlreadyTaken(product.UUID)
	default:
		return nil, model.NewUnknownNetworkError(actionDeleteProduct, resp.status, string(resp.body))
	}
}

// ListProducts returns the product counters and the products matching query.
//
// 200 returns the listing, 404 ErrProductNotFound and any other status
// ErrUnknownNetwork.
func (c *Client) ListProducts(ctx context.Context, query model.ProductQuery) (*model.ProductResponse, error) {
	if err := model.Validate(query); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("taken", formatBool(query.Taken))
	params.Set("desc", formatBool(query.Desc))
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	resp, err := c.authorized(ctx, request{
		operation: opListProducts,
		action:    actionListProducts,
		method:    http.MethodGet,
		path:      PathProducts,
		query:     params,
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var listing model.ProductResponse
		if err := decode(actionListProducts, resp, &listing); err != nil {
			return nil, err
		}
		c.logger.Debug().
			Int("count", len(listing.Products)).
			Int("total", listing.Total.All).
			Msg("retrieved products")
		return &listing, nil
	case http.StatusNotFound:
		return nil, model.NewProductNotFound("")
	default:
		return nil, model.NewUnknownNetworkError(actionListProducts, resp.status, string(resp.body))
	}
}
