package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"micebot/internal/messages"
	"micebot/internal/model"

	"github.com/google/uuid"
)

// Field labels.
const (
	labelUUID        = "UUID"
	labelCode        = "code"
	labelSummary     = "summary"
	labelCreatedAt   = "created at"
	labelUpdatedAt   = "updated at"
	labelTotal       = "Total"
	labelAvailable   = "Available"
	labelTaken       = "Taken"
	labelFromTo      = "From/To"
	labelRequestedAt = "Requested at"
	labelDeliveredAt = "Delivered at"
)

const defaultListLimit = 5

// add handles `add <code> [summary...]`.
func (b *Bot) add(ctx context.Context, cmd command) (*Response, error) {
	data := b.data(cmd.msg)
	if len(cmd.args) == 0 {
		return b.textResponse(true, messages.KeyAddUsage, data)
	}

	creation := model.ProductCreation{
		Code:    cmd.args[0],
		Summary: b.summary(cmd.args[1:]),
	}

	product, err := b.api.AddProduct(ctx, creation)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrCodeAlreadyRegistered):
		data.Code = creation.Code
		return b.textResponse(true, messages.KeyCodeAlreadyRegistered, data)
	case errors.Is(err, model.ErrUnknownNetwork):
		return b.networkError(cmd, err)
	default:
		return nil, err
	}

	texts, err := b.renderAll(data, messages.KeyAddedTitle, messages.KeyAddedDescription, messages.KeyFooter)
	if err != nil {
		return nil, err
	}

	embed := b.embed(texts[0], texts[1],
		Field{Name: labelUUID, Value: product.UUID},
		Field{Name: labelCode, Value: product.Code, Inline: true},
		Field{Name: labelSummary, Value: product.Summary, Inline: true},
		Field{Name: labelCreatedAt, Value: b.formatTime(product.CreatedAt)},
	)
	embed.Footer = texts[2]

	return &Response{
		DeleteTrigger: true,
		Replies:       []Reply{{Embed: embed, DeleteAfter: b.settings.DeleteAfter}},
	}, nil
}

// edit handles `edit <uuid> <code> [summary...]`.
func (b *Bot) edit(ctx context.Context, cmd command) (*Response, error) {
	data := b.data(cmd.msg)
	if len(cmd.args) < 2 || !isUUID(cmd.args[0]) {
		return b.textResponse(true, messages.KeyEditUsage, data)
	}

	edit := model.ProductEdit{
		UUID:    cmd.args[0],
		Code:    cmd.args[1],
		Summary: b.summary(cmd.args[2:]),
	}
	data.UUID = edit.UUID
	data.Code = edit.Code

	product, err := b.api.EditProduct(ctx, edit)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrProductNotFound):
		return b.textResponse(true, messages.KeyProductNotFound, data)
	case errors.Is(err, model.ErrCodeAlreadyRegistered):
		return b.textResponse(true, messages.KeyCodeAlreadyRegistered, data)
	case errors.Is(err, model.ErrUnknownNetwork):
		return b.networkError(cmd, err)
	default:
		return nil, err
	}

	texts, err := b.renderAll(data, messages.KeyUpdatedTitle, messages.KeyUpdatedDescription, messages.KeyFooter)
	if err != nil {
		return nil, err
	}

	embed := b.embed(texts[0], texts[1],
		Field{Name: labelUUID, Value: product.UUID},
		Field{Name: labelCode, Value: product.Code, Inline: true},
		Field{Name: labelSummary, Value: product.Summary, Inline: true},
		Field{Name: labelCreatedAt, Value: b.formatTime(product.CreatedAt)},
		Field{Name: labelUpdatedAt, Value: b.formatTime(product.UpdatedAt), Inline: true},
	)
	embed.Footer = texts[2]

	return &Response{
		DeleteTrigger: true,
		Replies:       []Reply{{Embed: embed, DeleteAfter: b.settings.DeleteAfter}},
	}, nil
}

// remove handles `remove <uuid>` and its `rm` alias.
func (b *Bot) remove(ctx context.Context, cmd command) (*Response, error) {
	data := b.data(cmd.msg)
	if len(cmd.args) == 0 || !isUUID(cmd.args[0]) {
		return b.textResponse(true, messages.KeyRemoveUsage, data)
	}
	data.UUID = cmd.args[0]

	resp, err := b.api.DeleteProduct(ctx, model.ProductDelete{UUID: data.UUID})
	switch {
	case err == nil:
	case errors.Is(err, model.ErrProductNotFound):
		return b.textResponse(true, messages.KeyProductNotFound, data)
	case errors.Is(err, model.ErrProductAlreadyTaken):
		return b.textResponse(true, messages.KeyProductAlreadyTaken, data)
	case errors.Is(err, model.ErrUnknownNetwork):
		return b.networkError(cmd, err)
	default:
		return nil, err
	}

	if !resp.Deleted {
		return b.textResponse(true, messages.KeyNotRemoved, data)
	}
	return b.textResponse(true, messages.KeyRemoved, data)
}

// list handles `ls [limit]`: a totals card, one card per available product
// and a closing card.
func (b *Bot) list(ctx context.Context, cmd command) (*Response, error) {
	data := b.data(cmd.msg)

	limit := defaultListLimit
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil || n < 1 {
			return b.textResponse(true, messages.KeyListUsage, data)
		}
		limit = n
	}

	query := model.DefaultProductQuery()
	query.Limit = limit

	products, err := b.api.ListProducts(ctx, query)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrProductNotFound):
		return b.textResponse(true, messages.KeyNoProducts, data)
	case errors.Is(err, model.ErrUnknownNetwork):
		return b.networkError(cmd, err)
	default:
		return nil, err
	}

	texts, err := b.renderAll(data, messages.KeyReportTitle, messages.KeyReportDescription, messages.KeyReportEnd)
	if err != nil {
		return nil, err
	}

	report := b.embed(texts[0], texts[1],
		Field{Name: labelTotal, Value: strconv.Itoa(products.Total.All), Inline: true},
		Field{Name: labelAvailable, Value: strconv.Itoa(products.Total.Available), Inline: true},
		Field{Name: labelTaken, Value: strconv.Itoa(products.Total.Taken), Inline: true},
	)
	report.Color = ColorGreen

	replies := make([]Reply, 0, len(products.Products)+2)
	replies = append(replies, Reply{Embed: report})
	for i := range products.Products {
		product := &products.Products[i]
		replies = append(replies, Reply{Embed: b.embed(product.Code, "",
			Field{Name: labelUUID, Value: product.UUID},
			Field{Name: labelSummary, Value: product.Summary, Inline: true},
			Field{Name: labelCreatedAt, Value: b.formatTime(product.CreatedAt)},
		)})
	}

	end := b.embed(texts[2], "")
	end.Color = ColorGreen
	replies = append(replies, Reply{Embed: end})

	return &Response{DeleteTrigger: true, Replies: replies}, nil
}

// summary joins the trailing arguments or falls back to the default summary.
func (b *Bot) summary(args []string) string {
	if len(args) == 0 {
		return b.settings.DefaultSummary
	}
	return strings.Join(args, " ")
}

func isUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
