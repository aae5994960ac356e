// Package bot turns prefixed chat messages into product and order API calls
// and renders the replies.
package bot

import (
	"context"
	"strings"
	"sync"

	"micebot/internal/messages"
	"micebot/internal/model"

	"github.com/rs/zerolog"
)

// API is the remote product and order API the commands talk to.
type API interface {
	AddProduct(ctx context.Context, product model.ProductCreation) (*model.Product, error)
	EditProduct(ctx context.Context, product model.ProductEdit) (*model.Product, error)
	DeleteProduct(ctx context.Context, product model.ProductDelete) (*model.ProductDeleteResponse, error)
	ListProducts(ctx context.Context, query model.ProductQuery) (*model.ProductResponse, error)
	ListOrders(ctx context.Context, query model.OrderQuery) (*model.OrderWithTotal, error)
	ListLatestOrders(ctx context.Context) (*model.OrderWithTotal, error)
}

// Settings holds the command behaviour knobs.
type Settings struct {
	Prefix         string
	DateTimeFormat string
	DefaultSummary string
	DeleteAfter    int
	Thumbnail      string
	AdminRoles     []string
}

// Bot dispatches chat commands. Handle calls are serialised.
type Bot struct {
	api      API
	catalog  *messages.Catalog
	settings Settings
	mu       sync.Mutex
	logger   zerolog.Logger
}

// New creates a new command bot.
func New(api API, catalog *messages.Catalog, settings Settings, logger zerolog.Logger) *Bot {
	return &Bot{
		api:      api,
		catalog:  catalog,
		settings: settings,
		logger:   logger.With().Str("component", "bot").Logger(),
	}
}

// command is a parsed chat command.
type command struct {
	name string
	args []string
	msg  Message
}

type handlerFunc func(ctx context.Context, cmd command) (*Response, error)

func (b *Bot) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"add":    b.add,
		"edit":   b.edit,
		"remove": b.remove,
		"rm":     b.remove,
		"ls":     b.list,
		"orders": b.orders,
		"help":   b.help,
	}
}

// Handle processes one chat message. Messages without the command prefix
// produce an empty response. Errors other than the expected API failures are
// returned to the caller.
func (b *Bot) Handle(ctx context.Context, msg Message) (*Response, error) {
	cmd, ok := b.parse(msg)
	if !ok {
		return &Response{Replies: []Reply{}}, nil
	}

	logger := b.logger.With().
		Str("command", cmd.name).
		Str("author_id", msg.Author.ID).
		Str("channel_id", msg.ChannelID).
		Logger()

	if !b.canUseCommands(msg.Author.Roles) {
		logger.Warn().Strs("roles", msg.Author.Roles).Msg("command denied")
		return b.textResponse(false, messages.KeyPermissionDenied, b.data(msg))
	}

	handle, ok := b.handlers()[cmd.name]
	if !ok {
		handle = b.help
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	resp, err := handle(ctx, cmd)
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		return nil, err
	}

	logger.Info().Int("replies", len(resp.Replies)).Msg("command handled")

	return resp, nil
}

// parse splits a prefixed message into a command name and its arguments.
func (b *Bot) parse(msg Message) (command, bool) {
	if !strings.HasPrefix(msg.Content, b.settings.Prefix) {
		return command{}, false
	}

	parts := strings.Fields(strings.TrimPrefix(msg.Content, b.settings.Prefix))
	if len(parts) == 0 {
		return command{name: "help", msg: msg}, true
	}

	return command{name: strings.ToLower(parts[0]), args: parts[1:], msg: msg}, true
}

// canUseCommands reports whether any role is an admin role, ignoring case.
func (b *Bot) canUseCommands(roles []string) bool {
	for _, role := range roles {
		for _, admin := range b.settings.AdminRoles {
			if strings.EqualFold(role, admin) {
				return true
			}
		}
	}
	return false
}

func (b *Bot) help(_ context.Context, cmd command) (*Response, error) {
	return b.textResponse(true, messages.KeyHelp, b.data(cmd.msg))
}

// data returns the template data common to every reply.
func (b *Bot) data(msg Message) messages.Data {
	return messages.Data{
		Mention:     msg.Author.Mention,
		Prefix:      b.settings.Prefix,
		DeleteAfter: b.settings.DeleteAfter,
	}
}

// textResponse renders a single self-deleting text reply.
func (b *Bot) textResponse(deleteTrigger bool, key string, data messages.Data) (*Response, error) {
	content, err := b.catalog.Render(key, data)
	if err != nil {
		return nil, err
	}

	return &Response{
		DeleteTrigger: deleteTrigger,
		Replies:       []Reply{{Content: content, DeleteAfter: b.settings.DeleteAfter}},
	}, nil
}

// networkError renders the reply for an unreachable or misbehaving API.
func (b *Bot) networkError(cmd command, err error) (*Response, error) {
	data := b.data(cmd.msg)
	data.Error = err.Error()
	return b.textResponse(true, messages.KeyNetworkError, data)
}

// embed builds an embed with the default thumbnail and color.
func (b *Bot) embed(title, description string, fields ...Field) *Embed {
	return &Embed{
		Title:       title,
		Description: description,
		Thumbnail:   b.settings.Thumbnail,
		Color:       ColorLighterGrey,
		Fields:      fields,
	}
}

// renderAll renders several keys with the same data.
func (b *Bot) renderAll(data messages.Data, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, key := range keys {
		text, err := b.catalog.Render(key, data)
		if err != nil {
			return nil, err
		}
		out[i] = text
	}
	return out, nil
}

func (b *Bot) formatTime(t *model.Timestamp) string {
	return t.Display(b.settings.DateTimeFormat)
}
