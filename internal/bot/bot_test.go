package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"micebot/internal/messages"
	"micebot/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI is a mock implementation of API.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) AddProduct(ctx context.Context, product model.ProductCreation) (*model.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockAPI) EditProduct(ctx context.Context, product model.ProductEdit) (*model.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockAPI) DeleteProduct(ctx context.Context, product model.ProductDelete) (*model.ProductDeleteResponse, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductDeleteResponse), args.Error(1)
}

func (m *MockAPI) ListProducts(ctx context.Context, query model.ProductQuery) (*model.ProductResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductResponse), args.Error(1)
}

func (m *MockAPI) ListOrders(ctx context.Context, query model.OrderQuery) (*model.OrderWithTotal, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderWithTotal), args.Error(1)
}

func (m *MockAPI) ListLatestOrders(ctx context.Context) (*model.OrderWithTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderWithTotal), args.Error(1)
}

const (
	testUUID = "4b1f4c38-9f0e-4c55-8f4a-1f9f7a3b2c10"
	mention  = "<@42>"
)

var testSettings = Settings{
	Prefix:         "!mice ",
	DateTimeFormat: "02/01/2006 15:04:05",
	DefaultSummary: "E-Book",
	DeleteAfter:    30,
	Thumbnail:      "https://example.com/logo.png",
	AdminRoles:     []string{"admin"},
}

func newTestBot(api API) *Bot {
	return New(api, messages.Default(), testSettings, zerolog.Nop())
}

func adminMessage(content string) Message {
	return Message{
		ChannelID: "c1",
		MessageID: "m1",
		Author: Author{
			ID:          "42",
			DisplayName: "bob",
			Mention:     mention,
			Roles:       []string{"Member", "Admin"},
		},
		Content: content,
	}
}

func render(t *testing.T, key string, data messages.Data) string {
	t.Helper()
	data.Mention = mention
	data.Prefix = testSettings.Prefix
	data.DeleteAfter = testSettings.DeleteAfter
	text, err := messages.Default().Render(key, data)
	require.NoError(t, err)
	return text
}

func timestamp(t *testing.T, value string) *model.Timestamp {
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	ts := model.NewTimestamp(parsed)
	return &ts
}

func networkErr() error {
	return model.NewUnknownNetworkError("add a product", 500, "boom")
}

func TestBot_Handle_Gatekeeping(t *testing.T) {
	tests := []struct {
		name          string
		msg           Message
		expectReplies int
		expectContent string
		expectDelete  bool
	}{
		{
			name:          "No prefix is ignored",
			msg:           adminMessage("hello there"),
			expectReplies: 0,
		},
		{
			name:          "Prefix without trailing space is ignored",
			msg:           adminMessage("!miceadd CODE"),
			expectReplies: 0,
		},
		{
			name: "Non admin is denied",
			msg: Message{
				Author:  Author{Mention: mention, Roles: []string{"member"}},
				Content: "!mice ls",
			},
			expectReplies: 1,
			expectContent: render(t, messages.KeyPermissionDenied, messages.Data{}),
		},
		{
			name:          "Unknown command shows help",
			msg:           adminMessage("!mice dance"),
			expectReplies: 1,
			expectContent: render(t, messages.KeyHelp, messages.Data{}),
			expectDelete:  true,
		},
		{
			name:          "Bare prefix shows help",
			msg:           adminMessage("!mice    "),
			expectReplies: 1,
			expectContent: render(t, messages.KeyHelp, messages.Data{}),
			expectDelete:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			bot := newTestBot(api)

			resp, err := bot.Handle(context.Background(), tt.msg)

			require.NoError(t, err)
			require.NotNil(t, resp)
			require.Len(t, resp.Replies, tt.expectReplies)
			assert.Equal(t, tt.expectDelete, resp.DeleteTrigger)
			if tt.expectContent != "" {
				assert.Equal(t, tt.expectContent, resp.Replies[0].Content)
			}
			api.AssertExpectations(t)
		})
	}
}

func TestBot_Add(t *testing.T) {
	created := &model.Product{
		UUID:      testUUID,
		Code:      "ABC",
		Summary:   "Go in Action",
		CreatedAt: timestamp(t, "2020-05-01T10:20:30Z"),
	}

	tests := []struct {
		name          string
		content       string
		setupMock     func(m *MockAPI)
		expectContent string
		expectEmbed   bool
		expectError   bool
	}{
		{
			name:          "Missing code shows usage",
			content:       "!mice add",
			setupMock:     func(m *MockAPI) {},
			expectContent: render(t, messages.KeyAddUsage, messages.Data{}),
		},
		{
			name:    "Success with summary",
			content: "!mice add ABC Go in Action",
			setupMock: func(m *MockAPI) {
				m.On("AddProduct", mock.Anything, model.ProductCreation{Code: "ABC", Summary: "Go in Action"}).
					Return(created, nil)
			},
			expectEmbed: true,
		},
		{
			name:    "Default summary",
			content: "!mice add ABC",
			setupMock: func(m *MockAPI) {
				m.On("AddProduct", mock.Anything, model.ProductCreation{Code: "ABC", Summary: "E-Book"}).
					Return(created, nil)
			},
			expectEmbed: true,
		},
		{
			name:    "Code already registered",
			content: "!mice add ABC",
			setupMock: func(m *MockAPI) {
				m.On("AddProduct", mock.Anything, mock.Anything).
					Return(nil, model.NewCodeAlreadyRegistered("ABC"))
			},
			expectContent: render(t, messages.KeyCodeAlreadyRegistered, messages.Data{Code: "ABC"}),
		},
		{
			name:    "Network error",
			content: "!mice add ABC",
			setupMock: func(m *MockAPI) {
				m.On("AddProduct", mock.Anything, mock.Anything).Return(nil, networkErr())
			},
			expectContent: render(t, messages.KeyNetworkError, messages.Data{Error: networkErr().Error()}),
		},
		{
			name:    "Contract violation is returned",
			content: "!mice add ABC",
			setupMock: func(m *MockAPI) {
				m.On("AddProduct", mock.Anything, mock.Anything).Return(nil, model.NewAuthContractViolation())
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			tt.setupMock(api)

			resp, err := newTestBot(api).Handle(context.Background(), adminMessage(tt.content))

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrAuthContractViolation)
				assert.Nil(t, resp)
				api.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			require.Len(t, resp.Replies, 1)
			assert.True(t, resp.DeleteTrigger)

			reply := resp.Replies[0]
			assert.Equal(t, 30, reply.DeleteAfter)
			if tt.expectEmbed {
				require.NotNil(t, reply.Embed)
				assert.Equal(t, "New Item", reply.Embed.Title)
				assert.Equal(t, "https://example.com/logo.png", reply.Embed.Thumbnail)
				assert.Equal(t, "This message will be removed after 30 seconds.", reply.Embed.Footer)
				assert.Equal(t, []Field{
					{Name: "UUID", Value: testUUID},
					{Name: "code", Value: "ABC", Inline: true},
					{Name: "summary", Value: "Go in Action", Inline: true},
					{Name: "created at", Value: "01/05/2020 10:20:30"},
				}, reply.Embed.Fields)
			} else {
				assert.Equal(t, tt.expectContent, reply.Content)
			}

			api.AssertExpectations(t)
		})
	}
}

func TestBot_Edit(t *testing.T) {
	updated := &model.Product{
		UUID:      testUUID,
		Code:      "NEW",
		Summary:   "E-Book",
		CreatedAt: timestamp(t, "2020-05-01T10:20:30Z"),
	}

	tests := []struct {
		name          string
		content       string
		setupMock     func(m *MockAPI)
		expectContent string
		expectTitle   string
	}{
		{
			name:          "Missing code shows usage",
			content:       "!mice edit " + testUUID,
			setupMock:     func(m *MockAPI) {},
			expectContent: render(t, messages.KeyEditUsage, messages.Data{}),
		},
		{
			name:          "Invalid uuid shows usage",
			content:       "!mice edit not-a-uuid NEW",
			setupMock:     func(m *MockAPI) {},
			expectContent: render(t, messages.KeyEditUsage, messages.Data{}),
		},
		{
			name:    "Success",
			content: "!mice edit " + testUUID + " NEW",
			setupMock: func(m *MockAPI) {
				m.On("EditProduct", mock.Anything, model.ProductEdit{UUID: testUUID, Code: "NEW", Summary: "E-Book"}).
					Return(updated, nil)
			},
			expectTitle: "Update Successful",
		},
		{
			name:    "Product not found",
			content: "!mice edit " + testUUID + " NEW",
			setupMock: func(m *MockAPI) {
				m.On("EditProduct", mock.Anything, mock.Anything).Return(nil, model.NewProductNotFound(testUUID))
			},
			expectContent: render(t, messages.KeyProductNotFound, messages.Data{UUID: testUUID}),
		},
		{
			name:    "Code already registered",
			content: "!mice edit " + testUUID + " NEW",
			setupMock: func(m *MockAPI) {
				m.On("EditProduct", mock.Anything, mock.Anything).Return(nil, model.NewCodeAlreadyRegistered("NEW"))
			},
			expectContent: render(t, messages.KeyCodeAlreadyRegistered, messages.Data{Code: "NEW"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			tt.setupMock(api)

			resp, err := newTestBot(api).Handle(context.Background(), adminMessage(tt.content))

			require.NoError(t, err)
			require.Len(t, resp.Replies, 1)

			reply := resp.Replies[0]
			if tt.expectTitle != "" {
				require.NotNil(t, reply.Embed)
				assert.Equal(t, tt.expectTitle, reply.Embed.Title)
				require.Len(t, reply.Embed.Fields, 5)
				assert.Equal(t, Field{Name: "updated at", Value: "-", Inline: true}, reply.Embed.Fields[4])
			} else {
				assert.Equal(t, tt.expectContent, reply.Content)
			}

			api.AssertExpectations(t)
		})
	}
}

func TestBot_Remove(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		setupMock     func(m *MockAPI)
		expectContent string
	}{
		{
			name:          "Missing uuid shows usage",
			content:       "!mice remove",
			setupMock:     func(m *MockAPI) {},
			expectContent: render(t, messages.KeyRemoveUsage, messages.Data{}),
		},
		{
			name:          "Invalid uuid shows usage",
			content:       "!mice rm u1",
			setupMock:     func(m *MockAPI) {},
			expectContent: render(t, messages.KeyRemoveUsage, messages.Data{}),
		},
		{
			name:    "Removed",
			content: "!mice rm " + testUUID,
			setupMock: func(m *MockAPI) {
				m.On("DeleteProduct", mock.Anything, model.ProductDelete{UUID: testUUID}).
					Return(&model.ProductDeleteResponse{Deleted: true}, nil)
			},
			expectContent: render(t, messages.KeyRemoved, messages.Data{UUID: testUUID}),
		},
		{
			name:    "Not removed",
			content: "!mice remove " + testUUID,
			setupMock: func(m *MockAPI) {
				m.On("DeleteProduct", mock.Anything, mock.Anything).
					Return(&model.ProductDeleteResponse{Deleted: false}, nil)
			},
			expectContent: render(t, messages.KeyNotRemoved, messages.Data{UUID: testUUID}),
		},
		{
			name:    "Already taken",
			content: "!mice rm " + testUUID,
			setupMock: func(m *MockAPI) {
				m.On("DeleteProduct", mock.Anything, mock.Anything).
					Return(nil, model.NewProductAlreadyTaken(testUUID))
			},
			expectContent: render(t, messages.KeyProductAlreadyTaken, messages.Data{UUID: testUUID}),
		},
		{
			name:    "Not found",
			content: "!mice rm " + testUUID,
			setupMock: func(m *MockAPI) {
				m.On("DeleteProduct", mock.Anything, mock.Anything).
					Return(nil, model.NewProductNotFound(testUUID))
			},
			expectContent: render(t, messages.KeyProductNotFound, messages.Data{UUID: testUUID}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			tt.setupMock(api)

			resp, err := newTestBot(api).Handle(context.Background(), adminMessage(tt.content))

			require.NoError(t, err)
			require.Len(t, resp.Replies, 1)
			assert.Equal(t, tt.expectContent, resp.Replies[0].Content)
			assert.True(t, resp.DeleteTrigger)

			api.AssertExpectations(t)
		})
	}
}

func TestBot_List(t *testing.T) {
	t.Run("Default limit renders report", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListProducts", mock.Anything, model.ProductQuery{Taken: false, Desc: true, Limit: 5}).
			Return(&model.ProductResponse{
				Total: model.ProductTotal{All: 3, Taken: 1, Available: 2},
				Products: []model.Product{
					{UUID: "u1", Code: "A", Summary: "first", CreatedAt: timestamp(t, "2020-05-01T10:20:30Z")},
					{UUID: "u2", Code: "B", Summary: "second"},
				},
			}, nil)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice ls"))
		require.NoError(t, err)
		require.Len(t, resp.Replies, 4)

		report := resp.Replies[0].Embed
		require.NotNil(t, report)
		assert.Equal(t, "Details", report.Title)
		assert.Equal(t, ColorGreen, report.Color)
		assert.Equal(t, []Field{
			{Name: "Total", Value: "3", Inline: true},
			{Name: "Available", Value: "2", Inline: true},
			{Name: "Taken", Value: "1", Inline: true},
		}, report.Fields)

		assert.Equal(t, "A", resp.Replies[1].Embed.Title)
		assert.Equal(t, "01/05/2020 10:20:30", resp.Replies[1].Embed.Fields[2].Value)
		assert.Equal(t, "-", resp.Replies[2].Embed.Fields[2].Value)
		assert.Equal(t, "End of report.", resp.Replies[3].Embed.Title)

		api.AssertExpectations(t)
	})

	t.Run("Explicit limit", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListProducts", mock.Anything, model.ProductQuery{Desc: true, Limit: 12}).
			Return(&model.ProductResponse{}, nil)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice ls 12"))
		require.NoError(t, err)
		assert.Len(t, resp.Replies, 2)

		api.AssertExpectations(t)
	})

	t.Run("Invalid limit shows usage", func(t *testing.T) {
		api := new(MockAPI)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice ls many"))
		require.NoError(t, err)
		assert.Equal(t, render(t, messages.KeyListUsage, messages.Data{}), resp.Replies[0].Content)

		api.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})

	t.Run("No products", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListProducts", mock.Anything, mock.Anything).Return(nil, model.NewProductNotFound(""))

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice ls"))
		require.NoError(t, err)
		assert.Equal(t, render(t, messages.KeyNoProducts, messages.Data{}), resp.Replies[0].Content)
	})
}

func makeOrders(n int) []model.Order {
	orders := make([]model.Order, n)
	for i := range orders {
		orders[i] = model.Order{
			ModID:            "mod-1",
			ModDisplayName:   "mod",
			OwnerDisplayName: "owner",
			UUID:             "o" + strings.Repeat("x", i),
			RequestedAt:      *timestampValue(),
			Product:          model.Product{UUID: "p1", Code: "CODE"},
		}
	}
	return orders
}

func timestampValue() *model.Timestamp {
	ts := model.NewTimestamp(time.Date(2020, 5, 1, 10, 20, 30, 0, time.UTC))
	return &ts
}

func TestBot_Orders(t *testing.T) {
	t.Run("Latest by default", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListLatestOrders", mock.Anything).
			Return(&model.OrderWithTotal{Total: 20, Orders: makeOrders(2)}, nil)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders"))
		require.NoError(t, err)
		require.Len(t, resp.Replies, 1)

		embed := resp.Replies[0].Embed
		require.NotNil(t, embed)
		assert.Equal(t, "Latest Deliveries", embed.Title)
		assert.Equal(t, render(t, messages.KeyLatestOrdersDesc, messages.Data{Count: 2, Total: 20}), embed.Description)
		require.Len(t, embed.Fields, 6)
		assert.Equal(t, Field{Name: "From/To", Value: "mod/owner", Inline: true}, embed.Fields[1])
		assert.Equal(t, "01/05/2020 10:20:30", embed.Fields[2].Value)

		api.AssertExpectations(t)
	})

	t.Run("All chunks every five orders", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListOrders", mock.Anything, model.OrderQuery{Limit: 200}).
			Return(&model.OrderWithTotal{Total: 12, Orders: makeOrders(12)}, nil)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders all"))
		require.NoError(t, err)
		require.Len(t, resp.Replies, 3)

		header := render(t, messages.KeyAllOrdersHeader, messages.Data{Total: 12})
		assert.True(t, strings.HasPrefix(resp.Replies[0].Content, header))
		assert.Equal(t, 5, strings.Count(resp.Replies[0].Content, "**Code**"))
		assert.Equal(t, 5, strings.Count(resp.Replies[1].Content, "**Code**"))
		assert.Equal(t, 2, strings.Count(resp.Replies[2].Content, "**Code**"))
		assert.Contains(t, resp.Replies[2].Content, "**Moderator ID**: mod-1\n")
		assert.Contains(t, resp.Replies[2].Content, "**Created at**: -\n")

		api.AssertExpectations(t)
	})

	t.Run("Explicit limit renders one card per order", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListOrders", mock.Anything, model.OrderQuery{Limit: 3}).
			Return(&model.OrderWithTotal{Total: 9, Orders: makeOrders(3)}, nil)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders 3"))
		require.NoError(t, err)
		require.Len(t, resp.Replies, 4)
		assert.Equal(t, "Latest redeemed items", resp.Replies[0].Embed.Title)
		assert.Equal(t, "o", resp.Replies[1].Embed.Title)
		assert.Equal(t, "mod / owner", resp.Replies[1].Embed.Fields[1].Value)

		api.AssertExpectations(t)
	})

	t.Run("Invalid argument shows usage", func(t *testing.T) {
		api := new(MockAPI)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders yesterday"))
		require.NoError(t, err)
		assert.Equal(t, render(t, messages.KeyOrdersUsage, messages.Data{}), resp.Replies[0].Content)
	})

	t.Run("No orders", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListLatestOrders", mock.Anything).Return(nil, model.NewOrderNotFound())

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders latest"))
		require.NoError(t, err)
		assert.Equal(t, render(t, messages.KeyNoOrders, messages.Data{}), resp.Replies[0].Content)
	})

	t.Run("Zero total", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListOrders", mock.Anything, mock.Anything).Return(&model.OrderWithTotal{}, nil)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders all"))
		require.NoError(t, err)
		assert.Equal(t, render(t, messages.KeyNoOrders, messages.Data{}), resp.Replies[0].Content)
	})

	t.Run("Network error", func(t *testing.T) {
		api := new(MockAPI)
		failure := model.NewUnknownNetworkError("list the orders", 502, "bad gateway")
		api.On("ListOrders", mock.Anything, mock.Anything).Return(nil, failure)

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders 2"))
		require.NoError(t, err)
		assert.Equal(t, render(t, messages.KeyNetworkError, messages.Data{Error: failure.Error()}), resp.Replies[0].Content)
	})

	t.Run("Unexpected error is returned", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListLatestOrders", mock.Anything).Return(nil, errors.New("boom"))

		resp, err := newTestBot(api).Handle(context.Background(), adminMessage("!mice orders"))
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}
