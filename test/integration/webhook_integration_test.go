package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"micebot/internal/api"
	"micebot/internal/bot"
	"micebot/internal/handler"
	"micebot/internal/messages"
	"micebot/internal/middleware"
	"micebot/internal/router"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	webhookSecret = "hook-secret"
	availableUUID = "0b5e1f3c-6a55-4d0c-9d5f-2f6a8c1e7b21"
	takenUUID     = "7c2d9a40-1e8b-4f6e-a3c5-5b9d0e4f8a13"
)

func setupTestServer(t *testing.T, remote *RemoteAPI, catalog *messages.Catalog) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	client := api.New(remote.Server.URL, "admin", "secret", logger)
	ok, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	commandBot := bot.New(client, catalog, bot.Settings{
		Prefix:         "!",
		DateTimeFormat: "02/01/2006 15:04:05",
		DefaultSummary: "E-Book",
		DeleteAfter:    10,
		AdminRoles:     []string{"Moderator"},
	}, logger)

	return router.New(handler.NewMessageHandler(commandBot, logger), router.Options{
		WebhookSecret: webhookSecret,
		Logger:        logger,
	})
}

func seedProducts() []map[string]any {
	return []map[string]any{
		{"uuid": availableUUID, "code": "ABC-123", "summary": "Go in Action", "taken": false},
		{"uuid": takenUUID, "code": "DEF-456", "summary": "E-Book", "taken": true},
	}
}

func postMessage(t *testing.T, server http.Handler, content string, roles ...string) (int, bot.Response) {
	t.Helper()

	body, err := json.Marshal(bot.Message{
		ChannelID: "c1",
		MessageID: "m1",
		Author:    bot.Author{ID: "42", DisplayName: "mod", Mention: "<@42>", Roles: roles},
		Content:   content,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SecretHeader, webhookSecret)
	w := httptest.NewRecorder()

	server.ServeHTTP(w, req)

	var resp bot.Response
	if w.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w.Code, resp
}

func TestWebhook_Integration(t *testing.T) {
	remote := SetupRemoteAPI(t, seedProducts()...)
	server := setupTestServer(t, remote, messages.Default())

	t.Run("ls lists available products between report cards", func(t *testing.T) {
		status, resp := postMessage(t, server, "!ls", "moderator")

		require.Equal(t, http.StatusOK, status)
		assert.True(t, resp.DeleteTrigger)
		require.Len(t, resp.Replies, 3)
		assert.Equal(t, bot.ColorGreen, resp.Replies[0].Embed.Color)
		assert.Equal(t, "ABC-123", resp.Replies[1].Embed.Title)
		assert.Equal(t, bot.ColorGreen, resp.Replies[2].Embed.Color)
	})

	t.Run("rm refuses a taken product", func(t *testing.T) {
		status, resp := postMessage(t, server, "!rm "+takenUUID, "Moderator")

		require.Equal(t, http.StatusOK, status)
		require.Len(t, resp.Replies, 1)
		assert.Contains(t, resp.Replies[0].Content, takenUUID)
		assert.True(t, remote.HasProduct(takenUUID))
	})

	t.Run("rm removes an available product", func(t *testing.T) {
		status, resp := postMessage(t, server, "!rm "+availableUUID, "Moderator")

		require.Equal(t, http.StatusOK, status)
		require.Len(t, resp.Replies, 1)
		assert.Contains(t, resp.Replies[0].Content, "I just removed the product")
		assert.False(t, remote.HasProduct(availableUUID))
	})

	t.Run("members without an admin role are denied", func(t *testing.T) {
		status, resp := postMessage(t, server, "!ls", "member")

		require.Equal(t, http.StatusOK, status)
		assert.False(t, resp.DeleteTrigger)
		require.Len(t, resp.Replies, 1)
	})

	t.Run("messages without the prefix are ignored", func(t *testing.T) {
		status, resp := postMessage(t, server, "hello there", "Moderator")

		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, resp.Replies)
	})

	t.Run("missing webhook secret returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /health returns 200 without secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	assert.Equal(t, 1, remote.AuthCalls())
}

func TestMessagesFromS3_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := SetupTestS3(t)
	store.PutObject(t, "micebot", "messages.yaml", "removed: \"Gone: {{.UUID}}\"\n")

	logger := zerolog.Nop()
	loader := messages.NewFallbackLoader(
		messages.NewS3LoaderWithClient(store.Client, "micebot", logger),
		messages.NewFileLoader(logger),
		"messages.yaml",
		true,
		logger,
	)

	catalog, err := loader.Load(context.Background(), "")
	require.NoError(t, err)

	remote := SetupRemoteAPI(t, seedProducts()...)
	server := setupTestServer(t, remote, catalog)

	status, resp := postMessage(t, server, "!rm "+availableUUID, "Moderator")

	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "Gone: "+availableUUID, resp.Replies[0].Content)
}

func TestMessagesFromS3_MissingObjectFallsBackToDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := SetupTestS3(t)
	store.PutObject(t, "micebot", "other.yaml", "removed: \"unused\"\n")

	logger := zerolog.Nop()
	loader := messages.NewFallbackLoader(
		messages.NewS3LoaderWithClient(store.Client, "micebot", logger),
		messages.NewFileLoader(logger),
		"messages.yaml",
		true,
		logger,
	)

	catalog, err := loader.Load(context.Background(), "")
	require.NoError(t, err)

	text, err := catalog.Render(messages.KeyRemoved, messages.Data{Mention: "<@1>", UUID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Hey <@1>, I just removed the product with UUID u1.", text)
}
