package server_test

import (
	"context"
	"dialog-hub/auth"
	"dialog-hub/domain"
	"dialog-hub/infrastructure/http/server"
	"dialog-hub/repositories"
	"dialog-hub/runtime"
	"dialog-hub/services"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-0123456789"

type fixture struct {
	app     *fiber.App
	router  *runtime.Router
	dialogs *repositories.DialogRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	dialogs, err := repositories.NewDialogRepository(db, log)
	req.NoError(err)
	t.Cleanup(func() { _ = dialogs.Close() })
	messages := repositories.NewMessageRepository(db, log)

	registry := runtime.NewRegistry(4)
	router := runtime.NewRouter(log, dialogs, messages, registry, domain.DefaultMaxBodyLength)
	unread := runtime.NewUnread(dialogs, messages)
	chat := services.NewChatService(router, unread, registry, dialogs)
	validator := auth.NewJWTValidator(secret, repositories.NewRevocationRepository(db))

	s := server.NewServer(log, validator, router, registry, chat, nil, server.Config{})
	return fixture{app: s.App(), router: router, dialogs: dialogs}
}

func token(t *testing.T, user domain.UserID) string {
	t.Helper()
	token, err := auth.GenerateToken(secret, user, time.Minute)
	require.NoError(t, err)
	return token
}

func (f fixture) do(t *testing.T, method, target string, user domain.UserID) (int, map[string]any) {
	t.Helper()
	return f.doJSON(t, method, target, user, "")
}

func (f fixture) doJSON(t *testing.T, method, target string, user domain.UserID, payload string) (int, map[string]any) {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(payload))
	if payload != "" {
		r.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if user != 0 {
		r.Header.Set("Authorization", "Bearer "+token(t, user))
	}
	resp, err := f.app.Test(r, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestHandshake_RequiresUpgrade(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	status, _ := f.do(t, http.MethodGet, "/ws/chat", 1)

	req.Equal(fiber.StatusUpgradeRequired, status)
}

func TestHandshake_RejectsInvalidTokenBeforeUpgrade(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given an upgrade request with a forged token
	r := httptest.NewRequest(http.MethodGet, "/ws/chat?token=not-a-jwt", nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Sec-WebSocket-Version", "13")
	r.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	// When it reaches the server
	resp, err := f.app.Test(r, -1)
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()

	// Then it is refused with 401 and an authentication error body
	req.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	var body map[string]any
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal("authentication", body["code"])
}

func TestREST_RequiresToken(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/unread", 0)

	req.Equal(fiber.StatusUnauthorized, status)
	req.Equal("authentication", body["code"])
}

func TestREST_UnreadAndCatchUp(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	// Given A sent two messages to an offline B
	dialog, err := f.dialogs.CreateDialog(ctx, 1, 2)
	req.NoError(err)
	_, err = f.router.Send(ctx, 1, dialog.ID, "hello")
	req.NoError(err)
	_, err = f.router.Send(ctx, 1, dialog.ID, "are you there")
	req.NoError(err)

	// Then B sees two unread messages in total and in the dialog
	status, body := f.do(t, http.MethodGet, "/api/v1/unread", 2)
	req.Equal(fiber.StatusOK, status)
	req.EqualValues(2, body["unread_count"])

	status, body = f.do(t, http.MethodGet, "/api/v1/dialogs/"+dialog.ID.String()+"/unread", 2)
	req.Equal(fiber.StatusOK, status)
	req.EqualValues(2, body["unread_count"])

	// When B catches up after the first sequence
	status, body = f.do(t, http.MethodGet, "/api/v1/dialogs/"+dialog.ID.String()+"/messages?since=1", 2)

	// Then only the second message is returned
	req.Equal(fiber.StatusOK, status)
	messages := body["messages"].([]any)
	req.Len(messages, 1)
	req.Equal("are you there", messages[0].(map[string]any)["text"])
	req.EqualValues(2, messages[0].(map[string]any)["sequence"])

	// And the sender has nothing unread
	_, body = f.do(t, http.MethodGet, "/api/v1/unread", 1)
	req.EqualValues(0, body["unread_count"])
}

func TestREST_SendAndMarkRead(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	dialog, err := f.dialogs.CreateDialog(context.Background(), 1, 2)
	req.NoError(err)
	path := "/api/v1/dialogs/" + dialog.ID.String()

	// When A posts two messages
	status, body := f.doJSON(t, http.MethodPost, path+"/messages", 1, `{"text":"  hello "}`)
	req.Equal(fiber.StatusCreated, status)
	req.Equal("hello", body["text"])
	req.EqualValues(1, body["sequence"])
	status, body = f.doJSON(t, http.MethodPost, path+"/messages", 1, `{"text":"still there?"}`)
	req.Equal(fiber.StatusCreated, status)
	req.EqualValues(2, body["sequence"])

	// Then an empty text is refused
	status, _ = f.doJSON(t, http.MethodPost, path+"/messages", 1, `{"text":""}`)
	req.Equal(fiber.StatusBadRequest, status)

	// When B reads up to the first one
	status, body = f.doJSON(t, http.MethodPost, path+"/read", 2, `{"up_to_sequence":1}`)
	req.Equal(fiber.StatusOK, status)
	req.EqualValues(1, body["up_to_sequence"])
	_, body = f.do(t, http.MethodGet, path+"/unread", 2)
	req.EqualValues(1, body["unread_count"])

	// When B marks everything read without a sequence
	status, body = f.do(t, http.MethodPost, path+"/read", 2)
	req.Equal(fiber.StatusOK, status)
	req.EqualValues(2, body["up_to_sequence"])

	// Then nothing is unread and a second pass changes nothing
	_, body = f.do(t, http.MethodGet, path+"/unread", 2)
	req.EqualValues(0, body["unread_count"])
	_, body = f.do(t, http.MethodPost, path+"/read", 2)
	req.EqualValues(0, body["up_to_sequence"])
}

func TestREST_SendToBlockedDialog(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	dialog, err := f.dialogs.CreateDialog(context.Background(), 1, 2)
	req.NoError(err)
	path := "/api/v1/dialogs/" + dialog.ID.String()

	// Given B blocked A
	status, _ := f.do(t, http.MethodPost, path+"/block", 2)
	req.Equal(fiber.StatusNoContent, status)

	// When A posts
	status, body := f.doJSON(t, http.MethodPost, path+"/messages", 1, `{"text":"hi"}`)

	// Then it is refused and nothing is stored
	req.Equal(fiber.StatusForbidden, status)
	req.Equal("blocked", body["code"])
	_, body = f.do(t, http.MethodGet, path+"/messages", 2)
	req.Empty(body["messages"])
}

func TestREST_OutsiderIsForbidden(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	dialog, err := f.dialogs.CreateDialog(context.Background(), 1, 2)
	req.NoError(err)

	status, body := f.do(t, http.MethodGet, "/api/v1/dialogs/"+dialog.ID.String()+"/messages", 3)

	req.Equal(fiber.StatusForbidden, status)
	req.Equal("authorization", body["code"])
}

func TestREST_UnknownDialog(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/v1/dialogs/999/block", 1)

	req.Equal(fiber.StatusNotFound, status)
	req.Equal("not_found", body["code"])
}

func TestREST_BadDialogID(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	status, _ := f.do(t, http.MethodGet, "/api/v1/dialogs/abc/unread", 1)

	req.Equal(fiber.StatusBadRequest, status)
}

func TestREST_BlockUnblockAndDelete(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	dialog, err := f.dialogs.CreateDialog(ctx, 1, 2)
	req.NoError(err)
	path := "/api/v1/dialogs/" + dialog.ID.String()

	// When B blocks A
	status, _ := f.do(t, http.MethodPost, path+"/block", 2)
	req.Equal(fiber.StatusNoContent, status)

	// Then A can neither send nor unblock
	_, err = f.router.Send(ctx, 1, dialog.ID, "hi")
	req.Error(err)
	status, _ = f.do(t, http.MethodPost, path+"/unblock", 1)
	req.Equal(fiber.StatusForbidden, status)

	// When B unblocks
	status, _ = f.do(t, http.MethodPost, path+"/unblock", 2)
	req.Equal(fiber.StatusNoContent, status)
	_, err = f.router.Send(ctx, 1, dialog.ID, "hi")
	req.NoError(err)

	// When B deletes the dialog, it disappears from B's list only
	status, _ = f.do(t, http.MethodDelete, path, 2)
	req.Equal(fiber.StatusNoContent, status)
	_, body := f.do(t, http.MethodGet, "/api/v1/dialogs", 2)
	req.Empty(body["dialogs"])
	_, body = f.do(t, http.MethodGet, "/api/v1/dialogs", 1)
	req.Len(body["dialogs"], 1)
}

func TestREST_Presence(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/presence/42", 1)

	req.Equal(fiber.StatusOK, status)
	req.EqualValues(42, body["user_id"])
	req.Equal(false, body["online"])
	req.NotContains(body, "last_seen")
}

func TestHealth(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/health", 0)

	req.Equal(fiber.StatusOK, status)
	req.Equal("ok", body["status"])
	req.EqualValues(0, body["connections"])
}
