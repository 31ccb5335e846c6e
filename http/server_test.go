package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ViniZap4/notepads/auth"
	"github.com/ViniZap4/notepads/controller"
	"github.com/ViniZap4/notepads/domain"
	"github.com/ViniZap4/notepads/events"
	"github.com/ViniZap4/notepads/filesystem"
)

const testToken = "pw"

type testEnv struct {
	app    *fiber.App
	store  *filesystem.Store
	cancel context.CancelFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := filesystem.NewStore(filepath.Join(t.TempDir(), "notes"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := events.NewHub(zerolog.Nop())
	go hub.Run(ctx)
	loop := controller.NewLoop(controller.New(store, hub, zerolog.Nop()))
	go loop.Run(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(testToken), bcrypt.MinCost)
	require.NoError(t, err)
	app := NewServer(loop, hub, zerolog.Nop()).App(hash)
	return &testEnv{app: app, store: store, cancel: cancel}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *nethttp.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(auth.Header, testToken)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *nethttp.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type noteJSON struct {
	Title   string `json:"title"`
	File    string `json:"file"`
	Scope   string `json:"scope"`
	Content string `json:"content"`
}

type errorJSON struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func TestHealthzNeedsNoToken(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/notes", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "request", decode[errorJSON](t, resp).Kind)
}

func TestNoteLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/notes", map[string]string{"title": "Groceries"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[struct {
		Note    noteJSON `json:"note"`
		Existed bool     `json:"existed"`
	}](t, resp)
	assert.False(t, created.Existed)
	assert.Equal(t, "groceries.txt", created.Note.File)

	resp = env.do(t, "PUT", "/api/notes/groceries.txt", map[string]string{"content": "milk, eggs"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, "GET", "/api/notes/groceries.txt", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "milk, eggs", decode[noteJSON](t, resp).Content)

	resp = env.do(t, "GET", "/api/notes/resolve?title=groceries", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "groceries.txt", decode[noteJSON](t, resp).File)

	resp = env.do(t, "POST", "/api/notes", map[string]string{"title": "GROCERIES!"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	again := decode[struct {
		Note    noteJSON `json:"note"`
		Existed bool     `json:"existed"`
	}](t, resp)
	assert.True(t, again.Existed)
	assert.Equal(t, "milk, eggs", again.Note.Content)

	resp = env.do(t, "POST", "/api/notes/groceries.txt/rename", map[string]string{"title": "Shopping"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "shopping.txt", decode[noteJSON](t, resp).File)

	resp = env.do(t, "GET", "/api/notes", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	listed := decode[[]noteJSON](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, "Shopping", listed[0].Title)

	resp = env.do(t, "DELETE", "/api/notes/shopping.txt", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(t, "DELETE", "/api/notes/shopping.txt", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[errorJSON](t, resp).Kind)
}

func TestEmptyNoteKeepsContentField(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "POST", "/api/notes", map[string]string{"title": "Blank"})

	resp := env.do(t, "GET", "/api/notes/blank.txt", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw := decode[map[string]any](t, resp)
	assert.Contains(t, raw, "content")
	assert.Equal(t, "", raw["content"])
}

func TestFolders(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "GET", "/api/folders", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, resp))

	resp = env.do(t, "POST", "/api/folders", map[string]string{"name": "Work"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, "POST", "/api/folders", map[string]string{"name": "Work"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_exists", decode[errorJSON](t, resp).Kind)

	resp = env.do(t, "POST", "/api/folders", map[string]string{"name": ".secret"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_name", decode[errorJSON](t, resp).Kind)

	resp = env.do(t, "POST", "/api/notes", map[string]string{"title": "Plan", "scope": "Work"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, "GET", "/api/notes?scope=Work", nil)
	inWork := decode[[]noteJSON](t, resp)
	require.Len(t, inWork, 1)
	assert.Equal(t, "Plan", inWork[0].Title)
	assert.Equal(t, "Work", inWork[0].Scope)

	resp = env.do(t, "GET", "/api/notes", nil)
	assert.Empty(t, decode[[]noteJSON](t, resp))

	resp = env.do(t, "GET", "/api/notes?scope=Nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestErrorKinds(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "POST", "/api/notes", map[string]string{"title": "One"})
	env.do(t, "POST", "/api/notes", map[string]string{"title": "Two"})
	require.NoError(t, os.WriteFile(filepath.Join(env.store.Root(), "bad.txt"), []byte{0xff, 0xfe}, 0644))

	resp := env.do(t, "POST", "/api/notes/one.txt/rename", map[string]string{"title": "two"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = env.do(t, "GET", "/api/notes/bad.txt", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "read_decode", decode[errorJSON](t, resp).Kind)

	resp = env.do(t, "GET", "/api/notes/resolve?title=Ghost", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, "GET", "/api/notes/resolve", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "GET", "/api/notes/readme.md", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "PUT", "/api/notes/x.txt?scope=Nope", map[string]string{"content": "x"})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "io_failure", decode[errorJSON](t, resp).Kind)
}

func TestEscapedFileNames(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, "POST", "/api/notes", map[string]string{"title": "Заметки"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, "GET", "/api/notes/"+url.PathEscape("заметки.txt"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "заметки.txt", decode[noteJSON](t, resp).File)
}

func TestIntentEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/intents", controller.Intent{Kind: controller.NewFolder, Name: "Home"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	view := decode[controller.View](t, resp)
	require.Len(t, view.Folders, 1)
	assert.Equal(t, "Home", view.Folders[0].Name)

	resp = env.do(t, "POST", "/api/intents", controller.Intent{Kind: controller.NewNote, Title: "List", Scope: "Home"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	view = decode[controller.View](t, resp)
	require.NotNil(t, view.Note)
	assert.Equal(t, "list.txt", view.Note.File)
	require.Len(t, view.Notes, 1)

	resp = env.do(t, "POST", "/api/intents", map[string]string{"type": "dance"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_intent", decode[errorJSON](t, resp).Kind)
}

func TestWebSocketEvents(t *testing.T) {
	env := newTestEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() {
		env.cancel()
		_ = env.app.ShutdownWithTimeout(time.Second)
	})
	addr := ln.Addr().String()

	header := nethttp.Header{}
	header.Set(auth.Header, testToken)
	conn, resp, err := fws.DefaultDialer.Dial("ws://"+addr+"/api/ws", header)
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, fiber.StatusSwitchingProtocols, resp.StatusCode)

	next := func() events.Event {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		var ev events.Event
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}
	require.Equal(t, events.TypeConnected, next().Type)

	post, err := nethttp.Post("http://"+addr+"/api/notes?token="+testToken, fiber.MIMEApplicationJSON,
		strings.NewReader(`{"title":"Fresh"}`))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, fiber.StatusCreated, post.StatusCode)

	ev := next()
	assert.Equal(t, events.TypeRefresh, ev.Type)
	assert.Equal(t, "new_note", ev.Intent)
	assert.Equal(t, domain.RootScope, ev.Scope)
	assert.Equal(t, "fresh.txt", ev.File)
}

func TestWebSocket_Rejections(t *testing.T) {
	env := newTestEnv(t)

	t.Run("not_an_upgrade", func(t *testing.T) {
		resp := env.do(t, fiber.MethodGet, "/api/ws", nil)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	})

	t.Run("no_token", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/api/ws", nil)
		req.Header.Set(fiber.HeaderConnection, "Upgrade")
		req.Header.Set(fiber.HeaderUpgrade, "websocket")
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
