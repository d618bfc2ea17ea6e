package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"yatube/internal/config"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/storage"
	"yatube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// recordingViews remembers the last template rendered and its data.
type recordingViews struct {
	fiber.Views

	mu   sync.Mutex
	name string
	bind fiber.Map
}

func (v *recordingViews) Render(w io.Writer, name string, bind interface{}, layout ...string) error {
	v.mu.Lock()
	v.name = name
	v.bind, _ = bind.(fiber.Map)
	v.mu.Unlock()
	return v.Views.Render(w, name, bind, layout...)
}

func (v *recordingViews) reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name = ""
	v.bind = nil
}

func (v *recordingViews) last() (string, fiber.Map) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.name, v.bind
}

type testEnv struct {
	t     *testing.T
	db    *gorm.DB
	srv   *Server
	app   *fiber.App
	views *recordingViews
	store storage.Storage
	redis *miniredis.Miniredis
}

type envOption func(*config.Config)

func withCSRF(cfg *config.Config) { cfg.CSRFEnabled = true }

func newTestEnv(t *testing.T, withRedis bool, opts ...envOption) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Env:              "test",
		Port:             "8000",
		JWTSecret:        "test-secret-key-that-is-at-least-32-chars",
		DBDriver:         "sqlite",
		PageCacheSeconds: 20,
		StorageBackend:   "fs",
		MaxUploadMB:      5,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	env := &testEnv{t: t, db: testutil.NewDB(t), store: storage.NewMemFS()}

	var rdb *redis.Client
	if withRedis {
		env.redis = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.redis.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	srv, err := NewServerWithDeps(cfg, env.db, rdb, env.store)
	require.NoError(t, err)
	srv.userService.WithBcryptCost(bcrypt.MinCost)

	env.views = &recordingViews{Views: srv.views}
	srv.views = env.views
	env.srv = srv
	env.app = srv.NewApp()
	return env
}

func (e *testEnv) token(user *models.User) string {
	e.t.Helper()
	tok, _, err := e.srv.tokens.Issue(user)
	require.NoError(e.t, err)
	return tok
}

func (e *testEnv) do(req *http.Request, user *models.User) *http.Response {
	e.t.Helper()
	if user != nil {
		req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: e.token(user)})
	}
	e.views.reset()
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(target string, user *models.User) *http.Response {
	return e.do(httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (e *testEnv) postForm(target string, values url.Values, user *models.User) *http.Response {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return e.do(req, user)
}

func (e *testEnv) postMultipart(target string, fields map[string]string, filename string, file []byte, user *models.User) *http.Response {
	e.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(e.t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(e.t, err)
		_, err = part.Write(file)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.do(req, user)
}

func (e *testEnv) template() string {
	name, _ := e.views.last()
	return name
}

func (e *testEnv) context(key string) interface{} {
	_, bind := e.views.last()
	return bind[key]
}

func (e *testEnv) page() *pagination.Page[models.Post] {
	e.t.Helper()
	page, ok := e.context("page").(*pagination.Page[models.Post])
	require.True(e.t, ok, "page missing from template context")
	return page
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
