package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daleel/internal/auth"
	"github.com/roach88/daleel/internal/config"
	"github.com/roach88/daleel/internal/metrics"
	"github.com/roach88/daleel/internal/record"
	"github.com/roach88/daleel/internal/store"
	"github.com/roach88/daleel/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "correct horse battery"

var (
	hashOnce sync.Once
	hashed   string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := auth.HashPassword(testPassword)
		require.NoError(t, err)
		hashed = h
	})
	return hashed
}

type fixture struct {
	cycle     record.Cycle
	district  record.District
	list      record.ElectoralList
	candidate record.Candidate
	topic     record.Topic
	source    record.Source
}

type testEnv struct {
	store    *store.Store
	sessions *auth.Manager
	metrics  *metrics.Metrics
	server   *Server
	fx       fixture
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}

	m := metrics.New()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"),
		store.WithClock(testutil.NewDeterministicClock()),
		store.WithObserver(m))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sessions, err := auth.NewManager(st, cfg.Session.TTL.D(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	srv, err := New(Deps{Config: cfg, Store: st, Sessions: sessions, Metrics: m})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	env := &testEnv{store: st, sessions: sessions, metrics: m, server: srv}
	env.fx = seed(t, st)
	return env
}

func seed(t *testing.T, s *store.Store) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.cycle, err = s.CreateCycle(ctx, record.Cycle{Name: "Parliamentary 2022", Year: 2022, IsActive: true})
	require.NoError(t, err)
	f.district, err = s.CreateDistrict(ctx, record.District{
		CycleID: f.cycle.ID, NameAr: "بيروت الأولى", NameEn: "Beirut I", NameFr: "Beyrouth I", SeatCount: 8,
	})
	require.NoError(t, err)
	f.list, err = s.CreateList(ctx, record.ElectoralList{
		CycleID: f.cycle.ID, DistrictID: f.district.ID,
		NameAr: "لبنان السيادة", NameEn: "Sovereign Lebanon", NameFr: "Liban souverain",
	})
	require.NoError(t, err)
	f.candidate, err = s.CreateCandidate(ctx, record.Candidate{
		CycleID: f.cycle.ID, DistrictID: f.district.ID, CurrentListID: &f.list.ID,
		FullNameAr: "نديم الجميل", FullNameEn: "Nadim Gemayel", FullNameFr: "Nadim Gemayel",
	})
	require.NoError(t, err)
	f.topic, err = s.CreateTopic(ctx, record.Topic{NameAr: "الاقتصاد", NameEn: "Economy", NameFr: "Économie"})
	require.NoError(t, err)
	f.source, err = s.CreateSource(ctx, record.Source{
		Title:         "Campaign launch speech",
		Publisher:     "LBCI",
		OriginURL:     "https://lbci.example/speech",
		ArchivedURL:   "https://web.archive.org/web/2022/https://lbci.example/speech",
		ArchivedAt:    time.Date(2022, 3, 20, 18, 0, 0, 0, time.UTC),
		ArchiveMethod: record.ArchiveWayback,
	})
	require.NoError(t, err)

	for email, role := range map[string]record.Role{
		"admin@daleel.example":  record.RoleAdmin,
		"editor@daleel.example": record.RoleEditor,
		"viewer@daleel.example": record.RoleViewer,
	} {
		_, err := s.CreateUser(ctx, record.User{Email: email, PasswordHash: passwordHash(t), Role: role, IsActive: true})
		require.NoError(t, err)
	}
	return f
}

type reqOpt func(*http.Request)

func withCookies(cookies ...*http.Cookie) reqOpt {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

// client is a logged-in browser: session cookie, CSRF cookie and token.
type client struct {
	env     *testEnv
	cookies []*http.Cookie
	csrf    string
}

func (e *testEnv) login(t *testing.T, email string) *client {
	t.Helper()
	w := e.do(t, "POST", "/api/auth/login", map[string]string{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := &client{env: e, cookies: w.Result().Cookies()}

	w = e.do(t, "GET", "/api/auth/csrf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	c.cookies = append(c.cookies, w.Result().Cookies()...)
	body := decode(t, w)
	c.csrf = body["data"].(map[string]any)["csrfToken"].(string)
	return c
}

func (c *client) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return c.env.do(t, method, path, body, withCookies(c.cookies...), withHeader(csrfHeader, c.csrf))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
