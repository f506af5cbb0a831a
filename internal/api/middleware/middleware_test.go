package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type observed struct {
	method, route string
	status        int
}

type fakeMetrics struct{ calls []observed }

func (f *fakeMetrics) ObserveHTTP(method, route string, status int, _ time.Duration) {
	f.calls = append(f.calls, observed{method, route, status})
}

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := &fakeMetrics{}
	r := mux.NewRouter()
	r.Use(Metrics(m))
	r.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/42", nil))

	require.Len(t, m.calls, 1)
	assert.Equal(t, observed{http.MethodGet, "/bookings/{bookingId}", http.StatusNotFound}, m.calls[0])
}

func TestAdminAuth(t *testing.T) {
	var gotID string
	h := AdminAuth(secret, nopLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetAdminID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	valid := sign(t, jwt.SigningMethodHS256, []byte(secret), RoleAdmin, time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid admin", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), RoleAdmin, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), RoleAdmin, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"other algorithm", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), RoleAdmin, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"customer role", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), "customer", time.Now().Add(time.Hour)), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = ""
			req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "admin-1", gotID)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2, nil, nopLogger{})
	now := time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/quote", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, do("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, do("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusCreated, do("10.0.0.1"))
}

func TestRateLimiter_DropsIdleVisitors(t *testing.T) {
	l := NewRateLimiter(1, 1, nil, nopLogger{})
	now := time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(limiterIdleTTL + time.Minute)
	l.allow("10.0.0.2")

	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.2")
}

func TestClientIP(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8"), netip.MustParsePrefix("192.0.2.10/32")}

	tests := []struct {
		name    string
		trusted []netip.Prefix
		remote  string
		xff     []string
		want    string
	}{
		{"no proxies configured ignores header", nil, "203.0.113.9:1234", []string{"198.51.100.1"}, "203.0.113.9"},
		{"untrusted peer cannot spoof", proxies, "203.0.113.9:1234", []string{"198.51.100.1"}, "203.0.113.9"},
		{"trusted proxy without header", proxies, "10.1.2.3:1234", nil, "10.1.2.3"},
		{"trusted proxy", proxies, "10.1.2.3:1234", []string{"198.51.100.1"}, "198.51.100.1"},
		{"client-supplied prefix is skipped", proxies, "10.1.2.3:1234", []string{"1.1.1.1, 198.51.100.1"}, "198.51.100.1"},
		{"chain of proxies", proxies, "10.1.2.3:1234", []string{"198.51.100.1, 192.0.2.10", "10.9.9.9"}, "198.51.100.1"},
		{"all hops trusted", proxies, "10.1.2.3:1234", []string{"10.0.0.7"}, "10.0.0.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewRateLimiter(1, 1, tt.trusted, nopLogger{})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, l.clientIP(req))
		})
	}
}

func TestRateLimiter_SpoofedForwardedForDoesNotBypassLimit(t *testing.T) {
	l := NewRateLimiter(1, 1, nil, nopLogger{})
	now := time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	codes := make([]int, 0, 3)
	for _, fake := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodPost, "/quote", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set("X-Forwarded-For", fake)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
