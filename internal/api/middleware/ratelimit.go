package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
)

const (
	msgRateLimited = "слишком много запросов, повторите позже"

	// limiterIdleTTL после этого времени без запросов лимитер IP удаляется
	limiterIdleTTL = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов с одного IP
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	trusted   []netip.Prefix
	now       func() time.Time
	logger    Logger
}

// NewRateLimiter создает лимитер: rps запросов в секунду, burst подряд.
// X-Forwarded-For учитывается только для соединений от trustedProxies.
func NewRateLimiter(rps float64, burst int, trustedProxies []netip.Prefix, logger Logger) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		trusted:  trustedProxies,
		now:      time.Now,
		logger:   logger,
	}
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware отвечает 429, если лимит для IP клиента исчерпан
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.clientIP(r)
		if !l.allow(ip) {
			l.logger.Warn("RateLimit: %s %s - limit exceeded for ip=%s", r.Method, r.URL.Path, ip)
			w.Header().Set("Retry-After", "1")
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP адрес соединения. Если соединение пришло от доверенного прокси, берётся
// ближайший справа недоверенный адрес из X-Forwarded-For.
func (l *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !l.isTrusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := strings.TrimSpace(hops[i])
		if ip == "" {
			continue
		}
		if !l.isTrusted(ip) {
			return ip
		}
		host = ip
	}
	return host
}

func (l *RateLimiter) isTrusted(ip string) bool {
	if len(l.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
