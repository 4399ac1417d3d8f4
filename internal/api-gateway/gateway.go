package gateway

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	BetServiceURL     string
	DisplayServiceURL string
	CORSOrigins       []string
	RateLimitRPS      float64
	RateLimitBurst    int
}

func rp(to string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", to)
	}
	return httputil.NewSingleHostReverseProxy(u), nil
}

// Router monta o gateway: CORS, limite por IP e proxy para os serviços
//
//	/api/bets/*    -> bet-service
//	/api/display/* -> display-service (inclui o /ws)
func Router(log *zap.Logger, opt Options) (http.Handler, error) {
	bet, err := rp(opt.BetServiceURL)
	if err != nil {
		return nil, err
	}
	display, err := rp(opt.DisplayServiceURL)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opt.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(NewLimiter(opt.RateLimitRPS, opt.RateLimitBurst).Middleware)

	r.Handle("/api/bets/*", http.StripPrefix("/api/bets", bet))
	r.Handle("/api/display/*", http.StripPrefix("/api/display", display))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	log.Info("gateway routes ready",
		zap.String("bets", opt.BetServiceURL),
		zap.String("display", opt.DisplayServiceURL),
		zap.Float64("rps", opt.RateLimitRPS),
	)
	return r, nil
}

// Limiter aplica um token bucket por IP de origem. rps <= 0 desliga o limite.
// IPs sem requisição há mais de Idle saem do mapa na varredura seguinte.
type Limiter struct {
	rps   rate.Limit
	burst int

	Idle time.Duration
	Now  func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewLimiter(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		Idle:    3 * time.Minute,
		Now:     time.Now,
		clients: make(map[string]*client),
	}
}

func (l *Limiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	if now.Sub(l.lastSweep) >= l.Idle {
		for k, c := range l.clients {
			if now.Sub(c.seen) >= l.Idle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.seen = now
	return c.lim
}

// Clients devolve quantos IPs estão sendo acompanhados.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.rps <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !l.get(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded", "code": "rate_limited"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
