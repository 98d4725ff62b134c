package intake

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"lead-gateway/intake/application"
	"lead-gateway/intake/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

type ThrottleOptions struct {
	Store               domain.LimiterStore
	KeyFn               KeyFunc
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Hasher              application.Hasher
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// Throttle limita requisições por cliente com token bucket e responde 429
// com Retry-After quando o bucket esvazia.
func Throttle(opts ThrottleOptions) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = ClientIP(false)
	}

	svc := application.Throttle{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
		Hasher:     opts.Hasher,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
				}
			}

			dec := svc.Decide(r.Context(), domain.Key(key), r.URL.Path)
			if !dec.Allowed {
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter))
				tooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger gera (ou aceita, se for um ULID válido) o X-Request-Id, anexa
// um logger com req_id ao contexto e registra uma linha por requisição.
func RequestLogger(base zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := ulid.ParseStrict(id); err != nil {
				id = ulid.Make().String()
			}
			w.Header().Set(requestIDHeader, id)

			logger := base.With().Str("req_id", id).Logger()
			r = r.WithContext(logger.WithContext(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			ev := logger.Info()
			if r.URL.Path == "/api/health" {
				ev = logger.Debug()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// Recoverer segue o middleware.Recoverer do chi, mas responde no envelope JSON
// e registra o panic no logger da requisição.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zerolog.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")
			serverError(w)
		}()

		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders aplica os headers padrão do helmet, exceto CSP (a API só serve JSON).
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Origin-Agent-Cluster", "?1")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("X-XSS-Protection", "0")
		next.ServeHTTP(w, r)
	})
}

// CORS aceita só as origens listadas; lista vazia aceita qualquer origem.
// Requisições sem Origin (curl, server-to-server) passam direto.
func CORS(allowed []string) func(next http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimSpace(o); o != "" {
			set[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(set) > 0 {
				if _, ok := set[origin]; !ok {
					writeError(w, http.StatusForbidden, "CORS blocked")
					return
				}
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
