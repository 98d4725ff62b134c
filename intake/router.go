package intake

import (
	"net/http"
	"time"

	"lead-gateway/intake/application"
	"lead-gateway/intake/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	Pipeline *application.Pipeline
	Leads    *application.LeadService
	Metrics  domain.MetricsReader

	// Opcionais em /api/health: contadores por ramo e ocupação das entregas.
	Reasons    domain.ReasonReader
	Deliveries domain.SlotUsage

	// Throttle por IP aplicado a todas as rotas /api. Nil desliga.
	Throttle           domain.LimiterStore
	ThrottleRetryAfter time.Duration

	TrustXForwardedFor bool
	AllowedOrigins     []string
	Hasher             application.Hasher
	Logger             zerolog.Logger

	Started time.Time
	Clock   func() time.Time
}

func NewRouter(opts Options) http.Handler {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Started.IsZero() {
		opts.Started = opts.Clock()
	}

	clientIP := ClientIP(opts.TrustXForwardedFor)
	h := &handlers{
		pipeline: opts.Pipeline,
		leads:    opts.Leads,
		metrics:    opts.Metrics,
		reasons:    opts.Reasons,
		deliveries: opts.Deliveries,
		clientIP:   clientIP,
		started:    opts.Started,
		now:        opts.Clock,
	}

	r := chi.NewRouter()
	r.Use(RequestLogger(opts.Logger))
	r.Use(Recoverer)
	r.Use(SecurityHeaders)
	r.Use(CORS(opts.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Throttle(ThrottleOptions{
			Store:      opts.Throttle,
			KeyFn:      clientIP,
			RetryAfter: opts.ThrottleRetryAfter,
			Hasher:     opts.Hasher,
		}))

		r.Get("/health", h.health)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			if opts.Pipeline != nil {
				r.Post("/cost-estimate", h.costEstimate)
			}
			if opts.Leads != nil {
				r.Post("/lead", h.lead)
			}
		})
	})

	return r
}
