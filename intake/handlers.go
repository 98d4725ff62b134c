package intake

import (
	"net/http"
	"strings"
	"time"

	"lead-gateway/intake/application"
	"lead-gateway/intake/domain"
)

type costEstimateRequest struct {
	Floors                int     `json:"floors" validate:"oneof=1 2"`
	Area                  float64 `json:"area" validate:"gte=1,lte=10000"`
	PackageType           string  `json:"packageType" validate:"oneof=black gray white"`
	Name                  string  `json:"name" validate:"min=2,max=80"`
	Phone                 string  `json:"phone" validate:"min=7,max=20,phonechars"`
	Consent               bool    `json:"consent"`
	Website               string  `json:"website" validate:"max=120"`
	OpenedAt              any     `json:"openedAt"`
	SubmittedAt           any     `json:"submittedAt"`
	Action                string  `json:"action" validate:"max=40"`
	ClientSuspected       bool    `json:"clientSuspected"`
	ClientSuspectedReason string  `json:"clientSuspectedReason" validate:"max=40"`
	CaptchaToken          string  `json:"captchaToken" validate:"max=200"`
}

type estimateResponse struct {
	OK                bool   `json:"ok"`
	Estimate          int64  `json:"estimate"`
	FormattedEstimate string `json:"formattedEstimate"`
}

type leadRequest struct {
	Name        string `json:"name" validate:"min=2,max=80"`
	Phone       string `json:"phone" validate:"min=7,max=20,phonechars"`
	Message     string `json:"message" validate:"max=500"`
	ProjectID   string `json:"projectId" validate:"max=40"`
	ProjectName string `json:"projectName" validate:"max=120"`
	Source      string `json:"source" validate:"max=80"`
	Consent     bool   `json:"consent"`
	Website     string `json:"website" validate:"max=120"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type healthResponse struct {
	OK            bool             `json:"ok"`
	UptimeSeconds int64            `json:"uptimeSeconds"`
	Metrics       domain.Metrics   `json:"metrics"`
	Reasons       map[string]int64 `json:"reasons,omitempty"`
	Delivery      *deliveryUsage   `json:"delivery,omitempty"`
}

type deliveryUsage struct {
	InFlight int `json:"inFlight"`
	Capacity int `json:"capacity"`
}

type handlers struct {
	pipeline   *application.Pipeline
	leads      *application.LeadService
	metrics    domain.MetricsReader
	reasons    domain.ReasonReader
	deliveries domain.SlotUsage
	clientIP   KeyFunc
	started    time.Time
	now        func() time.Time
}

func (h *handlers) costEstimate(w http.ResponseWriter, r *http.Request) {
	var req costEstimateRequest
	if err := readJSON(w, r, &req); err != nil {
		invalidPayload(w)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		invalidPayload(w)
		return
	}

	out := h.pipeline.Submit(r.Context(), domain.Submission{
		Floors:                req.Floors,
		Area:                  req.Area,
		PackageType:           domain.PackageType(req.PackageType),
		Name:                  req.Name,
		Phone:                 req.Phone,
		Consent:               req.Consent,
		Honeypot:              req.Website,
		OpenedAt:              req.OpenedAt,
		SubmittedAt:           req.SubmittedAt,
		Action:                req.Action,
		ClientSuspected:       req.ClientSuspected,
		ClientSuspectedReason: req.ClientSuspectedReason,
		CaptchaToken:          req.CaptchaToken,
		IP:                    h.clientIP(r),
		UserAgent:             r.UserAgent(),
	})
	if !out.OK() {
		writeOutcomeError(w, out)
		return
	}
	_ = writeJSON(w, http.StatusOK, estimateResponse{
		OK:                true,
		Estimate:          out.Estimate,
		FormattedEstimate: out.FormattedEstimate,
	})
}

func (h *handlers) lead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := readJSON(w, r, &req); err != nil {
		invalidPayload(w)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		invalidPayload(w)
		return
	}

	out := h.leads.Submit(r.Context(), domain.Lead{
		Name:        req.Name,
		Phone:       req.Phone,
		Message:     strings.TrimSpace(req.Message),
		ProjectID:   req.ProjectID,
		ProjectName: req.ProjectName,
		Source:      req.Source,
		Consent:     req.Consent,
		Honeypot:    req.Website,
		IP:          h.clientIP(r),
	})
	if !out.OK() {
		writeOutcomeError(w, out)
		return
	}
	_ = writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	var m domain.Metrics
	if h.metrics != nil {
		m = h.metrics.Snapshot()
	}
	resp := healthResponse{
		OK:            true,
		UptimeSeconds: int64(h.now().Sub(h.started).Seconds()),
		Metrics:       m,
	}
	if h.reasons != nil {
		resp.Reasons = h.reasons.ByReason()
	}
	if h.deliveries != nil {
		resp.Delivery = &deliveryUsage{InFlight: h.deliveries.InFlight(), Capacity: h.deliveries.Capacity()}
	}
	_ = writeJSON(w, http.StatusOK, resp)
}

func writeOutcomeError(w http.ResponseWriter, out domain.Outcome) {
	if out.Status == http.StatusTooManyRequests && out.RetryAfter > 0 {
		w.Header().Set("Retry-After", retryAfterSeconds(out.RetryAfter))
	}
	msg := out.Error
	if msg == "" {
		msg = http.StatusText(out.Status)
	}
	writeError(w, out.Status, msg)
}
