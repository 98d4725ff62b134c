package domain

import (
	"errors"
	"time"
)

var ErrInvalidPhone = errors.New("invalid phone number")

type PackageType string

const (
	PackageBlack PackageType = "black"
	PackageGray  PackageType = "gray"
	PackageWhite PackageType = "white"
)

// Submission é o contexto transitório de um pedido de orçamento.
// OpenedAt/SubmittedAt chegam como vieram do cliente; o TimingValidator decide se são números.
type Submission struct {
	Floors                int
	Area                  float64
	PackageType           PackageType
	Name                  string
	Phone                 string
	Consent               bool
	Honeypot              string
	OpenedAt              any
	SubmittedAt           any
	Action                string
	ClientSuspected       bool
	ClientSuspectedReason string
	CaptchaToken          string

	IP        string
	UserAgent string
}

// Lead é o pedido de contato simples (/api/lead).
type Lead struct {
	Name        string
	Phone       string
	Message     string
	ProjectID   string
	ProjectName string
	Source      string
	Consent     bool
	Honeypot    string

	IP string
}

// Verdict é a lista ordenada e sem repetições de motivos de quarentena.
// Vazia significa envio para o canal principal.
type Verdict []string

func (v Verdict) Quarantined() bool { return len(v) > 0 }

func (v Verdict) Has(reason string) bool {
	for _, r := range v {
		if r == reason {
			return true
		}
	}
	return false
}

// Add acrescenta o motivo se ainda não estiver presente.
func (v Verdict) Add(reason string) Verdict {
	if reason == "" || v.Has(reason) {
		return v
	}
	return append(v, reason)
}

const (
	ReasonFastSubmit      = "fast_submit"
	ReasonStaleForm       = "stale_form"
	ReasonClientSuspected = "client_suspected"
	ReasonGlobalLimit     = "global_send_limit"
)

// Status sugeridos ao adapter HTTP (mesmos valores de net/http).
const (
	StatusOK              = 200
	StatusBadRequest      = 400
	StatusTooManyRequests = 429
	StatusBadGateway      = 502
	StatusUnavailable     = 503
)

type OutcomeKind string

const (
	OutcomeBlocked     OutcomeKind = "blocked"
	OutcomeHoneypot    OutcomeKind = "honeypot"
	OutcomeDuplicate   OutcomeKind = "duplicate"
	OutcomeQuarantined OutcomeKind = "quarantined"
	OutcomeSkipped     OutcomeKind = "skipped"
	OutcomeSent        OutcomeKind = "sent"
	OutcomeFailed      OutcomeKind = "failed"
)

// Outcome é o estado terminal de uma submissão.
//
// Ele é propositalmente "agnóstico de HTTP" no formato, mas carrega o status
// sugerido para que o adapter não precise reinterpretar cada ramo.
type Outcome struct {
	Kind   OutcomeKind
	Status int
	// Reason identifica o ramo (ex: "ip_rate_limit", "captcha_transient").
	Reason string
	// Error é a mensagem segura para o cliente quando Status != 200.
	Error string

	Estimate          int64
	FormattedEstimate string

	// RetryAfter só é preenchido em bloqueios por rate limit.
	RetryAfter time.Duration
	Verdict    Verdict
}

func (o Outcome) OK() bool { return o.Status == StatusOK }
