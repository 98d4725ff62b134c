package application

import (
	"context"
	"strings"
	"time"

	"lead-gateway/intake/domain"

	"github.com/rs/zerolog"
)

// LeadService envia pedidos de contato simples: consentimento, honeypot e entrega.
// Sem rate limit próprio nem dedup (o throttle HTTP por IP continua valendo).
type LeadService struct {
	Notifier domain.Notifier
	Gate     DeliveryGate
	Channel  domain.Channel
	Hasher   Hasher

	Clock    func() time.Time
	Location *time.Location
	Logger   zerolog.Logger
}

func (s *LeadService) Submit(ctx context.Context, lead domain.Lead) domain.Outcome {
	logger := loggerFrom(ctx, s.Logger)
	now := time.Now()
	if s.Clock != nil {
		now = s.Clock()
	}
	if s.Location != nil {
		now = now.In(s.Location)
	}

	phoneHash := s.Hasher.Hash(strings.TrimSpace(lead.Phone))
	if normalized, err := NormalizePhone(lead.Phone); err == nil {
		phoneHash = s.Hasher.Hash(normalized)
	}
	log := func(ev *zerolog.Event, out domain.Outcome) domain.Outcome {
		ev.Str("event", "lead_"+string(out.Kind)).
			Str("reason", out.Reason).
			Int("status", out.Status).
			Str("ip_hash", s.Hasher.Hash(lead.IP)).
			Str("phone_hash", phoneHash).
			Str("project_id", lead.ProjectID).
			Bool("has_message", lead.Message != "").
			Msg("lead " + string(out.Kind))
		return out
	}

	if !lead.Consent {
		return log(logger.Warn(), blocked(domain.StatusBadRequest, "consent_required", "Consent is required"))
	}
	if strings.TrimSpace(lead.Honeypot) != "" {
		return log(logger.Warn(), domain.Outcome{Kind: domain.OutcomeHoneypot, Status: domain.StatusOK, Reason: "honeypot"})
	}
	if !s.Channel.Configured() || s.Notifier == nil {
		return log(logger.Error().Bool("operator_action", true),
			domain.Outcome{Kind: domain.OutcomeSkipped, Status: domain.StatusOK, Reason: "missing_credentials"})
	}

	res, acquired := s.Gate.Send(context.WithoutCancel(ctx), s.Notifier, domain.Message{Channel: s.Channel, Text: leadText(lead, now)})
	if !acquired {
		return log(logger.Error(), failed("delivery_saturated"))
	}
	if !res.OK {
		return log(logger.Error().Int("upstream_status", res.Status).Int("attempts", res.Attempts), failed("delivery_failed"))
	}
	return log(logger.Info().Int("attempts", res.Attempts), domain.Outcome{Kind: domain.OutcomeSent, Status: domain.StatusOK, Reason: "primary"})
}
