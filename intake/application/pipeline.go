package application

import (
	"context"
	"strings"
	"time"

	"lead-gateway/intake/domain"

	"github.com/rs/zerolog"
)

const globalKey = "global"

// Pipeline é o caso de uso de /api/cost-estimate: aplica as verificações
// anti-abuso em ordem fixa e decide entre bloquear, descartar em silêncio,
// enviar para quarentena ou enviar para o canal principal.
//
// Todo estado compartilhado fica nos stores injetados (limiters, dedup, stats);
// uma instância nova por teste garante isolamento.
type Pipeline struct {
	IPLimiter     domain.WindowLimiter
	PhoneLimiter  domain.WindowLimiter
	GlobalLimiter domain.WindowLimiter
	Dedup         domain.DuplicateChecker
	Timing        TimingValidator
	Suspicion     SuspicionPolicy

	Captcha         domain.CaptchaVerifier
	CaptchaRequired bool

	Notifier   domain.Notifier
	Gate       DeliveryGate
	Estimates  domain.Channel
	Quarantine domain.Channel

	Stats   domain.StatsStore
	Metrics domain.MetricsReader
	Hasher  Hasher

	Clock    func() time.Time
	Location *time.Location
	Logger   zerolog.Logger
}

// submissionTrace acumula o que todo evento de log terminal carrega.
type submissionTrace struct {
	logger    zerolog.Logger
	ipHash    string
	phoneHash string
	ua        string
}

func (p *Pipeline) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}

// Submit executa o pipeline completo para uma submissão. Nunca devolve erro:
// o desfecho (inclusive falhas de infraestrutura) vem em domain.Outcome.
func (p *Pipeline) Submit(ctx context.Context, sub domain.Submission) domain.Outcome {
	now := p.now()
	tr := submissionTrace{
		logger: loggerFrom(ctx, p.Logger),
		ipHash: p.Hasher.Hash(sub.IP),
		ua:     truncateRunes(sub.UserAgent, 160),
	}

	if !sub.Consent {
		return p.finish(ctx, tr, blocked(domain.StatusBadRequest, "consent_required", "Consent is required"), nil)
	}

	phone, err := NormalizePhone(sub.Phone)
	if err != nil {
		return p.finish(ctx, tr, blocked(domain.StatusBadRequest, "invalid_phone", "Invalid phone"), nil)
	}
	tr.phoneHash = p.Hasher.Hash(phone)

	area := RoundArea(sub.Area)
	estimate := Estimate(sub.Floors, area, sub.PackageType)
	success := func(kind domain.OutcomeKind, reason string) domain.Outcome {
		return domain.Outcome{
			Kind:              kind,
			Status:            domain.StatusOK,
			Reason:            reason,
			Estimate:          estimate,
			FormattedEstimate: FormatRubles(estimate),
		}
	}

	if strings.TrimSpace(sub.Honeypot) != "" {
		return p.finish(ctx, tr, success(domain.OutcomeHoneypot, "honeypot"), nil)
	}

	if out, ok := p.checkCaptcha(ctx, sub); !ok {
		return p.finish(ctx, tr, out, nil)
	}

	if res := check(p.IPLimiter, tr.ipHash, now); !res.Allowed {
		return p.finish(ctx, tr, rateLimited("ip_rate_limit", res.Rule), ruleDetails(res.Rule))
	}
	if res := check(p.PhoneLimiter, tr.phoneHash, now); !res.Allowed {
		return p.finish(ctx, tr, rateLimited("phone_rate_limit", res.Rule), ruleDetails(res.Rule))
	}

	if p.Dedup != nil {
		fp := p.Hasher.Fingerprint(phone, string(sub.PackageType), area, sub.Floors, sub.Action)
		if p.Dedup.IsDuplicate(fp, now) {
			return p.finish(ctx, tr, success(domain.OutcomeDuplicate, "duplicate"), nil)
		}
	}

	timing := p.Timing.Validate(sub.OpenedAt, sub.SubmittedAt, now)
	if !timing.Valid {
		return p.finish(ctx, tr, blocked(domain.StatusBadRequest, timing.Reason, "Invalid timing"), nil)
	}

	verdict := p.Suspicion.Evaluate(timing.SubmitDelta, sub.ClientSuspected, sub.ClientSuspectedReason, func() bool {
		return check(p.GlobalLimiter, globalKey, now).Allowed
	})

	channel, destination, kind := p.Estimates, "primary", domain.OutcomeSent
	if verdict.Quarantined() {
		channel, destination, kind = p.Quarantine, "quarantine", domain.OutcomeQuarantined
	}
	details := func(e *zerolog.Event) {
		e.Str("destination", destination).
			Strs("verdict", verdict).
			Int64("submit_delta_ms", timing.SubmitDelta.Milliseconds())
	}

	if !channel.Configured() || p.Notifier == nil {
		out := success(domain.OutcomeSkipped, "missing_credentials")
		out.Verdict = verdict
		return p.finish(ctx, tr, out, details)
	}

	text := estimateText{
		Name:      sub.Name,
		Phone:     phone,
		Floors:    sub.Floors,
		Area:      area,
		Package:   sub.PackageType,
		Formatted: FormatRubles(estimate),
		Verdict:   verdict,
		At:        p.inLocation(now),
	}.String()

	// Entrega admitida não depende mais da conexão do visitante.
	res, acquired := p.Gate.Send(context.WithoutCancel(ctx), p.Notifier, domain.Message{Channel: channel, Text: text})
	if !acquired {
		out := failed("delivery_saturated")
		out.Verdict = verdict
		return p.finish(ctx, tr, out, details)
	}
	if !res.OK {
		out := failed("delivery_failed")
		out.Verdict = verdict
		return p.finish(ctx, tr, out, func(e *zerolog.Event) {
			details(e)
			e.Int("upstream_status", res.Status).Int("attempts", res.Attempts)
		})
	}

	out := success(kind, destination)
	out.Verdict = verdict
	return p.finish(ctx, tr, out, func(e *zerolog.Event) {
		details(e)
		e.Int("attempts", res.Attempts)
	})
}

func (p *Pipeline) checkCaptcha(ctx context.Context, sub domain.Submission) (domain.Outcome, bool) {
	if !p.CaptchaRequired {
		return domain.Outcome{}, true
	}
	if strings.TrimSpace(sub.CaptchaToken) == "" {
		return blocked(domain.StatusBadRequest, "captcha_required", "Captcha is required"), false
	}
	if p.Captcha == nil {
		return blocked(domain.StatusUnavailable, "captcha_misconfigured", "Captcha service unavailable"), false
	}

	res := p.Captcha.Verify(ctx, sub.CaptchaToken, sub.IP)
	switch {
	case res.Misconfigured:
		return blocked(domain.StatusUnavailable, "captcha_misconfigured", "Captcha service unavailable"), false
	case res.Transient:
		return blocked(domain.StatusUnavailable, "captcha_transient", "Captcha service unavailable"), false
	case !res.OK:
		return blocked(domain.StatusBadRequest, "captcha_failed", "Captcha verification failed"), false
	}
	return domain.Outcome{}, true
}

// finish grava o evento de stats e emite exatamente um log por desfecho.
func (p *Pipeline) finish(ctx context.Context, tr submissionTrace, out domain.Outcome, details func(*zerolog.Event)) domain.Outcome {
	if p.Stats != nil {
		err := p.Stats.Record(ctx, domain.StatsEvent{Kind: out.Kind, Reason: out.Reason, At: p.now()})
		if err != nil {
			tr.logger.Warn().Err(err).Msg("stats record failed")
		}
	}

	var ev *zerolog.Event
	switch out.Kind {
	case domain.OutcomeFailed:
		ev = tr.logger.Error()
	case domain.OutcomeSkipped:
		ev = tr.logger.Error().Bool("operator_action", true)
	case domain.OutcomeBlocked, domain.OutcomeHoneypot, domain.OutcomeDuplicate, domain.OutcomeQuarantined:
		ev = tr.logger.Warn()
	default:
		ev = tr.logger.Info()
	}

	ev = ev.Str("event", "cost_estimate_"+string(out.Kind)).
		Str("reason", out.Reason).
		Int("status", out.Status).
		Str("ip_hash", tr.ipHash).
		Str("phone_hash", tr.phoneHash).
		Str("ua", tr.ua)
	if p.Metrics != nil {
		ev = ev.Dict("metrics", metricsDict(p.Metrics.Snapshot()))
	}
	if details != nil {
		details(ev)
	}
	ev.Msg("cost estimate " + string(out.Kind))
	return out
}

func (p *Pipeline) inLocation(t time.Time) time.Time {
	if p.Location != nil {
		return t.In(p.Location)
	}
	return t
}

func check(l domain.WindowLimiter, key string, now time.Time) domain.CheckResult {
	if l == nil {
		return domain.CheckResult{Allowed: true}
	}
	return l.Check(key, now)
}

func blocked(status int, reason, msg string) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeBlocked, Status: status, Reason: reason, Error: msg}
}

func rateLimited(reason string, rule domain.RateLimitRule) domain.Outcome {
	out := blocked(domain.StatusTooManyRequests, reason, "Too many requests")
	out.RetryAfter = rule.Window
	return out
}

func failed(reason string) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeFailed, Status: domain.StatusBadGateway, Reason: reason, Error: "Failed to deliver message"}
}

func ruleDetails(rule domain.RateLimitRule) func(*zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Str("rule", rule.String())
	}
}

func metricsDict(m domain.Metrics) *zerolog.Event {
	return zerolog.Dict().
		Int64("total", m.Total).
		Int64("sent", m.Sent).
		Int64("quarantine", m.Quarantine).
		Int64("blocked", m.Blocked).
		Int64("dedup", m.Dedup).
		Int64("skipped", m.Skipped).
		Int64("failed", m.Failed)
}

// loggerFrom prefere o logger da requisição (com req_id) quando houver.
func loggerFrom(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}

func truncateRunes(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}
