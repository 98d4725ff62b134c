package application

import (
	"strings"
	"time"

	"lead-gateway/intake/domain"
)

// SuspicionPolicy agrega sinais heurísticos em um veredicto de quarentena.
// Submissões suspeitas não são rejeitadas: vão para o canal de quarentena.
type SuspicionPolicy struct {
	FastSubmit    time.Duration
	MaxOpenWindow time.Duration
}

// Evaluate monta os motivos na ordem: fast_submit, stale_form, client_suspected, global_send_limit.
// globalAllowed só é consultado se nenhum outro motivo apareceu.
func (p SuspicionPolicy) Evaluate(delta time.Duration, clientSuspected bool, clientReason string, globalAllowed func() bool) domain.Verdict {
	var v domain.Verdict

	if p.FastSubmit > 0 && delta < p.FastSubmit {
		v = v.Add(domain.ReasonFastSubmit)
	}
	if p.MaxOpenWindow > 0 && delta > p.MaxOpenWindow {
		v = v.Add(domain.ReasonStaleForm)
	}
	if clientSuspected {
		if r := sanitizeReason(clientReason); r != "" {
			v = v.Add(domain.ReasonClientSuspected + ":" + r)
		} else {
			v = v.Add(domain.ReasonClientSuspected)
		}
	}
	if len(v) == 0 && globalAllowed != nil && !globalAllowed() {
		v = v.Add(domain.ReasonGlobalLimit)
	}
	return v
}

// sanitizeReason mantém só [a-z0-9_-], até 40 caracteres.
func sanitizeReason(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if b.Len() >= 40 {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
