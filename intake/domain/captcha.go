package domain

import "context"

// CaptchaResult descreve o resultado da verificação de um token.
//
//   - Skipped: verificação desabilitada por configuração (OK=true)
//   - Misconfigured: habilitada sem secret (erro do operador, 503)
//   - Transient: timeout/erro de rede/non-2xx do provedor (503)
//   - OK=false sem flags: token rejeitado (400)
type CaptchaResult struct {
	OK            bool
	Skipped       bool
	Misconfigured bool
	Transient     bool
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, token, ip string) CaptchaResult
}
