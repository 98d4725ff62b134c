package infra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lead-gateway/intake/domain"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const DefaultCaptchaVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type CaptchaConfig struct {
	Enabled          bool
	Secret           string
	VerifyURL        string
	ExpectedHostname string
	Timeout          time.Duration
}

// CaptchaVerifier valida tokens em um endpoint estilo siteverify (Turnstile/reCAPTCHA).
// Uma única tentativa, com timeout; não há retry.
type CaptchaVerifier struct {
	cfg    CaptchaConfig
	client *http.Client
	logger zerolog.Logger
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

func NewCaptchaVerifier(cfg CaptchaConfig, client *http.Client, logger zerolog.Logger) *CaptchaVerifier {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultCaptchaVerifyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &CaptchaVerifier{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "captcha").Logger(),
	}
}

func (v *CaptchaVerifier) Enabled() bool { return v != nil && v.cfg.Enabled }

// Verify implementa domain.CaptchaVerifier.
func (v *CaptchaVerifier) Verify(ctx context.Context, token, ip string) domain.CaptchaResult {
	if !v.Enabled() {
		return domain.CaptchaResult{OK: true, Skipped: true}
	}
	if strings.TrimSpace(v.cfg.Secret) == "" {
		v.logger.Error().Msg("captcha enabled without secret")
		return domain.CaptchaResult{Misconfigured: true}
	}

	form := url.Values{}
	form.Set("secret", v.cfg.Secret)
	form.Set("response", token)
	if ip != "" {
		form.Set("remoteip", ip)
	}

	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Error().Err(err).Msg("captcha request build failed")
		return domain.CaptchaResult{Misconfigured: true}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn().Str("kind", transportErrorKind(err)).Msg("captcha verify unreachable")
		return domain.CaptchaResult{Transient: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.logger.Warn().Int("status", resp.StatusCode).Msg("captcha verify non-2xx")
		return domain.CaptchaResult{Transient: true}
	}

	var body siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		v.logger.Warn().Err(err).Msg("captcha verify bad body")
		return domain.CaptchaResult{Transient: true}
	}

	if !body.Success {
		v.logger.Info().Strs("error_codes", body.ErrorCodes).Msg("captcha rejected")
		return domain.CaptchaResult{}
	}
	if want := v.cfg.ExpectedHostname; want != "" && !strings.EqualFold(body.Hostname, want) {
		v.logger.Info().Str("hostname", body.Hostname).Msg("captcha hostname mismatch")
		return domain.CaptchaResult{}
	}
	return domain.CaptchaResult{OK: true}
}

// transportErrorKind reduz um erro de transporte a uma categoria.
// A mensagem original não é logada porque *url.Error inclui a URL (e, no Telegram, o token).
func transportErrorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return "timeout"
	}
	return "transport"
}
