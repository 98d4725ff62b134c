package infra

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"lead-gateway/intake/domain"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const DefaultTelegramAPIBase = "https://api.telegram.org"

// TelegramSender entrega mensagens via Bot API (sendMessage) com timeout por
// tentativa, retry em 429/5xx/erro de transporte e backoff (Retry-After ou exponencial).
//
// É o único componente que fala com o provedor de mensagens. O token faz parte
// da URL, então nem a URL nem mensagens de *url.Error são logadas.
type TelegramSender struct {
	baseURL string
	client  *http.Client
	policy  domain.RetryPolicy
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
	logger  zerolog.Logger
}

type TelegramOption func(*TelegramSender)

func WithAPIBase(base string) TelegramOption {
	return func(s *TelegramSender) { s.baseURL = strings.TrimRight(base, "/") }
}

func WithHTTPClient(c *http.Client) TelegramOption {
	return func(s *TelegramSender) { s.client = c }
}

// WithSleep troca a espera entre tentativas (testes usam uma função que só registra).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) TelegramOption {
	return func(s *TelegramSender) { s.sleep = fn }
}

func WithSenderClock(now func() time.Time) TelegramOption {
	return func(s *TelegramSender) { s.now = now }
}

func NewTelegramSender(policy domain.RetryPolicy, logger zerolog.Logger, opts ...TelegramOption) *TelegramSender {
	def := domain.DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.Timeout <= 0 {
		policy.Timeout = def.Timeout
	}
	if policy.BaseBackoff < 0 {
		policy.BaseBackoff = 0
	}

	s := &TelegramSender{
		baseURL: DefaultTelegramAPIBase,
		client:  &http.Client{},
		policy:  policy,
		sleep:   sleepContext,
		now:     time.Now,
		logger:  logger.With().Str("component", "telegram").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiErrorBody struct {
	Description string `json:"description"`
}

// Send implementa domain.Notifier.
func (s *TelegramSender) Send(ctx context.Context, msg domain.Message) domain.DeliveryResult {
	if !msg.Channel.Configured() {
		return domain.DeliveryResult{Skipped: true}
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                msg.Channel.ChatID,
		Text:                  msg.Text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("telegram payload encode failed")
		return domain.DeliveryResult{}
	}
	endpoint := s.baseURL + "/bot" + msg.Channel.Token + "/sendMessage"

	res := domain.DeliveryResult{}
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		res.Attempts = attempt

		status, retryAfter, kind := s.attempt(ctx, endpoint, body)
		res.Status = status
		if kind == "" && status >= 200 && status <= 299 {
			res.OK = true
			return res
		}

		ev := s.logger.Warn().Int("attempt", attempt).Int("max_attempts", s.policy.MaxAttempts)
		if kind != "" {
			ev = ev.Str("kind", kind)
		} else {
			ev = ev.Int("status", status)
		}
		ev.Msg("telegram delivery attempt failed")

		if kind == "" && !domain.Retryable(status) {
			return res
		}
		if ctx.Err() != nil || attempt == s.policy.MaxAttempts {
			return res
		}

		delay := s.policy.Delay(attempt, status, retryAfter, s.now())
		if err := s.sleep(ctx, delay); err != nil {
			return res
		}
	}
	return res
}

// attempt faz uma tentativa. kind != "" indica erro de transporte (timeout ou outro).
func (s *TelegramSender) attempt(ctx context.Context, endpoint string, body []byte) (status int, retryAfter, kind string) {
	ctx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, "", "request"
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", transportErrorKind(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiErrorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Description != "" {
			s.logger.Debug().Int("status", resp.StatusCode).Str("description", truncate(apiErr.Description, 200)).Msg("telegram api error")
		}
	} else {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	}
	return resp.StatusCode, resp.Header.Get("Retry-After"), ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
