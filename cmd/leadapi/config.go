package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"lead-gateway/intake/domain"
	"lead-gateway/intake/infra"

	"github.com/rs/zerolog"
)

type config struct {
	listenAddr     string
	trustXFF       bool
	allowedOrigins []string
	logLevel       zerolog.Level
	location       *time.Location
	piiSalt        string

	telegramAPIBase   string
	leadChannel       domain.Channel
	estimateChannel   domain.Channel
	quarantineChannel domain.Channel

	delivery               domain.RetryPolicy
	deliveryMaxInflight    int
	deliveryAcquireTimeout time.Duration

	captcha infra.CaptchaConfig

	ipRules         []domain.RateLimitRule
	phoneRules      []domain.RateLimitRule
	globalRules     []domain.RateLimitRule
	limiterMaxKeys  int
	dedupWindow     time.Duration
	dedupMaxEntries int
	fastSubmit      time.Duration
	maxOpenWindow   time.Duration
	futureSkew      time.Duration

	httpRatePerMinute int
	httpRateBurst     int

	statsRedisEnabled  bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsRedisPrefix   string
	statsRedisTTL      time.Duration
	statsRedisBucket   string
}

func readConfig() (config, error) {
	cfg := config{}
	env := &envReader{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":"+getenvDefault("PORT", "8080"))
	cfg.trustXFF = env.boolDefault("TRUST_XFF", false)
	cfg.allowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	cfg.piiSalt = os.Getenv("PII_SALT")

	lvl, err := zerolog.ParseLevel(strings.ToLower(getenvDefault("LOG_LEVEL", "info")))
	if err != nil {
		return config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.logLevel = lvl

	loc, err := time.LoadLocation(getenvDefault("TIMEZONE", "Europe/Moscow"))
	if err != nil {
		return config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.location = loc

	// canal de leads; orçamentos e quarentena herdam bot/chat quando não configurados
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	estimateChat := getenvDefault("TELEGRAM_ESTIMATE_CHAT_ID", chatID)
	cfg.telegramAPIBase = getenvDefault("TELEGRAM_API_BASE", infra.DefaultTelegramAPIBase)
	cfg.leadChannel = domain.Channel{Token: botToken, ChatID: chatID}
	cfg.estimateChannel = domain.Channel{Token: botToken, ChatID: estimateChat}
	cfg.quarantineChannel = domain.Channel{
		Token:  getenvDefault("TELEGRAM_QUARANTINE_BOT_TOKEN", botToken),
		ChatID: getenvDefault("TELEGRAM_QUARANTINE_CHAT_ID", estimateChat),
	}

	def := domain.DefaultRetryPolicy()
	cfg.delivery = domain.RetryPolicy{
		MaxAttempts: env.intDefault("DELIVERY_MAX_ATTEMPTS", def.MaxAttempts),
		Timeout:     env.durationDefault("DELIVERY_TIMEOUT", def.Timeout),
		BaseBackoff: env.durationDefault("DELIVERY_BASE_BACKOFF", def.BaseBackoff),
		MaxDelay:    env.durationDefault("DELIVERY_MAX_BACKOFF", def.MaxDelay),
	}
	cfg.deliveryMaxInflight = env.intDefault("DELIVERY_MAX_INFLIGHT", 8)
	cfg.deliveryAcquireTimeout = env.durationDefault("DELIVERY_ACQUIRE_TIMEOUT", 5*time.Second)

	cfg.captcha = infra.CaptchaConfig{
		Enabled:          env.boolDefault("CAPTCHA_ENABLED", false),
		Secret:           os.Getenv("CAPTCHA_SECRET"),
		VerifyURL:        getenvDefault("CAPTCHA_VERIFY_URL", infra.DefaultCaptchaVerifyURL),
		ExpectedHostname: os.Getenv("CAPTCHA_EXPECTED_HOSTNAME"),
		Timeout:          env.durationDefault("CAPTCHA_TIMEOUT", 5*time.Second),
	}

	if cfg.ipRules, err = domain.ParseRules(getenvDefault("RATE_IP_RULES", "1m:3,1h:10,24h:30")); err != nil {
		return config{}, fmt.Errorf("invalid RATE_IP_RULES: %w", err)
	}
	if cfg.phoneRules, err = domain.ParseRules(getenvDefault("RATE_PHONE_RULES", "10m:2,24h:5")); err != nil {
		return config{}, fmt.Errorf("invalid RATE_PHONE_RULES: %w", err)
	}
	if cfg.globalRules, err = domain.ParseRules(getenvDefault("RATE_GLOBAL_RULES", "1m:10,1h:60")); err != nil {
		return config{}, fmt.Errorf("invalid RATE_GLOBAL_RULES: %w", err)
	}
	cfg.limiterMaxKeys = env.intDefault("LIMITER_MAX_KEYS", 10_000)
	cfg.dedupWindow = env.durationDefault("DEDUP_WINDOW", 30*time.Minute)
	cfg.dedupMaxEntries = env.intDefault("DEDUP_MAX_ENTRIES", 10_000)
	cfg.fastSubmit = time.Duration(env.intDefault("FAST_SUBMIT_MS", 4000)) * time.Millisecond
	cfg.maxOpenWindow = env.durationDefault("MAX_OPEN_WINDOW", 2*time.Hour)
	cfg.futureSkew = env.durationDefault("FUTURE_SKEW", 2*time.Minute)

	cfg.httpRatePerMinute = env.intDefault("HTTP_RATE_PER_MINUTE", 15)
	cfg.httpRateBurst = env.intDefault("HTTP_RATE_BURST", cfg.httpRatePerMinute)

	cfg.statsRedisEnabled = env.boolDefault("STATS_REDIS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = env.intDefault("STATS_REDIS_DB", 0)
	cfg.statsRedisPrefix = getenvDefault("STATS_REDIS_PREFIX", "intake:stats")
	cfg.statsRedisTTL = env.durationDefault("STATS_REDIS_TTL", 24*time.Hour)
	cfg.statsRedisBucket = strings.ToLower(strings.TrimSpace(getenvDefault("STATS_REDIS_BUCKET", "minute")))

	if err := env.err(); err != nil {
		return config{}, err
	}

	if cfg.statsRedisEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_REDIS_ENABLED=true")
	}
	if cfg.statsRedisBucket != "minute" && cfg.statsRedisBucket != "none" {
		return config{}, fmt.Errorf("invalid STATS_REDIS_BUCKET=%q: want minute or none", cfg.statsRedisBucket)
	}

	positive := []struct {
		name string
		ok   bool
	}{
		{"DELIVERY_MAX_ATTEMPTS", cfg.delivery.MaxAttempts > 0},
		{"DELIVERY_TIMEOUT", cfg.delivery.Timeout > 0},
		{"DELIVERY_MAX_INFLIGHT", cfg.deliveryMaxInflight > 0},
		{"LIMITER_MAX_KEYS", cfg.limiterMaxKeys > 0},
		{"DEDUP_WINDOW", cfg.dedupWindow > 0},
		{"DEDUP_MAX_ENTRIES", cfg.dedupMaxEntries > 0},
		{"FAST_SUBMIT_MS", cfg.fastSubmit > 0},
		{"MAX_OPEN_WINDOW", cfg.maxOpenWindow > 0},
		{"HTTP_RATE_PER_MINUTE", cfg.httpRatePerMinute > 0},
		{"HTTP_RATE_BURST", cfg.httpRateBurst > 0},
	}
	for _, p := range positive {
		if !p.ok {
			return config{}, fmt.Errorf("%s must be > 0", p.name)
		}
	}
	if cfg.delivery.BaseBackoff < 0 || cfg.delivery.MaxDelay < 0 || cfg.futureSkew < 0 {
		return config{}, errors.New("DELIVERY_BASE_BACKOFF, DELIVERY_MAX_BACKOFF and FUTURE_SKEW must be >= 0")
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envReader lê variáveis tipadas e acumula erros de parse: valor presente
// e inválido é erro de startup, nunca o padrão.
type envReader struct {
	errs []error
}

func (e *envReader) intDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s=%q: want an integer", k, v))
		return def
	}
	return i
}

func (e *envReader) boolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s=%q: want true or false", k, v))
		return def
	}
	return b
}

func (e *envReader) durationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s=%q: want a duration like 30s or 5m", k, v))
		return def
	}
	return d
}

func (e *envReader) err() error { return errors.Join(e.errs...) }
