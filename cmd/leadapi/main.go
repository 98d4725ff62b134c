package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"lead-gateway/intake"
	"lead-gateway/intake/application"
	"lead-gateway/intake/domain"
	"lead-gateway/intake/infra"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/cenkalti/backoff.v1"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "leadapi").Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg(".env load failed")
	}

	cfg, err := readConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	logger = logger.Level(cfg.logLevel)

	salt := cfg.piiSalt
	if salt == "" {
		salt = randomSalt()
		logger.Warn().Msg("PII_SALT not set; using a random salt, hashes will change on restart")
	}
	hasher := application.NewHasher(salt)

	memStats := infra.NewMemoryStatsStore()
	var stats domain.StatsStore = memStats
	if cfg.statsRedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		if err := pingRedis(rdb, logger); err != nil {
			logger.Fatal().Err(err).Msg("redis stats ping error")
		}
		stats = infra.TeeStats{
			memStats,
			infra.NewRedisStatsStore(rdb,
				infra.WithStatsPrefix(cfg.statsRedisPrefix),
				infra.WithStatsTTL(cfg.statsRedisTTL),
				infra.WithStatsBucket(cfg.statsRedisBucket),
			),
		}
	}

	sender := infra.NewTelegramSender(cfg.delivery, logger, infra.WithAPIBase(cfg.telegramAPIBase))
	deliveries := infra.NewChanPool(cfg.deliveryMaxInflight)
	gate := application.DeliveryGate{
		Pool:           deliveries,
		AcquireTimeout: cfg.deliveryAcquireTimeout,
	}
	captcha := infra.NewCaptchaVerifier(cfg.captcha, nil, logger)

	ipLimiter := infra.NewSlidingWindow(cfg.ipRules, infra.WithMaxKeys(cfg.limiterMaxKeys))
	phoneLimiter := infra.NewSlidingWindow(cfg.phoneRules, infra.WithMaxKeys(cfg.limiterMaxKeys))
	globalLimiter := infra.NewSlidingWindow(cfg.globalRules)

	pipeline := &application.Pipeline{
		IPLimiter:     ipLimiter,
		PhoneLimiter:  phoneLimiter,
		GlobalLimiter: globalLimiter,
		Dedup:         infra.NewDedupStore(cfg.dedupWindow, cfg.dedupMaxEntries),
		Timing:        application.TimingValidator{FutureSkew: cfg.futureSkew},
		Suspicion:     application.SuspicionPolicy{FastSubmit: cfg.fastSubmit, MaxOpenWindow: cfg.maxOpenWindow},

		Captcha:         captcha,
		CaptchaRequired: captcha.Enabled(),

		Notifier:   sender,
		Gate:       gate,
		Estimates:  cfg.estimateChannel,
		Quarantine: cfg.quarantineChannel,

		Stats:   stats,
		Metrics: memStats,
		Hasher:  hasher,

		Location: cfg.location,
		Logger:   logger.With().Str("component", "pipeline").Logger(),
	}
	leads := &application.LeadService{
		Notifier: sender,
		Gate:     gate,
		Channel:  cfg.leadChannel,
		Hasher:   hasher,
		Location: cfg.location,
		Logger:   logger.With().Str("component", "leads").Logger(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	throttle := infra.NewPerMinuteStore(cfg.httpRatePerMinute, cfg.httpRateBurst)
	throttle.StartJanitor(ctx)

	h := intake.NewRouter(intake.Options{
		Pipeline:           pipeline,
		Leads:              leads,
		Metrics:            memStats,
		Reasons:            memStats,
		Deliveries:         deliveries,
		Throttle:           throttle,
		ThrottleRetryAfter: throttle.RetryAfter(),
		TrustXForwardedFor: cfg.trustXFF,
		AllowedOrigins:     cfg.allowedOrigins,
		Hasher:             hasher,
		Logger:             logger,
	})

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.listenAddr).
		Bool("trust_xff", cfg.trustXFF).
		Strs("allowed_origins", cfg.allowedOrigins).
		Bool("lead_channel", cfg.leadChannel.Configured()).
		Bool("estimate_channel", cfg.estimateChannel.Configured()).
		Bool("quarantine_channel", cfg.quarantineChannel.Configured()).
		Bool("captcha", captcha.Enabled()).
		Bool("stats_redis", cfg.statsRedisEnabled).
		Int("http_rate_per_minute", cfg.httpRatePerMinute).
		Int("delivery_max_inflight", cfg.deliveryMaxInflight).
		Strs("ip_rules", ruleStrings(ipLimiter)).
		Strs("phone_rules", ruleStrings(phoneLimiter)).
		Strs("global_rules", ruleStrings(globalLimiter)).
		Msg("leadapi listening")
	if !cfg.leadChannel.Configured() || !cfg.estimateChannel.Configured() {
		logger.Error().Bool("operator_action", true).Msg("telegram credentials missing; submissions will be accepted but not delivered")
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// pingRedis tenta o PING com backoff exponencial por até 15s antes de desistir.
func pingRedis(rdb *redis.Client, logger zerolog.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 3 * time.Second
	b.MaxElapsedTime = 15 * time.Second

	op := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return rdb.Ping(ctx).Err()
	}
	notify := func(err error, next time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", next).Msg("redis stats ping failed")
	}
	return backoff.RetryNotify(op, b, notify)
}

// ruleStrings devolve as regras efetivas do limiter para o log de startup.
func ruleStrings(l *infra.SlidingWindow) []string {
	rules := l.Rules()
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.String())
	}
	return out
}

func randomSalt() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().String()
	}
	return hex.EncodeToString(buf)
}
