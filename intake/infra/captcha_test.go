package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lead-gateway/intake/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newCaptchaServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("secret") != "s3cr3t" || r.PostForm.Get("response") != "tok" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestCaptchaVerifier_DisabledSkips(t *testing.T) {
	v := NewCaptchaVerifier(CaptchaConfig{}, nil, zerolog.Nop())
	assert.Equal(t, domain.CaptchaResult{OK: true, Skipped: true}, v.Verify(context.Background(), "", ""))
}

func TestCaptchaVerifier_MissingSecretIsMisconfigured(t *testing.T) {
	v := NewCaptchaVerifier(CaptchaConfig{Enabled: true}, nil, zerolog.Nop())
	assert.Equal(t, domain.CaptchaResult{Misconfigured: true}, v.Verify(context.Background(), "tok", ""))
}

func TestCaptchaVerifier_Outcomes(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		hostname string
		want     domain.CaptchaResult
	}{
		{"success", 200, `{"success":true,"hostname":"odi.example"}`, "", domain.CaptchaResult{OK: true}},
		{"hostname match", 200, `{"success":true,"hostname":"ODI.example"}`, "odi.example", domain.CaptchaResult{OK: true}},
		{"hostname mismatch", 200, `{"success":true,"hostname":"evil.example"}`, "odi.example", domain.CaptchaResult{}},
		{"rejected", 200, `{"success":false,"error-codes":["invalid-input-response"]}`, "", domain.CaptchaResult{}},
		{"provider 5xx", 502, ``, "", domain.CaptchaResult{Transient: true}},
		{"bad body", 200, `not json`, "", domain.CaptchaResult{Transient: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newCaptchaServer(t, tc.status, tc.body)
			defer srv.Close()

			v := NewCaptchaVerifier(CaptchaConfig{
				Enabled:          true,
				Secret:           "s3cr3t",
				VerifyURL:        srv.URL,
				ExpectedHostname: tc.hostname,
			}, srv.Client(), zerolog.Nop())
			assert.Equal(t, tc.want, v.Verify(context.Background(), "tok", "10.0.0.1"))
		})
	}
}

func TestCaptchaVerifier_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	v := NewCaptchaVerifier(CaptchaConfig{
		Enabled:   true,
		Secret:    "s3cr3t",
		VerifyURL: srv.URL,
		Timeout:   20 * time.Millisecond,
	}, srv.Client(), zerolog.Nop())
	assert.Equal(t, domain.CaptchaResult{Transient: true}, v.Verify(context.Background(), "tok", ""))
}
