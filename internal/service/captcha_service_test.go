package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/secureport/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testCaptchaSecret = "s3cr3t-server-key"

func newSiteVerifyServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method want POST got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content-type want form got %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form failed: %v", err)
		}
		if r.PostForm.Get("secret") != testCaptchaSecret {
			t.Errorf("secret not forwarded")
		}
		if r.PostForm.Get("response") == "" {
			t.Errorf("response token not forwarded")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRemoteCaptcha(verifyURL string, client *http.Client) *CaptchaService {
	return NewCaptchaService(CaptchaSetting{
		Provider:  constants.CaptchaProviderRecaptcha,
		SiteKey:   "site-key",
		SecretKey: testCaptchaSecret,
		VerifyURL: verifyURL,
		TimeoutMS: 2000,
	}, client)
}

func TestCaptchaVerifySuccess(t *testing.T) {
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":true,"hostname":"secureport.example","challenge_ts":"2024-03-15T10:00:00Z"}`, nil)
	svc := newRemoteCaptcha(srv.URL, nil)

	outcome, err := svc.Verify(context.Background(), "token-1", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "secureport.example", outcome.Hostname)
}

func TestCaptchaVerifyForwardsRemoteIP(t *testing.T) {
	var remoteIP string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		remoteIP = r.PostForm.Get("remoteip")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	_, err := newRemoteCaptcha(srv.URL, nil).Verify(context.Background(), "token", "198.51.100.2")
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.2", remoteIP)
}

func TestCaptchaVerifyProviderRejects(t *testing.T) {
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":false,"error-codes":["invalid-input-response"]}`, nil)
	svc := newRemoteCaptcha(srv.URL, nil)

	outcome, err := svc.Verify(context.Background(), "bad-token", "")
	require.ErrorIs(t, err, ErrCaptchaInvalid)
	assert.False(t, outcome.Success)
	assert.Equal(t, []string{"invalid-input-response"}, outcome.ErrorCodes)
}

func TestCaptchaVerifyTransportFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "provider 5xx", status: http.StatusBadGateway, body: `oops`},
		{name: "malformed json", status: http.StatusOK, body: `{"success":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newSiteVerifyServer(t, tc.status, tc.body, nil)
			_, err := newRemoteCaptcha(srv.URL, nil).Verify(context.Background(), "token", "")
			require.ErrorIs(t, err, ErrCaptchaVerifyFailed)
			assert.NotContains(t, err.Error(), testCaptchaSecret)
		})
	}
}

func TestCaptchaVerifyTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	transport := &http.Transport{}
	svc := NewCaptchaService(CaptchaSetting{
		Provider:  constants.CaptchaProviderTurnstile,
		SiteKey:   "site-key",
		SecretKey: testCaptchaSecret,
		VerifyURL: srv.URL,
		TimeoutMS: 500,
	}, &http.Client{Transport: transport})

	start := time.Now()
	_, err := svc.Verify(context.Background(), "token", "")
	elapsed := time.Since(start)

	close(release)
	srv.Close()
	transport.CloseIdleConnections()

	require.ErrorIs(t, err, ErrCaptchaVerifyFailed)
	assert.NotContains(t, err.Error(), testCaptchaSecret)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestCaptchaVerifyMissingTokenSkipsProvider(t *testing.T) {
	var hits int32
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":true}`, &hits)

	_, err := newRemoteCaptcha(srv.URL, nil).Verify(context.Background(), "   ", "")
	require.ErrorIs(t, err, ErrCaptchaRequired)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestCaptchaVerifyMissingSecret(t *testing.T) {
	svc := NewCaptchaService(CaptchaSetting{Provider: constants.CaptchaProviderRecaptcha, SiteKey: "site"}, nil)
	_, err := svc.Verify(context.Background(), "token", "")
	require.ErrorIs(t, err, ErrCaptchaConfigInvalid)
}

func TestCaptchaVerifyMinScore(t *testing.T) {
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":true,"score":0.2,"action":"contact"}`, nil)
	svc := NewCaptchaService(CaptchaSetting{
		Provider:  constants.CaptchaProviderRecaptcha,
		SiteKey:   "site-key",
		SecretKey: testCaptchaSecret,
		VerifyURL: srv.URL,
		MinScore:  0.5,
	}, nil)

	outcome, err := svc.Verify(context.Background(), "token", "")
	require.ErrorIs(t, err, ErrCaptchaInvalid)
	assert.Contains(t, outcome.ErrorCodes, "score-too-low")
}

func TestCaptchaVerifyIsNotDeduplicated(t *testing.T) {
	var hits int32
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":true}`, &hits)
	svc := newRemoteCaptcha(srv.URL, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.Verify(context.Background(), "same-token", "203.0.113.7")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestImageCaptchaRoundTrip(t *testing.T) {
	svc := NewCaptchaService(CaptchaSetting{Provider: constants.CaptchaProviderImage}, nil)

	challenge, err := svc.GenerateImageChallenge()
	require.NoError(t, err)
	require.NotEmpty(t, challenge.CaptchaID)
	assert.True(t, strings.HasPrefix(challenge.ImageBase64, "data:image/png;base64,"))

	answer := svc.store().Get(challenge.CaptchaID, false)
	require.NotEmpty(t, answer)

	outcome, err := svc.Verify(context.Background(), ImageToken(challenge.CaptchaID, answer), "")
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	_, err = svc.Verify(context.Background(), ImageToken(challenge.CaptchaID, answer), "")
	require.ErrorIs(t, err, ErrCaptchaInvalid, "image answers are single use")
}

func TestImageChallengeRequiresImageProvider(t *testing.T) {
	svc := NewCaptchaService(CaptchaSetting{Provider: constants.CaptchaProviderRecaptcha}, nil)
	_, err := svc.GenerateImageChallenge()
	require.ErrorIs(t, err, ErrCaptchaConfigInvalid)
}

func TestNormalizeCaptchaSetting(t *testing.T) {
	cases := []struct {
		name        string
		in          CaptchaSetting
		wantURL     string
		wantTimeout int
	}{
		{name: "recaptcha defaults", in: CaptchaSetting{}, wantURL: constants.RecaptchaVerifyURL, wantTimeout: 5000},
		{name: "turnstile clamps low", in: CaptchaSetting{Provider: "Turnstile", TimeoutMS: 100}, wantURL: constants.TurnstileVerifyURL, wantTimeout: 500},
		{name: "hcaptcha clamps high", in: CaptchaSetting{Provider: "hcaptcha", TimeoutMS: 60000}, wantURL: constants.HCaptchaVerifyURL, wantTimeout: 10000},
		{name: "override url", in: CaptchaSetting{Provider: "recaptcha", VerifyURL: " http://mock/verify "}, wantURL: "http://mock/verify", wantTimeout: 5000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeCaptchaSetting(tc.in)
			assert.Equal(t, tc.wantURL, got.VerifyURL)
			assert.Equal(t, tc.wantTimeout, got.TimeoutMS)
		})
	}
}

func TestPublicCaptchaSetting(t *testing.T) {
	missing := NormalizeCaptchaSetting(CaptchaSetting{Provider: "recaptcha", SecretKey: testCaptchaSecret}).Public()
	assert.False(t, missing.Configured)
	assert.Equal(t, constants.MsgCaptchaMissing, missing.Message)

	ready := NormalizeCaptchaSetting(CaptchaSetting{Provider: "recaptcha", SiteKey: "site", SecretKey: testCaptchaSecret}).Public()
	assert.True(t, ready.Configured)
	assert.Equal(t, "site", ready.SiteKey)

	image := NormalizeCaptchaSetting(CaptchaSetting{Provider: "image"}).Public()
	assert.True(t, image.Configured)
	assert.Equal(t, "/api/captcha/image", image.ImageCaptchaURL)
}

func TestValidateCaptchaSetting(t *testing.T) {
	require.ErrorIs(t, ValidateCaptchaSetting(NormalizeCaptchaSetting(CaptchaSetting{Provider: "none"})), ErrCaptchaConfigInvalid)
	require.ErrorIs(t, ValidateCaptchaSetting(NormalizeCaptchaSetting(CaptchaSetting{Provider: "recaptcha", SiteKey: "site"})), ErrCaptchaConfigInvalid)
	require.NoError(t, ValidateCaptchaSetting(NormalizeCaptchaSetting(CaptchaSetting{Provider: "image"})))
	require.NoError(t, ValidateCaptchaSetting(NormalizeCaptchaSetting(CaptchaSetting{Provider: "hcaptcha", SiteKey: "a", SecretKey: "b"})))
}
