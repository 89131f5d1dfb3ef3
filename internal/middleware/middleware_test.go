package middleware

import (
	contextPkg "PoseAlign/pkg/context"
	jwtPkg "PoseAlign/pkg/jwt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func newTestMiddleware() *middleware {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger).(*middleware)
}

func TestTokenMiddleware(t *testing.T) {
	t.Setenv(AccessTokenSecret, "middleware-secret")
	m := newTestMiddleware()

	app := fiber.New()
	app.Get("/me", m.NewTokenMiddleware, func(c *fiber.Ctx) error {
		user, err := jwtPkg.GetUserLoginData(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"id":      user.ID,
			"ctx_uid": contextPkg.GetUserID(contextPkg.FromFiberCtx(c)),
		})
	})

	valid, _, err := jwtPkg.Sign(map[string]interface{}{
		"id": "u-1", "email": "u@example.com", "username": "u",
	}, time.Hour, AccessTokenSecret)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	missingClaims, _, _ := jwtPkg.Sign(map[string]interface{}{"id": "u-1"}, time.Hour, AccessTokenSecret)
	expired, _, _ := jwtPkg.Sign(map[string]interface{}{
		"id": "u-1", "email": "u@example.com", "username": "u",
	}, -time.Minute, AccessTokenSecret)

	tests := []struct {
		name     string
		target   string
		header   string
		wantCode int
	}{
		{"valid bearer", "/me", "Bearer " + valid, http.StatusOK},
		{"query token", "/me?access_token=" + valid, "", http.StatusOK},
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic " + valid, http.StatusUnauthorized},
		{"missing claims", "/me", "Bearer " + missingClaims, http.StatusUnauthorized},
		{"expired", "/me", "Bearer " + expired, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if !strings.Contains(string(body), `"ctx_uid":"u-1"`) {
					t.Errorf("body = %s, want user id in request context", body)
				}
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddleware()

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated", "", false},
		{"propagated", "req-123", true},
		{"oversized", strings.Repeat("x", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDKey, tt.incoming)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			got := resp.Header.Get(RequestIDKey)
			if got != string(body) {
				t.Errorf("header %q != locals %q", got, body)
			}
			if tt.keep && got != tt.incoming {
				t.Errorf("request id = %q, want %q", got, tt.incoming)
			}
			if !tt.keep && (got == "" || got == tt.incoming) {
				t.Errorf("request id = %q, want a fresh ULID", got)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	m := newTestMiddleware()
	m.rateLimitter = newRateLimiter(rate.Limit(1), 2)

	app := fiber.New()
	app.Get("/", m.NewRateLimiter, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "oops")

	limit, burst := rateLimitFromEnv()
	if limit != rate.Limit(5) {
		t.Errorf("limit = %v, want 5", limit)
	}
	if burst != defaultBurstSize {
		t.Errorf("burst = %d, want %d", burst, defaultBurstSize)
	}
}

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
		deny []string
	}{
		{
			name: "secrets masked",
			body: `{"token":"abc","video_source":"user"}`,
			want: []string{`"token":"[SECRET]"`, `"video_source":"user"`},
			deny: []string{"abc"},
		},
		{
			name: "landmarks summarized",
			body: `{"landmarks":[{"x":0.1,"y":0.2},{"x":0.3,"y":0.4}]}`,
			want: []string{`"landmarks":2`},
			deny: []string{"0.1"},
		},
		{
			name: "non json",
			body: "frame=1",
			want: []string{"[non-JSON body]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeRequestBody(tt.body)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("sanitizeRequestBody() = %s, want it to contain %s", got, w)
				}
			}
			for _, d := range tt.deny {
				if strings.Contains(got, d) {
					t.Errorf("sanitizeRequestBody() = %s, must not contain %s", got, d)
				}
			}
		})
	}
}
