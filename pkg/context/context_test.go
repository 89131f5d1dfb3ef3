package context

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRequestAndUserID(t *testing.T) {
	ctx := WithUserID(WithRequestID(context.Background(), "req-9"), "user-9")

	if got := GetRequestID(ctx); got != "req-9" {
		t.Errorf("GetRequestID() = %q, want req-9", got)
	}
	if got := GetUserID(ctx); got != "user-9" {
		t.Errorf("GetUserID() = %q, want user-9", got)
	}
	if got := GetRequestID(context.Background()); got != "unknown" {
		t.Errorf("GetRequestID(empty) = %q, want unknown", got)
	}
	if got := GetUserID(context.Background()); got != "" {
		t.Errorf("GetUserID(empty) = %q, want empty", got)
	}
}

func TestFromFiberCtx(t *testing.T) {
	tests := []struct {
		name      string
		locals    map[string]string
		header    string
		wantReqID string
		wantUser  string
	}{
		{"locals", map[string]string{"X-Request-ID": "loc-1", UserIDLocalsKey: "u-1"}, "", "loc-1", "u-1"},
		{"header fallback", nil, "hdr-1", "hdr-1", ""},
		{"nothing", nil, "", "unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var gotReqID, gotUser string
			app.Get("/", func(c *fiber.Ctx) error {
				for k, v := range tt.locals {
					c.Locals(k, v)
				}
				ctx := FromFiberCtx(c)
				gotReqID, gotUser = GetRequestID(ctx), GetUserID(ctx)
				return nil
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			if _, err := app.Test(req, -1); err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}

			if gotReqID != tt.wantReqID || gotUser != tt.wantUser {
				t.Errorf("FromFiberCtx() = (%q, %q), want (%q, %q)", gotReqID, gotUser, tt.wantReqID, tt.wantUser)
			}
		})
	}
}
