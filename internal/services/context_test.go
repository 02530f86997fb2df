package services_test

import (
	"context"
	"testing"

	"marquee/internal/services"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "abc")
	if id, ok := services.RequestIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("expected request id abc, got %q ok=%v", id, ok)
	}
	if _, ok := services.RequestIDFromContext(context.Background()); ok {
		t.Fatal("expected no request id on empty context")
	}
}

func TestUserIDRoundTrip(t *testing.T) {
	ctx := services.WithUserID(context.Background(), 610)
	if id, ok := services.UserIDFromContext(ctx); !ok || id != 610 {
		t.Fatalf("expected user id 610, got %d ok=%v", id, ok)
	}
}
