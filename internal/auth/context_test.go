package auth

import (
	"context"
	"testing"
)

func TestPrincipalRoundTrip(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{UserID: 42})

	p, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected principal in context")
	}
	if p.UserID != 42 {
		t.Errorf("UserID = %d, want 42", p.UserID)
	}
	if got := UserID(ctx); got != 42 {
		t.Errorf("UserID() = %d, want 42", got)
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no principal in empty context")
	}
	if got := UserID(ctx); got != 0 {
		t.Errorf("UserID() = %d, want 0", got)
	}
}
