package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/supperjio/jiobot/internal/domain"
)

func TestJioCreate_ValidatesRestaurantLength(t *testing.T) {
	s := NewJioService(nil, newFakeJioRepo())
	ctx := context.Background()

	jio, err := s.Create(ctx, 10, "McDonalds", "closes 10pm")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if jio.Status != domain.JioOpen || jio.Restaurant != "McDonalds" {
		t.Fatalf("unexpected jio: %+v", jio)
	}

	// Exactly at the limit is fine; one rune over is not.
	if _, err := s.Create(ctx, 10, strings.Repeat("a", domain.MaxRestaurantLen), "d"); err != nil {
		t.Fatalf("boundary create: %v", err)
	}
	if _, err := s.Create(ctx, 10, strings.Repeat("a", domain.MaxRestaurantLen+1), "d"); !errors.Is(err, ErrRestaurantTooLong) {
		t.Fatalf("expected ErrRestaurantTooLong, got %v", err)
	}

	// The limit counts runes, not bytes.
	if _, err := s.Create(ctx, 10, strings.Repeat("火", domain.MaxRestaurantLen), "d"); err != nil {
		t.Fatalf("multibyte boundary create: %v", err)
	}
}

func TestJioCreate_TrimsWhitespace(t *testing.T) {
	s := NewJioService(nil, newFakeJioRepo())

	jio, err := s.Create(context.Background(), 10, "  McDonalds  ", "d")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if jio.Restaurant != "McDonalds" {
		t.Fatalf("restaurant not trimmed: %q", jio.Restaurant)
	}
}

func TestJioGet_NotFoundMapping(t *testing.T) {
	s := NewJioService(nil, newFakeJioRepo())
	if _, err := s.Get(context.Background(), 404); !errors.Is(err, ErrJioNotFound) {
		t.Fatalf("expected ErrJioNotFound, got %v", err)
	}
}

// Closing an already-closed jio (or reopening an open one) must signal the
// caller without writing to storage.
func TestJioCloseReopen_NoOpTransitions(t *testing.T) {
	repo := newFakeJioRepo()
	s := NewJioService(nil, repo)
	ctx := context.Background()

	jio, _ := s.Create(ctx, 10, "r", "d")

	if _, err := s.Reopen(ctx, jio.ID); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}
	if repo.statusWrites != 0 {
		t.Fatalf("no-op reopen wrote to storage %d times", repo.statusWrites)
	}

	closed, err := s.Close(ctx, jio.ID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closed.IsClosed() || repo.statusWrites != 1 {
		t.Fatalf("close did not persist exactly once: %+v writes=%d", closed, repo.statusWrites)
	}

	again, err := s.Close(ctx, jio.ID)
	if !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
	if !again.IsClosed() {
		t.Fatalf("signal should still carry the jio: %+v", again)
	}
	if repo.statusWrites != 1 {
		t.Fatalf("no-op close wrote to storage, writes=%d", repo.statusWrites)
	}

	reopened, err := s.Reopen(ctx, jio.ID)
	if err != nil || reopened.IsClosed() {
		t.Fatalf("Reopen: %+v, %v", reopened, err)
	}
	if repo.statusWrites != 2 {
		t.Fatalf("reopen writes = %d", repo.statusWrites)
	}
}

func TestJioEditDescription(t *testing.T) {
	s := NewJioService(nil, newFakeJioRepo())
	ctx := context.Background()

	jio, _ := s.Create(ctx, 10, "r", "old")
	updated, err := s.EditDescription(ctx, jio.ID, "new info")
	if err != nil {
		t.Fatalf("EditDescription: %v", err)
	}
	if updated.Description != "new info" {
		t.Fatalf("description not replaced: %+v", updated)
	}

	got, _ := s.Get(ctx, jio.ID)
	if got.Description != "new info" {
		t.Fatalf("description not persisted: %+v", got)
	}

	if _, err := s.EditDescription(ctx, 404, "x"); !errors.Is(err, ErrJioNotFound) {
		t.Fatalf("expected ErrJioNotFound, got %v", err)
	}
}

func TestJioSetHostAddress(t *testing.T) {
	s := NewJioService(nil, newFakeJioRepo())
	ctx := context.Background()

	jio, _ := s.Create(ctx, 10, "r", "d")
	if err := s.SetHostAddress(ctx, jio.ID, 55, 900); err != nil {
		t.Fatalf("SetHostAddress: %v", err)
	}
	got, _ := s.Get(ctx, jio.ID)
	if got.HostChatID == nil || *got.HostChatID != 55 || *got.HostMessageID != 900 {
		t.Fatalf("address not stored: %+v", got)
	}

	if err := s.SetHostAddress(ctx, 404, 1, 1); !errors.Is(err, ErrJioNotFound) {
		t.Fatalf("expected ErrJioNotFound, got %v", err)
	}
}
