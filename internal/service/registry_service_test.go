package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/model"
)

func TestRegistry_Register_OK(t *testing.T) {
	env := newTestEnv(t)

	d, err := env.registry.Register(context.Background(), RegisterDecoratorInput{
		Email:       "deco@example.com",
		DisplayName: "Deco Studio",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if d.ApprovalState != model.ApprovalStatePending {
		t.Fatalf("expected pending, got %s", d.ApprovalState)
	}
	if d.Availability != model.AvailabilityUnset {
		t.Fatalf("availability must be unset before decision, got %q", d.Availability)
	}
}

func TestRegistry_Register_MissingIdentity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.registry.Register(context.Background(), RegisterDecoratorInput{
		Email:       "not-an-email",
		DisplayName: "Deco Studio",
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = env.registry.Register(context.Background(), RegisterDecoratorInput{
		Email: "deco@example.com",
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegistry_Decide_ApproveInitializesAvailability(t *testing.T) {
	env := newTestEnv(t)

	d, err := env.registry.Register(context.Background(), RegisterDecoratorInput{
		Email:       "deco@example.com",
		DisplayName: "Deco Studio",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := env.registry.Decide(context.Background(), d.ID, true)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got.ApprovalState != model.ApprovalStateApproved {
		t.Fatalf("expected approved, got %s", got.ApprovalState)
	}
	if got.Availability != model.AvailabilityAvailable {
		t.Fatalf("expected available, got %q", got.Availability)
	}
}

func TestRegistry_Decide_RepeatedIsNoop(t *testing.T) {
	env := newTestEnv(t)
	d := env.seedApprovedDecorator(t, "deco@example.com", "Deco Studio")

	// Занимаем декоратора, чтобы проверить, что повторное решение
	// не переинициализирует доступность.
	b := env.seedPendingBooking(t, "client@example.com", 10000)
	if _, err := env.assignment.Assign(context.Background(), b.ID, d.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, err := env.registry.Decide(context.Background(), d.ID, false)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got.ApprovalState != model.ApprovalStateApproved {
		t.Fatalf("re-decide must not toggle approval, got %s", got.ApprovalState)
	}
	if got.Availability != model.AvailabilityBusy {
		t.Fatalf("re-decide must not touch availability, got %q", got.Availability)
	}
}

func TestRegistry_Decide_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.registry.Decide(context.Background(), uuid.New(), true)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegistry_FindAvailable_OnlyApproved(t *testing.T) {
	env := newTestEnv(t)
	env.seedApprovedDecorator(t, "one@example.com", "One")

	if _, err := env.registry.Register(context.Background(), RegisterDecoratorInput{
		Email:       "pending@example.com",
		DisplayName: "Pending",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := env.registry.FindAvailable(context.Background(), true)
	if err != nil {
		t.Fatalf("find available: %v", err)
	}
	if len(out) != 1 || out[0].Email != "one@example.com" {
		t.Fatalf("expected only the approved decorator, got %+v", out)
	}
}
