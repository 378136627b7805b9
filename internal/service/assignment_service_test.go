package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/model"
)

func TestAssign_OK(t *testing.T) {
	env := newTestEnv(t)
	d := env.seedApprovedDecorator(t, "deco@example.com", "Deco Studio")
	b := env.seedPendingBooking(t, "client@example.com", 10000)

	got, err := env.assignment.Assign(context.Background(), b.ID, d.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.FulfillmentState != model.FulfillmentStateAssigned {
		t.Fatalf("expected assigned, got %s", got.FulfillmentState)
	}
	if !got.Assigned() || *got.AssignedDecoratorID != d.ID {
		t.Fatalf("assignment snapshot not populated: %+v", got)
	}
	if got.AssignedEmail != d.Email || got.AssignedName != d.DisplayName {
		t.Fatalf("snapshot must carry decorator identity, got %q/%q", got.AssignedName, got.AssignedEmail)
	}
	if got.AssignedAt == nil {
		t.Fatalf("assigned_at must be stamped")
	}

	dd, err := env.registry.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("get decorator: %v", err)
	}
	if dd.Availability != model.AvailabilityBusy {
		t.Fatalf("decorator must be busy after assignment, got %q", dd.Availability)
	}
}

func TestAssign_BookingNotPending(t *testing.T) {
	env := newTestEnv(t)
	d1 := env.seedApprovedDecorator(t, "one@example.com", "One")
	d2 := env.seedApprovedDecorator(t, "two@example.com", "Two")
	b := env.seedPendingBooking(t, "client@example.com", 100)

	if _, err := env.assignment.Assign(context.Background(), b.ID, d1.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Вторая попытка на ту же заявку: заявка уже не pending.
	_, err := env.assignment.Assign(context.Background(), b.ID, d2.ID)
	if !errors.Is(err, apperr.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}

	// Второй декоратор не пострадал.
	dd, _ := env.registry.Get(context.Background(), d2.ID)
	if dd.Availability != model.AvailabilityAvailable {
		t.Fatalf("loser's decorator must stay available, got %q", dd.Availability)
	}
}

func TestAssign_DecoratorBusy(t *testing.T) {
	env := newTestEnv(t)
	d := env.seedApprovedDecorator(t, "deco@example.com", "Deco")
	b1 := env.seedPendingBooking(t, "a@example.com", 100)
	b2 := env.seedPendingBooking(t, "b@example.com", 200)

	if _, err := env.assignment.Assign(context.Background(), b1.ID, d.ID); err != nil {
		t.Fatalf("assign b1: %v", err)
	}

	_, err := env.assignment.Assign(context.Background(), b2.ID, d.ID)
	if !errors.Is(err, apperr.ErrUnavailable) {
		t.Fatalf("expected resource unavailable, got %v", err)
	}

	// b2 осталась нетронутой.
	got, err := env.booking.Get(context.Background(), b2.ID)
	if err != nil {
		t.Fatalf("get b2: %v", err)
	}
	if got.FulfillmentState != model.FulfillmentStatePending || got.Assigned() {
		t.Fatalf("b2 must remain pending and unassigned, got %+v", got)
	}
}

func TestAssign_DecoratorNotApproved(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedPendingBooking(t, "client@example.com", 100)

	d, err := env.registry.Register(context.Background(), RegisterDecoratorInput{
		Email:       "pending@example.com",
		DisplayName: "Pending",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := env.assignment.Assign(context.Background(), b.ID, d.ID); !errors.Is(err, apperr.ErrUnavailable) {
		t.Fatalf("expected resource unavailable for unapproved decorator, got %v", err)
	}
}

func TestAssign_ConcurrentSameDecorator(t *testing.T) {
	env := newTestEnv(t)
	d := env.seedApprovedDecorator(t, "deco@example.com", "Deco")
	b1 := env.seedPendingBooking(t, "a@example.com", 100)
	b2 := env.seedPendingBooking(t, "b@example.com", 200)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, bid := range []*model.Booking{b1, b2} {
		wg.Add(1)
		go func(i int, b *model.Booking) {
			defer wg.Done()
			_, errs[i] = env.assignment.Assign(context.Background(), b.ID, d.ID)
		}(i, bid)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || unavailable != 1 {
		t.Fatalf("expected exactly one winner and one unavailable, got ok=%d unavailable=%d", ok, unavailable)
	}
}

func TestAssign_ConcurrentSameBooking(t *testing.T) {
	env := newTestEnv(t)
	d1 := env.seedApprovedDecorator(t, "one@example.com", "One")
	d2 := env.seedApprovedDecorator(t, "two@example.com", "Two")
	b := env.seedPendingBooking(t, "client@example.com", 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, d := range []*model.Decorator{d1, d2} {
		wg.Add(1)
		go func(i int, d *model.Decorator) {
			defer wg.Done()
			_, errs[i] = env.assignment.Assign(context.Background(), b.ID, d.ID)
		}(i, d)
	}
	wg.Wait()

	var ok, illegal int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrIllegalTransition):
			illegal++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || illegal != 1 {
		t.Fatalf("expected exactly one winner and one illegal transition, got ok=%d illegal=%d", ok, illegal)
	}

	// Занят ровно один декоратор: проигравший либо не дошёл до занятия,
	// либо его занятие откатилось вместе с транзакцией.
	var busy int
	for _, d := range []*model.Decorator{d1, d2} {
		dd, err := env.registry.Get(context.Background(), d.ID)
		if err != nil {
			t.Fatalf("get decorator: %v", err)
		}
		if dd.Availability == model.AvailabilityBusy {
			busy++
		}
	}
	if busy != 1 {
		t.Fatalf("expected exactly one busy decorator, got %d", busy)
	}

	got, err := env.booking.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.FulfillmentState != model.FulfillmentStateAssigned || !got.Assigned() {
		t.Fatalf("booking must end assigned to the winner: %+v", got)
	}
}

func TestRelease_CancelClearsAssignment(t *testing.T) {
	env := newTestEnv(t)
	d := env.seedApprovedDecorator(t, "deco@example.com", "Deco")
	b := env.seedPendingBooking(t, "client@example.com", 100)

	if _, err := env.assignment.Assign(context.Background(), b.ID, d.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, err := env.assignment.Release(context.Background(), b.ID, model.FulfillmentStateCancelled)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if got.FulfillmentState != model.FulfillmentStateCancelled {
		t.Fatalf("expected cancelled, got %s", got.FulfillmentState)
	}
	if got.Assigned() || got.AssignedAt != nil || got.AssignedEmail != "" {
		t.Fatalf("cancellation must clear the assignment snapshot: %+v", got)
	}

	dd, _ := env.registry.Get(context.Background(), d.ID)
	if dd.Availability != model.AvailabilityAvailable {
		t.Fatalf("decorator must be available after release, got %q", dd.Availability)
	}

	// Освобождённого декоратора можно назначить снова.
	b2 := env.seedPendingBooking(t, "other@example.com", 300)
	if _, err := env.assignment.Assign(context.Background(), b2.ID, d.ID); err != nil {
		t.Fatalf("re-assign released decorator: %v", err)
	}
}

func TestRelease_PendingCancelWithoutAssignment(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedPendingBooking(t, "client@example.com", 100)

	got, err := env.assignment.Release(context.Background(), b.ID, model.FulfillmentStateCancelled)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if got.FulfillmentState != model.FulfillmentStateCancelled {
		t.Fatalf("expected cancelled, got %s", got.FulfillmentState)
	}
}

func TestRelease_NonTerminalRejected(t *testing.T) {
	env := newTestEnv(t)
	d := env.seedApprovedDecorator(t, "deco@example.com", "Deco")
	b := env.seedPendingBooking(t, "client@example.com", 100)

	if _, err := env.assignment.Assign(context.Background(), b.ID, d.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := env.assignment.Release(context.Background(), b.ID, model.FulfillmentStateInProgress); !errors.Is(err, apperr.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition for non-terminal release, got %v", err)
	}
}
