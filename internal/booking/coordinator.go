// Package booking orchestrates one booking attempt end to end: read a
// consistent free-seat snapshot, let the allocation engine pick seats, then
// commit the choice with a conditional update and retry on conflict.  The
// store is injected so the coordinator works identically against MySQL and
// the in-memory table.
package booking

import (
    "context"
    "errors"
    "fmt"
    "math/rand/v2"
    "time"

    "github.com/iliyamo/venue-seat-booking/internal/allocation"
    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/repository"
    "github.com/iliyamo/venue-seat-booking/internal/venue"
)

var (
    // ErrContention is returned when repeated commit conflicts exhausted the
    // retry budget.  The caller may retry the whole request later.
    ErrContention = errors.New("booking contention, please retry")

    // ErrStoreUnavailable wraps store failures unrelated to seat
    // availability (connectivity etc).  The attempt is rolled back before
    // this is surfaced; no partial state change is possible.
    ErrStoreUnavailable = errors.New("seat store unavailable")
)

// SeatStore is the persistence contract the coordinator books against.
// BookSeats must be a set-wise atomic check-and-set: mark the given seats
// booked only if all of them are still free, as one indivisible step
// relative to other bookings and to ResetAll, returning
// repository.ErrSeatConflict when any seat was claimed in the meantime.
type SeatStore interface {
    FreeSeats(ctx context.Context) ([]model.Seat, error)
    AllSeats(ctx context.Context) ([]model.Seat, error)
    BookSeats(ctx context.Context, seatIDs []uint64) error
    ResetAll(ctx context.Context) (int64, error)
}

// Coordinator runs the snapshot/allocate/commit loop.  It holds no locks
// across attempts: every attempt reads a fresh snapshot and commits through
// its own short-lived transaction, so a losing request never blocks others.
type Coordinator struct {
    store       SeatStore
    layout      *venue.Layout
    maxAttempts int
    backoff     time.Duration
}

// NewCoordinator wires a coordinator to its store and layout.  maxAttempts
// bounds the retry loop (minimum 1); backoff is the base delay between
// conflicted attempts, randomized per retry to avoid a retry storm.
func NewCoordinator(store SeatStore, layout *venue.Layout, maxAttempts int, backoff time.Duration) *Coordinator {
    if maxAttempts < 1 {
        maxAttempts = 1
    }
    if backoff <= 0 {
        backoff = 25 * time.Millisecond
    }
    return &Coordinator{store: store, layout: layout, maxAttempts: maxAttempts, backoff: backoff}
}

// Book reserves partySize seats and returns them in (row, position) order.
//
// Allocation failures (invalid size, not enough seats, no suitable block)
// are surfaced unchanged and never retried: a fresh snapshot cannot improve
// them.  Only a commit conflict (the store reporting that a chosen seat was
// booked between our read and our write) triggers a retry against a fresh
// snapshot, up to the attempt budget.
func (co *Coordinator) Book(ctx context.Context, partySize int) ([]model.Seat, error) {
    if partySize < 1 || partySize > allocation.MaxPartySize {
        return nil, allocation.ErrInvalidPartySize
    }
    for attempt := 1; attempt <= co.maxAttempts; attempt++ {
        if err := ctx.Err(); err != nil {
            return nil, err
        }
        free, err := co.store.FreeSeats(ctx)
        if err != nil {
            return nil, storeErr(err)
        }
        seats, err := allocation.Allocate(co.layout, free, partySize)
        if err != nil {
            return nil, err
        }
        ids := make([]uint64, len(seats))
        for i, s := range seats {
            ids[i] = s.ID
        }
        switch err := co.store.BookSeats(ctx, ids); {
        case err == nil:
            booked := make([]model.Seat, len(seats))
            copy(booked, seats)
            for i := range booked {
                booked[i].Booked = true
            }
            return booked, nil
        case errors.Is(err, repository.ErrSeatConflict):
            // lost the race; back off briefly and retry on a fresh snapshot
            if attempt < co.maxAttempts {
                if err := sleepWithJitter(ctx, co.backoff); err != nil {
                    return nil, err
                }
            }
        default:
            return nil, storeErr(err)
        }
    }
    return nil, ErrContention
}

// ListSeats returns the full seat snapshot ordered by (row, position).
func (co *Coordinator) ListSeats(ctx context.Context) ([]model.Seat, error) {
    seats, err := co.store.AllSeats(ctx)
    if err != nil {
        return nil, storeErr(err)
    }
    return seats, nil
}

// ResetAll frees every seat and returns how many were transitioned.
func (co *Coordinator) ResetAll(ctx context.Context) (int64, error) {
    n, err := co.store.ResetAll(ctx)
    if err != nil {
        return 0, storeErr(err)
    }
    return n, nil
}

func storeErr(err error) error {
    if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
        return err
    }
    return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// sleepWithJitter waits between half and one-and-a-half times the base
// delay, or returns early when the caller gives up.
func sleepWithJitter(ctx context.Context, base time.Duration) error {
    d := base/2 + rand.N(base)
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}
