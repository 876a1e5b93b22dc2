package booking_test

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/venue-seat-booking/internal/allocation"
    "github.com/iliyamo/venue-seat-booking/internal/booking"
    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/repository"
    "github.com/iliyamo/venue-seat-booking/internal/venue"
)

func newCoordinator(t *testing.T, totalSeats, perRow int) (*booking.Coordinator, *repository.MemorySeatStore, *venue.Layout) {
    t.Helper()
    layout, err := venue.New(totalSeats, perRow)
    require.NoError(t, err)
    store := repository.NewMemorySeatStore(layout)
    return booking.NewCoordinator(store, layout, 3, time.Millisecond), store, layout
}

// conflictStore wraps a SeatStore and forces the first n commits to fail
// with a seat conflict, simulating a rival booking winning the race.
type conflictStore struct {
    booking.SeatStore
    mu        sync.Mutex
    conflicts int
    commits   int
}

func (s *conflictStore) BookSeats(ctx context.Context, ids []uint64) error {
    s.mu.Lock()
    s.commits++
    fail := s.conflicts > 0
    if fail {
        s.conflicts--
    }
    s.mu.Unlock()
    if fail {
        return repository.ErrSeatConflict
    }
    return s.SeatStore.BookSeats(ctx, ids)
}

// errStore fails every read, standing in for a dead database.
type errStore struct{ booking.SeatStore }

type fakeStoreErr struct{}

func (fakeStoreErr) Error() string { return "connection refused" }

func (errStore) FreeSeats(context.Context) ([]model.Seat, error) {
    return nil, fakeStoreErr{}
}

func TestBookHappyPath(t *testing.T) {
    co, store, _ := newCoordinator(t, 14, 7)

    seats, err := co.Book(context.Background(), 3)
    require.NoError(t, err)
    require.Len(t, seats, 3)
    for i, s := range seats {
        require.Equal(t, uint32(1), s.Row)
        require.Equal(t, uint32(i+1), s.Position)
        require.True(t, s.Booked)
    }

    // The store must reflect the commit.
    free, err := store.FreeSeats(context.Background())
    require.NoError(t, err)
    require.Len(t, free, 11)
}

func TestBookInvalidPartySize(t *testing.T) {
    co, _, _ := newCoordinator(t, 14, 7)
    for _, size := range []int{0, -3, 8} {
        _, err := co.Book(context.Background(), size)
        require.ErrorIs(t, err, allocation.ErrInvalidPartySize)
    }
}

func TestBookInsufficientSeatsNotRetried(t *testing.T) {
    co, _, _ := newCoordinator(t, 4, 7)

    _, err := co.Book(context.Background(), 4)
    require.NoError(t, err)

    // Venue is now full; the failure is allocation-level and final.
    _, err = co.Book(context.Background(), 1)
    require.ErrorIs(t, err, allocation.ErrInsufficientSeats)
}

func TestBookRetriesAfterConflict(t *testing.T) {
    layout, err := venue.New(14, 7)
    require.NoError(t, err)
    store := &conflictStore{SeatStore: repository.NewMemorySeatStore(layout), conflicts: 2}
    co := booking.NewCoordinator(store, layout, 5, time.Millisecond)

    seats, err := co.Book(context.Background(), 2)
    require.NoError(t, err)
    require.Len(t, seats, 2)
    require.Equal(t, 3, store.commits, "two conflicted attempts plus the winning one")
}

func TestBookExhaustsRetryBudget(t *testing.T) {
    layout, err := venue.New(14, 7)
    require.NoError(t, err)
    store := &conflictStore{SeatStore: repository.NewMemorySeatStore(layout), conflicts: 100}
    co := booking.NewCoordinator(store, layout, 3, time.Millisecond)

    _, err = co.Book(context.Background(), 2)
    require.ErrorIs(t, err, booking.ErrContention)
    require.Equal(t, 3, store.commits)

    // Nothing may be booked after a failed booking.
    free, ferr := store.FreeSeats(context.Background())
    require.NoError(t, ferr)
    require.Len(t, free, 14)
}

func TestBookWrapsStoreFailures(t *testing.T) {
    layout, err := venue.New(14, 7)
    require.NoError(t, err)
    co := booking.NewCoordinator(errStore{repository.NewMemorySeatStore(layout)}, layout, 3, time.Millisecond)

    _, err = co.Book(context.Background(), 2)
    require.ErrorIs(t, err, booking.ErrStoreUnavailable)
}

func TestBookHonoursCancellation(t *testing.T) {
    co, _, _ := newCoordinator(t, 14, 7)
    ctx, cancel := context.WithCancel(context.Background())
    cancel()

    _, err := co.Book(ctx, 2)
    require.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentBookingsNeverOverlap(t *testing.T) {
    // 80 seats, 30 parties of 2: plenty of room, so every booking must
    // succeed and no seat may be handed out twice.
    layout, err := venue.New(80, 7)
    require.NoError(t, err)
    store := repository.NewMemorySeatStore(layout)
    co := booking.NewCoordinator(store, layout, 10, time.Millisecond)

    const parties = 30
    results := make(chan []model.Seat, parties)
    errs := make(chan error, parties)
    var wg sync.WaitGroup
    for i := 0; i < parties; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            seats, err := co.Book(context.Background(), 2)
            if err != nil {
                errs <- err
                return
            }
            results <- seats
        }()
    }
    wg.Wait()
    close(results)
    close(errs)

    for err := range errs {
        t.Fatalf("booking failed: %v", err)
    }

    seen := make(map[uint64]bool)
    for seats := range results {
        require.Len(t, seats, 2)
        for _, s := range seats {
            require.False(t, seen[s.ID], "seat %d booked twice", s.ID)
            seen[s.ID] = true
        }
    }
    require.Len(t, seen, parties*2)
}

func TestConcurrentBookingsOverFullVenue(t *testing.T) {
    // Four seats, two parties of four: exactly one can win.  The loser sees
    // either an empty snapshot (insufficient seats) or exhausted retries.
    layout, err := venue.New(4, 4)
    require.NoError(t, err)
    store := repository.NewMemorySeatStore(layout)
    co := booking.NewCoordinator(store, layout, 3, time.Millisecond)

    type outcome struct {
        seats []model.Seat
        err   error
    }
    out := make(chan outcome, 2)
    var wg sync.WaitGroup
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            seats, err := co.Book(context.Background(), 4)
            out <- outcome{seats, err}
        }()
    }
    wg.Wait()
    close(out)

    var wins, losses int
    for o := range out {
        if o.err == nil {
            wins++
            require.Len(t, o.seats, 4)
            continue
        }
        losses++
        ok := o.err == booking.ErrContention ||
            o.err == allocation.ErrInsufficientSeats
        require.True(t, ok, "unexpected loser error: %v", o.err)
    }
    require.Equal(t, 1, wins)
    require.Equal(t, 1, losses)
}

func TestResetAllFreesEverySeat(t *testing.T) {
    co, store, _ := newCoordinator(t, 14, 7)

    _, err := co.Book(context.Background(), 5)
    require.NoError(t, err)

    n, err := co.ResetAll(context.Background())
    require.NoError(t, err)
    require.Equal(t, int64(5), n)

    free, err := store.FreeSeats(context.Background())
    require.NoError(t, err)
    require.Len(t, free, 14)

    // Reset is idempotent: a second run transitions nothing.
    n, err = co.ResetAll(context.Background())
    require.NoError(t, err)
    require.Zero(t, n)
}

func TestListSeatsReportsBookedState(t *testing.T) {
    co, _, _ := newCoordinator(t, 7, 7)

    _, err := co.Book(context.Background(), 2)
    require.NoError(t, err)

    seats, err := co.ListSeats(context.Background())
    require.NoError(t, err)
    require.Len(t, seats, 7)
    for _, s := range seats {
        require.Equal(t, s.Position <= 2, s.Booked)
    }
}
