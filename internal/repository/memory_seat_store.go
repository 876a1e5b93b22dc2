package repository

import (
    "context"
    "fmt"
    "sync"

    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/venue"
)

// MemorySeatStore keeps the whole seat table in memory behind a single
// mutex.  It honours the same contract as SeatRepo: BookSeats is a set-wise
// check-and-set that either flips every requested seat or none.  It backs
// the coordinator and handler tests and is usable for local runs without a
// database, where the modest throughput of one lock is not a concern.
type MemorySeatStore struct {
    mu    sync.Mutex
    seats []model.Seat
    index map[uint64]int
}

// NewMemorySeatStore builds a store seeded with every seat of the layout,
// all free, with IDs assigned in (row, position) order starting at 1.
func NewMemorySeatStore(layout *venue.Layout) *MemorySeatStore {
    s := &MemorySeatStore{
        seats: make([]model.Seat, 0, layout.TotalSeats()),
        index: make(map[uint64]int, layout.TotalSeats()),
    }
    id := uint64(1)
    for row := 1; row <= layout.Rows(); row++ {
        for pos := 1; pos <= layout.RowSize(row); pos++ {
            s.index[id] = len(s.seats)
            s.seats = append(s.seats, model.Seat{ID: id, Row: uint32(row), Position: uint32(pos)})
            id++
        }
    }
    return s
}

// FreeSeats returns a copy of all unbooked seats in (row, position) order.
func (s *MemorySeatStore) FreeSeats(ctx context.Context) ([]model.Seat, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    free := make([]model.Seat, 0, len(s.seats))
    for _, seat := range s.seats {
        if !seat.Booked {
            free = append(free, seat)
        }
    }
    return free, nil
}

// AllSeats returns a copy of every seat in (row, position) order.
func (s *MemorySeatStore) AllSeats(ctx context.Context) ([]model.Seat, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    all := make([]model.Seat, len(s.seats))
    copy(all, s.seats)
    return all, nil
}

// BookSeats books the given seats iff all of them are currently free.  A
// single mutex over the table makes the check and the flips one indivisible
// step; on any already-booked seat nothing is modified and ErrSeatConflict
// is returned.
func (s *MemorySeatStore) BookSeats(ctx context.Context, seatIDs []uint64) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, id := range seatIDs {
        i, ok := s.index[id]
        if !ok {
            return fmt.Errorf("unknown seat id %d", id)
        }
        if s.seats[i].Booked {
            return ErrSeatConflict
        }
    }
    for _, id := range seatIDs {
        s.seats[s.index[id]].Booked = true
    }
    return nil
}

// ResetAll frees every seat and returns how many were booked.
func (s *MemorySeatStore) ResetAll(ctx context.Context) (int64, error) {
    if err := ctx.Err(); err != nil {
        return 0, err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for i := range s.seats {
        if s.seats[i].Booked {
            s.seats[i].Booked = false
            n++
        }
    }
    return n, nil
}
