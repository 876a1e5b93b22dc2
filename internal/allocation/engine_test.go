package allocation

import (
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/venue"
)

// mustLayout builds a layout or fails the test.
func mustLayout(t *testing.T, total, perRow int) *venue.Layout {
    t.Helper()
    l, err := venue.New(total, perRow)
    require.NoError(t, err)
    return l
}

// freeSeats builds a free-seat snapshot from a map of row -> free positions.
// Seat IDs are derived as (row-1)*perRow + position so they are stable and
// unique across the venue.
func freeSeats(perRow int, rows map[int][]int) []model.Seat {
    var seats []model.Seat
    for row, positions := range rows {
        for _, pos := range positions {
            seats = append(seats, model.Seat{
                ID:       uint64((row-1)*perRow + pos),
                Row:      uint32(row),
                Position: uint32(pos),
            })
        }
    }
    return seats
}

func positions(seats []model.Seat) []uint32 {
    out := make([]uint32, len(seats))
    for i, s := range seats {
        out[i] = s.Position
    }
    return out
}

func TestAllocateSingleRowAllFree(t *testing.T) {
    layout := mustLayout(t, 3, 3)
    free := freeSeats(3, map[int][]int{1: {1, 2, 3}})

    got, err := Allocate(layout, free, 3)
    require.NoError(t, err)
    require.Len(t, got, 3)
    for i, s := range got {
        require.Equal(t, uint32(1), s.Row)
        require.Equal(t, uint32(i+1), s.Position)
    }
}

func TestAllocateSkipsRowWithoutRun(t *testing.T) {
    // Row 1 has only positions 6 and 7 free; row 2 is fully free.  A party
    // of three cannot sit in row 1, so the leftmost run of row 2 wins.
    layout := mustLayout(t, 14, 7)
    free := freeSeats(7, map[int][]int{
        1: {6, 7},
        2: {1, 2, 3, 4, 5, 6, 7},
    })

    got, err := Allocate(layout, free, 3)
    require.NoError(t, err)
    require.Len(t, got, 3)
    for i, s := range got {
        require.Equal(t, uint32(2), s.Row)
        require.Equal(t, uint32(i+1), s.Position)
    }
}

func TestAllocateLeftmostRunInRow(t *testing.T) {
    // Free positions 2,3,4,6,7: a pair must take 2,3 rather than 6,7.
    layout := mustLayout(t, 7, 7)
    free := freeSeats(7, map[int][]int{1: {2, 3, 4, 6, 7}})

    got, err := Allocate(layout, free, 2)
    require.NoError(t, err)
    require.Equal(t, []uint32{2, 3}, positions(got))
}

func TestAllocateGapBlocksRun(t *testing.T) {
    // Positions 1,2,4,5 hold no run of three; phase B still finds the seats
    // inside the single-row span.
    layout := mustLayout(t, 7, 7)
    free := freeSeats(7, map[int][]int{1: {1, 2, 4, 5}})

    got, err := Allocate(layout, free, 3)
    require.NoError(t, err)
    require.Equal(t, []uint32{1, 2, 4}, positions(got))
}

func TestAllocateFallbackSpansRows(t *testing.T) {
    // Row 1 has four scattered seats (no run of five), row 2 has three.
    // The span [row1,row2] with seven free seats is the narrowest covering
    // a party of five; seats come in row-then-position order.
    layout := mustLayout(t, 14, 7)
    free := freeSeats(7, map[int][]int{
        1: {1, 3, 5, 7},
        2: {1, 2, 3},
    })

    got, err := Allocate(layout, free, 5)
    require.NoError(t, err)
    require.Len(t, got, 5)
    require.Equal(t, uint32(1), got[0].Row)
    require.Equal(t, []uint32{1, 3, 5, 7}, positions(got[:4]))
    require.Equal(t, uint32(2), got[4].Row)
    require.Equal(t, uint32(1), got[4].Position)
}

func TestAllocateFallbackPicksNarrowestSpan(t *testing.T) {
    // Rows 1 and 2 hold one seat each; row 3 holds four scattered seats.
    // The single-row span [3] beats the wider span starting at row 1.
    layout := mustLayout(t, 21, 7)
    free := freeSeats(7, map[int][]int{
        1: {1},
        2: {1},
        3: {1, 3, 5, 7},
    })

    got, err := Allocate(layout, free, 4)
    require.NoError(t, err)
    require.Len(t, got, 4)
    for _, s := range got {
        require.Equal(t, uint32(3), s.Row)
    }
}

func TestAllocateFallbackTieBreaksToEarliestSpan(t *testing.T) {
    // Every row holds two scattered seats, so any two adjacent rows cover a
    // party of four.  The earliest span [1,2] must win the tie.
    layout := mustLayout(t, 21, 7)
    free := freeSeats(7, map[int][]int{
        1: {1, 3},
        2: {5, 7},
        3: {2, 4},
    })

    got, err := Allocate(layout, free, 4)
    require.NoError(t, err)
    require.Len(t, got, 4)
    require.Equal(t, uint32(1), got[0].Row)
    require.Equal(t, uint32(1), got[1].Row)
    require.Equal(t, uint32(2), got[2].Row)
    require.Equal(t, uint32(2), got[3].Row)
}

func TestAllocateInvalidPartySize(t *testing.T) {
    layout := mustLayout(t, 80, 7)
    free := freeSeats(7, map[int][]int{1: {1, 2, 3, 4, 5, 6, 7}})

    for _, size := range []int{-1, 0, 8, 100} {
        _, err := Allocate(layout, free, size)
        require.ErrorIs(t, err, ErrInvalidPartySize, "party size %d", size)
    }
}

func TestAllocateInsufficientSeats(t *testing.T) {
    layout := mustLayout(t, 14, 7)
    free := freeSeats(7, map[int][]int{1: {1, 2}})

    _, err := Allocate(layout, free, 3)
    require.ErrorIs(t, err, ErrInsufficientSeats)

    _, err = Allocate(layout, nil, 1)
    require.ErrorIs(t, err, ErrInsufficientSeats)
}

func TestAllocateNoSuitablePlacement(t *testing.T) {
    // The venue was shrunk to a single row after seeding, so the snapshot
    // still carries seats in rows the layout no longer has.  Those seats
    // count toward the availability check but are unusable, leaving no
    // placement for a party of three.
    layout := mustLayout(t, 7, 7)
    free := freeSeats(7, map[int][]int{
        1: {1, 2},
        3: {1, 2, 3},
    })
    require.GreaterOrEqual(t, len(free), 3)

    _, err := Allocate(layout, free, 3)
    require.ErrorIs(t, err, ErrNoSuitablePlacement)
}

func TestAllocateIsPure(t *testing.T) {
    layout := mustLayout(t, 14, 7)
    // Deliberately unsorted snapshot: the engine must not reorder it.
    free := []model.Seat{
        {ID: 10, Row: 2, Position: 3},
        {ID: 3, Row: 1, Position: 3},
        {ID: 8, Row: 2, Position: 1},
        {ID: 1, Row: 1, Position: 1},
        {ID: 9, Row: 2, Position: 2},
    }
    snapshot := make([]model.Seat, len(free))
    copy(snapshot, free)

    first, err := Allocate(layout, free, 3)
    require.NoError(t, err)
    second, err := Allocate(layout, free, 3)
    require.NoError(t, err)

    require.Equal(t, first, second)
    require.Equal(t, snapshot, free, "input snapshot must not be mutated")
}

func TestAllocateDefaultVenueFillsFrontRowFirst(t *testing.T) {
    // Default venue: 80 seats, rows of 7, row 12 holds 3.  A fully free
    // venue seats any party in row 1 starting at position 1.
    layout := mustLayout(t, 80, 7)
    rows := map[int][]int{}
    for r := 1; r <= layout.Rows(); r++ {
        for p := 1; p <= layout.RowSize(r); p++ {
            rows[r] = append(rows[r], p)
        }
    }
    free := freeSeats(7, rows)

    for size := 1; size <= 7; size++ {
        got, err := Allocate(layout, free, size)
        require.NoError(t, err)
        require.Len(t, got, size)
        for i, s := range got {
            require.Equal(t, uint32(1), s.Row)
            require.Equal(t, uint32(i+1), s.Position)
        }
    }
}
