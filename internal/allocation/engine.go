// Package allocation implements the seat selection algorithm.  The engine is
// a pure function of its inputs: it reads a free-seat snapshot and proposes
// which seats to book, but never touches the store itself.  Committing the
// proposal (and detecting races) is the booking coordinator's job.
package allocation

import (
    "errors"
    "sort"

    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/venue"
)

// MaxPartySize is the largest group a single booking may cover.
const MaxPartySize = 7

var (
    // ErrInvalidPartySize is returned when the requested party size is
    // outside 1..MaxPartySize.  Callers validate before reading the store;
    // the engine checks again so it can never be driven out of range.
    ErrInvalidPartySize = errors.New("party size must be between 1 and 7")

    // ErrInsufficientSeats is returned when fewer free seats exist in the
    // whole venue than the party needs.  Retrying cannot help until a seat
    // is freed.
    ErrInsufficientSeats = errors.New("not enough seats available")

    // ErrNoSuitablePlacement is returned when enough seats exist overall
    // but neither phase produced a qualifying block.
    ErrNoSuitablePlacement = errors.New("could not find suitable seats")
)

// Allocate selects partySize seats from the free-seat snapshot.
//
// Phase A scans rows front to back for the leftmost run of partySize seats
// whose positions are consecutive, so a party sits together whenever any
// single row can hold it.  Phase B falls back to the narrowest span of
// adjacent rows whose combined free count covers the party (earliest span
// on ties) and takes seats from it in row-then-position order, without a
// second contiguity pass inside the span.
//
// The snapshot is not modified; calling Allocate twice with the same inputs
// yields the same result.
func Allocate(layout *venue.Layout, freeSeats []model.Seat, partySize int) ([]model.Seat, error) {
    if partySize < 1 || partySize > MaxPartySize {
        return nil, ErrInvalidPartySize
    }
    if len(freeSeats) < partySize {
        return nil, ErrInsufficientSeats
    }

    byRow := groupByRow(layout, freeSeats)

    if run := sameRowRun(byRow, partySize); run != nil {
        return run, nil
    }
    if picked := nearestRows(byRow, partySize); picked != nil {
        return picked, nil
    }
    return nil, ErrNoSuitablePlacement
}

// groupByRow partitions the snapshot into per-row slices indexed by row-1,
// each sorted by position.  Rows with no free seats are present but empty so
// the span search can treat rows as a dense ordered sequence.  The input
// slice is copied, never reordered in place.
func groupByRow(layout *venue.Layout, freeSeats []model.Seat) [][]model.Seat {
    rows := layout.Rows()
    byRow := make([][]model.Seat, rows)
    for _, s := range freeSeats {
        r := int(s.Row)
        if r < 1 || r > rows {
            continue // seat outside the configured layout; ignore
        }
        byRow[r-1] = append(byRow[r-1], s)
    }
    for i := range byRow {
        sort.Slice(byRow[i], func(a, b int) bool {
            return byRow[i][a].Position < byRow[i][b].Position
        })
    }
    return byRow
}

// sameRowRun finds the first row (ascending) holding a run of partySize
// seats with consecutive positions and returns the leftmost such run, or
// nil when no row qualifies.
func sameRowRun(byRow [][]model.Seat, partySize int) []model.Seat {
    for _, rowFree := range byRow {
        for i := 0; i+partySize <= len(rowFree); i++ {
            if consecutive(rowFree[i : i+partySize]) {
                run := make([]model.Seat, partySize)
                copy(run, rowFree[i:i+partySize])
                return run
            }
        }
    }
    return nil
}

// consecutive reports whether the seats occupy consecutive positions.  The
// caller guarantees the slice is sorted by position.
func consecutive(seats []model.Seat) bool {
    for i := 1; i < len(seats); i++ {
        if seats[i].Position != seats[0].Position+uint32(i) {
            return false
        }
    }
    return true
}

// nearestRows implements the fallback phase: among all contiguous spans of
// rows whose combined free-seat count covers the party, pick the one with
// the fewest rows, breaking ties by the earliest start row.  Seats are then
// taken from the winning span in row-then-position order.  Returns nil when
// no span has enough seats.
func nearestRows(byRow [][]model.Seat, partySize int) []model.Seat {
    rows := len(byRow)
    bestStart, bestEnd := -1, -1
    bestWidth := rows + 1
    for start := 0; start < rows; start++ {
        count := 0
        end := start
        for end < rows && count < partySize {
            count += len(byRow[end])
            end++
        }
        if count >= partySize && end-start < bestWidth {
            bestWidth = end - start
            bestStart, bestEnd = start, end
        }
    }
    if bestStart < 0 {
        return nil
    }
    picked := make([]model.Seat, 0, partySize)
    for r := bestStart; r < bestEnd && len(picked) < partySize; r++ {
        for _, s := range byRow[r] {
            picked = append(picked, s)
            if len(picked) == partySize {
                break
            }
        }
    }
    return picked
}
