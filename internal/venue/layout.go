// Package venue describes the static seating geometry of the venue.  The
// layout is pure data: it is computed once from configuration at startup and
// is immutable afterwards, so it can be shared freely between goroutines.
package venue

import "fmt"

// Layout is an ordered sequence of rows, each holding a fixed number of
// seats.  Row indexes are 1-based to match the seat records in the store.
type Layout struct {
    rowSizes []int
    total    int
}

// New builds a layout of totalSeats seats arranged in rows of seatsPerRow.
// When totalSeats is not a multiple of seatsPerRow, the final row holds the
// remainder.  For the default venue of 80 seats with 7 per row this yields
// rows 1..11 with 7 seats and row 12 with 3.
func New(totalSeats, seatsPerRow int) (*Layout, error) {
    if totalSeats < 1 {
        return nil, fmt.Errorf("venue: total seats must be positive, got %d", totalSeats)
    }
    if seatsPerRow < 1 {
        return nil, fmt.Errorf("venue: seats per row must be positive, got %d", seatsPerRow)
    }
    var sizes []int
    remaining := totalSeats
    for remaining > 0 {
        n := seatsPerRow
        if remaining < n {
            n = remaining
        }
        sizes = append(sizes, n)
        remaining -= n
    }
    return &Layout{rowSizes: sizes, total: totalSeats}, nil
}

// Rows returns the number of rows in the venue.
func (l *Layout) Rows() int { return len(l.rowSizes) }

// RowSize returns the number of seats in the given 1-based row, or 0 when
// the row does not exist.
func (l *Layout) RowSize(row int) int {
    if row < 1 || row > len(l.rowSizes) {
        return 0
    }
    return l.rowSizes[row-1]
}

// TotalSeats returns the total seat count across all rows.
func (l *Layout) TotalSeats() int { return l.total }
