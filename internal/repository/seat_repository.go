package repository // repository defines data access for seats

import (
    "context"      // context allows query cancellation and timeouts
    "database/sql" // sql provides DB primitives
    "strings"

    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/venue"
)

// SeatRepo provides seat persistence backed by MySQL.  It implements the
// booking.SeatStore contract: snapshot reads plus a set-wise conditional
// update that either books every requested seat or none of them.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
    return &SeatRepo{db: db}
}

// Seed populates the seats table from the venue layout when the table is
// empty.  It is idempotent: a venue that already has seats is left alone,
// so restarting the server never duplicates or reshuffles seats.
func (r *SeatRepo) Seed(ctx context.Context, layout *venue.Layout) error {
    var count int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats`).Scan(&count); err != nil {
        return err
    }
    if count > 0 {
        return nil
    }
    query := `INSERT INTO seats (row_no, position) VALUES `
    args := make([]interface{}, 0, layout.TotalSeats()*2)
    first := true
    for row := 1; row <= layout.Rows(); row++ {
        for pos := 1; pos <= layout.RowSize(row); pos++ {
            if !first {
                query += ","
            }
            query += "(?, ?)"
            args = append(args, row, pos)
            first = false
        }
    }
    _, err := r.db.ExecContext(ctx, query, args...)
    return err
}

// FreeSeats returns the snapshot of all unbooked seats ordered by
// (row, position).  This is the allocation engine's sole input.
func (r *SeatRepo) FreeSeats(ctx context.Context) ([]model.Seat, error) {
    const q = `SELECT id, row_no, position, is_booked
               FROM seats
               WHERE is_booked = 0
               ORDER BY row_no, position`
    return r.querySeats(ctx, q)
}

// AllSeats returns every seat, booked or not, ordered by (row, position).
func (r *SeatRepo) AllSeats(ctx context.Context) ([]model.Seat, error) {
    const q = `SELECT id, row_no, position, is_booked
               FROM seats
               ORDER BY row_no, position`
    return r.querySeats(ctx, q)
}

func (r *SeatRepo) querySeats(ctx context.Context, q string) ([]model.Seat, error) {
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]model.Seat, 0)
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.Row, &s.Position, &s.Booked); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}

// BookSeats marks the given seats booked, but only if every one of them is
// still free.  The check and the update are a single UPDATE statement inside
// a transaction: when the affected-row count differs from the requested set
// size, at least one seat was claimed by a racing booking since the caller's
// snapshot, and the whole transaction is rolled back with ErrSeatConflict.
func (r *SeatRepo) BookSeats(ctx context.Context, seatIDs []uint64) error {
    if len(seatIDs) == 0 {
        return nil
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    placeholders := make([]string, len(seatIDs))
    args := make([]interface{}, len(seatIDs))
    for i, id := range seatIDs {
        placeholders[i] = "?"
        args[i] = id
    }
    query := `UPDATE seats SET is_booked = 1
              WHERE id IN (` + strings.Join(placeholders, ",") + `) AND is_booked = 0`
    res, err := tx.ExecContext(ctx, query, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n != int64(len(seatIDs)) {
        return ErrSeatConflict
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ResetAll frees every booked seat in one statement and returns how many
// seats were transitioned.  The single UPDATE keeps the reset atomic with
// respect to in-flight bookings.
func (r *SeatRepo) ResetAll(ctx context.Context) (int64, error) {
    res, err := r.db.ExecContext(ctx, `UPDATE seats SET is_booked = 0 WHERE is_booked = 1`)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
