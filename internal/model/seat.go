package model

// Seat describes a physical seat in the venue.  Seats are created once when
// the venue is initialised and never destroyed; only the Booked flag changes
// over time.  Seats are globally ordered by (Row, Position).
//
// Fields:
//  ID       – stable primary key identifier.
//  Row      – 1-based row index, counted from the front of the venue.
//  Position – 1-based position within the row, increasing left to right.
//             Positions within a row are contiguous with no gaps.
//  Booked   – whether the seat is currently booked.
type Seat struct {
    ID       uint64 `json:"seat_id"`  // seats.id
    Row      uint32 `json:"row"`      // seats.row_no
    Position uint32 `json:"position"` // seats.position
    Booked   bool   `json:"booked"`   // seats.is_booked
}
