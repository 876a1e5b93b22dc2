// Package queue defines message payloads exchanged over the message broker.
package queue

// BookedSeat identifies one seat inside a SeatsBookedEvent.
type BookedSeat struct {
    SeatID   uint64 `json:"seat_id"`
    Row      uint32 `json:"row"`
    Position uint32 `json:"position"`
}

// SeatsBookedEvent is published when a booking commits successfully.  It
// carries enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.
type SeatsBookedEvent struct {
    UserID    uint64       `json:"user_id"`
    PartySize int          `json:"party_size"`
    Seats     []BookedSeat `json:"seats"`
    BookedAt  string       `json:"booked_at"`
}
