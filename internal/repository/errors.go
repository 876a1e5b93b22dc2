// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking coordinator and handlers to distinguish between different
// failure scenarios without inspecting error strings.
package repository

import "errors"

// ErrSeatConflict is returned by BookSeats when one or more of the chosen
// seats was booked by a concurrent request between the snapshot read and
// the commit. The whole operation is rolled back; no seat is left
// half-booked. The coordinator treats this as retryable.
var ErrSeatConflict = errors.New("seat conflict")

// ErrEmailExists is returned when registering a user whose email is
// already taken. Handlers should translate this into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")
