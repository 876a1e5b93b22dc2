package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-seat-booking/internal/allocation"
    "github.com/iliyamo/venue-seat-booking/internal/booking"
    "github.com/iliyamo/venue-seat-booking/internal/queue"
    queue_publisher "github.com/iliyamo/venue-seat-booking/internal/service"
    "github.com/iliyamo/venue-seat-booking/internal/venue"
)

// BookingHandler exposes the seat booking endpoints.  All booking decisions
// are delegated to the coordinator; the handler only binds requests, maps
// failure reasons to HTTP statuses and publishes the booked event.  JWT
// authentication is applied by middleware before any of these run.
type BookingHandler struct {
    Coordinator *booking.Coordinator
    Layout      *venue.Layout
    // PublishEvents disables the RabbitMQ publish when false, used by tests.
    PublishEvents bool
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies must be
// non-nil.
func NewBookingHandler(co *booking.Coordinator, layout *venue.Layout) *BookingHandler {
    if co == nil || layout == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Coordinator: co, Layout: layout, PublishEvents: true}
}

type bookReq struct {
    PartySize int `json:"party_size"`
}

// BookSeats handles POST /v1/seats/book.  The body carries the party size;
// on success the chosen seats are returned in (row, position) order with a
// 201 status.  Allocation failures map to 400, exhausted retries to 409 and
// store trouble to 503.
func (h *BookingHandler) BookSeats(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req bookReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    seats, err := h.Coordinator.Book(c.Request().Context(), req.PartySize)
    if err != nil {
        switch {
        case errors.Is(err, allocation.ErrInvalidPartySize):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "party size must be between 1 and 7"})
        case errors.Is(err, allocation.ErrInsufficientSeats):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "not enough seats available"})
        case errors.Is(err, allocation.ErrNoSuitablePlacement):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not find suitable seats"})
        case errors.Is(err, booking.ErrContention):
            return c.JSON(http.StatusConflict, echo.Map{"error": "seats are contested, please retry"})
        case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
            return err // client went away; let echo log it
        default:
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "seat store unavailable"})
        }
    }

    if h.PublishEvents {
        ev := queue.SeatsBookedEvent{
            UserID:    userID,
            PartySize: req.PartySize,
            BookedAt:  time.Now().UTC().Format(time.RFC3339),
        }
        for _, s := range seats {
            ev.Seats = append(ev.Seats, queue.BookedSeat{SeatID: s.ID, Row: s.Row, Position: s.Position})
        }
        // The booking is already committed; publish failures are only logged.
        go func() { _ = queue_publisher.PublishSeatsBooked(context.Background(), ev) }()
    }

    return c.JSON(http.StatusCreated, echo.Map{"seats": seats})
}

// ListSeats handles GET /v1/seats.  It returns the full seat snapshot
// ordered by (row, position).
func (h *BookingHandler) ListSeats(c echo.Context) error {
    seats, err := h.Coordinator.ListSeats(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "seat store unavailable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": seats})
}

// ResetSeats handles POST /v1/seats/reset.  It frees every seat in one
// atomic operation and reports how many were transitioned.
func (h *BookingHandler) ResetSeats(c echo.Context) error {
    n, err := h.Coordinator.ResetAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "seat store unavailable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"reset": n})
}

// GetLayout handles GET /v1/layout.  The layout never changes after
// startup, which makes this endpoint an ideal target for the response
// cache middleware.
func (h *BookingHandler) GetLayout(c echo.Context) error {
    type layoutRow struct {
        Row   int `json:"row"`
        Seats int `json:"seats"`
    }
    rows := make([]layoutRow, 0, h.Layout.Rows())
    for r := 1; r <= h.Layout.Rows(); r++ {
        rows = append(rows, layoutRow{Row: r, Seats: h.Layout.RowSize(r)})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "rows":        rows,
        "total_seats": h.Layout.TotalSeats(),
    })
}

// getUserID extracts the user_id placed in context by the JWT middleware
// and converts it to uint64.  JWT numeric claims decode as float64, so all
// plausible representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}
