package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meetingRoomBooking/internal/booking"
	"meetingRoomBooking/models"
)

// BookingHandler serves the reservation endpoints. Authorization
// (owner-or-admin on modify/delete) is enforced here; the scheduler
// itself is authorization-agnostic.
type BookingHandler struct {
	scheduler *booking.Service
	store     booking.Store
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(scheduler *booking.Service, store booking.Store) *BookingHandler {
	return &BookingHandler{scheduler: scheduler, store: store}
}

type bookingRequest struct {
	Date      string `json:"date" binding:"required"`
	Start     string `json:"start" binding:"required"`
	End       string `json:"end" binding:"required"`
	Attendees int    `json:"attendees" binding:"required"`
	Purpose   string `json:"purpose"`
}

type blocker struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	OwnerName      string `json:"owner_name"`
	OwnerStudentID string `json:"owner_student_id"`
}

func blockersOf(bs []models.Booking) []blocker {
	out := make([]blocker, 0, len(bs))
	for _, b := range bs {
		out = append(out, blocker{
			Start:          b.Start,
			End:            b.End,
			OwnerName:      b.OwnerName,
			OwnerStudentID: b.OwnerStudentID,
		})
	}
	return out
}

type listResponse struct {
	Bookings []models.Booking `json:"bookings"`
	Warning  string           `json:"warning,omitempty"`
}

// respondSchedulerError translates core scheduling errors into HTTP replies.
func respondSchedulerError(c *gin.Context, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.As(err, &conflict):
		msg := "the requested time slot conflicts with existing bookings"
		if conflict.Cause != nil {
			msg = "conflict status could not be verified; booking rejected"
		}
		RespondError(c, NewAppError(http.StatusConflict, "CONFLICT", msg, blockersOf(conflict.Blockers)))
	case errors.Is(err, booking.ErrOutOfWindow):
		RespondError(c, NewAppError(http.StatusBadRequest, "OUT_OF_WINDOW", err.Error(), nil))
	case errors.Is(err, booking.ErrInvalidInterval):
		RespondError(c, NewAppError(http.StatusBadRequest, "INVALID_INTERVAL", err.Error(), nil))
	case errors.Is(err, booking.ErrNotFound):
		RespondError(c, NewAppError(http.StatusNotFound, "NOT_FOUND", "booking not found", nil))
	default:
		RespondError(c, err)
	}
}

// Day returns every booking on one date, ordered by start time.
func (h *BookingHandler) Day(c *gin.Context) {
	date := c.Param("date")
	if _, err := booking.ParseDate(date); err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD", nil))
		return
	}
	list, err := h.scheduler.DaySchedule(c.Request.Context(), date)
	resp := listResponse{Bookings: list}
	if errors.Is(err, booking.ErrStoreDegraded) {
		resp.Warning = booking.ErrStoreDegraded.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// List returns the caller's current-or-future bookings. Admins may pass
// ?all=1 to see everyone's.
func (h *BookingHandler) List(c *gin.Context) {
	p, _ := PrincipalFrom(c)
	ownerID := p.UserID
	if c.Query("all") != "" {
		if !p.IsAdmin() {
			RespondError(c, NewAppError(http.StatusForbidden, "FORBIDDEN", "only admins can list all bookings", nil))
			return
		}
		ownerID = 0
	}

	list, err := h.scheduler.VisibleFor(c.Request.Context(), ownerID)
	resp := listResponse{Bookings: list}
	if errors.Is(err, booking.ErrStoreDegraded) {
		resp.Warning = booking.ErrStoreDegraded.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Create proposes a new booking owned by the caller.
func (h *BookingHandler) Create(c *gin.Context) {
	p, _ := PrincipalFrom(c)
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "date, start, end and attendees are required", nil))
		return
	}

	id, err := h.scheduler.Propose(c.Request.Context(), booking.Proposal{
		OwnerID:   p.UserID,
		Date:      req.Date,
		Start:     req.Start,
		End:       req.End,
		Attendees: req.Attendees,
		Purpose:   req.Purpose,
	})
	if err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update edits a booking in place. Only the owner or an admin may edit.
func (h *BookingHandler) Update(c *gin.Context) {
	p, _ := PrincipalFrom(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "invalid booking id", nil))
		return
	}
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "date, start, end and attendees are required", nil))
		return
	}

	existing, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not load booking", nil))
		return
	}
	if existing == nil {
		RespondError(c, NewAppError(http.StatusNotFound, "NOT_FOUND", "booking not found", nil))
		return
	}
	if existing.UserID != p.UserID && !p.IsAdmin() {
		RespondError(c, NewAppError(http.StatusForbidden, "FORBIDDEN", "only the owner or an admin can edit a booking", nil))
		return
	}

	if err := h.scheduler.ProposeEdit(c.Request.Context(), id, booking.Proposal{
		OwnerID:   existing.UserID,
		Date:      req.Date,
		Start:     req.Start,
		End:       req.End,
		Attendees: req.Attendees,
		Purpose:   req.Purpose,
	}); err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Delete removes a booking. Only the owner or an admin may delete.
func (h *BookingHandler) Delete(c *gin.Context) {
	p, _ := PrincipalFrom(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "invalid booking id", nil))
		return
	}

	existing, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not load booking", nil))
		return
	}
	if existing == nil {
		RespondError(c, NewAppError(http.StatusNotFound, "NOT_FOUND", "booking not found", nil))
		return
	}
	if existing.UserID != p.UserID && !p.IsAdmin() {
		RespondError(c, NewAppError(http.StatusForbidden, "FORBIDDEN", "only the owner or an admin can delete a booking", nil))
		return
	}

	if err := h.scheduler.Remove(c.Request.Context(), id); err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
