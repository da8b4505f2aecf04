package handlers

import (
	"errors"
	"net/http"

	recordsRepo "stayhub/database/repository/records"
	"stayhub/models"
	"stayhub/services/booking"
	"stayhub/services/lockmgr"
	"stayhub/services/normalize"
	"stayhub/services/supplier"
	"stayhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the transaction facade over HTTP.
type BookingHandler struct {
	svc    booking.TransactionService
	logger *zap.Logger
}

// NewBookingHandler builds the handler set around the facade.
func NewBookingHandler(svc booking.TransactionService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

// Search runs an availability search against the supplier.
func (h *BookingHandler) Search(c *gin.Context) {
	var criteria models.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid search criteria", err.Error())
		return
	}
	results, err := h.svc.Search(c.Request.Context(), criteria)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotels": results})
}

// Lock freezes price and availability for a room offer.
func (h *BookingHandler) Lock(c *gin.Context) {
	var input struct {
		RoomCode string           `json:"roomCode" binding:"required"`
		Offer    models.RoomOffer `json:"offer"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid lock request", err.Error())
		return
	}
	result, err := h.svc.Lock(c.Request.Context(), input.RoomCode, input.Offer)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitGuest attaches guest details to a transaction.
func (h *BookingHandler) SubmitGuest(c *gin.Context) {
	var input struct {
		TxID  string              `json:"txId" binding:"required"`
		Guest models.GuestDetails `json:"guest"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid guest payload", err.Error())
		return
	}
	tx, err := h.svc.SubmitGuest(c.Request.Context(), input.TxID, input.Guest)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// AuthorizePayment authorizes payment for the locked price.
func (h *BookingHandler) AuthorizePayment(c *gin.Context) {
	var input struct {
		TxID    string                `json:"txId" binding:"required"`
		Payment models.PaymentRequest `json:"payment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payment payload", err.Error())
		return
	}
	tx, err := h.svc.AuthorizePayment(c.Request.Context(), input.TxID, input.Payment)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Confirm finalizes the booking with the supplier.
func (h *BookingHandler) Confirm(c *gin.Context) {
	var input struct {
		TxID string `json:"txId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid confirm payload", err.Error())
		return
	}
	record, err := h.svc.Confirm(c.Request.Context(), input.TxID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Cancel releases a transaction or cancels an archived booking.
func (h *BookingHandler) Cancel(c *gin.Context) {
	ref := c.Param("ref")
	if err := h.svc.Cancel(c.Request.Context(), ref); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": ref})
}

// GetBooking returns an archived booking record. Only a genuinely missing
// record reads as 404; a repository failure is a server-side error.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	record, err := h.svc.GetBooking(c.Request.Context(), c.Param("ref"))
	if err != nil {
		if errors.Is(err, recordsRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found", c.Param("ref"))
			return
		}
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// renderError maps the engine's typed errors to HTTP statuses with messages a
// storefront can show. Every failure path gets a distinct message.
func (h *BookingHandler) renderError(c *gin.Context, err error) {
	var (
		lockExpired   *lockmgr.LockExpiredError
		lockGone      *lockmgr.LockNotAvailableError
		badTransition *booking.InvalidTransitionError
		txGone        *booking.TxNotFoundError
		guestBad      *booking.GuestValidationError
		declined      *booking.PaymentDeclinedError
		rejected      *booking.BookingRejectedError
		prebookFail   *normalize.PreBookRejectedError
		parseFail     *normalize.NormalizeError
		authGone      *supplier.AuthExhaustedError
		upstream      *supplier.SupplierError
	)
	switch {
	case errors.As(err, &lockExpired):
		utils.JSONError(c, http.StatusConflict,
			"Your price lock has expired. Prices may have changed, please search again.", err.Error())
	case errors.As(err, &lockGone):
		utils.JSONError(c, http.StatusConflict,
			"This room is no longer held for you. Please lock it again.", err.Error())
	case errors.As(err, &badTransition):
		utils.JSONError(c, http.StatusConflict,
			"This booking step is not available right now.", err.Error())
	case errors.As(err, &txGone):
		utils.JSONError(c, http.StatusNotFound,
			"Your booking session was not found or has expired. Please start over.", err.Error())
	case errors.As(err, &guestBad):
		utils.JSONError(c, http.StatusUnprocessableEntity,
			"Please complete the guest details.", err.Error())
	case errors.As(err, &declined):
		utils.JSONError(c, http.StatusPaymentRequired,
			"Payment was declined. Please try a different payment method.", err.Error())
	case errors.As(err, &rejected):
		utils.JSONError(c, http.StatusBadGateway,
			"The hotel could not confirm your booking. You have not been charged.", err.Error())
	case errors.As(err, &prebookFail):
		utils.JSONError(c, http.StatusConflict,
			"This rate could not be held. Please pick another room.", err.Error())
	case errors.As(err, &parseFail):
		h.logger.Error("supplier payload unparseable", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway,
			"We could not read the hotel system's response. Please try again.", "")
	case errors.As(err, &authGone):
		utils.JSONError(c, http.StatusServiceUnavailable,
			"The hotel system is temporarily unavailable. Please retry shortly.", err.Error())
	case errors.As(err, &upstream):
		utils.JSONError(c, http.StatusBadGateway,
			"The hotel system reported a problem.", err.Error())
	default:
		h.logger.Error("booking request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError,
			"Something went wrong. Please try again.", "")
	}
}
