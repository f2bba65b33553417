package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "courtside/pkg/errors"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"
)

// Settler applies one settlement outcome to the owning booking.
type Settler interface {
	HandleSettlement(ctx context.Context, paymentID, outcome, reason string) error
}

// CallbackRequest is the payment collaborator's settlement notification.
// Authenticity is enforced upstream by the webhook signature middleware.
type CallbackRequest struct {
	PaymentID string `json:"payment_id"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"`
}

type CallbackHandler struct {
	settler Settler
	log     *logger.Logger
}

func NewCallbackHandler(settler Settler, log *logger.Logger) *CallbackHandler {
	return &CallbackHandler{
		settler: settler,
		log:     log,
	}
}

func (h *CallbackHandler) Settle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Settle", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if req.PaymentID == "" || req.Outcome == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("payment_id and outcome are required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Settle", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.settler.HandleSettlement(r.Context(), req.PaymentID, req.Outcome, req.Reason); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Settle", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": "accepted"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Settle", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CallbackHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/callback", h.Settle)
}
