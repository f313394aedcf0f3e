package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

//go:generate mockgen -source=transfer.go -destination=mock_transfer_test.go -package=handlers

// Transferer defines the interface that the transfer service must implement.
type Transferer interface {
	Transfer(ctx context.Context, fromOwnerID, toOwnerID uuid.UUID, amount string) error
}

// TransferRequest represents the JSON body for sending money
// swagger:model TransferRequest
type TransferRequest struct {
	// Recipient user id
	// required: true
	To string `json:"to" validate:"required"`

	// Amount in major units, number or string with at most two decimals
	// required: true
	// default: 25
	Amount json.RawMessage `json:"amount" validate:"required" swaggertype:"number"`
}

// NewTransferHandler returns an HTTP handler for sending money to another user.
// @Summary Transfer money
// @Description Atomically moves funds from the caller to the recipient and records a debit and a credit entry
// @Tags account
// @Accept json
// @Produce json
// @Param request body handlers.TransferRequest true "Transfer Request"
// @Success 200 {object} handlers.MessageResponse "Transfer successful"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount, invalid account, self transfer or insufficient balance"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 409 {object} handlers.ErrorResponse "Concurrent update"
// @Failure 500 {object} handlers.ErrorResponse "Transfer failed"
// @Router /account/transfer [post]
// @Security BearerAuth
func NewTransferHandler(svc Transferer, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r, tokener)
		if !ok {
			return
		}

		req, ok := decodeAndValidate[TransferRequest](w, r)
		if !ok {
			return
		}

		// A malformed id names no account; the service reports it as an
		// invalid recipient after the amount checks.
		to, err := uuid.Parse(req.To)
		if err != nil {
			to = uuid.Nil
		}

		if err := svc.Transfer(r.Context(), ownerID, to, rawAmount(req.Amount)); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Transfer successful"})
	}
}
