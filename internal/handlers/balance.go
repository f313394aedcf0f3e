package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

//go:generate mockgen -source=balance.go -destination=mock_balance_test.go -package=handlers

// BalanceReader defines the interface that the query service must implement.
type BalanceReader interface {
	GetBalance(ctx context.Context, ownerID uuid.UUID) (money.Amount, error)
}

// BalanceResponse represents a successful response with the account balance
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Balance in major units
	// default: 1250.50
	Balance money.Amount `json:"balance" swaggertype:"number"`
}

// NewGetBalanceHandler returns an HTTP handler for fetching the caller's balance.
// @Summary Get account balance
// @Description Returns the current balance of the caller's account
// @Tags account
// @Produce json
// @Success 200 {object} handlers.BalanceResponse "Account balance"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /account/balance [get]
// @Security BearerAuth
func NewGetBalanceHandler(svc BalanceReader, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r, tokener)
		if !ok {
			return
		}

		balance, err := svc.GetBalance(r.Context(), ownerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
	}
}
