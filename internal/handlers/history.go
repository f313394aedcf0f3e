package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

//go:generate mockgen -source=history.go -destination=mock_history_test.go -package=handlers

// HistoryReader defines the interface that the query service must implement.
type HistoryReader interface {
	GetHistory(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.TransactionDB, error)
}

// HistoryResponse lists ledger entries newest first
// swagger:model HistoryResponse
type HistoryResponse struct {
	Transactions []models.TransactionDB `json:"transactions"`
}

// NewGetHistoryHandler returns an HTTP handler for the caller's transaction history.
// @Summary Get transaction history
// @Description Returns the caller's ledger entries ordered from newest to oldest
// @Tags account
// @Produce json
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Entries to skip"
// @Success 200 {object} handlers.HistoryResponse "Transaction history"
// @Failure 400 {object} handlers.ErrorResponse "Invalid paging parameters"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /account/transactions [get]
// @Security BearerAuth
func NewGetHistoryHandler(svc HistoryReader, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r, tokener)
		if !ok {
			return
		}

		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}

		records, err := svc.GetHistory(r.Context(), ownerID, limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, HistoryResponse{Transactions: records})
	}
}
