package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

const (
	// DefaultHistoryLimit is used when no positive limit is requested.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single history page.
	MaxHistoryLimit = 500
)

// QueryService answers balance and history reads.
type QueryService struct {
	directory    AccountResolver
	transactions TransactionReader
}

func NewQueryService(directory AccountResolver, transactions TransactionReader) *QueryService {
	return &QueryService{
		directory:    directory,
		transactions: transactions,
	}
}

// GetBalance returns the current balance of ownerID.
func (s *QueryService) GetBalance(ctx context.Context, ownerID uuid.UUID) (money.Amount, error) {
	account, err := s.directory.Resolve(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// GetHistory returns the ledger entries of ownerID, newest first.
func (s *QueryService) GetHistory(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.TransactionDB, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.transactions.ListByOwnerID(ctx, ownerID, limit, offset)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "ownerID", ownerID, "error", err)
		return nil, err
	}
	return records, nil
}
