package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

// DepositService credits funds to a single account.
type DepositService struct {
	ledger       LedgerStore
	accounts     AccountLocker
	transactions TransactionAppender
	publisher    TransactionPublisher
	retry        RetryPolicy
}

// NewDepositService creates a DepositService. publisher may be nil.
func NewDepositService(
	ledger LedgerStore,
	accounts AccountLocker,
	transactions TransactionAppender,
	publisher TransactionPublisher,
	retry RetryPolicy,
) *DepositService {
	return &DepositService{
		ledger:       ledger,
		accounts:     accounts,
		transactions: transactions,
		publisher:    publisher,
		retry:        retry,
	}
}

// Deposit adds rawAmount to the account of ownerID and returns the new balance.
func (s *DepositService) Deposit(ctx context.Context, ownerID uuid.UUID, rawAmount string) (money.Amount, error) {
	amount, err := money.Parse(rawAmount)
	if err != nil {
		logger.Log.Warnw("invalid deposit amount", "ownerID", ownerID, "amount", rawAmount, "error", err)
		return 0, models.ErrInvalidAmount
	}

	var (
		balance money.Amount
		record  models.TransactionDB
	)
	err = s.retry.run(ctx, func() error {
		return s.ledger.ApplyAtomic(ctx, func(ctx context.Context) error {
			locked, err := s.accounts.LockByOwnerIDs(ctx, ownerID)
			if err != nil {
				return err
			}
			account, ok := locked[ownerID]
			if !ok {
				return models.ErrAccountNotFound
			}

			balance, err = s.accounts.AdjustBalance(ctx, account.AccountID, amount)
			if err != nil {
				return err
			}

			record = models.TransactionDB{
				TransactionID: uuid.New(),
				OwnerID:       ownerID,
				Amount:        amount,
				Kind:          models.Credit,
				Description:   models.DepositDescription,
				CreatedAt:     time.Now().UTC(),
			}
			return s.transactions.Append(ctx, record)
		})
	})
	if err != nil {
		logger.Log.Errorw("deposit failed", "ownerID", ownerID, "amount", amount, "error", err)
		return 0, err
	}

	logger.Log.Infow("deposit committed", "ownerID", ownerID, "amount", amount, "balance", balance)

	if s.publisher != nil {
		s.publisher.Publish(ctx, record)
	}
	return balance, nil
}
