package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

// TransferService moves value between two accounts.
type TransferService struct {
	ledger       LedgerStore
	accounts     AccountLocker
	transactions TransactionAppender
	profiles     ProfileResolver
	publisher    TransactionPublisher
	retry        RetryPolicy
}

// NewTransferService creates a TransferService. publisher may be nil.
func NewTransferService(
	ledger LedgerStore,
	accounts AccountLocker,
	transactions TransactionAppender,
	profiles ProfileResolver,
	publisher TransactionPublisher,
	retry RetryPolicy,
) *TransferService {
	return &TransferService{
		ledger:       ledger,
		accounts:     accounts,
		transactions: transactions,
		profiles:     profiles,
		publisher:    publisher,
		retry:        retry,
	}
}

// Transfer moves rawAmount from the account of fromOwnerID to the account of
// toOwnerID. Either both balances change and both records are written, or
// nothing is.
func (s *TransferService) Transfer(ctx context.Context, fromOwnerID, toOwnerID uuid.UUID, rawAmount string) error {
	amount, err := money.Parse(rawAmount)
	if err != nil {
		logger.Log.Warnw("invalid transfer amount", "from", fromOwnerID, "amount", rawAmount, "error", err)
		return models.ErrInvalidAmount
	}

	if fromOwnerID == toOwnerID {
		return models.ErrSelfTransfer
	}

	var records []models.TransactionDB
	err = s.retry.run(ctx, func() error {
		var err error
		records, err = s.apply(ctx, fromOwnerID, toOwnerID, amount)
		return err
	})
	if err != nil {
		logger.Log.Errorw("transfer failed",
			"from", fromOwnerID,
			"to", toOwnerID,
			"amount", amount,
			"error", err,
		)
		return classifyTransferError(err)
	}

	logger.Log.Infow("transfer committed",
		"from", fromOwnerID,
		"to", toOwnerID,
		"amount", amount,
		"transferID", records[0].TransferID.UUID,
	)

	if s.publisher != nil {
		s.publisher.Publish(ctx, records...)
	}
	return nil
}

func (s *TransferService) apply(ctx context.Context, fromOwnerID, toOwnerID uuid.UUID, amount money.Amount) ([]models.TransactionDB, error) {
	var records []models.TransactionDB

	err := s.ledger.ApplyAtomic(ctx, func(ctx context.Context) error {
		locked, err := s.accounts.LockByOwnerIDs(ctx, fromOwnerID, toOwnerID)
		if err != nil {
			return err
		}

		sender, ok := locked[fromOwnerID]
		if !ok || sender.Balance < amount {
			return models.ErrInsufficientFunds
		}
		recipient, ok := locked[toOwnerID]
		if !ok {
			return models.ErrInvalidRecipient
		}

		senderProfile, err := s.profiles.Profile(ctx, fromOwnerID)
		if err != nil {
			return err
		}
		recipientProfile, err := s.profiles.Profile(ctx, toOwnerID)
		if err != nil {
			return err
		}

		if _, err := s.accounts.AdjustBalance(ctx, sender.AccountID, -amount); err != nil {
			return err
		}
		if _, err := s.accounts.AdjustBalance(ctx, recipient.AccountID, amount); err != nil {
			return err
		}

		transferID := uuid.NullUUID{UUID: uuid.New(), Valid: true}
		now := time.Now().UTC()
		records = []models.TransactionDB{
			{
				TransactionID: uuid.New(),
				OwnerID:       fromOwnerID,
				Amount:        amount,
				Kind:          models.Debit,
				Counterparty:  recipientProfile.DisplayName(),
				Description:   "Transferred money to " + recipientProfile.FirstName,
				TransferID:    transferID,
				CreatedAt:     now,
			},
			{
				TransactionID: uuid.New(),
				OwnerID:       toOwnerID,
				Amount:        amount,
				Kind:          models.Credit,
				Counterparty:  senderProfile.DisplayName(),
				Description:   "Received money from " + senderProfile.FirstName,
				TransferID:    transferID,
				CreatedAt:     now,
			},
		}
		return s.transactions.Append(ctx, records...)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// classifyTransferError passes precondition failures through unchanged and
// reports everything else as ErrTransferFailed, keeping the cause in the chain.
func classifyTransferError(err error) error {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInvalidRecipient),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrSelfTransfer),
		errors.Is(err, models.ErrTransferFailed):
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrTransferFailed, err)
}
