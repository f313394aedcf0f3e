package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrUserDoesNotExist   = errors.New("username does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// InitialBalanceFunc picks the starting balance of a new account.
type InitialBalanceFunc func() money.Amount

// RandomInitialBalance returns a policy picking a balance uniformly in [min, max).
// A degenerate range always yields min.
func RandomInitialBalance(min, max money.Amount) InitialBalanceFunc {
	return func() money.Amount {
		if max <= min {
			return min
		}
		return min + money.Amount(rand.Int64N(int64(max-min)))
	}
}

// RegisterInput holds the data needed to sign up.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// AuthService handles registration and login.
type AuthService struct {
	ledger         LedgerStore
	reader         UserReader
	writer         UserWriter
	accounts       AccountOpener
	jwt            JWTGenerator
	initialBalance InitialBalanceFunc
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	ledger LedgerStore,
	reader UserReader,
	writer UserWriter,
	accounts AccountOpener,
	jwt JWTGenerator,
	initialBalance InitialBalanceFunc,
) *AuthService {
	return &AuthService{
		ledger:         ledger,
		reader:         reader,
		writer:         writer,
		accounts:       accounts,
		jwt:            jwt,
		initialBalance: initialBalance,
	}
}

// Register creates the user together with its account and returns a JWT token.
func (svc *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	user, err := svc.reader.GetByUsername(ctx, in.Username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return "", err
	}
	if user != nil {
		logger.Log.Errorw("user already exists", "username", in.Username)
		return "", ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return "", err
	}

	now := time.Now().UTC()
	newUser := models.UserDB{
		UserID:       uuid.New(),
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var balance money.Amount
	if svc.initialBalance != nil {
		balance = svc.initialBalance()
	}

	err = svc.ledger.ApplyAtomic(ctx, func(ctx context.Context) error {
		if err := svc.writer.Save(ctx, newUser); err != nil {
			return err
		}
		_, err := svc.accounts.Open(ctx, newUser.UserID, balance)
		return err
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			logger.Log.Errorw("user already exists", "username", in.Username)
			return "", ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return "", err
	}

	logger.Log.Infow("user registered", "userID", newUser.UserID, "initialBalance", balance)

	token, err := svc.jwt.Generate(ctx, newUser.UserID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}
	return token, nil
}

// Login authenticates a user and returns a JWT token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "username", username)
		return "", ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}
