package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

//go:generate mockgen -source=response.go -destination=mock_response_test.go -package=handlers

// Tokener defines the token methods the authenticated handlers need.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// ErrorResponse is the body of every failed request.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Stable machine readable code
	// default: INSUFFICIENT_FUNDS
	Code string `json:"code,omitempty"`

	// Error message
	// default: Insufficient balance
	Error string `json:"error"`
}

// MessageResponse is the body of operations that only report success.
// swagger:model MessageResponse
type MessageResponse struct {
	// Success message
	// default: Transfer successful
	Message string `json:"message"`
}

var validate = validator.New()

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// domainStatuses is checked in order: a TransferFailed error wrapping
// StorageUnavailable is reported as TransferFailed.
var domainStatuses = []struct {
	err    *models.Error
	status int
}{
	{models.ErrInvalidAmount, http.StatusBadRequest},
	{models.ErrAccountNotFound, http.StatusNotFound},
	{models.ErrInvalidRecipient, http.StatusBadRequest},
	{models.ErrSelfTransfer, http.StatusBadRequest},
	{models.ErrInsufficientFunds, http.StatusBadRequest},
	{models.ErrConflict, http.StatusConflict},
	{models.ErrTransferFailed, http.StatusInternalServerError},
	{models.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Error: message})
}

// writeDomainError translates a ledger error into its HTTP status and code.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, ds := range domainStatuses {
		if errors.Is(err, ds.err) {
			writeError(w, ds.status, ds.err.Code, ds.err.Message)
			return
		}
	}
	logger.Log.Errorw("internal server error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}

// decodeAndValidate decodes a JSON body into T and checks its validate tags.
// On failure it writes a 400 response and returns false.
func decodeAndValidate[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Log.Warnw("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		logger.Log.Warnw("request validation failed", "error", err)
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", validationMessage(err))
		return nil, false
	}
	return &req, true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long"
	default:
		return fe.Field() + " is invalid"
	}
}

// ownerFromRequest resolves the caller from the bearer token. On failure it
// writes a 401 response and returns false.
func ownerFromRequest(w http.ResponseWriter, r *http.Request, tokener Tokener) (uuid.UUID, bool) {
	ctx := r.Context()

	tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
	if err != nil {
		logger.Log.Errorw("failed to get token from request", "error", err)
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return uuid.Nil, false
	}

	claims, err := tokener.GetClaims(ctx, tokenStr)
	if err != nil {
		logger.Log.Errorw("failed to get claims from token", "error", err)
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// rawAmount turns a JSON number or string into the decimal text the ledger parses.
func rawAmount(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// queryInt reads a non-negative integer query parameter, def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
