package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/services"
)

//go:generate mockgen -source=register.go -destination=mock_register_test.go -package=handlers

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, in services.RegisterInput) (string, error)
}

// RegisterRequest represents the JSON body for signing up
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Email used as username
	// required: true
	// default: john@example.com
	Username string `json:"username" validate:"required,email"`

	// First name
	// required: true
	// default: John
	FirstName string `json:"first_name" validate:"required"`

	// Last name
	// required: true
	// default: Doe
	LastName string `json:"last_name" validate:"required"`

	// Password, at least 6 characters
	// required: true
	// default: secret123
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterResponse represents a successful signup response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Success message
	// default: User created successfully
	Message string `json:"message"`

	// JWT token
	// default: JWT_TOKEN
	Token string `json:"token"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a user together with its wallet account and returns a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "Register Request"
// @Success 200 {object} handlers.RegisterResponse "User created successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 409 {object} handlers.ErrorResponse "Email already taken"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /user/signup [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeAndValidate[RegisterRequest](w, r)
		if !ok {
			return
		}

		token, err := svc.Register(r.Context(), services.RegisterInput{
			Username:  strings.ToLower(strings.TrimSpace(req.Username)),
			Password:  req.Password,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
		})
		if err != nil {
			if errors.Is(err, services.ErrUserAlreadyExists) {
				writeError(w, http.StatusConflict, "USER_EXISTS", "Email already taken")
				return
			}
			logger.Log.Errorw("failed to register user", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, RegisterResponse{
			Message: "User created successfully",
			Token:   token,
		})
	}
}
