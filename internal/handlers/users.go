package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

//go:generate mockgen -source=users.go -destination=mock_users_test.go -package=handlers

// UserSearcher defines the interface that the account directory must implement.
type UserSearcher interface {
	Search(ctx context.Context, filter string) ([]models.Profile, error)
}

// UsersResponse lists users matching a name filter
// swagger:model UsersResponse
type UsersResponse struct {
	Users []models.Profile `json:"users"`
}

// NewSearchUsersHandler returns an HTTP handler for finding transfer recipients by name.
// @Summary Search users
// @Description Case-insensitive match on first or last name
// @Tags user
// @Produce json
// @Param filter query string false "Part of a first or last name"
// @Success 200 {object} handlers.UsersResponse "Matching users"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /user/bulk [get]
func NewSearchUsersHandler(svc UserSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := svc.Search(r.Context(), r.URL.Query().Get("filter"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, UsersResponse{Users: profiles})
	}
}
