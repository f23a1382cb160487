package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/postbridge/internal/httpx/response"
	"github.com/vadim/postbridge/internal/httpx/upstream/publer"
)

// AccountInfo represents a connected social account as exposed to the
// operator UI, with the canonical network key resolved.
type AccountInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Network string `json:"network"`
	Picture string `json:"picture,omitempty"`
	URL     string `json:"url,omitempty"`
}

// AccountDirectory defines the interface for listing connected accounts
type AccountDirectory interface {
	Accounts(ctx context.Context) ([]publer.Account, error)
}

// AccountHandler handles HTTP requests for the account directory
type AccountHandler struct {
	directory AccountDirectory
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(directory AccountDirectory) *AccountHandler {
	return &AccountHandler{directory: directory}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/accounts", h.List())
}

// List handles GET /accounts
func (h *AccountHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := h.directory.Accounts(r.Context())
		if err != nil {
			handlePublishError(w, err)
			return
		}

		infos := make([]AccountInfo, len(accounts))
		for i, a := range accounts {
			infos[i] = AccountInfo{
				ID:      a.ID,
				Name:    a.Name,
				Type:    a.Type,
				Network: string(a.Network()),
				Picture: a.Picture,
				URL:     a.URL,
			}
		}

		response.OK(w, map[string]interface{}{
			"accounts": infos,
			"total":    len(infos),
		})
	}
}
