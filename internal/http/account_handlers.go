package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/storefront-service/internal/account"
	"github.com/fairyhunter13/storefront-service/internal/model"
)

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func (a *App) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	os, err := a.Orders.List(r.Context(), id.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (a *App) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	o, err := a.Orders.Get(r.Context(), id.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *App) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	p, err := a.Accounts.Profile(r.Context(), id.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) putProfileHandler(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	id, _ := IdentityFromContext(r.Context())
	saved, err := a.Accounts.SaveProfile(r.Context(), id.ID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// claimAdminHandler answers 200 both for a fresh claim and for a caller who
// already holds the role.
func (a *App) claimAdminHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	err := a.Accounts.ClaimAdmin(r.Context(), id.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"admin": true, "status": "claimed"})
	case errors.Is(err, account.ErrAlreadyAdmin):
		writeJSON(w, http.StatusOK, map[string]any{"admin": true, "status": "already_admin"})
	default:
		writeError(w, r, err)
	}
}

func (a *App) adminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	os, err := a.Orders.ListAll(r.Context(), model.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (a *App) adminUpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	o, err := a.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
