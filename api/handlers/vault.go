package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/openalpha/hwmvault/api/types"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// VaultHandler serves the read side of the pool
type VaultHandler struct {
	service types.VaultService
}

// NewVaultHandler creates a new VaultHandler
func NewVaultHandler(service types.VaultService) *VaultHandler {
	return &VaultHandler{service: service}
}

// RegisterRoutes registers vault API routes under /v1/vault. mw applies to
// these routes only.
func (h *VaultHandler) RegisterRoutes(r *mux.Router, mw ...mux.MiddlewareFunc) {
	v := r.PathPrefix("/v1/vault").Subrouter()
	v.Use(mw...)

	v.HandleFunc("", h.GetVault).Methods(http.MethodGet)
	v.HandleFunc("/price", h.GetPrice).Methods(http.MethodGet)
	v.HandleFunc("/holders/{address}", h.GetHolder).Methods(http.MethodGet)
	v.HandleFunc("/withdrawals", h.GetWithdrawals).Methods(http.MethodGet)
	v.HandleFunc("/requests/{handle}", h.GetRequest).Methods(http.MethodGet)
}

// GetVault returns the pool summary
func (h *VaultHandler) GetVault(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Vault(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetPrice returns the share price
func (h *VaultHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Price(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetHolder returns a holder's position
func (h *VaultHandler) GetHolder(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Holder(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetWithdrawals returns a page of the withdrawal queue
func (h *VaultHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.service.Withdrawals(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetRequest returns a cross-domain request
func (h *VaultHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Request(r.Context(), mux.Vars(r)["handle"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func pageParams(r *http.Request) (uint64, uint64, error) {
	q := r.URL.Query()
	var offset, limit uint64 = 0, defaultPageLimit
	var err error
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, errors.New("invalid offset")
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.ParseUint(v, 10, 64); err != nil || limit == 0 {
			return 0, 0, errors.New("invalid limit")
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrInvalidArgument):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// WriteJSON writes data as a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
