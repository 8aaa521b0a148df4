package authorization

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the authorization engine over HTTP. It only marshals
// service calls; all semantics live in the service.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/authorization", func(r chi.Router) {
		r.Get("/self", h.getSelfView)
		r.Get("/children", h.getChildrenView)
		r.Post("/validate-order", h.validateOrder)

		r.Get("/self-configs", h.listSelfConfigs)
		r.Put("/self-configs", h.upsertSelfConfig)
		r.Delete("/self-configs/{variant_id}", h.deleteSelfConfig)

		r.Get("/children-configs", h.listChildrenConfigs)
		r.Put("/children-configs", h.upsertChildrenConfig)
		r.Delete("/children-configs", h.deleteChildrenConfig)
	})
}

// queryFromRequest builds a ConfigQuery from the tenant_id, owner_type,
// owner_id and optional product_id query parameters.
func queryFromRequest(r *http.Request) (ConfigQuery, error) {
	tid, ot, oid, err := parseOwner(
		r.URL.Query().Get("tenant_id"),
		r.URL.Query().Get("owner_type"),
		r.URL.Query().Get("owner_id"))
	if err != nil {
		return ConfigQuery{}, err
	}
	q := ConfigQuery{TenantID: tid, OwnerType: ot, OwnerID: oid}
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return ConfigQuery{}, err
		}
		q.ProductID = &pid
	}
	return q, nil
}

func (h *Handler) getSelfView(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	view, err := h.service.GetSelfVariantConfig(r.Context(), q)
	if err != nil {
		respond(w, statusForEngineError(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, view)
}

func (h *Handler) getChildrenView(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	view, err := h.service.GetChildrenVariantConfig(r.Context(), q)
	if err != nil {
		respond(w, statusForEngineError(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, view)
}

func (h *Handler) validateOrder(w http.ResponseWriter, r *http.Request) {
	var req ValidateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tid, ot, oid, err := parseOwner(req.TenantID, req.OwnerType, req.OwnerID)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.service.ValidateOrderAuthorization(r.Context(), tid, ot, oid, req.Items)
	if err != nil {
		respond(w, statusForEngineError(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) listSelfConfigs(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	configs, err := h.service.ListSelfConfigs(r.Context(), q)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, configs)
}

func (h *Handler) upsertSelfConfig(w http.ResponseWriter, r *http.Request) {
	var req UpsertSelfConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.UpsertSelfConfig(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "must not") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteSelfConfig(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	vid, err := uuid.Parse(chi.URLParam(r, "variant_id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid variant_id"})
		return
	}
	if err := h.service.DeleteSelfConfig(r.Context(), q, vid); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) listChildrenConfigs(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	configs, err := h.service.ListChildrenConfigs(r.Context(), q)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, configs)
}

func (h *Handler) upsertChildrenConfig(w http.ResponseWriter, r *http.Request) {
	var req UpsertChildrenConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.UpsertChildrenConfig(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "must not") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteChildrenConfig(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var vid *uuid.UUID
	if raw := r.URL.Query().Get("variant_id"); raw != "" {
		v, err := uuid.Parse(raw)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "invalid variant_id"})
			return
		}
		vid = &v
	}
	if err := h.service.DeleteChildrenConfig(r.Context(), q, vid); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func statusForEngineError(err error) int {
	if errors.Is(err, ErrChainTooDeep) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
