package items_api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/PriceBox/internal/models"
	"github.com/BearBump/PriceBox/internal/services/items"
)

// Handler — REST поверх сервиса товаров.
type Handler struct {
	svc *items.Service
}

func New(svc *items.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/items", h.createItems)
	r.Get("/items", h.listItems)
	r.Get("/items/jan/{jan}", h.getItemByJAN)
	r.Post("/items/{itemID}/disable", h.disableItem)
	r.Post("/items/{itemID}/conditions", h.addCondition)
	r.Get("/items/{itemID}/conditions", h.listConditions)
	r.Post("/conditions/{conditionID}/disable", h.disableCondition)
	r.Get("/items/{itemID}/prices", h.listPrices)
	r.Get("/items/{itemID}/prices/lowest", h.lowestPrice)
}

type createItemsRequest struct {
	Items []models.ItemCreateInput `json:"items"`
}

func (h *Handler) createItems(w http.ResponseWriter, r *http.Request) {
	var req createItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	created, err := h.svc.CreateItems(r.Context(), req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": created})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListActiveItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) getItemByJAN(w http.ResponseWriter, r *http.Request) {
	jan, err := strconv.ParseInt(chi.URLParam(r, "jan"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid jan")
		return
	}

	item, err := h.svc.GetItemByJAN(r.Context(), jan)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) disableItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	if err := h.svc.SetItemDisabled(r.Context(), id, true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disabled": true})
}

type addConditionRequest struct {
	Type          string  `json:"type"`
	ItemCondition string  `json:"itemCondition"`
	Value         float64 `json:"value"`
}

func (h *Handler) addCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	var req addConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	cond := &models.Condition{
		ItemID:        id,
		Type:          models.ConditionType(req.Type),
		ItemCondition: models.ItemCondition(req.ItemCondition),
		Value:         req.Value,
	}
	if err := h.svc.AddCondition(r.Context(), cond); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cond)
}

func (h *Handler) listConditions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	out, err := h.svc.ListConditions(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conditions": out})
}

func (h *Handler) disableCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "conditionID")
	if !ok {
		return
	}
	if err := h.svc.SetConditionDisabled(r.Context(), id, true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disabled": true})
}

func (h *Handler) listPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	out, err := h.svc.ListPrices(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prices": out})
}

func (h *Handler) lowestPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	p, err := h.svc.LowestPrice(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no price history")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
