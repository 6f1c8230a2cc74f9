package http

import (
	"encoding/json"
	"net/http"

	"github.com/tallybook/tallybook/internal/service"
	"github.com/tallybook/tallybook/pkg/httpx"
)

// CategoriesHandler serves the shared category catalogue.
type CategoriesHandler struct {
	Categories *service.CategoryService
}

// HandleCreate serves POST /api/categories.
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	c, err := h.Categories.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newCategoryResponse(c))
}

// HandleList serves GET /api/categories.
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Categories.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, newCategoryResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
