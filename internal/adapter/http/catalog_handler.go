package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type CatalogHandler struct {
	catalog   interfaces.CatalogService
	nutrition interfaces.NutritionService
	logger    logger.Logger
}

func NewCatalogHandler(catalog interfaces.CatalogService, nutrition interfaces.NutritionService, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		nutrition: nutrition,
		logger:    logger,
	}
}

func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "list_ingredients_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toIngredientResponses(items))
}

func (h *CatalogHandler) ListIngredientsByType(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		respondServiceError(w, r, h.logger, "list_ingredients_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toIngredientResponses(items))
}

func (h *CatalogHandler) PreviewNutrition(w http.ResponseWriter, r *http.Request) {
	var req NutritionPreviewRequest
	if msg, errs := decodeAndValidate(w, r, &req); errs != nil {
		respondError(w, msg, http.StatusBadRequest, errs)
		return
	}

	preview, err := h.nutrition.Preview(r.Context(), req.IngredientIDs)
	if err != nil {
		respondServiceError(w, r, h.logger, "nutrition_preview_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toNutritionPreviewResponse(preview))
}
