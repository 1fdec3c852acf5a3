package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type PlateHandler struct {
	service interfaces.PlateService
	logger  logger.Logger
}

func NewPlateHandler(service interfaces.PlateService, logger logger.Logger) *PlateHandler {
	return &PlateHandler{
		service: service,
		logger:  logger,
	}
}

func (h *PlateHandler) CreatePlate(w http.ResponseWriter, r *http.Request) {
	var req CreatePlateRequest
	if msg, errs := decodeAndValidate(w, r, &req); errs != nil {
		respondError(w, msg, http.StatusBadRequest, errs)
		return
	}

	totals, errs := req.totals()
	if errs != nil {
		respondError(w, "Validation failed", http.StatusBadRequest, errs)
		return
	}

	plate, err := h.service.Create(r.Context(), interfaces.CreatePlateCommand{
		OwnerID:       req.UserID,
		Name:          req.Name,
		IngredientIDs: req.IngredientIDs,
		Totals:        totals,
		IsFavorite:    req.IsFavorite,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "plate_creation_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, toPlateResponse(plate))
}

func (h *PlateHandler) GetPlate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, "Invalid plate id", http.StatusBadRequest,
			[]ValidationError{{Field: "id", Message: "must be a positive integer"}})
		return
	}

	plate, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "plate_lookup_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toPlateResponse(plate))
}

func (h *PlateHandler) ListUserPlates(w http.ResponseWriter, r *http.Request) {
	h.listForOwner(w, r, h.service.ListByOwner)
}

func (h *PlateHandler) ListUserFavorites(w http.ResponseWriter, r *http.Request) {
	h.listForOwner(w, r, h.service.ListFavorites)
}

func (h *PlateHandler) listForOwner(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, ownerID int64) ([]*domain.Plate, error)) {
	ownerID, ok := pathID(chi.URLParam(r, "userId"))
	if !ok {
		respondError(w, "Invalid user id", http.StatusBadRequest,
			[]ValidationError{{Field: "userId", Message: "must be a positive integer"}})
		return
	}

	plates, err := list(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, r, h.logger, "plate_list_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toPlateResponses(plates))
}
