package api

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/ledger"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

// CostumesHandler handles costume catalogue and stock endpoints.
type CostumesHandler struct {
	Store   *store.Store
	Ledger  *ledger.Ledger
	Rentals *rental.Service
}

type costumeRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Origin      string          `json:"origin" validate:"max=100"`
	Size        string          `json:"size" validate:"required,costumesize"`
	Description string          `json:"description" validate:"max=1000"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Status      string          `json:"status" validate:"omitempty,oneof=available out_of_stock maintenance discontinued"`

	// Only read on create; later changes go through the stock endpoint.
	TotalStock int `json:"total_stock" validate:"gte=0,lte=10000"`
}

type stockRequest struct {
	TotalStock int `json:"total_stock" validate:"gte=0,lte=10000"`
}

func (req costumeRequest) edit() store.CostumeEdit {
	return store.CostumeEdit{
		Name:        req.Name,
		Origin:      req.Origin,
		Size:        req.Size,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Status:      req.Status,
	}
}

// List handles GET /api/costumes.
func (h *CostumesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	costumes, err := h.Store.ListCostumes(r.Context(), store.CostumeFilter{
		Status: q.Get("status"),
		Size:   q.Get("size"),
		Search: q.Get("q"),
	})
	if err != nil {
		writeError(w, "list costumes", err)
		return
	}
	if costumes == nil {
		costumes = []model.Costume{}
	}
	jsonResponse(w, http.StatusOK, costumes)
}

// Create handles POST /api/costumes.
func (h *CostumesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req costumeRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.UnitPrice.IsNegative() {
		jsonError(w, http.StatusBadRequest, "unit_price cannot be negative")
		return
	}

	costume, err := h.Store.CreateCostume(r.Context(), req.edit(), req.TotalStock)
	if err != nil {
		writeError(w, "create costume", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("costume created", "user", claims.Username, "costume", costume.Name, "stock", costume.TotalStock)
	jsonResponse(w, http.StatusCreated, costume)
}

// Get handles GET /api/costumes/{id}.
func (h *CostumesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	costume, err := h.Store.GetCostume(r.Context(), id)
	if err != nil {
		writeError(w, "get costume", err)
		return
	}
	jsonResponse(w, http.StatusOK, costume)
}

// Update handles PUT /api/costumes/{id}.
func (h *CostumesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	var req costumeRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.UnitPrice.IsNegative() {
		jsonError(w, http.StatusBadRequest, "unit_price cannot be negative")
		return
	}

	if err := h.Store.UpdateCostume(r.Context(), id, req.edit()); err != nil {
		writeError(w, "update costume", err)
		return
	}

	costume, err := h.Store.GetCostume(r.Context(), id)
	if err != nil {
		writeError(w, "get costume", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("costume updated", "user", claims.Username, "costume", costume.Name, "status", costume.Status)
	jsonResponse(w, http.StatusOK, costume)
}

// SetStock handles PUT /api/costumes/{id}/stock.
func (h *CostumesHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	var req stockRequest
	if !decodeValid(w, r, &req) {
		return
	}

	costume, err := h.Ledger.AdjustTotal(r.Context(), id, req.TotalStock)
	if err != nil {
		writeError(w, "adjust stock", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("costume stock adjusted", "user", claims.Username, "costume", costume.Name,
		"total", costume.TotalStock, "available", costume.AvailableStock)
	jsonResponse(w, http.StatusOK, costume)
}

// Delete handles DELETE /api/costumes/{id}.
func (h *CostumesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	if err := h.Rentals.DeleteCostume(r.Context(), id); err != nil {
		writeError(w, "delete costume", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("costume deleted", "user", claims.Username, "costume", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "costume deleted"})
}

// RentalHistory handles GET /api/costumes/{id}/rentals.
func (h *CostumesHandler) RentalHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	rentals, err := h.Rentals.List(r.Context(), store.RentalFilter{CostumeID: id})
	if err != nil {
		writeError(w, "list rentals", err)
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}

// UploadImage handles PUT /api/costumes/{id}/image.
func (h *CostumesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProcessPhoto(file)
	if err != nil {
		writeError(w, "process image", err)
		return
	}

	if err := h.Store.SetCostumeImage(r.Context(), id, photo.Data, photo.MIME); err != nil {
		writeError(w, "save image", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/costumes/{id}/image. With ?thumb=1 a small
// version is returned.
func (h *CostumesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	data, mime, err := h.Store.GetCostumeImage(r.Context(), id)
	if err != nil {
		writeError(w, "get image", err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	if r.URL.Query().Get("thumb") != "" {
		thumb, err := imaging.Thumbnail(data)
		if err != nil {
			writeError(w, "make thumbnail", err)
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
