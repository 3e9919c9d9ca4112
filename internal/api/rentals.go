package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

const dateLayout = "2006-01-02"

// RentalsHandler handles rental lifecycle endpoints.
type RentalsHandler struct {
	Rentals *rental.Service
}

type createRentalRequest struct {
	CustomerID      int64  `json:"customer_id" validate:"required,gt=0"`
	CostumeID       int64  `json:"costume_id" validate:"required,gt=0"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	ScheduledReturn string `json:"scheduled_return" validate:"required,datetime=2006-01-02"`
	ShippingMethod  string `json:"shipping_method" validate:"max=50"`
	TrackingNumber  string `json:"tracking_number" validate:"max=100"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type returnRequest struct {
	ActualReturn string           `json:"actual_return" validate:"omitempty,datetime=2006-01-02"`
	DailyLateFee *decimal.Decimal `json:"daily_late_fee"`
}

type shippingRequest struct {
	Method         string `json:"shipping_method" validate:"max=50"`
	TrackingNumber string `json:"tracking_number" validate:"max=100"`
}

type shippingOption struct {
	Method string          `json:"method"`
	Cost   decimal.Decimal `json:"cost"`
}

// List handles GET /api/rentals.
func (h *RentalsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, ok1 := queryID(r, "customer_id")
	costumeID, ok2 := queryID(r, "costume_id")
	if !ok1 || !ok2 {
		jsonError(w, http.StatusBadRequest, "invalid id filter")
		return
	}

	f := store.RentalFilter{CustomerID: customerID, CostumeID: costumeID}
	if s := q.Get("status"); s != "" {
		if _, ok := model.RentalStatusLabels[s]; !ok {
			jsonError(w, http.StatusBadRequest, "invalid status")
			return
		}
		f.Statuses = []string{s}
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.ParseUint(l, 10, 32)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = uint(n)
	}

	rentals, err := h.Rentals.List(r.Context(), f)
	if err != nil {
		writeError(w, "list rentals", err)
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}

// Overdue handles GET /api/rentals/overdue.
func (h *RentalsHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Rentals.ListOverdue(r.Context())
	if err != nil {
		writeError(w, "list overdue rentals", err)
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}

// Create handles POST /api/rentals.
func (h *RentalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if !decodeValid(w, r, &req) {
		return
	}

	// Both dates passed the datetime check above.
	start, _ := time.Parse(dateLayout, req.StartDate)
	scheduled, _ := time.Parse(dateLayout, req.ScheduledReturn)

	created, err := h.Rentals.Create(r.Context(), rental.CreateRequest{
		CustomerID:      req.CustomerID,
		CostumeID:       req.CostumeID,
		Quantity:        req.Quantity,
		StartDate:       start,
		ScheduledReturn: scheduled,
		ShippingMethod:  req.ShippingMethod,
		TrackingNumber:  req.TrackingNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, "create rental", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("rental created", "user", claims.Username, "rental", created.ID,
		"customer", created.CustomerName, "costume", created.CostumeName, "quantity", created.Quantity)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/rentals/{id}.
func (h *RentalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	rent, err := h.Rentals.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get rental", err)
		return
	}
	jsonResponse(w, http.StatusOK, rent)
}

// Confirm handles POST /api/rentals/{id}/confirm.
func (h *RentalsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "confirm rental", h.Rentals.Confirm)
}

// Cancel handles POST /api/rentals/{id}/cancel.
func (h *RentalsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel rental", h.Rentals.Cancel)
}

func (h *RentalsHandler) transition(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, id int64) (*model.Rental, error),
) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	rent, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, op, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("rental updated", "user", claims.Username, "rental", rent.ID, "status", rent.Status)
	jsonResponse(w, http.StatusOK, rent)
}

// Return handles POST /api/rentals/{id}/return. The actual return date
// defaults to today on the service clock and the daily late fee to the shop
// policy.
func (h *RentalsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	var req returnRequest
	if r.ContentLength != 0 && !decodeValid(w, r, &req) {
		return
	}

	actual := h.Rentals.Now()
	if req.ActualReturn != "" {
		actual, _ = time.Parse(dateLayout, req.ActualReturn)
	}
	rate := h.Rentals.Policy().DailyLateFee
	if req.DailyLateFee != nil {
		rate = *req.DailyLateFee
	}

	rent, err := h.Rentals.ProcessReturn(r.Context(), id, actual, rate)
	if err != nil {
		writeError(w, "return rental", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("rental returned", "user", claims.Username, "rental", rent.ID,
		"late_fee", rent.LateFee.String(), "final_cost", rent.FinalCost.String())
	jsonResponse(w, http.StatusOK, rent)
}

// SetShipping handles PUT /api/rentals/{id}/shipping.
func (h *RentalsHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	var req shippingRequest
	if !decodeValid(w, r, &req) {
		return
	}

	rent, err := h.Rentals.SetShipping(r.Context(), id, req.Method, req.TrackingNumber)
	if err != nil {
		writeError(w, "update shipping", err)
		return
	}
	jsonResponse(w, http.StatusOK, rent)
}

// ShippingMethods handles GET /api/shipping.
func (h *RentalsHandler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	tariff := h.Rentals.Tariff()
	methods := tariff.Methods()
	slices.Sort(methods)

	out := make([]shippingOption, 0, len(methods))
	for _, m := range methods {
		out = append(out, shippingOption{Method: m, Cost: tariff[m]})
	}
	jsonResponse(w, http.StatusOK, out)
}
