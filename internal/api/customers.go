package api

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/pricing"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

// CustomersHandler handles customer endpoints.
type CustomersHandler struct {
	Store   *store.Store
	Rentals *rental.Service
}

type customerRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=50"`
	Phone     string `json:"phone" validate:"omitempty,idphone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Instagram string `json:"instagram" validate:"max=30"`
	Address   string `json:"address" validate:"max=500"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive blacklisted suspended"`
}

// customerResponse is a customer with the loyalty tier it has earned.
type customerResponse struct {
	*model.Customer
	Tier         model.Tier      `json:"tier"`
	TierLabel    string          `json:"tier_label"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

func withTier(c *model.Customer) customerResponse {
	tier := pricing.TierFor(c.TotalRentals)
	return customerResponse{
		Customer:     c,
		Tier:         tier,
		TierLabel:    pricing.TierLabels[tier],
		DiscountRate: pricing.DiscountRate(tier),
	}
}

func (req customerRequest) edit() store.CustomerEdit {
	return store.CustomerEdit{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Instagram: req.Instagram,
		Address:   req.Address,
		Status:    req.Status,
	}
}

// List handles GET /api/customers.
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customers, err := h.Store.ListCustomers(r.Context(), store.CustomerFilter{
		Status: q.Get("status"),
		Search: q.Get("q"),
	})
	if err != nil {
		writeError(w, "list customers", err)
		return
	}

	out := make([]customerResponse, len(customers))
	for i := range customers {
		out[i] = withTier(&customers[i])
	}
	jsonResponse(w, http.StatusOK, out)
}

// Create handles POST /api/customers.
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeValid(w, r, &req) {
		return
	}

	customer, err := h.Store.CreateCustomer(r.Context(), req.edit())
	if err != nil {
		writeError(w, "create customer", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("customer created", "user", claims.Username, "customer", customer.DisplayName())
	jsonResponse(w, http.StatusCreated, withTier(customer))
}

// Get handles GET /api/customers/{id}.
func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.Store.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, "get customer", err)
		return
	}
	jsonResponse(w, http.StatusOK, withTier(customer))
}

// Update handles PUT /api/customers/{id}.
func (h *CustomersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req customerRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.Status == "" {
		req.Status = model.CustomerStatusActive
	}

	if err := h.Store.UpdateCustomer(r.Context(), id, req.edit()); err != nil {
		writeError(w, "update customer", err)
		return
	}

	customer, err := h.Store.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, "get customer", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("customer updated", "user", claims.Username, "customer", customer.DisplayName(), "status", customer.Status)
	jsonResponse(w, http.StatusOK, withTier(customer))
}

// Delete handles DELETE /api/customers/{id}.
func (h *CustomersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	if err := h.Rentals.DeleteCustomer(r.Context(), id); err != nil {
		writeError(w, "delete customer", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("customer deleted", "user", claims.Username, "customer", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "customer deleted"})
}

// RentalHistory handles GET /api/customers/{id}/rentals.
func (h *CustomersHandler) RentalHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	rentals, err := h.Rentals.List(r.Context(), store.RentalFilter{CustomerID: id})
	if err != nil {
		writeError(w, "list rentals", err)
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}
