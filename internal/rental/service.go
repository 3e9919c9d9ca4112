// Package rental drives rentals through their lifecycle:
//
//	pending -> active -> returned
//	pending | active -> cancelled
//
// Stock is reserved when a rental is created and released exactly once, when
// it is cancelled or returned. Overdue is not a stored status; it is derived
// on read from an active rental whose scheduled return date has passed.
package rental

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/audit"
	"github.com/erazemk/izposoja/internal/auth"
	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/ledger"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/pricing"
	"github.com/erazemk/izposoja/internal/store"
)

// Service runs rental operations against the store.
type Service struct {
	store  *store.Store
	ledger *ledger.Ledger
	rec    audit.Recorder
	policy Policy
	tariff pricing.Tariff
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to derive overdue rentals.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a rental service. A nil recorder discards audit events.
func NewService(st *store.Store, l *ledger.Ledger, rec audit.Recorder, policy Policy, tariff pricing.Tariff, opts ...Option) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	if tariff == nil {
		tariff = pricing.DefaultTariff()
	}
	s := &Service{
		store:  st,
		ledger: l,
		rec:    rec,
		policy: policy,
		tariff: tariff,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the rules the service enforces.
func (s *Service) Policy() Policy {
	return s.policy
}

// Now returns the current time according to the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Tariff returns the shipping price list.
func (s *Service) Tariff() pricing.Tariff {
	return s.tariff
}

// CreateRequest describes a new rental.
type CreateRequest struct {
	CustomerID      int64
	CostumeID       int64
	Quantity        int
	StartDate       time.Time
	ScheduledReturn time.Time
	ShippingMethod  string
	TrackingNumber  string
	Notes           string
}

// snapshot is the audit summary of a rental.
type snapshot struct {
	Status       string          `json:"status"`
	Quantity     int             `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	LateFee      decimal.Decimal `json:"late_fee"`
	FinalCost    decimal.Decimal `json:"final_cost"`
	Shipping     string          `json:"shipping_method,omitempty"`
	ActualReturn *time.Time      `json:"actual_return,omitempty"`
}

func snapshotOf(r *model.Rental) snapshot {
	return snapshot{
		Status:       r.Status,
		Quantity:     r.Quantity,
		TotalCost:    r.TotalCost,
		LateFee:      r.LateFee,
		FinalCost:    r.FinalCost,
		Shipping:     r.ShippingMethod,
		ActualReturn: r.ActualReturn,
	}
}

func (s *Service) validateCreate(req CreateRequest) (int, error) {
	switch {
	case req.CustomerID <= 0:
		return 0, errs.Validation("customer is required")
	case req.CostumeID <= 0:
		return 0, errs.Validation("costume is required")
	case req.Quantity < 1:
		return 0, errs.Validation("quantity must be at least 1, got %d", req.Quantity)
	case req.Quantity > s.policy.MaxQuantity:
		return 0, errs.Validation("quantity cannot exceed %d, got %d", s.policy.MaxQuantity, req.Quantity)
	case req.StartDate.IsZero() || req.ScheduledReturn.IsZero():
		return 0, errs.Validation("start date and scheduled return date are required")
	}

	if model.Day(req.ScheduledReturn).Before(model.Day(req.StartDate)) {
		return 0, errs.Validation("scheduled return date is before the start date")
	}

	days := pricing.RentalDays(req.StartDate, req.ScheduledReturn)
	switch {
	case days < s.policy.MinDays:
		return 0, errs.Validation("rental must last at least %d days, got %d", s.policy.MinDays, days)
	case days > s.policy.MaxDays:
		return 0, errs.Validation("rental cannot last more than %d days, got %d", s.policy.MaxDays, days)
	}
	return days, nil
}

// Create reserves stock and records a pending rental. Either both happen or
// neither does: a refused reservation leaves no rental behind, and a failed
// insert leaves the stock untouched.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Rental, error) {
	days, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}
	shippingCost, err := s.tariff.Lookup(req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	var created *model.Rental
	buf := &audit.Buffer{}

	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		customer, err := tx.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if customer.DeletedAt != nil {
			return errs.NotFound(model.EntityCustomer, customer.ID)
		}
		if !customer.CanRent() {
			return errs.New(errs.KindCustomerIneligible, "customer %d is %s",
				customer.ID, model.CustomerStatusLabels[customer.Status])
		}

		if limit := s.policy.MaxOpenPerCustomer; limit > 0 {
			open, err := tx.CountOpenRentalsForCustomer(ctx, customer.ID)
			if err != nil {
				return err
			}
			if open >= limit {
				return errs.New(errs.KindCustomerIneligible,
					"customer %d already has %d open rentals", customer.ID, open)
			}
		}

		costume, err := s.ledger.With(tx, buf).Reserve(ctx, req.CostumeID, req.Quantity)
		if err != nil {
			return err
		}

		r := &model.Rental{
			CustomerID:      customer.ID,
			CostumeID:       costume.ID,
			CustomerName:    customer.Name,
			CostumeName:     costume.Name,
			StartDate:       model.Day(req.StartDate),
			ScheduledReturn: model.Day(req.ScheduledReturn),
			Quantity:        req.Quantity,
			TrackingNumber:  req.TrackingNumber,
			Notes:           req.Notes,
			Status:          model.RentalStatusPending,
		}
		r.SetBaseCost(pricing.BaseCost(costume.UnitPrice, req.Quantity, days))
		r.SetShipping(req.ShippingMethod, shippingCost)
		r.FinalCost, r.DiscountRate = pricing.FinalForCustomer(r.TotalCost, customer.TotalRentals)

		if a := auth.ActorFrom(ctx); !a.IsSystem() {
			r.CreatedBy = &a.UserID
		}

		created, err = tx.InsertRental(ctx, r)
		if err != nil {
			return err
		}

		buf.Record(ctx, audit.Event(ctx, model.AuditRentalCreated, model.EntityRental, created.ID,
			nil, snapshotOf(created)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	buf.Flush(ctx, s.rec)
	created.Overdue = created.IsOverdue(s.now())
	return created, nil
}

// transition loads a rental inside a transaction, checks that its status is
// one of from, lets apply change it and persists the result. The write is
// conditioned on the status read, so two concurrent transitions of the same
// rental cannot both succeed.
func (s *Service) transition(ctx context.Context, id int64, action, kind string, from []string,
	apply func(tx *store.Tx, l *ledger.Ledger, buf *audit.Buffer, r *model.Rental) error,
) (*model.Rental, error) {
	var out *model.Rental
	buf := &audit.Buffer{}

	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		r, err := tx.GetRental(ctx, id)
		if err != nil {
			return err
		}
		if model.IsTerminal(r.Status) || !slices.Contains(from, r.Status) {
			return errs.InvalidTransition(model.EntityRental, id, r.Status, action)
		}

		before := snapshotOf(r)
		prev := r.Status
		if err := apply(tx, s.ledger.With(tx, buf), buf, r); err != nil {
			return err
		}
		if err := tx.TransitionRental(ctx, r, prev, action); err != nil {
			return err
		}

		buf.Record(ctx, audit.Event(ctx, kind, model.EntityRental, id, before, snapshotOf(r)))
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	buf.Flush(ctx, s.rec)
	out.Overdue = out.IsOverdue(s.now())
	return out, nil
}

// Confirm moves a pending rental to active. Stock was already reserved at
// creation, so nothing else changes.
func (s *Service) Confirm(ctx context.Context, id int64) (*model.Rental, error) {
	return s.transition(ctx, id, "confirm", model.AuditRentalConfirmed,
		[]string{model.RentalStatusPending},
		func(_ *store.Tx, _ *ledger.Ledger, _ *audit.Buffer, r *model.Rental) error {
			r.Status = model.RentalStatusActive
			return nil
		})
}

// Cancel cancels a pending or active rental and releases its stock.
func (s *Service) Cancel(ctx context.Context, id int64) (*model.Rental, error) {
	return s.transition(ctx, id, "cancel", model.AuditRentalCancelled,
		model.OpenRentalStatuses,
		func(_ *store.Tx, l *ledger.Ledger, _ *audit.Buffer, r *model.Rental) error {
			r.Status = model.RentalStatusCancelled
			_, err := l.Release(ctx, r.CostumeID, r.Quantity)
			return err
		})
}

// ProcessReturn closes an active rental. The late fee is dailyRate for every
// unit and every calendar day past the scheduled return date. The customer's
// loyalty discount, based on the rentals completed before this one, is taken
// off the total once. The stock is released and the customer's lifetime
// rental count goes up by one.
func (s *Service) ProcessReturn(ctx context.Context, id int64, actualReturn time.Time, dailyRate decimal.Decimal) (*model.Rental, error) {
	if actualReturn.IsZero() {
		return nil, errs.Validation("actual return date is required")
	}
	if dailyRate.IsNegative() {
		return nil, errs.Validation("daily late fee cannot be negative")
	}

	return s.transition(ctx, id, "return", model.AuditRentalReturned,
		[]string{model.RentalStatusActive},
		func(tx *store.Tx, l *ledger.Ledger, buf *audit.Buffer, r *model.Rental) error {
			returned := model.Day(actualReturn)
			if returned.Before(r.StartDate) {
				return errs.Validation("actual return date is before the start date")
			}

			customer, err := tx.GetCustomer(ctx, r.CustomerID)
			if err != nil {
				return err
			}

			r.SetLateFee(pricing.LateFee(dailyRate, r.ScheduledReturn, returned, r.Quantity))
			r.FinalCost, r.DiscountRate = pricing.FinalForCustomer(r.TotalCost, customer.TotalRentals)
			r.ActualReturn = &returned
			r.Status = model.RentalStatusReturned

			if _, err := l.Release(ctx, r.CostumeID, r.Quantity); err != nil {
				return err
			}
			if err := tx.RecordCompletedRental(ctx, customer.ID, returned); err != nil {
				return err
			}

			oldTier := pricing.TierFor(customer.TotalRentals)
			if newTier := pricing.TierFor(customer.TotalRentals + 1); newTier != oldTier {
				buf.Record(ctx, audit.Event(ctx, model.AuditCustomerPromoted, model.EntityCustomer, customer.ID,
					map[string]any{"tier": oldTier}, map[string]any{"tier": newTier}))
			}
			return nil
		})
}

// ProcessReturnWithPolicy closes an active rental using the policy's daily
// late fee.
func (s *Service) ProcessReturnWithPolicy(ctx context.Context, id int64, actualReturn time.Time) (*model.Rental, error) {
	return s.ProcessReturn(ctx, id, actualReturn, s.policy.DailyLateFee)
}

// SetShipping changes the shipping method and tracking number of an open
// rental and recomputes its costs.
func (s *Service) SetShipping(ctx context.Context, id int64, method, tracking string) (*model.Rental, error) {
	cost, err := s.tariff.Lookup(method)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, id, "update shipping of", model.AuditRentalShipping,
		model.OpenRentalStatuses,
		func(_ *store.Tx, _ *ledger.Ledger, _ *audit.Buffer, r *model.Rental) error {
			r.SetShipping(method, cost)
			r.TrackingNumber = tracking
			r.FinalCost = pricing.Final(r.TotalCost, r.DiscountRate)
			return nil
		})
}

// Get returns a rental with its overdue flag set.
func (s *Service) Get(ctx context.Context, id int64) (*model.Rental, error) {
	r, err := s.store.GetRental(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Overdue = r.IsOverdue(s.now())
	return r, nil
}

// List returns rentals matching f with their overdue flags set.
func (s *Service) List(ctx context.Context, f store.RentalFilter) ([]model.Rental, error) {
	rentals, err := s.store.ListRentals(ctx, f)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range rentals {
		rentals[i].Overdue = rentals[i].IsOverdue(now)
	}
	return rentals, nil
}

// ListOverdue returns the active rentals whose scheduled return date has
// passed.
func (s *Service) ListOverdue(ctx context.Context) ([]model.Rental, error) {
	active, err := s.List(ctx, store.RentalFilter{Statuses: []string{model.RentalStatusActive}})
	if err != nil {
		return nil, err
	}
	var overdue []model.Rental
	for _, r := range active {
		if r.Overdue {
			overdue = append(overdue, r)
		}
	}
	return overdue, nil
}
