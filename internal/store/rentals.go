package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

const rentalColumns = `id, customer_id, costume_id, customer_name, costume_name, start_date,
	scheduled_return, actual_return, quantity, base_cost, shipping_cost, late_fee, total_cost,
	discount_rate, final_cost, shipping_method, tracking_number, status, notes, created_by,
	created_at, updated_at`

var rentalDatasetColumns = []any{
	"id", "customer_id", "costume_id", "customer_name", "costume_name", "start_date",
	"scheduled_return", "actual_return", "quantity", "base_cost", "shipping_cost", "late_fee", "total_cost",
	"discount_rate", "final_cost", "shipping_method", "tracking_number", "status", "notes", "created_by",
	"created_at", "updated_at",
}

// RentalFilter narrows ListRentals. Zero fields are ignored.
type RentalFilter struct {
	Statuses   []string
	CustomerID int64
	CostumeID  int64
	Limit      uint
}

// InsertRental stores a new rental and returns it as persisted.
func (q queries) InsertRental(ctx context.Context, r *model.Rental) (*model.Rental, error) {
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO rentals (customer_id, costume_id, customer_name, costume_name, start_date,
		                      scheduled_return, quantity, base_cost, shipping_cost, late_fee, total_cost,
		                      discount_rate, final_cost, shipping_method, tracking_number, status, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CustomerID, r.CostumeID, r.CustomerName, r.CostumeName, r.StartDate,
		r.ScheduledReturn, r.Quantity, r.BaseCost, r.ShippingCost, r.LateFee, r.TotalCost,
		r.DiscountRate, r.FinalCost, r.ShippingMethod, r.TrackingNumber, r.Status, r.Notes, r.CreatedBy,
	)
	if err != nil {
		return nil, errs.Storage("creating rental", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errs.Storage("getting rental id", err)
	}

	return q.GetRental(ctx, id)
}

// GetRental returns a rental by ID.
func (q queries) GetRental(ctx context.Context, id int64) (*model.Rental, error) {
	r := &model.Rental{}
	if err := q.get(ctx, r, model.EntityRental, id,
		`SELECT `+rentalColumns+` FROM rentals WHERE id = ?`, id,
	); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRentals returns rentals, newest start date first.
func (q queries) ListRentals(ctx context.Context, f RentalFilter) ([]model.Rental, error) {
	ds := dialect.From("rentals").
		Select(rentalDatasetColumns...).
		Order(goqu.C("start_date").Desc(), goqu.C("id").Desc())

	if len(f.Statuses) > 0 {
		ds = ds.Where(goqu.C("status").In(f.Statuses))
	}
	if f.CustomerID > 0 {
		ds = ds.Where(goqu.C("customer_id").Eq(f.CustomerID))
	}
	if f.CostumeID > 0 {
		ds = ds.Where(goqu.C("costume_id").Eq(f.CostumeID))
	}
	if f.Limit > 0 {
		ds = ds.Limit(f.Limit)
	}

	var rentals []model.Rental
	if err := q.selectDataset(ctx, &rentals, "listing rentals", ds); err != nil {
		return nil, err
	}
	return rentals, nil
}

// TransitionRental writes the mutable fields of r, but only if the stored
// status is still from. A rental that has moved on in the meantime yields an
// invalid-transition error and is left untouched.
func (q queries) TransitionRental(ctx context.Context, r *model.Rental, from, action string) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE rentals SET status = ?, actual_return = ?, base_cost = ?, shipping_cost = ?, late_fee = ?,
		        total_cost = ?, discount_rate = ?, final_cost = ?, shipping_method = ?, tracking_number = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		r.Status, r.ActualReturn, r.BaseCost, r.ShippingCost, r.LateFee,
		r.TotalCost, r.DiscountRate, r.FinalCost, r.ShippingMethod, r.TrackingNumber,
		r.ID, from,
	)
	if err != nil {
		return errs.Storage("updating rental", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return errs.Storage("updating rental", err)
	}
	if ok {
		return nil
	}

	current, err := q.GetRental(ctx, r.ID)
	if err != nil {
		return err
	}
	return errs.InvalidTransition(model.EntityRental, r.ID, current.Status, action)
}

// CountOpenRentalsForCostume counts pending and active rentals of a costume.
func (q queries) CountOpenRentalsForCostume(ctx context.Context, costumeID int64) (int, error) {
	return q.countOpenRentals(ctx, "costume_id", costumeID)
}

// CountOpenRentalsForCustomer counts pending and active rentals of a customer.
func (q queries) CountOpenRentalsForCustomer(ctx context.Context, customerID int64) (int, error) {
	return q.countOpenRentals(ctx, "customer_id", customerID)
}

func (q queries) countOpenRentals(ctx context.Context, column string, id int64) (int, error) {
	query, args, err := dialect.From("rentals").
		Select(goqu.COUNT("*")).
		Where(goqu.C(column).Eq(id), goqu.C("status").In(model.OpenRentalStatuses)).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, errs.Storage("building open rentals query", err)
	}

	var n int
	if err := q.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errs.Storage("counting open rentals", err)
	}
	return n, nil
}
