package store

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

const customerColumns = `id, name, phone, email, instagram, address, status, total_rentals,
	last_rental_at, created_at, updated_at, deleted_at`

var customerDatasetColumns = []any{
	"id", "name", "phone", "email", "instagram", "address", "status", "total_rentals",
	"last_rental_at", "created_at", "updated_at", "deleted_at",
}

// CustomerFilter narrows ListCustomers. Zero fields are ignored.
type CustomerFilter struct {
	Status string
	Search string // matched against name, phone, email and instagram
}

// CustomerEdit holds the editable customer fields.
type CustomerEdit struct {
	Name      string
	Phone     string
	Email     string
	Instagram string
	Address   string
	Status    string
}

// CreateCustomer creates a customer.
func (q queries) CreateCustomer(ctx context.Context, e CustomerEdit) (*model.Customer, error) {
	if e.Status == "" {
		e.Status = model.CustomerStatusActive
	}

	res, err := q.q.ExecContext(ctx,
		`INSERT INTO customers (name, phone, email, instagram, address, status) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Phone, e.Email, e.Instagram, e.Address, e.Status,
	)
	if err != nil {
		return nil, errs.Storage("creating customer", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errs.Storage("getting customer id", err)
	}

	return q.GetCustomer(ctx, id)
}

// GetCustomer returns a customer by ID, including soft-deleted ones.
func (q queries) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	c := &model.Customer{}
	if err := q.get(ctx, c, model.EntityCustomer, id,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id,
	); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCustomers returns non-deleted customers ordered by name.
func (q queries) ListCustomers(ctx context.Context, f CustomerFilter) ([]model.Customer, error) {
	ds := dialect.From("customers").
		Select(customerDatasetColumns...).
		Where(goqu.C("deleted_at").IsNull()).
		Order(goqu.C("name").Asc())

	if f.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(f.Status))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").Like(pattern),
			goqu.C("phone").Like(pattern),
			goqu.C("email").Like(pattern),
			goqu.C("instagram").Like(pattern),
		))
	}

	var customers []model.Customer
	if err := q.selectDataset(ctx, &customers, "listing customers", ds); err != nil {
		return nil, err
	}
	return customers, nil
}

// UpdateCustomer updates a customer's details and status.
func (q queries) UpdateCustomer(ctx context.Context, id int64, e CustomerEdit) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE customers SET name = ?, phone = ?, email = ?, instagram = ?, address = ?, status = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		e.Name, e.Phone, e.Email, e.Instagram, e.Address, e.Status, id,
	)
	if err != nil {
		return errs.Storage("updating customer", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return errs.Storage("updating customer", err)
	}
	if !ok {
		return errs.NotFound(model.EntityCustomer, id)
	}
	return nil
}

// RecordCompletedRental increments a customer's lifetime rental count.
func (q queries) RecordCompletedRental(ctx context.Context, id int64, at time.Time) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE customers SET total_rentals = total_rentals + 1, last_rental_at = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return errs.Storage("recording customer rental", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return errs.Storage("recording customer rental", err)
	}
	if !ok {
		return errs.NotFound(model.EntityCustomer, id)
	}
	return nil
}

// DeleteCustomer soft-deletes a customer.
func (q queries) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE customers SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return errs.Storage("deleting customer", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return errs.Storage("deleting customer", err)
	}
	if !ok {
		return errs.NotFound(model.EntityCustomer, id)
	}
	return nil
}
