package store

import (
	"context"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

func newRental(t *testing.T, s *Store, customer *model.Customer, costume *model.Costume, qty int) *model.Rental {
	t.Helper()
	r := &model.Rental{
		CustomerID:      customer.ID,
		CostumeID:       costume.ID,
		CustomerName:    customer.Name,
		CostumeName:     costume.Name,
		StartDate:       time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		ScheduledReturn: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Quantity:        qty,
		Status:          model.RentalStatusPending,
	}
	r.SetBaseCost(costume.UnitPrice.Mul(decimal.NewFromInt(int64(qty * 3))))
	r.FinalCost = r.TotalCost

	got, err := s.InsertRental(context.Background(), r)
	require.NoError(t, err)
	return got
}

func TestInsertAndGetRental(t *testing.T) {
	s := New(db.NewTestDB(t))
	customer := newCustomer(t, s, "Dewi")
	costume := newCostume(t, s, 3)

	r := newRental(t, s, customer, costume, 2)
	assert.NotZero(t, r.ID)
	assert.Equal(t, model.RentalStatusPending, r.Status)
	assert.True(t, r.BaseCost.Equal(decimal.NewFromInt(450000)))
	assert.True(t, r.TotalCost.Equal(r.BaseCost))
	assert.Nil(t, r.ActualReturn)
	assert.True(t, r.ScheduledReturn.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))

	_, err := s.GetRental(context.Background(), 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTransitionRental(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	r := newRental(t, s, newCustomer(t, s, "Dewi"), newCostume(t, s, 3), 1)

	r.Status = model.RentalStatusActive
	require.NoError(t, s.TransitionRental(ctx, r, model.RentalStatusPending, "confirm"))

	// A second writer still believing the rental is pending loses.
	r.Status = model.RentalStatusCancelled
	err := s.TransitionRental(ctx, r, model.RentalStatusPending, "cancel")
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	got, err := s.GetRental(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RentalStatusActive, got.Status)
}

func TestListRentalsAndCountOpen(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	customer := newCustomer(t, s, "Dewi")
	costume := newCostume(t, s, 5)

	first := newRental(t, s, customer, costume, 1)
	newRental(t, s, customer, costume, 1)

	first.Status = model.RentalStatusCancelled
	require.NoError(t, s.TransitionRental(ctx, first, model.RentalStatusPending, "cancel"))

	n, err := s.CountOpenRentalsForCostume(ctx, costume.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountOpenRentalsForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.ListRentals(ctx, RentalFilter{CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := s.ListRentals(ctx, RentalFilter{Statuses: []string{model.RentalStatusCancelled}})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)
}

func TestInTxRollsBack(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	costume := newCostume(t, s, 3)

	err := s.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.UpdateStockIfAtLeast(ctx, costume.ID, -2, 2); err != nil {
			return err
		}
		return errs.Validation("abort")
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	got, err := s.GetCostume(ctx, costume.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableStock)
}

func TestQueryErrorsCarryStorageKind(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()

	// A channel cannot be encoded as a SQL value, so building the query fails.
	ds := dialect.From("rentals").Where(goqu.C("id").Eq(make(chan int)))
	var rentals []model.Rental
	err := s.selectDataset(ctx, &rentals, "listing rentals", ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)

	require.NoError(t, s.DB().Close())
	_, err = s.CountOpenRentalsForCostume(ctx, 1)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	_, err = s.ListRentals(ctx, RentalFilter{})
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
}
