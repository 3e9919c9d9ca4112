package rental

import (
	"context"

	"github.com/erazemk/izposoja/internal/audit"
	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// DeleteCostume soft-deletes a costume. A costume held by a pending or active
// rental cannot be deleted; returned and cancelled rentals do not count,
// whatever their dates.
func (s *Service) DeleteCostume(ctx context.Context, id int64) error {
	return s.deleteGuarded(ctx, model.EntityCostume, id, model.AuditCostumeDeleted,
		func(tx *store.Tx) (int, error) { return tx.CountOpenRentalsForCostume(ctx, id) },
		func(tx *store.Tx) error { return tx.DeleteCostume(ctx, id) })
}

// DeleteCustomer soft-deletes a customer with no pending or active rentals.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.deleteGuarded(ctx, model.EntityCustomer, id, model.AuditCustomerDeleted,
		func(tx *store.Tx) (int, error) { return tx.CountOpenRentalsForCustomer(ctx, id) },
		func(tx *store.Tx) error { return tx.DeleteCustomer(ctx, id) })
}

func (s *Service) deleteGuarded(ctx context.Context, entity string, id int64, kind string,
	countOpen func(tx *store.Tx) (int, error), del func(tx *store.Tx) error,
) error {
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		open, err := countOpen(tx)
		if err != nil {
			return err
		}
		if open > 0 {
			return errs.New(errs.KindInvalidTransition, "cannot delete %s %d: %d open rentals", entity, id, open)
		}
		return del(tx)
	})
	if err != nil {
		return err
	}

	s.rec.Record(ctx, audit.Event(ctx, kind, entity, id, nil, nil))
	return nil
}
