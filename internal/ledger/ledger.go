// Package ledger owns costume stock counts. Units are reserved when a rental
// is created and released when it is cancelled or returned; the sum of open
// reservations never exceeds a costume's total stock.
package ledger

import (
	"context"

	"github.com/erazemk/izposoja/internal/audit"
	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

// Stock is the persistence the ledger needs. Both *store.Store and *store.Tx
// satisfy it.
type Stock interface {
	GetCostume(ctx context.Context, id int64) (*model.Costume, error)
	UpdateStockIfAtLeast(ctx context.Context, costumeID int64, delta, minimumRequired int) (bool, error)
	ReleaseStock(ctx context.Context, costumeID int64, quantity int) (int, error)
	SetTotalStock(ctx context.Context, costumeID int64, total int) (bool, error)
}

// Ledger reserves and releases costume stock.
type Ledger struct {
	stock Stock
	rec   audit.Recorder
}

// New creates a ledger over stock. A nil recorder discards audit events.
func New(stock Stock, rec audit.Recorder) *Ledger {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Ledger{stock: stock, rec: rec}
}

// With returns a ledger using other persistence and recorder, typically a
// transaction and the buffer that is flushed once it commits.
func (l *Ledger) With(stock Stock, rec audit.Recorder) *Ledger {
	return New(stock, rec)
}

type stockState struct {
	Available int    `json:"available"`
	Total     int    `json:"total,omitempty"`
	Status    string `json:"status,omitempty"`
}

func stateOf(c *model.Costume) stockState {
	return stockState{Available: c.AvailableStock, Total: c.TotalStock, Status: c.Status}
}

// CanReserve reports whether quantity units of the costume can be reserved
// right now. A deleted costume can never be reserved.
func (l *Ledger) CanReserve(ctx context.Context, costumeID int64, quantity int) (bool, error) {
	c, err := l.stock.GetCostume(ctx, costumeID)
	if err != nil {
		return false, err
	}
	return c.DeletedAt == nil && c.CanReserve(quantity), nil
}

// Reserve takes quantity units out of the costume's available stock. The
// decrement is a single conditional update, so concurrent reservations can
// never oversell. It fails with errs.KindInsufficientStock, leaving the stock
// untouched, when the costume is not available for rent or has fewer than
// quantity units left.
func (l *Ledger) Reserve(ctx context.Context, costumeID int64, quantity int) (*model.Costume, error) {
	if quantity < 1 {
		return nil, errs.Validation("quantity must be at least 1, got %d", quantity)
	}

	ok, err := l.stock.UpdateStockIfAtLeast(ctx, costumeID, -quantity, quantity)
	if err != nil {
		return nil, err
	}

	c, err := l.stock.GetCostume(ctx, costumeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, refusal(c, quantity)
	}

	l.rec.Record(ctx, audit.Event(ctx, model.AuditStockReserved, model.EntityCostume, costumeID,
		stockState{Available: c.AvailableStock + quantity}, stateOf(c)))
	return c, nil
}

func refusal(c *model.Costume, quantity int) error {
	switch {
	case c.DeletedAt != nil:
		return errs.NotFound(model.EntityCostume, c.ID)
	case c.Status != model.CostumeStatusAvailable:
		return errs.New(errs.KindInsufficientStock, "costume %d is %s", c.ID,
			model.CostumeStatusLabels[c.Status])
	default:
		return errs.New(errs.KindInsufficientStock, "costume %d has %d available, %d requested",
			c.ID, c.AvailableStock, quantity)
	}
}

// Release returns quantity units to the costume's available stock, clamped
// to its total stock. Releasing into an out-of-stock costume makes it
// available again; maintenance and discontinued costumes keep their status.
func (l *Ledger) Release(ctx context.Context, costumeID int64, quantity int) (*model.Costume, error) {
	if quantity < 1 {
		return nil, errs.Validation("quantity must be at least 1, got %d", quantity)
	}

	before, err := l.stock.GetCostume(ctx, costumeID)
	if err != nil {
		return nil, err
	}

	if _, err := l.stock.ReleaseStock(ctx, costumeID, quantity); err != nil {
		return nil, err
	}

	after, err := l.stock.GetCostume(ctx, costumeID)
	if err != nil {
		return nil, err
	}

	l.rec.Record(ctx, audit.Event(ctx, model.AuditStockReleased, model.EntityCostume, costumeID,
		stateOf(before), stateOf(after)))
	return after, nil
}

// AdjustTotal changes the costume's total stock, shifting its available stock
// by the same amount. The total can never drop below the number of units
// currently out on rental.
func (l *Ledger) AdjustTotal(ctx context.Context, costumeID int64, total int) (*model.Costume, error) {
	if total < 0 {
		return nil, errs.Validation("total stock cannot be negative, got %d", total)
	}

	before, err := l.stock.GetCostume(ctx, costumeID)
	if err != nil {
		return nil, err
	}
	if before.DeletedAt != nil {
		return nil, errs.NotFound(model.EntityCostume, costumeID)
	}

	ok, err := l.stock.SetTotalStock(ctx, costumeID, total)
	if err != nil {
		return nil, err
	}

	after, err := l.stock.GetCostume(ctx, costumeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Validation("cannot set total stock of costume %d to %d: %d units are rented out",
			costumeID, total, after.Reserved())
	}

	l.rec.Record(ctx, audit.Event(ctx, model.AuditStockAdjusted, model.EntityCostume, costumeID,
		stateOf(before), stateOf(after)))
	return after, nil
}
