package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

const costumeColumns = `id, name, origin, size, description, total_stock, available_stock,
	unit_price, status, image_mime, created_at, updated_at, deleted_at`

var costumeDatasetColumns = []any{
	"id", "name", "origin", "size", "description", "total_stock", "available_stock",
	"unit_price", "status", "image_mime", "created_at", "updated_at", "deleted_at",
}

// CostumeFilter narrows ListCostumes. Zero fields are ignored.
type CostumeFilter struct {
	Status string
	Size   string
	Search string // matched against name and origin
}

// CostumeEdit holds the administratively editable costume fields.
type CostumeEdit struct {
	Name        string
	Origin      string
	Size        string
	Description string
	UnitPrice   decimal.Decimal
	Status      string
}

// CreateCostume creates a costume with all of its stock available.
func (q queries) CreateCostume(ctx context.Context, e CostumeEdit, totalStock int) (*model.Costume, error) {
	status := model.StockStatus(e.Status, totalStock)

	res, err := q.q.ExecContext(ctx,
		`INSERT INTO costumes (name, origin, size, description, total_stock, available_stock, unit_price, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Origin, e.Size, e.Description, totalStock, totalStock, e.UnitPrice, status,
	)
	if err != nil {
		return nil, errs.Storage("creating costume", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errs.Storage("getting costume id", err)
	}

	return q.GetCostume(ctx, id)
}

// GetCostume returns a costume by ID, including soft-deleted ones.
func (q queries) GetCostume(ctx context.Context, id int64) (*model.Costume, error) {
	c := &model.Costume{}
	if err := q.get(ctx, c, model.EntityCostume, id,
		`SELECT `+costumeColumns+` FROM costumes WHERE id = ?`, id,
	); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCostumes returns non-deleted costumes ordered by name.
func (q queries) ListCostumes(ctx context.Context, f CostumeFilter) ([]model.Costume, error) {
	ds := dialect.From("costumes").
		Select(costumeDatasetColumns...).
		Where(goqu.C("deleted_at").IsNull()).
		Order(goqu.C("name").Asc(), goqu.C("size").Asc())

	if f.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(f.Status))
	}
	if f.Size != "" {
		ds = ds.Where(goqu.C("size").Eq(f.Size))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").Like(pattern),
			goqu.C("origin").Like(pattern),
		))
	}

	var costumes []model.Costume
	if err := q.selectDataset(ctx, &costumes, "listing costumes", ds); err != nil {
		return nil, err
	}
	return costumes, nil
}

// UpdateCostume applies an administrative edit. The stored status is derived
// from the requested one and the current available stock in the same
// statement, so a concurrent reservation cannot leave it inconsistent.
func (q queries) UpdateCostume(ctx context.Context, id int64, e CostumeEdit) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE costumes SET name = ?, origin = ?, size = ?, description = ?, unit_price = ?,
		        status = CASE
		            WHEN ? IN ('maintenance', 'discontinued') THEN ?
		            WHEN available_stock = 0 THEN 'out_of_stock'
		            ELSE 'available' END,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		e.Name, e.Origin, e.Size, e.Description, e.UnitPrice, e.Status, e.Status, id,
	)
	if err != nil {
		return errs.Storage("updating costume", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return errs.Storage("updating costume", err)
	}
	if !ok {
		return errs.NotFound(model.EntityCostume, id)
	}
	return nil
}

// UpdateStockIfAtLeast adds delta to the available stock of a costume only if
// the current available stock is at least minimumRequired and the result stays
// within [0, total]. A negative delta additionally requires the costume to be
// available for rent. It reports whether the update was applied.
func (q queries) UpdateStockIfAtLeast(ctx context.Context, costumeID int64, delta, minimumRequired int) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`UPDATE costumes SET available_stock = available_stock + ?,
		        status = CASE
		            WHEN status IN ('maintenance', 'discontinued') THEN status
		            WHEN available_stock + ? = 0 THEN 'out_of_stock'
		            ELSE 'available' END,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL
		   AND available_stock >= ?
		   AND available_stock + ? BETWEEN 0 AND total_stock
		   AND (? >= 0 OR status = 'available')`,
		delta, delta, costumeID, minimumRequired, delta, delta,
	)
	if err != nil {
		return false, errs.Storage("updating stock", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, errs.Storage("updating stock", err)
	}
	return ok, nil
}

// ReleaseStock returns quantity units to a costume's available stock, clamped
// to the total stock. An out-of-stock costume becomes available again; the
// maintenance and discontinued statuses are left untouched. It returns the
// available stock after the release.
func (q queries) ReleaseStock(ctx context.Context, costumeID int64, quantity int) (int, error) {
	var available int
	err := q.q.QueryRowContext(ctx,
		`UPDATE costumes SET available_stock = MIN(total_stock, available_stock + ?),
		        status = CASE
		            WHEN status = 'out_of_stock' AND MIN(total_stock, available_stock + ?) > 0 THEN 'available'
		            ELSE status END,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING available_stock`,
		quantity, quantity, costumeID,
	).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errs.NotFound(model.EntityCostume, costumeID)
	}
	if err != nil {
		return 0, errs.Storage("releasing stock", err)
	}
	return available, nil
}

// SetTotalStock changes a costume's total stock, shifting the available stock
// by the same amount. It refuses (returning false) when the new total would be
// smaller than the number of units currently reserved.
func (q queries) SetTotalStock(ctx context.Context, costumeID int64, total int) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`UPDATE costumes SET total_stock = ?,
		        available_stock = available_stock + (? - total_stock),
		        status = CASE
		            WHEN status IN ('maintenance', 'discontinued') THEN status
		            WHEN available_stock + (? - total_stock) = 0 THEN 'out_of_stock'
		            ELSE 'available' END,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND available_stock + (? - total_stock) >= 0`,
		total, total, total, costumeID, total,
	)
	if err != nil {
		return false, errs.Storage("setting total stock", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, errs.Storage("setting total stock", err)
	}
	return ok, nil
}

// DeleteCostume soft-deletes a costume.
func (q queries) DeleteCostume(ctx context.Context, id int64) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE costumes SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return errs.Storage("deleting costume", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return errs.Storage("deleting costume", err)
	}
	if !ok {
		return errs.NotFound(model.EntityCostume, id)
	}
	return nil
}

// SetCostumeImage sets a costume's photo.
func (q queries) SetCostumeImage(ctx context.Context, id int64, image []byte, mime string) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE costumes SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return errs.Storage("setting costume image", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return errs.Storage("setting costume image", err)
	}
	if !ok {
		return errs.NotFound(model.EntityCostume, id)
	}
	return nil
}

// GetCostumeImage returns a costume's photo and MIME type. A costume without a
// photo yields nil data.
func (q queries) GetCostumeImage(ctx context.Context, id int64) ([]byte, string, error) {
	var image []byte
	var mime string
	err := q.q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM costumes WHERE id = ?`, id,
	).Scan(&image, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", errs.NotFound(model.EntityCostume, id)
	}
	if err != nil {
		return nil, "", errs.Storage("getting costume image", err)
	}
	return image, mime, nil
}
