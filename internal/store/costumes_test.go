package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

func newCostume(t *testing.T, s *Store, total int) *model.Costume {
	t.Helper()
	c, err := s.CreateCostume(context.Background(), CostumeEdit{
		Name:      "Kebaya Bali",
		Origin:    "Bali",
		Size:      model.SizeM,
		UnitPrice: decimal.NewFromInt(75000),
	}, total)
	require.NoError(t, err)
	return c
}

func TestCreateCostume(t *testing.T) {
	s := New(db.NewTestDB(t))

	c := newCostume(t, s, 3)
	assert.Equal(t, 3, c.TotalStock)
	assert.Equal(t, 3, c.AvailableStock)
	assert.Equal(t, model.CostumeStatusAvailable, c.Status)
	assert.True(t, c.UnitPrice.Equal(decimal.NewFromInt(75000)))

	empty := newCostume(t, s, 0)
	assert.Equal(t, model.CostumeStatusOutOfStock, empty.Status)
}

func TestGetCostumeNotFound(t *testing.T) {
	s := New(db.NewTestDB(t))

	_, err := s.GetCostume(context.Background(), 42)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListCostumesFilters(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()

	newCostume(t, s, 2)
	_, err := s.CreateCostume(ctx, CostumeEdit{
		Name: "Baju Bodo", Origin: "Sulawesi Selatan", Size: model.SizeL,
		UnitPrice: decimal.NewFromInt(60000),
	}, 1)
	require.NoError(t, err)

	all, err := s.ListCostumes(ctx, CostumeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bySize, err := s.ListCostumes(ctx, CostumeFilter{Size: model.SizeL})
	require.NoError(t, err)
	require.Len(t, bySize, 1)
	assert.Equal(t, "Baju Bodo", bySize[0].Name)

	bySearch, err := s.ListCostumes(ctx, CostumeFilter{Search: "Bali"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Kebaya Bali", bySearch[0].Name)
}

func TestUpdateStockIfAtLeast(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	c := newCostume(t, s, 3)

	ok, err := s.UpdateStockIfAtLeast(ctx, c.ID, -2, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpdateStockIfAtLeast(ctx, c.ID, -2, 2)
	require.NoError(t, err)
	assert.False(t, ok, "only one unit left")

	got, err := s.GetCostume(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableStock)

	ok, err = s.UpdateStockIfAtLeast(ctx, c.ID, -1, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.GetCostume(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableStock)
	assert.Equal(t, model.CostumeStatusOutOfStock, got.Status)
}

func TestUpdateStockRespectsMaintenance(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	c := newCostume(t, s, 3)

	require.NoError(t, s.UpdateCostume(ctx, c.ID, CostumeEdit{
		Name: c.Name, Origin: c.Origin, Size: c.Size, UnitPrice: c.UnitPrice,
		Status: model.CostumeStatusMaintenance,
	}))

	ok, err := s.UpdateStockIfAtLeast(ctx, c.ID, -1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReleaseStockClamps(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	c := newCostume(t, s, 3)

	_, err := s.UpdateStockIfAtLeast(ctx, c.ID, -3, 3)
	require.NoError(t, err)

	available, err := s.ReleaseStock(ctx, c.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, available)

	got, err := s.GetCostume(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CostumeStatusAvailable, got.Status)

	_, err = s.ReleaseStock(ctx, 999, 1)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSetTotalStock(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	c := newCostume(t, s, 3)

	_, err := s.UpdateStockIfAtLeast(ctx, c.ID, -2, 2)
	require.NoError(t, err)

	ok, err := s.SetTotalStock(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "two units are out on rental")

	ok, err = s.SetTotalStock(ctx, c.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetCostume(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalStock)
	assert.Equal(t, 3, got.AvailableStock)
}

func TestDeleteCostumeHidesFromList(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	c := newCostume(t, s, 1)

	require.NoError(t, s.DeleteCostume(ctx, c.ID))
	assert.ErrorIs(t, s.DeleteCostume(ctx, c.ID), errs.ErrNotFound)

	all, err := s.ListCostumes(ctx, CostumeFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	got, err := s.GetCostume(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)
}

func TestCostumeImage(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()
	c := newCostume(t, s, 1)

	data, _, err := s.GetCostumeImage(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.SetCostumeImage(ctx, c.ID, []byte{1, 2, 3}, "image/jpeg"))

	data, mime, err := s.GetCostumeImage(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "image/jpeg", mime)
}
