package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

type stubRepo struct {
	product   *models.Product
	created   *CreateProductDTO
	updated   *models.Product
	createErr error
}

func (s *stubRepo) Create(_ context.Context, dto CreateProductDTO) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &dto
	product := dto.ToModel()
	product.ID = uuid.New()
	return product, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product != nil && s.product.ID == id {
		return s.product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(_ context.Context, _ ListFilter, _ pagination.Params) ([]models.Product, error) {
	return nil, nil
}

func (s *stubRepo) Update(_ context.Context, product *models.Product) error {
	s.updated = product
	return nil
}

func assertErrCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code())
}

func TestServiceCreateValidation(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, CreateProductDTO{SKU: " ", Name: "Widget"})
	assertErrCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, CreateProductDTO{SKU: "SKU-1", Name: "  "})
	assertErrCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, CreateProductDTO{SKU: "SKU-1", Name: "Widget", UnitPrice: decimal.NewFromInt(-1)})
	assertErrCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreateDefaultsUnit(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.Create(context.Background(), CreateProductDTO{
		SKU:       " SKU-1 ",
		Name:      "Widget",
		UnitPrice: decimal.RequireFromString("9.90"),
	})
	require.NoError(t, err)

	assert.Equal(t, "SKU-1", dto.SKU)
	assert.Equal(t, "piece", dto.Unit)
	assert.True(t, dto.IsActive)
}

func TestServiceCreateDuplicateSKU(t *testing.T) {
	repo := &stubRepo{createErr: errors.New(`pq: duplicate key value violates unique constraint "products_sku_key"`)}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateProductDTO{
		SKU:       "SKU-1",
		Name:      "Widget",
		UnitPrice: decimal.NewFromInt(10),
	})
	assertErrCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceUpdate(t *testing.T) {
	existing := &models.Product{
		ID:        uuid.New(),
		SKU:       "SKU-1",
		Name:      "Widget",
		UnitPrice: decimal.NewFromInt(10),
		Unit:      "piece",
		IsActive:  true,
	}
	repo := &stubRepo{product: existing}
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	inactive := false
	price := decimal.RequireFromString("12.50")
	dto, err := svc.Update(ctx, existing.ID, UpdateProductInput{UnitPrice: &price, IsActive: &inactive})
	require.NoError(t, err)
	assert.True(t, dto.UnitPrice.Equal(price))
	assert.False(t, dto.IsActive)
	require.NotNil(t, repo.updated)

	negative := decimal.NewFromInt(-5)
	_, err = svc.Update(ctx, existing.ID, UpdateProductInput{UnitPrice: &negative})
	assertErrCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Update(ctx, uuid.New(), UpdateProductInput{})
	assertErrCode(t, err, pkgerrors.CodeNotFound)
}
