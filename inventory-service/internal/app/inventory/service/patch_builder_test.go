package service

import (
	"encoding/json"
	"testing"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeUpdate(t *testing.T, body string) entity.UpdateProductRequest {
	t.Helper()
	var req entity.UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestBuildProductPatch_Valid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		check  func(t *testing.T, p entity.ProductPatch)
		fields []string
	}{
		{
			name:   "price only",
			body:   `{"precio": "12.50"}`,
			fields: []string{"precio"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, decimal.RequireFromString("12.5").Equal(*p.Price))
			},
		},
		{
			name:   "numeric price and zero",
			body:   `{"precio": 0}`,
			fields: []string{"precio"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, p.Price.IsZero())
			},
		},
		{
			name:   "stock accepts integral decimal literal",
			body:   `{"stock_actual": "3.0", "stock_minimo": 0}`,
			fields: []string{"stock_actual", "stock_minimo"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.Equal(t, 3, *p.StockActual)
				assert.Equal(t, 0, *p.StockMinimo)
			},
		},
		{
			name:   "code and name are trimmed",
			body:   `{"codigo": "  A1 ", "nombre": "Tornillo "}`,
			fields: []string{"codigo", "nombre"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.Equal(t, "A1", *p.Code)
				assert.Equal(t, "Tornillo", *p.Name)
			},
		},
		{
			name:   "null description clears to empty string",
			body:   `{"descripcion": null}`,
			fields: []string{"descripcion"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.Equal(t, "", *p.Description)
			},
		},
		{
			name:   "empty category detaches",
			body:   `{"categoria_id": ""}`,
			fields: []string{"categoria_id"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, p.CategoryID.Null)
			},
		},
		{
			name:   "null category detaches",
			body:   `{"categoria_id": null}`,
			fields: []string{"categoria_id"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, p.CategoryID.Null)
			},
		},
		{
			name:   "zero category detaches",
			body:   `{"categoria_id": 0}`,
			fields: []string{"categoria_id"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, p.CategoryID.Null)
			},
		},
		{
			name:   "false category detaches",
			body:   `{"categoria_id": false}`,
			fields: []string{"categoria_id"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, p.CategoryID.Null)
			},
		},
		{
			name:   "category as string",
			body:   `{"categoria_id": "4"}`,
			fields: []string{"categoria_id"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, p.CategoryID.Present())
				assert.Equal(t, uint(4), p.CategoryID.Value)
			},
		},
		{
			name:   "empty image url clears",
			body:   `{"imagen_url": ""}`,
			fields: []string{"imagen_url"},
			check: func(t *testing.T, p entity.ProductPatch) {
				assert.True(t, p.ImageURL.Null)
			},
		},
		{
			name:   "unknown keys are ignored",
			body:   `{"activo": false, "precio": 1}`,
			fields: []string{"precio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			patch, err := BuildProductPatch(decodeUpdate(t, tt.body))

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.fields, patch.Fields())
			if tt.check != nil {
				tt.check(t, patch)
			}
		})
	}
}

func TestBuildProductPatch_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty body", `{}`, "no fields to update"},
		{"only unknown keys", `{"foo": 1}`, "no fields to update"},
		{"null price", `{"precio": null}`, "precio cannot be null"},
		{"non numeric price", `{"precio": "abc"}`, "precio must be a number"},
		{"negative price", `{"precio": -1}`, "precio must not be negative"},
		{"fractional stock", `{"stock_actual": 2.5}`, "stock_actual must be an integer"},
		{"negative stock", `{"stock_minimo": "-3"}`, "stock_minimo must not be negative"},
		{"null stock", `{"stock_actual": null}`, "stock_actual cannot be null"},
		{"blank name", `{"nombre": "   "}`, "nombre cannot be empty"},
		{"null code", `{"codigo": null}`, "codigo cannot be null"},
		{"negative category", `{"categoria_id": -2}`, "categoria_id must be a positive integer"},
		{"text category", `{"categoria_id": "tools"}`, "categoria_id must be a positive integer"},
		{"huge stock exponent", `{"stock_actual": 1e30000000}`, "stock_actual is out of range"},
		{"huge negative stock exponent", `{"stock_minimo": 1e-2000000000}`, "stock_minimo is out of range"},
		{"long stock literal", `{"stock_actual": "000000000000000000000000000000001"}`, "stock_actual is out of range"},
		{"stock above int32", `{"stock_actual": 3000000000}`, "stock_actual is too large"},
		{"huge price exponent", `{"precio": 1e2000000000}`, "precio is out of range"},
		{"price above column", `{"precio": "100000000"}`, "precio must be less than 100000000"},
		{"price rounding above column", `{"precio": "99999999.999"}`, "precio must be less than 100000000"},
		{"huge category exponent", `{"categoria_id": 1e30000000}`, "categoria_id must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := BuildProductPatch(decodeUpdate(t, tt.body))

			// Assert
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestBuildProductPatch_FormBodyClearsCategory(t *testing.T) {
	req := entity.UpdateProductRequestFromForm(map[string][]string{
		"categoria_id": {""},
		"stock_actual": {"7"},
	})

	// Act
	patch, err := BuildProductPatch(req)

	// Assert
	require.NoError(t, err)
	assert.True(t, patch.CategoryID.Null)
	assert.Equal(t, 7, *patch.StockActual)
	assert.Equal(t, map[string]interface{}{"stock_actual": 7, "categoria_id": nil}, patch.Columns())
}

func TestBuildProductPatch_HugeExponentRejectedQuickly(t *testing.T) {
	// Arrange
	req := decodeUpdate(t, `{"stock_actual": 1e300000000, "precio": 1e300000000}`)
	started := time.Now()

	// Act
	_, err := BuildProductPatch(req)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Less(t, time.Since(started), time.Second)
}

func TestBuildProductPatch_PriceRoundedToCents(t *testing.T) {
	// Act
	patch, err := BuildProductPatch(decodeUpdate(t, `{"precio": "12.345"}`))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "12.35", patch.Price.StringFixed(2))
}

func TestBuildProductPatch_NullDescriptionClears(t *testing.T) {
	// Act
	patch, err := BuildProductPatch(decodeUpdate(t, `{"descripcion": null}`))

	// Assert
	require.NoError(t, err)
	require.NotNil(t, patch.Description)
	assert.Equal(t, "", *patch.Description)
}
