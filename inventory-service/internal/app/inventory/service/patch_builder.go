package service

import (
	"errors"
	"math"
	"strings"

	"inventario/inventory-service/internal/app/inventory/entity"

	"github.com/shopspring/decimal"
)

// DefaultStockMinimo - порог по умолчанию для новых товаров
const DefaultStockMinimo = 5

// Ограничения на числовые литералы: сравнение и вывод decimal
// стоят порядка 10^|экспонента|
const (
	maxNumberLen   = 32
	maxNumberScale = 32
)

var (
	maxStock = decimal.NewFromInt(math.MaxInt32)
	// precio хранится как decimal(10,2)
	maxPrice = decimal.New(1, 8)
)

// BuildProductPatch проверяет запрос на частичное обновление и приводит типы.
// Обращений к хранилищу нет: уникальность кода и существование категории
// проверяет UpdateProduct.
func BuildProductPatch(req entity.UpdateProductRequest) (entity.ProductPatch, error) {
	var patch entity.ProductPatch

	if req.Code.Set {
		code, err := requiredText("codigo", req.Code)
		if err != nil {
			return entity.ProductPatch{}, err
		}
		patch.Code = &code
	}

	if req.Name.Set {
		name, err := requiredText("nombre", req.Name)
		if err != nil {
			return entity.ProductPatch{}, err
		}
		patch.Name = &name
	}

	if req.Description.Set {
		description := ""
		if !req.Description.Null {
			description = req.Description.Value.String()
		}
		patch.Description = &description
	}

	if req.Price.Set {
		if req.Price.Null {
			return entity.ProductPatch{}, invalidf("precio cannot be null")
		}
		price, err := parsePrice(req.Price.Value)
		if err != nil {
			return entity.ProductPatch{}, err
		}
		patch.Price = &price
	}

	if req.StockActual.Set {
		stock, err := requiredStock("stock_actual", req.StockActual)
		if err != nil {
			return entity.ProductPatch{}, err
		}
		patch.StockActual = &stock
	}

	if req.StockMinimo.Set {
		stock, err := requiredStock("stock_minimo", req.StockMinimo)
		if err != nil {
			return entity.ProductPatch{}, err
		}
		patch.StockMinimo = &stock
	}

	if req.CategoryID.Set {
		var raw *entity.Scalar
		if !req.CategoryID.Null {
			raw = &req.CategoryID.Value
		}
		categoryID, err := parseCategoryID(raw)
		if err != nil {
			return entity.ProductPatch{}, err
		}
		if categoryID == nil {
			patch.CategoryID = entity.Null[uint]()
		} else {
			patch.CategoryID = entity.Some(*categoryID)
		}
	}

	if req.ImageURL.Set {
		var raw *entity.Scalar
		if !req.ImageURL.Null {
			raw = &req.ImageURL.Value
		}
		if url := parseImageURL(raw); url == nil {
			patch.ImageURL = entity.Null[string]()
		} else {
			patch.ImageURL = entity.Some(*url)
		}
	}

	if patch.IsEmpty() {
		return entity.ProductPatch{}, ErrNoFieldsToUpdate
	}

	return patch, nil
}

func requiredText(field string, v entity.Optional[entity.Scalar]) (string, error) {
	if v.Null {
		return "", invalidf("%s cannot be null", field)
	}
	text := strings.TrimSpace(v.Value.String())
	if text == "" {
		return "", invalidf("%s cannot be empty", field)
	}
	return text, nil
}

func requiredStock(field string, v entity.Optional[entity.Scalar]) (int, error) {
	if v.Null {
		return 0, invalidf("%s cannot be null", field)
	}
	return parseStock(field, v.Value)
}

// parsePrice принимает неотрицательное десятичное число ("12.50", 12.5),
// округляет до копеек
func parsePrice(raw entity.Scalar) (decimal.Decimal, error) {
	price, err := parseNumber(raw)
	if errors.Is(err, errNumberOutOfRange) {
		return decimal.Decimal{}, invalidf("precio is out of range")
	}
	if err != nil {
		return decimal.Decimal{}, invalidf("precio must be a number, got %q", raw)
	}
	if price.IsNegative() {
		return decimal.Decimal{}, invalidf("precio must not be negative")
	}

	price = price.Round(2)
	if price.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, invalidf("precio must be less than %s", maxPrice)
	}
	return price, nil
}

// parseStock принимает целое число >= 0, в том числе записанное как "3.0"
func parseStock(field string, raw entity.Scalar) (int, error) {
	n, err := parseWholeNumber(raw)
	if errors.Is(err, errNumberOutOfRange) {
		return 0, invalidf("%s is out of range", field)
	}
	if err != nil {
		return 0, invalidf("%s must be an integer, got %q", field, raw)
	}
	if n.IsNegative() {
		return 0, invalidf("%s must not be negative", field)
	}
	if n.GreaterThan(maxStock) {
		return 0, invalidf("%s is too large", field)
	}
	return int(n.IntPart()), nil
}

// parseCategoryID: nil - отвязать категорию
func parseCategoryID(raw *entity.Scalar) (*uint, error) {
	if raw == nil {
		return nil, nil
	}

	text := strings.TrimSpace(raw.String())
	switch text {
	case "", "0", "false":
		return nil, nil
	}

	n, err := parseWholeNumber(entity.Scalar(text))
	if err != nil || !n.IsPositive() || n.GreaterThan(maxStock) {
		return nil, invalidf("categoria_id must be a positive integer, got %q", text)
	}

	id := uint(n.IntPart())
	return &id, nil
}

// parseImageURL: nil - очистить
func parseImageURL(raw *entity.Scalar) *string {
	if raw == nil {
		return nil
	}
	url := strings.TrimSpace(raw.String())
	if url == "" {
		return nil
	}
	return &url
}

func parseWholeNumber(raw entity.Scalar) (decimal.Decimal, error) {
	n, err := parseNumber(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !n.IsInteger() {
		return decimal.Decimal{}, errNotInteger
	}
	return n, nil
}

// parseNumber разбирает литерал, отсекая длинные записи и большие экспоненты
// до любых сравнений
func parseNumber(raw entity.Scalar) (decimal.Decimal, error) {
	text := strings.TrimSpace(raw.String())
	if len(text) > maxNumberLen {
		return decimal.Decimal{}, errNumberOutOfRange
	}

	n, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if exp := n.Exponent(); exp > maxNumberScale || exp < -maxNumberScale {
		return decimal.Decimal{}, errNumberOutOfRange
	}
	return n, nil
}
