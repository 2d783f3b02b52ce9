package entity

import "github.com/shopspring/decimal"

// ProductPatch - проверенное частичное изменение товара.
// nil / незаданный Optional означает "не менять".
type ProductPatch struct {
	Code        *string
	Name        *string
	Description *string
	Price       *decimal.Decimal
	StockActual *int
	StockMinimo *int
	CategoryID  Optional[uint]   // Null - отвязать от категории
	ImageURL    Optional[string] // Null - очистить
}

// IsEmpty - в патче нет ни одного поля
func (p ProductPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields возвращает имена изменяемых полей в порядке колонок таблицы
func (p ProductPatch) Fields() []string {
	var fields []string
	if p.Code != nil {
		fields = append(fields, "codigo")
	}
	if p.Name != nil {
		fields = append(fields, "nombre")
	}
	if p.Description != nil {
		fields = append(fields, "descripcion")
	}
	if p.Price != nil {
		fields = append(fields, "precio")
	}
	if p.StockActual != nil {
		fields = append(fields, "stock_actual")
	}
	if p.StockMinimo != nil {
		fields = append(fields, "stock_minimo")
	}
	if p.CategoryID.Set {
		fields = append(fields, "categoria_id")
	}
	if p.ImageURL.Set {
		fields = append(fields, "imagen_url")
	}
	return fields
}

// Columns возвращает значения для UPDATE; nil пишется как NULL
func (p ProductPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Code != nil {
		cols["codigo"] = *p.Code
	}
	if p.Name != nil {
		cols["nombre"] = *p.Name
	}
	if p.Description != nil {
		cols["descripcion"] = *p.Description
	}
	if p.Price != nil {
		cols["precio"] = *p.Price
	}
	if p.StockActual != nil {
		cols["stock_actual"] = *p.StockActual
	}
	if p.StockMinimo != nil {
		cols["stock_minimo"] = *p.StockMinimo
	}
	if p.CategoryID.Set {
		if p.CategoryID.Null {
			cols["categoria_id"] = nil
		} else {
			cols["categoria_id"] = p.CategoryID.Value
		}
	}
	if p.ImageURL.Set {
		if p.ImageURL.Null {
			cols["imagen_url"] = nil
		} else {
			cols["imagen_url"] = p.ImageURL.Value
		}
	}
	return cols
}

// ApplyTo применяет патч к товару в памяти
func (p ProductPatch) ApplyTo(product *Product) {
	if p.Code != nil {
		product.Code = *p.Code
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.StockActual != nil {
		product.StockActual = *p.StockActual
	}
	if p.StockMinimo != nil {
		product.StockMinimo = *p.StockMinimo
	}
	if p.CategoryID.Set {
		if p.CategoryID.Null {
			product.CategoryID = nil
		} else {
			id := p.CategoryID.Value
			product.CategoryID = &id
		}
	}
	if p.ImageURL.Set {
		if p.ImageURL.Null {
			product.ImageURL = nil
		} else {
			url := p.ImageURL.Value
			product.ImageURL = &url
		}
	}
}
