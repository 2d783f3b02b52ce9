package entity

import "net/url"

// CreateProductRequest - тело POST /api/productos
// Числовые поля принимаются и числом, и строкой (старый фронтенд шлет form-data)
type CreateProductRequest struct {
	Code        Scalar  `json:"codigo" validate:"required"`
	Name        Scalar  `json:"nombre" validate:"required"`
	Description Scalar  `json:"descripcion"`
	Price       Scalar  `json:"precio" validate:"required"`
	StockActual *Scalar `json:"stock_actual"`
	StockMinimo *Scalar `json:"stock_minimo"`
	CategoryID  *Scalar `json:"categoria_id"`
	ImageURL    *Scalar `json:"imagen_url"`
}

// UpdateProductRequest - тело PUT /api/productos/:id
// Отсутствующее поле не меняется, null очищает значение.
// Неизвестные ключи игнорируются.
type UpdateProductRequest struct {
	Code        Optional[Scalar] `json:"codigo"`
	Name        Optional[Scalar] `json:"nombre"`
	Description Optional[Scalar] `json:"descripcion"`
	Price       Optional[Scalar] `json:"precio"`
	StockActual Optional[Scalar] `json:"stock_actual"`
	StockMinimo Optional[Scalar] `json:"stock_minimo"`
	CategoryID  Optional[Scalar] `json:"categoria_id"`
	ImageURL    Optional[Scalar] `json:"imagen_url"`
}

// CreateProductRequestFromForm собирает запрос из multipart/urlencoded формы
func CreateProductRequestFromForm(form url.Values) CreateProductRequest {
	req := CreateProductRequest{
		Code:        Scalar(form.Get("codigo")),
		Name:        Scalar(form.Get("nombre")),
		Description: Scalar(form.Get("descripcion")),
		Price:       Scalar(form.Get("precio")),
	}

	optional := func(key string) *Scalar {
		if _, ok := form[key]; !ok {
			return nil
		}
		v := Scalar(form.Get(key))
		return &v
	}
	req.StockActual = optional("stock_actual")
	req.StockMinimo = optional("stock_minimo")
	req.CategoryID = optional("categoria_id")
	req.ImageURL = optional("imagen_url")

	return req
}

// UpdateProductRequestFromForm собирает частичное обновление из формы.
// В форме нельзя передать null, пустая строка categoria_id отвязывает категорию.
func UpdateProductRequestFromForm(form url.Values) UpdateProductRequest {
	field := func(key string) Optional[Scalar] {
		if _, ok := form[key]; !ok {
			return Optional[Scalar]{}
		}
		return Some(Scalar(form.Get(key)))
	}

	return UpdateProductRequest{
		Code:        field("codigo"),
		Name:        field("nombre"),
		Description: field("descripcion"),
		Price:       field("precio"),
		StockActual: field("stock_actual"),
		StockMinimo: field("stock_minimo"),
		CategoryID:  field("categoria_id"),
		ImageURL:    field("imagen_url"),
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"mensaje"`
}

type ProductResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"mensaje,omitempty"`
	Product *ProductWithCategory `json:"producto"`
}

type ProductListResponse struct {
	Success  bool                  `json:"success"`
	Products []ProductWithCategory `json:"productos"`
	Total    int                   `json:"total"`
}

type CategoryListResponse struct {
	Success    bool       `json:"success"`
	Categories []Category `json:"categorias"`
	Total      int        `json:"total"`
}

type AlertListResponse struct {
	Success bool               `json:"success"`
	Alerts  []AlertWithProduct `json:"alertas"`
	Total   int                `json:"total"`
}

type AlertScanResponse struct {
	Success bool   `json:"success"`
	Created int    `json:"creadas"`
	Error   string `json:"error,omitempty"`
}

type AlertRunListResponse struct {
	Success bool       `json:"success"`
	Runs    []AlertRun `json:"ejecuciones"`
	Total   int        `json:"total"`
}
