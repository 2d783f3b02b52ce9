package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category представляет категорию товаров (только чтение)
type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"nombre" gorm:"column:nombre;size:100;not null"`
	Description string `json:"descripcion" gorm:"column:descripcion;type:text"`
}

func (Category) TableName() string { return "categorias" }

// Product представляет товар на складе
// Товары не удаляются физически, только деактивируются (Active = false)
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Code        string          `json:"codigo" gorm:"column:codigo;size:50;not null;index"`
	Name        string          `json:"nombre" gorm:"column:nombre;size:200;not null"`
	Description string          `json:"descripcion" gorm:"column:descripcion;type:text"`
	Price       decimal.Decimal `json:"precio" gorm:"column:precio;type:decimal(10,2);not null"`
	StockActual int             `json:"stock_actual" gorm:"column:stock_actual;not null"`
	StockMinimo int             `json:"stock_minimo" gorm:"column:stock_minimo;not null"`
	CategoryID  *uint           `json:"categoria_id" gorm:"column:categoria_id"`
	ImageURL    *string         `json:"imagen_url" gorm:"column:imagen_url;size:255"`
	Active      bool            `json:"activo" gorm:"column:activo;not null;default:true"`
	CreatedAt   time.Time       `json:"fecha_creacion" gorm:"column:fecha_creacion;autoCreateTime"`
	UpdatedAt   time.Time       `json:"fecha_actualizacion" gorm:"column:fecha_actualizacion;autoUpdateTime"`
}

func (Product) TableName() string { return "productos" }

// IsLowStock - остаток на уровне порога или ниже
func (p Product) IsLowStock() bool {
	return p.StockActual <= p.StockMinimo
}

// IsOutOfStock - товар закончился
func (p Product) IsOutOfStock() bool {
	return p.StockActual == 0
}

// ProductWithCategory - товар с названием категории для отображения
type ProductWithCategory struct {
	Product
	CategoryName *string `json:"categoria_nombre" gorm:"column:categoria_nombre"`
}

// AlertType - тип алерта по остаткам
type AlertType string

const (
	AlertTypeLowStock   AlertType = "stock_bajo"
	AlertTypeOutOfStock AlertType = "stock_agotado"
)

// Alert - сгенерированное уведомление об остатках
// Меняется только флаг Read, алерты не удаляются
type Alert struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"producto_id" gorm:"column:producto_id;not null;index:idx_alertas_producto_tipo_fecha,priority:1"`
	Type      AlertType `json:"tipo_alerta" gorm:"column:tipo_alerta;size:20;not null;index:idx_alertas_producto_tipo_fecha,priority:2"`
	Message   string    `json:"mensaje" gorm:"column:mensaje;type:text;not null"`
	CreatedAt time.Time `json:"fecha_alerta" gorm:"column:fecha_alerta;not null;index:idx_alertas_producto_tipo_fecha,priority:3"`
	Read      bool      `json:"leida" gorm:"column:leida;not null;default:false"`
}

func (Alert) TableName() string { return "alertas" }

// AlertWithProduct - алерт с названием и кодом товара для списка
type AlertWithProduct struct {
	Alert
	ProductName string `json:"producto_nombre" gorm:"column:producto_nombre"`
	ProductCode string `json:"producto_codigo" gorm:"column:producto_codigo"`
}

// AlertTrigger - что запустило проход генератора алертов
type AlertTrigger string

const (
	AlertTriggerScheduled AlertTrigger = "scheduled"
	AlertTriggerOnRead    AlertTrigger = "on_read"
	AlertTriggerManual    AlertTrigger = "manual"
)

// AlertRun - запись журнала о проходе генератора (MongoDB, коллекция alert_runs)
type AlertRun struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Trigger    AlertTrigger       `json:"trigger" bson:"trigger"`
	StartedAt  time.Time          `json:"started_at" bson:"started_at"`
	FinishedAt time.Time          `json:"finished_at" bson:"finished_at"`
	DurationMs int64              `json:"duration_ms" bson:"duration_ms"`
	Created    int                `json:"created" bson:"created"`
	Failed     bool               `json:"failed" bson:"failed"`
	Error      string             `json:"error,omitempty" bson:"error,omitempty"`
}

// ProductEvent - событие изменения товара для Kafka
type ProductEvent struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED
	ProductID   uint            `json:"product_id"`
	Code        string          `json:"codigo"`
	Name        string          `json:"nombre"`
	Price       decimal.Decimal `json:"precio"`
	StockActual int             `json:"stock_actual"`
	StockMinimo int             `json:"stock_minimo"`
	Fields      []string        `json:"fields,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// AlertEvent - событие о новом алерте для Kafka
type AlertEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"` // ALERT_CREATED
	AlertID     uint      `json:"alert_id"`
	ProductID   uint      `json:"product_id"`
	ProductCode string    `json:"codigo"`
	Type        AlertType `json:"tipo_alerta"`
	Message     string    `json:"mensaje"`
	StockActual int       `json:"stock_actual"`
	StockMinimo int       `json:"stock_minimo"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventAlertCreated   = "ALERT_CREATED"
)
