package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// AdminUser model - PostgreSQL (back-office accounts)
type AdminUser struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"default:admin" json:"role"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentBankTransfer   = "bank_transfer"
	PaymentWhatsApp       = "whatsapp"
)

// OrderItem is a cart line item copied into an order with its frozen price.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	NameEn    string          `json:"name_en,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderItems is stored as a jsonb array.
type OrderItems []OrderItem

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, o)
}

// Order model - PostgreSQL
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber   string          `gorm:"not null;uniqueIndex" json:"order_number"`
	SessionID     string          `gorm:"index" json:"-"`
	Status        string          `gorm:"default:pending;index" json:"status"`
	CustomerName  string          `gorm:"not null" json:"customer_name"`
	CustomerPhone string          `gorm:"not null" json:"customer_phone"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	City          string          `json:"city"`
	Address       string          `json:"address"`
	Notes         string          `json:"notes,omitempty"`
	PaymentMethod string          `gorm:"not null" json:"payment_method"`
	Items         OrderItems      `gorm:"type:jsonb" json:"items"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2)" json:"subtotal"`
	ShippingFee   decimal.Decimal `gorm:"type:numeric(12,2)" json:"shipping_fee"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2)" json:"total"`
	Currency      string          `gorm:"size:3" json:"currency"`
	Language      string          `gorm:"size:2" json:"language"`
	StatusLog     JSONB           `gorm:"type:jsonb" json:"status_log,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SiteSettings model - PostgreSQL (single row, ID 1)
type SiteSettings struct {
	ID                    uint            `gorm:"primaryKey" json:"-"`
	StoreName             string          `json:"store_name"`
	StoreNameEn           string          `json:"store_name_en"`
	WhatsAppNumber        string          `json:"whatsapp_number"`
	ContactPhone          string          `json:"contact_phone"`
	ContactEmail          string          `json:"contact_email"`
	Currency              string          `gorm:"size:3" json:"currency"`
	ShippingFee           decimal.Decimal `gorm:"type:numeric(12,2)" json:"shipping_fee"`
	FreeShippingThreshold decimal.Decimal `gorm:"type:numeric(12,2)" json:"free_shipping_threshold"`
	AnnouncementAr        string          `json:"announcement_ar,omitempty"`
	AnnouncementEn        string          `json:"announcement_en,omitempty"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// CartSnapshot model - PostgreSQL (durable cart store, one row per session key)
type CartSnapshot struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"index"`
}
