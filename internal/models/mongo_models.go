package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product model - MongoDB (catalog, flexible attributes)
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SKU           string             `bson:"sku" json:"sku"`
	Name          string             `bson:"name" json:"name"`
	NameEn        string             `bson:"name_en" json:"name_en"`
	Description   string             `bson:"description" json:"description"`
	DescriptionEn string             `bson:"description_en" json:"description_en"`
	CategoryID    primitive.ObjectID `bson:"category_id,omitempty" json:"category_id"`
	Price         float64            `bson:"price" json:"price"`
	DiscountPrice *float64           `bson:"discount_price,omitempty" json:"discount_price,omitempty"`
	Stock         int                `bson:"stock" json:"stock"`
	ImageUrls     []string           `bson:"image_urls" json:"image_urls"`
	Specs         map[string]string  `bson:"specs,omitempty" json:"specs,omitempty"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	IsFeatured    bool               `bson:"is_featured" json:"is_featured"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// EffectivePrice is the discount price when one is set, else the list price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

// Category model - MongoDB
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameEn    string             `bson:"name_en" json:"name_en"`
	Slug      string             `bson:"slug" json:"slug"`
	ImageURL  string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	SortOrder int                `bson:"sort_order" json:"sort_order"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
