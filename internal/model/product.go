package model

type Product struct {
	BaseModel
	SKU      string   `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name     string   `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category string   `gorm:"type:varchar(100)" json:"category"`
	Status   string   `gorm:"type:varchar(50)" json:"status"`
	Price    float64  `gorm:"default:0" json:"price" validate:"gte=0"`
	Quantity Quantity `gorm:"default:0" json:"quantity" validate:"gte=0"`
}

// CategoryOrUnknown returns the grouping key for analytics.
// Products without a category fall into the "Unknown" bucket.
func (p *Product) CategoryOrUnknown() string {
	if p.Category == "" {
		return "Unknown"
	}
	return p.Category
}

// StatusOrUnknown returns the status grouping key for analytics.
func (p *Product) StatusOrUnknown() string {
	if p.Status == "" {
		return "Unknown"
	}
	return p.Status
}

// Value is the inventory value of this product (price * quantity).
func (p *Product) Value() float64 {
	return p.Price * float64(p.Quantity)
}
