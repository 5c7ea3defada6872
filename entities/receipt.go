package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const UnknownMerchant = "Unknown"

type Receipt struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ImageURL    string          `gorm:"not null" json:"image_url"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Merchant    string          `gorm:"default:'Unknown'" json:"merchant"`
	PurchasedAt time.Time       `gorm:"index;not null" json:"purchased_at"`

	Items []*ReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Timestamp
}

type ReceiptItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ReceiptID uuid.UUID       `gorm:"type:uuid;index;not null" json:"receipt_id"`
	Line      int             `gorm:"not null;default:0" json:"line"` // position on the receipt
	Name      string          `gorm:"not null" json:"name"`
	Quantity  decimal.Decimal `gorm:"type:numeric(10,3);not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Receipt *Receipt `gorm:"foreignKey:ReceiptID" json:"-"`
	Timestamp
}
