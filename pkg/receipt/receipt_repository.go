package receipt

import (
	"context"
	"errors"
	"time"

	"mein-essen/domain"
	"mein-essen/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	ReceiptRepository interface {
		// CreateReceipt inserts the receipt and its items in one transaction.
		CreateReceipt(ctx context.Context, receipt *entities.Receipt, items []*entities.ReceiptItem) error
		GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error)
		GetReceipts(ctx context.Context, limit int) ([]*entities.Receipt, error)

		SumTotalsSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
		GetRecentItems(ctx context.Context, limit int) ([]*entities.ReceiptItem, error)
		GetItemsSince(ctx context.Context, since time.Time) ([]*entities.ReceiptItem, error)
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt, items []*entities.ReceiptItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(receipt).Error; err != nil {
			return err
		}

		for _, item := range items {
			item.ReceiptID = receipt.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *receiptRepository) GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error) {
	var receipt entities.Receipt
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line asc") }).
		Where("id = ?", id).
		First(&receipt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) GetReceipts(ctx context.Context, limit int) ([]*entities.Receipt, error) {
	var receipts []*entities.Receipt
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line asc") }).
		Order("purchased_at desc").
		Limit(limit).
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *receiptRepository) SumTotalsSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&entities.Receipt{}).
		Select("COALESCE(SUM(total), 0)").
		Where("purchased_at >= ?", since).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *receiptRepository) GetRecentItems(ctx context.Context, limit int) ([]*entities.ReceiptItem, error) {
	var items []*entities.ReceiptItem
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *receiptRepository) GetItemsSince(ctx context.Context, since time.Time) ([]*entities.ReceiptItem, error) {
	var items []*entities.ReceiptItem
	if err := r.db.WithContext(ctx).
		Joins("JOIN receipts ON receipts.id = receipt_items.receipt_id").
		Where("receipts.purchased_at >= ?", since).
		Order("receipts.purchased_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
