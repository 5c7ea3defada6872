// Package receipttest provides an in-memory receipt.ReceiptRepository for
// service and handler tests.
package receipttest

import (
	"context"
	"sort"
	"sync"
	"time"

	"mein-essen/domain"
	"mein-essen/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository struct {
	mu       sync.Mutex
	receipts []*entities.Receipt
	clock    time.Time

	// Err, when set, is returned by every method.
	Err error
	// CreateErr, when set, fails CreateReceipt only.
	CreateErr error
}

func NewRepository() *Repository {
	return &Repository{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *Repository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *Repository) CreateReceipt(ctx context.Context, receipt *entities.Receipt, items []*entities.ReceiptItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if r.CreateErr != nil {
		return r.CreateErr
	}

	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	receipt.CreatedAt = r.tick()
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.ReceiptID = receipt.ID
		item.CreatedAt = r.tick()
	}
	receipt.Items = items
	r.receipts = append(r.receipts, receipt)
	return nil
}

// Add stores a receipt built from items directly, bypassing the service.
func (r *Repository) Add(purchasedAt time.Time, items ...*entities.ReceiptItem) *entities.Receipt {
	total := decimal.Zero
	for i, item := range items {
		item.Line = i
		total = total.Add(item.Total)
	}
	receipt := &entities.Receipt{
		ImageURL:    "https://img.example.com/r.jpg",
		Total:       total,
		Merchant:    entities.UnknownMerchant,
		PurchasedAt: purchasedAt,
	}
	_ = r.CreateReceipt(context.Background(), receipt, items)
	return receipt
}

func (r *Repository) Receipts() []*entities.Receipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entities.Receipt(nil), r.receipts...)
}

func (r *Repository) GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	for _, receipt := range r.receipts {
		if receipt.ID.String() == id {
			return receipt, nil
		}
	}
	return nil, domain.ErrReceiptNotFound
}

func (r *Repository) GetReceipts(ctx context.Context, limit int) ([]*entities.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	out := append([]*entities.Receipt(nil), r.receipts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) SumTotalsSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return decimal.Zero, r.Err
	}
	sum := decimal.Zero
	for _, receipt := range r.receipts {
		if !receipt.PurchasedAt.Before(since) {
			sum = sum.Add(receipt.Total)
		}
	}
	return sum, nil
}

func (r *Repository) GetRecentItems(ctx context.Context, limit int) ([]*entities.ReceiptItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	var items []*entities.ReceiptItem
	for _, receipt := range r.receipts {
		items = append(items, receipt.Items...)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *Repository) GetItemsSince(ctx context.Context, since time.Time) ([]*entities.ReceiptItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	var items []*entities.ReceiptItem
	for _, receipt := range r.receipts {
		if !receipt.PurchasedAt.Before(since) {
			items = append(items, receipt.Items...)
		}
	}
	return items, nil
}

// Item builds a receipt line with its total already computed.
func Item(name string, qty, price float64) *entities.ReceiptItem {
	q := decimal.NewFromFloat(qty).Round(3)
	p := decimal.NewFromFloat(price).Round(2)
	return &entities.ReceiptItem{
		Name:     name,
		Quantity: q,
		Price:    p,
		Total:    q.Mul(p).Round(2),
	}
}
