package receipt

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"mein-essen/domain"
	"mein-essen/entities"
	"mein-essen/internal/utils/storage"
	"mein-essen/pkg/ai"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	receiptFolder = "receipts"
)

const extractionPrompt = `You are reading a photo of a grocery store receipt.
Extract every purchased line item. Respond ONLY with a JSON object of the form
{"items":[{"name":"string","qty":number,"price":number}]}
where "price" is the unit price in euros and "qty" the purchased quantity (use 1 when not printed,
use the weight in kg for weighed goods). Skip deposits returned, discounts summary lines, subtotals,
totals, payment and tax lines. Do not include explanations or markdown.`

type (
	ReceiptService interface {
		UploadReceiptImage(ctx context.Context, req domain.UploadReceiptRequest) (domain.UploadReceiptResponse, error)
		AnalyzeReceipt(ctx context.Context, req domain.AnalyzeReceiptRequest) (domain.AnalyzeReceiptResponse, error)
		SaveReceipt(ctx context.Context, req domain.SaveReceiptRequest) (domain.SaveReceiptResponse, error)
		GetReceipts(ctx context.Context, limit int) ([]domain.ReceiptResponse, error)
		GetReceiptByID(ctx context.Context, id string) (domain.ReceiptResponse, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		s3                storage.AwsS3
		model             ai.Client
		maxUploadSize     int64
		now               func() time.Time
	}
)

func NewReceiptService(receiptRepository ReceiptRepository, s3 storage.AwsS3, model ai.Client, maxUploadSize int64) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		s3:                s3,
		model:             model,
		maxUploadSize:     maxUploadSize,
		now:               time.Now,
	}
}

func (s *receiptService) UploadReceiptImage(ctx context.Context, req domain.UploadReceiptRequest) (domain.UploadReceiptResponse, error) {
	file := req.ReceiptImage
	if file == nil {
		return domain.UploadReceiptResponse{}, domain.ErrNoFileUploaded
	}
	if s.maxUploadSize > 0 && file.Size > s.maxUploadSize {
		return domain.UploadReceiptResponse{}, domain.ErrFileTooLarge
	}
	if err := storage.ValidateImage(file, storage.AllowImage...); err != nil {
		return domain.UploadReceiptResponse{}, err
	}

	fileName := fmt.Sprintf("%d-%s", s.now().UnixMilli(), storage.SanitizeFileName(file.Filename))
	objectKey, err := s.s3.UploadFile(ctx, fileName, file, receiptFolder)
	if err != nil {
		return domain.UploadReceiptResponse{}, err
	}

	return domain.UploadReceiptResponse{
		URL:      s.s3.GetPublicLinkKey(objectKey),
		FileName: fileName,
	}, nil
}

func (s *receiptService) AnalyzeReceipt(ctx context.Context, req domain.AnalyzeReceiptRequest) (domain.AnalyzeReceiptResponse, error) {
	if strings.TrimSpace(req.ImageURL) == "" {
		return domain.AnalyzeReceiptResponse{}, domain.ErrMissingImageURL
	}

	image := ai.ImageInput{URL: req.ImageURL}
	if s.model.InlineImages() {
		// only our own bucket is read server-side
		key := s.s3.GetObjectKeyFromLink(req.ImageURL)
		if !strings.HasPrefix(key, receiptFolder+"/") {
			return domain.AnalyzeReceiptResponse{}, domain.ErrForeignImageURL
		}
		data, mimeType, err := s.s3.DownloadFile(ctx, key)
		if err != nil {
			return domain.AnalyzeReceiptResponse{}, err
		}
		data, mimeType = ai.PrepareImage(data, mimeType, ai.MaxImageSide)
		image = ai.ImageInput{Data: data, MimeType: mimeType}
	}

	text, err := s.model.CompleteWithImage(ctx, ai.CompletionRequest{
		Messages:    ai.UserPrompt(extractionPrompt),
		JSON:        true,
		Temperature: 0.1,
		MaxTokens:   2000,
	}, image)
	if err != nil {
		return domain.AnalyzeReceiptResponse{}, err
	}

	items, err := ParseItems(text)
	if err != nil {
		log.Errorf("receipt analysis returned unparseable output: %v", err)
		return domain.AnalyzeReceiptResponse{}, err
	}

	return domain.AnalyzeReceiptResponse{Items: items}, nil
}

type modelItem struct {
	Name     string   `json:"name"`
	Qty      *float64 `json:"qty"`
	Quantity *float64 `json:"quantity"`
	Price    float64  `json:"price"`
}

// ParseItems accepts either {"items":[...]} or a bare array and normalizes
// each line: nameless lines are dropped, missing or non-positive quantities
// become 1 and negative prices become 0.
func ParseItems(text string) ([]domain.ScannedItem, error) {
	raw := ai.ExtractJSON(text)

	var parsed []modelItem
	if strings.HasPrefix(raw, "[") {
		if err := ai.DecodeJSON(raw, &parsed); err != nil {
			return nil, err
		}
	} else {
		var wrapper struct {
			Items []modelItem `json:"items"`
		}
		if err := ai.DecodeJSON(raw, &wrapper); err != nil {
			return nil, err
		}
		parsed = wrapper.Items
	}

	items := make([]domain.ScannedItem, 0, len(parsed))
	for _, p := range parsed {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}

		qty := 1.0
		if p.Qty != nil {
			qty = *p.Qty
		} else if p.Quantity != nil {
			qty = *p.Quantity
		}
		if math.IsNaN(qty) {
			qty = 1
		}
		qty = Quantity(qty).InexactFloat64()
		if qty <= 0 {
			qty = 1
		}

		price := p.Price
		if price < 0 || math.IsNaN(price) {
			price = 0
		}

		items = append(items, domain.ScannedItem{
			Name:  name,
			Qty:   qty,
			Price: UnitPrice(price).InexactFloat64(),
		})
	}
	return items, nil
}

func (s *receiptService) SaveReceipt(ctx context.Context, req domain.SaveReceiptRequest) (domain.SaveReceiptResponse, error) {
	if strings.TrimSpace(req.ImageURL) == "" {
		return domain.SaveReceiptResponse{}, domain.ErrMissingImageURL
	}
	if len(req.Items) == 0 {
		return domain.SaveReceiptResponse{}, domain.ErrNoItems
	}

	purchasedAt := s.now()
	if req.PurchasedAt != nil && !req.PurchasedAt.IsZero() {
		purchasedAt = *req.PurchasedAt
	}

	receipt := &entities.Receipt{
		ID:          uuid.New(),
		ImageURL:    req.ImageURL,
		Total:       ReceiptTotal(req.Items),
		Merchant:    entities.UnknownMerchant,
		PurchasedAt: purchasedAt,
	}

	items := make([]*entities.ReceiptItem, 0, len(req.Items))
	for i, item := range req.Items {
		qty := Quantity(item.Qty)
		price := UnitPrice(item.Price)
		items = append(items, &entities.ReceiptItem{
			ID:       uuid.New(),
			Line:     i,
			Name:     strings.TrimSpace(item.Name),
			Quantity: qty,
			Price:    price,
			Total:    LineTotal(qty, price),
		})
	}

	if err := s.receiptRepository.CreateReceipt(ctx, receipt, items); err != nil {
		return domain.SaveReceiptResponse{}, fmt.Errorf("save receipt: %w", err)
	}

	return domain.SaveReceiptResponse{
		ReceiptID: receipt.ID.String(),
		Total:     receipt.Total.InexactFloat64(),
	}, nil
}

func (s *receiptService) GetReceipts(ctx context.Context, limit int) ([]domain.ReceiptResponse, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	receipts, err := s.receiptRepository.GetReceipts(ctx, limit)
	if err != nil {
		return nil, err
	}

	response := make([]domain.ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		response = append(response, toReceiptResponse(r))
	}
	return response, nil
}

func (s *receiptService) GetReceiptByID(ctx context.Context, id string) (domain.ReceiptResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ReceiptResponse{}, domain.NewClientError(domain.ErrParseUUID.Error())
	}

	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	return toReceiptResponse(receipt), nil
}

func toReceiptResponse(r *entities.Receipt) domain.ReceiptResponse {
	items := make([]domain.ReceiptItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.ReceiptItemResponse{
			ID:    item.ID.String(),
			Name:  item.Name,
			Qty:   item.Quantity.InexactFloat64(),
			Price: item.Price.InexactFloat64(),
			Total: item.Total.InexactFloat64(),
		})
	}

	return domain.ReceiptResponse{
		ID:          r.ID.String(),
		ImageURL:    r.ImageURL,
		Merchant:    r.Merchant,
		Total:       r.Total.InexactFloat64(),
		PurchasedAt: r.PurchasedAt,
		Items:       items,
	}
}
