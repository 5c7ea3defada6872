package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessUploadReceipt  = "receipt image uploaded successfully"
	MessageSuccessAnalyzeReceipt = "receipt analyzed successfully"
	MessageSuccessSaveReceipt    = "receipt saved successfully"
	MessageSuccessGetReceipts    = "receipts retrieved successfully"

	MessageFailedUploadReceipt  = "failed to upload receipt image"
	MessageFailedAnalyzeReceipt = "failed to analyze receipt"
	MessageFailedSaveReceipt    = "failed to save receipt"
	MessageFailedGetReceipts    = "failed to retrieve receipts"

	ErrNoFileUploaded     = NewClientError("no file uploaded")
	ErrFileTooLarge       = NewClientError("file exceeds the 5MB limit")
	ErrInvalidImageFormat = NewClientError("invalid image format")
	ErrMissingImageURL    = NewClientError("imageUrl is required")
	ErrNoItems            = NewClientError("at least one item is required")
	ErrForeignImageURL    = NewClientError("imageUrl must point to an uploaded receipt")
	ErrReceiptNotFound    = errors.New("receipt not found")
)

type (
	UploadReceiptRequest struct {
		ReceiptImage *multipart.FileHeader `form:"receipt" validate:"required"`
	}

	UploadReceiptResponse struct {
		URL      string `json:"url"`
		FileName string `json:"fileName"`
	}

	AnalyzeReceiptRequest struct {
		ImageURL string `json:"imageUrl" validate:"required,http_url"`
	}

	// ScannedItem is one receipt line as produced by the vision model and
	// echoed back by the client on confirmation.
	ScannedItem struct {
		Name  string  `json:"name" validate:"required,notblank"`
		Qty   float64 `json:"qty" validate:"gte=0.001,lte=9999999"`
		Price float64 `json:"price" validate:"gte=0"`
	}

	AnalyzeReceiptResponse struct {
		Items []ScannedItem `json:"items"`
	}

	SaveReceiptRequest struct {
		ImageURL    string        `json:"imageUrl" validate:"required,http_url"`
		Items       []ScannedItem `json:"items" validate:"required,min=1,dive"`
		PurchasedAt *time.Time    `json:"purchasedAt,omitempty"`
	}

	SaveReceiptResponse struct {
		ReceiptID string  `json:"receiptId"`
		Total     float64 `json:"total"`
	}

	ReceiptItemResponse struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Qty   float64 `json:"qty"`
		Price float64 `json:"price"`
		Total float64 `json:"total"`
	}

	ReceiptResponse struct {
		ID          string                `json:"id"`
		ImageURL    string                `json:"imageUrl"`
		Merchant    string                `json:"merchant"`
		Total       float64               `json:"total"`
		PurchasedAt time.Time             `json:"purchasedAt"`
		Items       []ReceiptItemResponse `json:"items"`
	}
)
