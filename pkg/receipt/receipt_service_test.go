package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"mein-essen/domain"
	"mein-essen/internal/utils/storage/storagetest"
	"mein-essen/pkg/ai/aitest"
	"mein-essen/pkg/receipt/receipttest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ReceiptRepository = (*receipttest.Repository)(nil)

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="receipt"; filename="%s"`, name))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	return form.File["receipt"][0]
}

type fixture struct {
	repo    *receipttest.Repository
	s3      *storagetest.Bucket
	model   *aitest.Client
	service *receiptService
}

func newFixture() *fixture {
	f := &fixture{
		repo:  receipttest.NewRepository(),
		s3:    storagetest.NewBucket(),
		model: &aitest.Client{},
	}
	f.service = NewReceiptService(f.repo, f.s3, f.model, 5<<20).(*receiptService)
	f.service.now = func() time.Time { return time.UnixMilli(1715774400000) }
	return f
}

func TestUploadReceiptImage(t *testing.T) {
	f := newFixture()
	fh := fileHeader(t, "my receipt (1).jpg", "image/jpeg", []byte("jpeg-bytes"))

	res, err := f.service.UploadReceiptImage(context.Background(), domain.UploadReceiptRequest{ReceiptImage: fh})
	require.NoError(t, err)

	assert.Equal(t, "1715774400000-my_receipt__1_.jpg", res.FileName)
	assert.Equal(t, "https://cdn.example.com/receipts/1715774400000-my_receipt__1_.jpg", res.URL)
	data, ok := f.s3.Object("receipts/1715774400000-my_receipt__1_.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestUploadReceiptImageRejects(t *testing.T) {
	f := newFixture()

	_, err := f.service.UploadReceiptImage(context.Background(), domain.UploadReceiptRequest{})
	assert.ErrorIs(t, err, domain.ErrNoFileUploaded)
	assert.True(t, domain.IsClientError(err))

	big := fileHeader(t, "big.jpg", "image/jpeg", []byte("x"))
	big.Size = 5<<20 + 1
	_, err = f.service.UploadReceiptImage(context.Background(), domain.UploadReceiptRequest{ReceiptImage: big})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	pdf := fileHeader(t, "receipt.pdf", "application/pdf", []byte("%PDF"))
	_, err = f.service.UploadReceiptImage(context.Background(), domain.UploadReceiptRequest{ReceiptImage: pdf})
	assert.ErrorIs(t, err, domain.ErrInvalidImageFormat)

	assert.Zero(t, f.s3.Len())
}

func TestUploadReceiptImageStorageError(t *testing.T) {
	f := newFixture()
	f.s3.UploadErr = errors.New("AccessDenied")

	fh := fileHeader(t, "r.png", "image/png", []byte("png"))
	_, err := f.service.UploadReceiptImage(context.Background(), domain.UploadReceiptRequest{ReceiptImage: fh})
	require.Error(t, err)
	assert.False(t, domain.IsClientError(err))
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestAnalyzeReceiptPassesURL(t *testing.T) {
	f := newFixture()
	f.model.Response = "```json\n{\"items\":[{\"name\":\"Milch\",\"qty\":2,\"price\":1.19},{\"name\":\"  \",\"qty\":1,\"price\":3}]}\n```"

	res, err := f.service.AnalyzeReceipt(context.Background(), domain.AnalyzeReceiptRequest{ImageURL: "https://cdn.example.com/receipts/a.jpg"})
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, domain.ScannedItem{Name: "Milch", Qty: 2, Price: 1.19}, res.Items[0])
	require.NotNil(t, f.model.LastImage)
	assert.Equal(t, "https://cdn.example.com/receipts/a.jpg", f.model.LastImage.URL)
	assert.True(t, f.model.LastReq.JSON)
	assert.Empty(t, f.s3.Downloaded)
}

func TestAnalyzeReceiptInlinesImage(t *testing.T) {
	f := newFixture()
	f.model.Inline = true
	f.model.Response = `[{"name":"Brot","quantity":1,"price":2.5}]`
	f.s3.Put("receipts/a.jpg", []byte("not really an image"), "image/png")

	res, err := f.service.AnalyzeReceipt(context.Background(), domain.AnalyzeReceiptRequest{ImageURL: "https://cdn.example.com/receipts/a.jpg"})
	require.NoError(t, err)

	assert.Equal(t, []domain.ScannedItem{{Name: "Brot", Qty: 1, Price: 2.5}}, res.Items)
	assert.Equal(t, []string{"receipts/a.jpg"}, f.s3.Downloaded)
	require.NotNil(t, f.model.LastImage)
	assert.Empty(t, f.model.LastImage.URL)
	// undecodable data is forwarded unchanged
	assert.Equal(t, []byte("not really an image"), f.model.LastImage.Data)
	assert.Equal(t, "image/png", f.model.LastImage.MimeType)
}

func TestAnalyzeReceiptInlineOnlyReadsOwnBucket(t *testing.T) {
	f := newFixture()
	f.model.Inline = true
	f.model.Response = `{"items":[]}`

	for _, link := range []string{
		"http://169.254.169.254/latest/meta-data/iam/security-credentials/",
		"http://localhost:8080/internal.png",
		"https://cdn.example.com/avatars/me.png",
	} {
		_, err := f.service.AnalyzeReceipt(context.Background(), domain.AnalyzeReceiptRequest{ImageURL: link})
		assert.ErrorIs(t, err, domain.ErrForeignImageURL, link)
		assert.True(t, domain.IsClientError(err))
	}

	assert.Empty(t, f.s3.Downloaded)
	assert.Equal(t, 0, f.model.Calls)
}

func TestAnalyzeReceiptErrors(t *testing.T) {
	f := newFixture()

	_, err := f.service.AnalyzeReceipt(context.Background(), domain.AnalyzeReceiptRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingImageURL)
	assert.Equal(t, 0, f.model.Calls)

	f.model.Response = "Sorry, I cannot read this receipt."
	_, err = f.service.AnalyzeReceipt(context.Background(), domain.AnalyzeReceiptRequest{ImageURL: "https://x/y.jpg"})
	assert.ErrorIs(t, err, domain.ErrModelInvalidJSON)

	f.model.Err = errors.New("openai API error: 429 Too Many Requests")
	_, err = f.service.AnalyzeReceipt(context.Background(), domain.AnalyzeReceiptRequest{ImageURL: "https://x/y.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestParseItemsNormalizes(t *testing.T) {
	items, err := ParseItems(`Here you go: {"items":[
		{"name":"Eggs","qty":0,"price":2.999},
		{"name":"Refund","qty":1,"price":-1},
		{"name":"Cheese","price":4.5},
		{"name":"Ham","qty":0.3335,"price":12.99},
		{"name":"","qty":1,"price":1}
	]}`)
	require.NoError(t, err)

	assert.Equal(t, []domain.ScannedItem{
		{Name: "Eggs", Qty: 1, Price: 3},
		{Name: "Refund", Qty: 1, Price: 0},
		{Name: "Cheese", Qty: 1, Price: 4.5},
		{Name: "Ham", Qty: 0.334, Price: 12.99},
	}, items)
}

func TestParseItemsEmptyList(t *testing.T) {
	items, err := ParseItems(`{"items":[]}`)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaveReceipt(t *testing.T) {
	f := newFixture()

	res, err := f.service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
		ImageURL: "https://cdn.example.com/receipts/a.jpg",
		Items: []domain.ScannedItem{
			{Name: "Milk", Qty: 2, Price: 1.19},
			{Name: " Bananas ", Qty: 0.87, Price: 1.49},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.68, res.Total)

	receipts := f.repo.Receipts()
	require.Len(t, receipts, 1)
	r := receipts[0]
	assert.Equal(t, res.ReceiptID, r.ID.String())
	assert.Equal(t, "Unknown", r.Merchant)
	assert.Equal(t, f.service.now(), r.PurchasedAt)
	assert.Equal(t, "3.68", r.Total.StringFixed(2))

	require.Len(t, r.Items, 2)
	assert.Equal(t, "Bananas", r.Items[1].Name)
	assert.Equal(t, 0, r.Items[0].Line)
	assert.Equal(t, 1, r.Items[1].Line)
	for _, item := range r.Items {
		assert.Equal(t, r.ID, item.ReceiptID)
		assert.True(t, item.Total.Equal(LineTotal(item.Quantity, item.Price)), "line total for %s", item.Name)
	}
}

func TestSaveReceiptRoundsQuantityToStoredScale(t *testing.T) {
	f := newFixture()

	res, err := f.service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
		ImageURL: "https://cdn.example.com/receipts/a.jpg",
		Items: []domain.ScannedItem{
			{Name: "Cheese", Qty: 0.3335, Price: 12.99},
			{Name: "Scale", Qty: 2.0004, Price: 1000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2004.34, res.Total)

	r := f.repo.Receipts()[0]
	sum := decimal.Zero
	for _, item := range r.Items {
		assert.True(t, item.Quantity.Equal(item.Quantity.Round(3)), "quantity %s", item.Quantity)
		assert.True(t, item.Quantity.Round(3).Mul(item.Price).Round(2).Equal(item.Total), "%s: %s × %s != %s", item.Name, item.Quantity, item.Price, item.Total)
		sum = sum.Add(item.Total)
	}
	assert.True(t, sum.Equal(r.Total))
	assert.Equal(t, "0.334", r.Items[0].Quantity.String())
}

func TestSaveReceiptUsesPurchasedAt(t *testing.T) {
	f := newFixture()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := f.service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
		ImageURL:    "https://cdn.example.com/receipts/a.jpg",
		Items:       []domain.ScannedItem{{Name: "Tea", Qty: 1, Price: 3}},
		PurchasedAt: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, at, f.repo.Receipts()[0].PurchasedAt)
}

func TestSaveReceiptRejectsAndFails(t *testing.T) {
	f := newFixture()

	_, err := f.service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{Items: []domain.ScannedItem{{Name: "a", Qty: 1}}})
	assert.ErrorIs(t, err, domain.ErrMissingImageURL)

	_, err = f.service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{ImageURL: "https://x/y.jpg"})
	assert.ErrorIs(t, err, domain.ErrNoItems)

	f.repo.CreateErr = errors.New("insert failed")
	_, err = f.service.SaveReceipt(context.Background(), domain.SaveReceiptRequest{
		ImageURL: "https://x/y.jpg",
		Items:    []domain.ScannedItem{{Name: "a", Qty: 1, Price: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
	assert.Empty(t, f.repo.Receipts())
}

func TestGetReceipts(t *testing.T) {
	f := newFixture()
	older := f.repo.Add(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), receipttest.Item("Old", 1, 1))
	newer := f.repo.Add(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), receipttest.Item("New", 2, 1.5))

	list, err := f.service.GetReceipts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID.String(), list[0].ID)
	assert.Equal(t, older.ID.String(), list[1].ID)
	assert.Equal(t, 3.0, list[0].Total)
	assert.Equal(t, "New", list[0].Items[0].Name)

	one, err := f.service.GetReceiptByID(context.Background(), older.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Old", one.Items[0].Name)

	_, err = f.service.GetReceiptByID(context.Background(), "not-a-uuid")
	assert.True(t, domain.IsClientError(err))

	_, err = f.service.GetReceiptByID(context.Background(), "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
}
