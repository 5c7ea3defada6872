package storage

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"mein-essen/domain"

	"github.com/stretchr/testify/assert"
)

func header(name, contentType string) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: name, Header: h}
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", PublicBaseURL("https://cdn.example.com/", "http://minio:9000", "b", "eu-central-1"))
	assert.Equal(t, "http://minio:9000/receipts", PublicBaseURL("", "http://minio:9000", "receipts", "eu-central-1"))
	assert.Equal(t, "https://receipts.s3.eu-central-1.amazonaws.com", PublicBaseURL("", "", "receipts", "eu-central-1"))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Kassenbon_M_rz.jpg", SanitizeFileName("Kassenbon März.jpg"))
	assert.Equal(t, "passwd", SanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "receipt", SanitizeFileName("  "))
	assert.Equal(t, "IMG-0001.heic", SanitizeFileName("IMG-0001.heic"))
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(header("scan.bin", "image/webp")))
	assert.NoError(t, ValidateImage(header("scan.HEIC", "application/octet-stream"), AllowImage...))
	assert.ErrorIs(t, ValidateImage(header("scan.pdf", "application/pdf"), AllowImage...), domain.ErrInvalidImageFormat)
	assert.ErrorIs(t, ValidateImage(header("scan", "")), domain.ErrInvalidImageFormat)
}

func TestContentTypeFallsBackToExtension(t *testing.T) {
	assert.Equal(t, "image/webp", contentType(header("a.webp", "image/webp")))
	assert.Equal(t, "image/png", contentType(header("a.PNG", "")))
	assert.Equal(t, "image/jpeg", contentType(header("a", "")))
}

func TestObjectKeyFromLink(t *testing.T) {
	base := "https://cdn.example.com"
	assert.Equal(t, "receipts/1-a.jpg", ObjectKeyFromLink(base, "https://cdn.example.com/receipts/1-a.jpg?v=2"))
	assert.Equal(t, "", ObjectKeyFromLink(base, "https://elsewhere.com/receipts/1-a.jpg"))
}

func TestObjectKeyFromLinkRejectsForeignHosts(t *testing.T) {
	base := "https://cdn.example.com"
	for _, link := range []string{
		"http://169.254.169.254/latest/meta-data/",
		"http://localhost:9000/receipts/a.jpg",
		"https://cdn.example.com.attacker.net/receipts/a.jpg",
		"https://cdn.example.com",
	} {
		assert.Empty(t, ObjectKeyFromLink(base, link), link)
	}
}
