package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"mein-essen/domain"
	"mein-essen/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

var AllowImage = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".heic", ".heif"}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

type (
	AwsS3 interface {
		UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error)
		DownloadFile(ctx context.Context, objectKey string) ([]byte, string, error)
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client     *s3.Client
		bucket     string
		publicBase string
	}
)

func NewAwsS3() AwsS3 {
	bucket := utils.GetConfig("S3_BUCKET")
	region := utils.GetConfig("S3_REGION")
	endpoint := strings.TrimRight(utils.GetConfig("S3_ENDPOINT"), "/")

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if key := utils.GetConfig("S3_ACCESS_KEY"); key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, utils.GetConfig("S3_SECRET_KEY"), ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		log.Fatalf("error loading aws config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &awsS3{
		client:     client,
		bucket:     bucket,
		publicBase: PublicBaseURL(utils.GetConfig("S3_PUBLIC_URL"), endpoint, bucket, region),
	}
}

// PublicBaseURL is the prefix every public object link starts with.
func PublicBaseURL(publicURL, endpoint, bucket, region string) string {
	switch {
	case publicURL != "":
		return strings.TrimRight(publicURL, "/")
	case endpoint != "":
		return fmt.Sprintf("%s/%s", endpoint, bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
}

// SanitizeFileName keeps letters, digits, dots, dashes and underscores.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return "receipt"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// ValidateImage accepts a file when its Content-Type is image/* or its
// extension is one of allowed.
func ValidateImage(file *multipart.FileHeader, allowed ...string) error {
	if strings.HasPrefix(strings.ToLower(file.Header.Get("Content-Type")), "image/") {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return domain.ErrInvalidImageFormat
}

func contentType(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic", ".heif":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

func (a *awsS3) UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	if len(allowed) > 0 {
		if err := ValidateImage(file, allowed...); err != nil {
			return "", err
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	objectKey := fileName
	if folder != "" {
		objectKey = folder + "/" + fileName
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(contentType(file)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}

	return objectKey, nil
}

func (a *awsS3) DownloadFile(ctx context.Context, objectKey string) ([]byte, string, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", err
	}
	return data, aws.ToString(out.ContentType), nil
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return a.publicBase + "/" + objectKey
}

func (a *awsS3) GetObjectKeyFromLink(link string) string {
	return ObjectKeyFromLink(a.publicBase, link)
}

func ObjectKeyFromLink(base, link string) string {
	prefix := base + "/"
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	key := strings.TrimPrefix(link, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key
}
