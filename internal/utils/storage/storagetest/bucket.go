// Package storagetest provides an in-memory storage.AwsS3.
package storagetest

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sync"

	"mein-essen/internal/utils/storage"
)

const BaseURL = "https://cdn.example.com"

type object struct {
	data        []byte
	contentType string
}

type Bucket struct {
	mu      sync.Mutex
	objects map[string]object

	UploadErr  error
	Downloaded []string
}

var _ storage.AwsS3 = (*Bucket)(nil)

func NewBucket() *Bucket {
	return &Bucket{objects: map[string]object{}}
}

// Put stores an object directly, bypassing upload checks.
func (b *Bucket) Put(key string, data []byte, contentType string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = object{data: data, contentType: contentType}
}

func (b *Bucket) UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	if b.UploadErr != nil {
		return "", b.UploadErr
	}
	if len(allowed) > 0 {
		if err := storage.ValidateImage(file, allowed...); err != nil {
			return "", err
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	key := folder + "/" + fileName
	b.Put(key, data, file.Header.Get("Content-Type"))
	return key, nil
}

func (b *Bucket) DownloadFile(ctx context.Context, objectKey string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Downloaded = append(b.Downloaded, objectKey)
	obj, ok := b.objects[objectKey]
	if !ok {
		return nil, "", errors.New("NoSuchKey: " + objectKey)
	}
	return obj.data, obj.contentType, nil
}

func (b *Bucket) GetPublicLinkKey(objectKey string) string {
	return BaseURL + "/" + objectKey
}

func (b *Bucket) GetObjectKeyFromLink(link string) string {
	return storage.ObjectKeyFromLink(BaseURL, link)
}

// Object returns a stored object's bytes.
func (b *Bucket) Object(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	return obj.data, ok
}

func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}
