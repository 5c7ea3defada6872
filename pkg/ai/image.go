package ai

import (
	"bytes"
	"encoding/base64"

	"github.com/disintegration/imaging"
)

const MaxImageSide = 1600

// PrepareImage downsizes a photo so its long side is at most maxSide and
// re-encodes it as JPEG. Formats the decoder does not know are returned
// untouched.
func PrepareImage(data []byte, mimeType string, maxSide int) ([]byte, string) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, mimeType
	}

	b := img.Bounds()
	if b.Dx() > maxSide || b.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return data, mimeType
	}
	return buf.Bytes(), "image/jpeg"
}

func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
