package gemini

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var allowedMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

// decodeImage accepts either a plain base64 string or a data URL
// (data:image/xxx;base64,....) and returns the payload ready for the API.
// The MIME type comes from the data URL header when present, otherwise it is
// sniffed from the decoded bytes.
func decodeImage(img string) (*inlineData, error) {
	mimeType := ""
	payload := img

	if strings.HasPrefix(img, "data:") {
		header, rest, found := strings.Cut(img, ",")
		if !found {
			return nil, ErrInvalidImage
		}
		payload = rest

		header = strings.TrimPrefix(header, "data:")
		mimeType, _, _ = strings.Cut(header, ";")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	if !allowedMimeTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mimeType)
	}

	return &inlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}, nil
}

var (
	ErrInvalidImage     = errors.New("image data is not valid base64")
	ErrUnsupportedImage = errors.New("unsupported image type")
)
