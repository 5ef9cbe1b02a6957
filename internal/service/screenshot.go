package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const screenshotPrefix = "ai-requests/"

var errMalformedDataURL = errors.New("malformed image data url")

// decodeImageDataURL splits "data:image/png;base64,<payload>" into its
// content type and decoded bytes.
func decodeImageDataURL(dataURL string) (string, []byte, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return "", nil, errMalformedDataURL
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", errMalformedDataURL, err)
	}
	if len(data) == 0 {
		return "", nil, errMalformedDataURL
	}
	return contentType, data, nil
}

// screenshotName is "ai-requests/<unix millis>-<token>.<ext>". The token only
// avoids collisions between uploads in the same millisecond.
func screenshotName(now time.Time, token, contentType string) string {
	return fmt.Sprintf("%s%d-%s%s", screenshotPrefix, now.UnixMilli(), token, imageExtension(contentType))
}

func imageExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
