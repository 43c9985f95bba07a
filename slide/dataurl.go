package slide

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	dataURLPrefix  = "data:"
	base64Marker   = ";base64,"
	imageMimeStart = "image/"
)

// EncodeDataURL packs image data into self-contained data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(dataURLPrefix) + len(mimeType) + len(base64Marker) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(dataURLPrefix)
	b.WriteString(mimeType)
	b.WriteString(base64Marker)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// DecodeDataURL unpacks image data URL produced by EncodeDataURL.
func DecodeDataURL(s string) (string, []byte, error) {
	mimeType, payload, err := splitDataURL(s)
	if err != nil {
		return "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("bad data URL payload: %w", err)
	}
	return mimeType, data, nil
}

// IsInlineImage reports whether s looks like inline encoded image. Payload is
// not decoded.
func IsInlineImage(s string) bool {
	_, _, err := splitDataURL(s)
	return err == nil
}

func splitDataURL(s string) (string, string, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return "", "", errors.New("not a data URL")
	}
	header, payload, ok := strings.Cut(s[len(dataURLPrefix):], ",")
	if !ok {
		return "", "", errors.New("data URL has no payload")
	}
	mimeType, found := strings.CutSuffix(header, ";base64")
	if !found {
		return "", "", errors.New("data URL is not base64 encoded")
	}
	if !strings.HasPrefix(mimeType, imageMimeStart) || len(mimeType) == len(imageMimeStart) {
		return "", "", fmt.Errorf("data URL has non image type '%s'", mimeType)
	}
	if len(payload) == 0 {
		return "", "", errors.New("data URL has empty payload")
	}
	return mimeType, payload, nil
}
