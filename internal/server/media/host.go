// Package media stores user-supplied images (profile, cover and post
// images) in object storage and hands back their public URLs.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/abanwa/twitter/internal/common"
)

// Host uploads an image payload and deletes previously uploaded images by
// the URL Upload returned.
type Host interface {
	Upload(ctx context.Context, payload string) (string, error)
	Delete(ctx context.Context, url string) error
}

// MaxImageBytes bounds a decoded upload.
const MaxImageBytes = 5 << 20

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// IDFromURL derives the stored object's identifier: the last path segment
// of the URL without its extension.
func IDFromURL(url string) string {
	base := path.Base(strings.SplitN(url, "?", 2)[0])
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// DecodePayload accepts a data URL ("data:image/png;base64,...") or bare
// base64 and returns the image bytes with their content type.
func DecodePayload(payload string) (string, []byte, error) {
	raw := payload
	declared := ""
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return "", nil, fmt.Errorf("%w: malformed data url", common.ErrorValidation)
		}
		declared = strings.TrimSuffix(header, ";base64")
		raw = body
	}

	if base64.StdEncoding.DecodedLen(len(raw)) > MaxImageBytes+3 {
		return "", nil, fmt.Errorf("%w: image too large", common.ErrorValidation)
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: image is not valid base64", common.ErrorValidation)
	}
	if len(data) == 0 || len(data) > MaxImageBytes {
		return "", nil, fmt.Errorf("%w: image size out of range", common.ErrorValidation)
	}

	contentType := http.DetectContentType(data)
	if _, ok := extensions[contentType]; !ok {
		return "", nil, fmt.Errorf("%w: unsupported image type %q", common.ErrorValidation, contentType)
	}
	if declared != "" && declared != contentType {
		return "", nil, fmt.Errorf("%w: declared %s but got %s", common.ErrorValidation, declared, contentType)
	}
	return contentType, data, nil
}
