package remote

import (
	"net/url"
	"strings"
)

// PublicStorage builds object URLs for a public storage bucket hosted by the
// data service.
type PublicStorage struct {
	BaseURL string
}

func NewPublicStorage(baseURL string) PublicStorage {
	return PublicStorage{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s PublicStorage) PublicURL(bucket, path string) string {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.BaseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
