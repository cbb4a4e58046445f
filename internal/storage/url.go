package storage

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DisplayURL returns "<scheme>://<host>" for c. It is used for logging and to
// build the liveness probe URL.
func DisplayURL(c Client) string {
	u := c.EndpointURL()
	if u == nil || u.Host == "" {
		return "unknown://"
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}

// Settings describes how to reach one endpoint
type Settings struct {
	URL       string
	AccessKey string
	SecretKey string
	Region    string
}

// NewClient builds a minio client from endpoint settings. The URL scheme
// selects TLS; a bare host:port is treated as plain http.
func NewClient(s Settings) (*minio.Client, error) {
	raw := s.URL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url %q: %w", s.URL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint url %q: missing host", s.URL)
	}
	if u.Path != "" && u.Path != "/" {
		return nil, fmt.Errorf("invalid endpoint url %q: path not allowed", s.URL)
	}

	var secure bool
	switch u.Scheme {
	case "http":
	case "https":
		secure = true
	default:
		return nil, fmt.Errorf("invalid endpoint url %q: unsupported scheme %q", s.URL, u.Scheme)
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: secure,
		Region: s.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", u.Host, err)
	}
	return client, nil
}
