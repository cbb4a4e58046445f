package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsApplicationError tests the failover-relevant error split
func TestIsApplicationError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	sig := minio.ErrorResponse{Code: "SignatureDoesNotMatch", StatusCode: 403}

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", notFound, true},
		{"signature", sig, true},
		{"wrapped", fmt.Errorf("stat: %w", notFound), true},
		{"pointer", &sig, true},
		{"connection refused", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsApplicationError(tc.err))
		})
	}
}

// TestErrorCode tests code extraction
func TestErrorCode(t *testing.T) {
	assert.Equal(t, "NoSuchBucket", ErrorCode(fmt.Errorf("x: %w", minio.ErrorResponse{Code: "NoSuchBucket"})))
	assert.Equal(t, "", ErrorCode(errors.New("dial tcp: i/o timeout")))
}

// TestIsCanceled tests that only the caller's own cancellation counts
func TestIsCanceled(t *testing.T) {
	live := context.Background()
	assert.False(t, IsCanceled(live, context.Canceled), "transport-level cancellation is not the caller's")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, IsCanceled(ctx, fmt.Errorf("get: %w", context.Canceled)))
	assert.False(t, IsCanceled(ctx, errors.New("boom")))
}

// TestNewClient tests endpoint settings parsing
func TestNewClient(t *testing.T) {
	c, err := NewClient(Settings{URL: "https://minio1.example.com:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "https://minio1.example.com:9000", DisplayURL(c))

	c, err = NewClient(Settings{URL: "localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", DisplayURL(c))

	_, err = NewClient(Settings{URL: "ftp://host:21"})
	assert.Error(t, err)

	_, err = NewClient(Settings{URL: "http://host:9000/bucket"})
	assert.Error(t, err)
}
