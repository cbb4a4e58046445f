package storage

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7"
)

// IsApplicationError reports whether err is a well-formed answer from a
// reachable server: S3 error codes (NoSuchKey, AccessDenied,
// SignatureDoesNotMatch, ...) and responses the client could not make sense
// of. These describe the request, not the endpoint, and must not trigger
// failover.
func IsApplicationError(err error) bool {
	if err == nil {
		return false
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return true
	}
	var respPtr *minio.ErrorResponse
	return errors.As(err, &respPtr)
}

// IsCanceled reports whether the caller's own context ended the call
func IsCanceled(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ErrorCode returns the S3 error code carried by err, or "" for transport errors
func ErrorCode(err error) string {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code
	}
	return ""
}
