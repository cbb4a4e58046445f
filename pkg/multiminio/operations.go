package multiminio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/Nash0810/multiminio/internal/storage"
)

// EndpointURL returns the base URL of the endpoint currently serving calls
func (m *MultiClient) EndpointURL() *url.URL {
	return m.endpoints.Get(m.selector.State().Current).Client.EndpointURL()
}

func (m *MultiClient) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	return execute(ctx, m, "ListBuckets", nil, func(c storage.Client) ([]minio.BucketInfo, error) {
		return c.ListBuckets(ctx)
	})
}

func (m *MultiClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return execute(ctx, m, "BucketExists", nil, func(c storage.Client) (bool, error) {
		return c.BucketExists(ctx, bucketName)
	})
}

func (m *MultiClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	_, err := execute(ctx, m, "MakeBucket", nil, func(c storage.Client) (struct{}, error) {
		return struct{}{}, c.MakeBucket(ctx, bucketName, opts)
	})
	return err
}

func (m *MultiClient) RemoveBucket(ctx context.Context, bucketName string) error {
	_, err := execute(ctx, m, "RemoveBucket", nil, func(c storage.Client) (struct{}, error) {
		return struct{}{}, c.RemoveBucket(ctx, bucketName)
	})
	return err
}

func (m *MultiClient) GetBucketPolicy(ctx context.Context, bucketName string) (string, error) {
	return execute(ctx, m, "GetBucketPolicy", nil, func(c storage.Client) (string, error) {
		return c.GetBucketPolicy(ctx, bucketName)
	})
}

func (m *MultiClient) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	_, err := execute(ctx, m, "SetBucketPolicy", nil, func(c storage.Client) (struct{}, error) {
		return struct{}{}, c.SetBucketPolicy(ctx, bucketName, policy)
	})
	return err
}

// listing is an object listing whose first entry has been read
type listing struct {
	first  minio.ObjectInfo
	ok     bool
	rest   <-chan minio.ObjectInfo
	cancel context.CancelFunc
}

// ListObjects streams the listing of one endpoint. The first entry is read
// inside the fallback loop so an endpoint that cannot list at all is failed
// over; errors after that are delivered on the channel as usual.
func (m *MultiClient) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	l, err := execute(ctx, m, "ListObjects", nil, func(c storage.Client) (listing, error) {
		lctx, cancel := context.WithCancel(ctx)
		ch := c.ListObjects(lctx, bucketName, opts)
		first, ok := <-ch
		if ok && first.Err != nil {
			cancel()
			return listing{}, first.Err
		}
		return listing{first: first, ok: ok, rest: ch, cancel: cancel}, nil
	})

	out := make(chan minio.ObjectInfo, 1)
	if err != nil {
		out <- minio.ObjectInfo{Err: err}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		defer l.cancel()
		if !l.ok {
			return
		}
		select {
		case out <- l.first:
		case <-ctx.Done():
			return
		}
		for obj := range l.rest {
			select {
			case out <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// GetObject opens an object. The first request is issued inside the
// fallback loop so endpoint failures surface before the object is returned.
func (m *MultiClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	return execute(ctx, m, "GetObject", nil, func(c storage.Client) (*minio.Object, error) {
		obj, err := c.GetObject(ctx, bucketName, objectName, opts)
		if err != nil {
			return nil, err
		}
		// Passed through as the wrapped client returned it; *minio.Client
		// never does this, test doubles may
		if obj == nil {
			return nil, nil
		}
		if _, err := obj.Stat(); err != nil {
			obj.Close()
			return nil, err
		}
		return obj, nil
	})
}

func (m *MultiClient) FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error {
	_, err := execute(ctx, m, "FGetObject", nil, func(c storage.Client) (struct{}, error) {
		return struct{}{}, c.FGetObject(ctx, bucketName, objectName, filePath, opts)
	})
	return err
}

// PutObject uploads from reader. A reader that implements io.Seeker is
// rewound before each retry; any other reader is tried on one endpoint only.
func (m *MultiClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
	opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return execute(ctx, m, "PutObject", rewinder(reader), func(c storage.Client) (minio.UploadInfo, error) {
		return c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
	})
}

func (m *MultiClient) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return execute(ctx, m, "FPutObject", nil, func(c storage.Client) (minio.UploadInfo, error) {
		return c.FPutObject(ctx, bucketName, objectName, filePath, opts)
	})
}

func (m *MultiClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return execute(ctx, m, "StatObject", nil, func(c storage.Client) (minio.ObjectInfo, error) {
		return c.StatObject(ctx, bucketName, objectName, opts)
	})
}

func (m *MultiClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	_, err := execute(ctx, m, "RemoveObject", nil, func(c storage.Client) (struct{}, error) {
		return struct{}{}, c.RemoveObject(ctx, bucketName, objectName, opts)
	})
	return err
}

func (m *MultiClient) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	return execute(ctx, m, "CopyObject", nil, func(c storage.Client) (minio.UploadInfo, error) {
		return c.CopyObject(ctx, dst, src)
	})
}

func (m *MultiClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration,
	reqParams url.Values) (*url.URL, error) {
	return execute(ctx, m, "PresignedGetObject", nil, func(c storage.Client) (*url.URL, error) {
		return c.PresignedGetObject(ctx, bucketName, objectName, expires, reqParams)
	})
}

func (m *MultiClient) PresignedPutObject(ctx context.Context, bucketName, objectName string, expires time.Duration) (*url.URL, error) {
	return execute(ctx, m, "PresignedPutObject", nil, func(c storage.Client) (*url.URL, error) {
		return c.PresignedPutObject(ctx, bucketName, objectName, expires)
	})
}

// rewinder returns a hook that restores reader to its current offset
func rewinder(reader io.Reader) func() error {
	seeker, ok := reader.(io.Seeker)
	if !ok {
		return func() error { return ErrBodyNotReplayable }
	}
	offset, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return func() error { return fmt.Errorf("%w: %v", ErrBodyNotReplayable, err) }
	}
	return func() error {
		if _, err := seeker.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("%w: %v", ErrBodyNotReplayable, err)
		}
		return nil
	}
}
