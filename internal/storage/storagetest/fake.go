// Package storagetest provides a scriptable storage.Client for tests.
package storagetest

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
)

// Fake is an in-memory storage.Client. Every operation is counted; operations
// with a hook call it, the rest succeed with zero values.
type Fake struct {
	URL *url.URL

	ListBucketsFunc     func(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExistsFunc    func(ctx context.Context, bucket string) (bool, error)
	GetBucketPolicyFunc func(ctx context.Context, bucket string) (string, error)
	ListObjectsFunc     func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObjectFunc       func(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObjectFunc       func(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObjectFunc      func(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObjectFunc    func(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error

	calls map[string]int
	mux   sync.Mutex
}

// New creates a fake whose EndpointURL is rawURL
func New(rawURL string) *Fake {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return &Fake{URL: u, calls: make(map[string]int)}
}

// Calls returns how many times operation was invoked
func (f *Fake) Calls(operation string) int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.calls[operation]
}

// TotalCalls returns the number of operations invoked, EndpointURL excluded
func (f *Fake) TotalCalls() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *Fake) record(operation string) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.calls[operation]++
}

// Sequence returns a hook result generator that yields errs in order and
// then nil forever. Useful for "fails once, then succeeds".
func Sequence(errs ...error) func() error {
	var mux sync.Mutex
	i := 0
	return func() error {
		mux.Lock()
		defer mux.Unlock()
		if i >= len(errs) {
			return nil
		}
		err := errs[i]
		i++
		return err
	}
}

func (f *Fake) EndpointURL() *url.URL {
	u := *f.URL
	return &u
}

func (f *Fake) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	f.record("ListBuckets")
	if f.ListBucketsFunc != nil {
		return f.ListBucketsFunc(ctx)
	}
	return nil, nil
}

func (f *Fake) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.record("BucketExists")
	if f.BucketExistsFunc != nil {
		return f.BucketExistsFunc(ctx, bucket)
	}
	return true, nil
}

func (f *Fake) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.record("MakeBucket")
	return nil
}

func (f *Fake) RemoveBucket(ctx context.Context, bucket string) error {
	f.record("RemoveBucket")
	return nil
}

func (f *Fake) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	f.record("GetBucketPolicy")
	if f.GetBucketPolicyFunc != nil {
		return f.GetBucketPolicyFunc(ctx, bucket)
	}
	return "", nil
}

func (f *Fake) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	f.record("SetBucketPolicy")
	return nil
}

func (f *Fake) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.record("ListObjects")
	if f.ListObjectsFunc != nil {
		return f.ListObjectsFunc(ctx, bucket, opts)
	}
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func (f *Fake) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error) {
	f.record("GetObject")
	if f.GetObjectFunc != nil {
		return f.GetObjectFunc(ctx, bucket, object, opts)
	}
	return nil, nil
}

func (f *Fake) FGetObject(ctx context.Context, bucket, object, filePath string, opts minio.GetObjectOptions) error {
	f.record("FGetObject")
	return nil
}

func (f *Fake) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.record("PutObject")
	if f.PutObjectFunc != nil {
		return f.PutObjectFunc(ctx, bucket, object, r, size, opts)
	}
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func (f *Fake) FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.record("FPutObject")
	return minio.UploadInfo{Bucket: bucket, Key: object}, nil
}

func (f *Fake) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.record("StatObject")
	if f.StatObjectFunc != nil {
		return f.StatObjectFunc(ctx, bucket, object, opts)
	}
	return minio.ObjectInfo{Key: object}, nil
}

func (f *Fake) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	f.record("RemoveObject")
	if f.RemoveObjectFunc != nil {
		return f.RemoveObjectFunc(ctx, bucket, object, opts)
	}
	return nil
}

func (f *Fake) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	f.record("CopyObject")
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object}, nil
}

func (f *Fake) PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	f.record("PresignedGetObject")
	return f.URL.JoinPath(bucket, object), nil
}

func (f *Fake) PresignedPutObject(ctx context.Context, bucket, object string, expires time.Duration) (*url.URL, error) {
	f.record("PresignedPutObject")
	return f.URL.JoinPath(bucket, object), nil
}
