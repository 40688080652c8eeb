package adapter

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Storage reads guideline source documents from and writes chat transcripts
// to an object store.
type Storage interface {
	// Get opens an object for reading.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Put returns a writer that stores the object on Close.
	Put(ctx context.Context, key string) (io.WriteCloser, error)
}

type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a Cloud Storage client bound to one bucket.
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("key", key))
	}
	return reader, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	return s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx), nil
}

// ParseGSURI splits a gs://bucket/object URI. ok is false for any other
// scheme or a missing object path.
func ParseGSURI(uri string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(uri, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
