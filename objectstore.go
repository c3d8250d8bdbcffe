package citysuggest

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// ObjectStoreSource reads partitions from an S3-compatible bucket.
type ObjectStoreSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectStoreSource creates a source reading bucket/prefix/<Location>.
func NewObjectStoreSource(client *minio.Client, bucket, prefix string) *ObjectStoreSource {
	return &ObjectStoreSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *ObjectStoreSource) key(location string) string {
	return path.Join(s.prefix, location)
}

// Open fetches the partition object.
func (s *ObjectStoreSource) Open(ctx context.Context, ref PartitionRef) (io.ReadCloser, error) {
	key := s.key(ref.Location)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting object %s: %w", key, err)
	}

	// GetObject is lazy; Stat forces the request so a missing key fails here
	// rather than surfacing as a decode error.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, fmt.Errorf("object %s/%s not found: %w", s.bucket, key, err)
		}
		return nil, fmt.Errorf("getting object %s: %w", key, err)
	}
	return obj, nil
}
