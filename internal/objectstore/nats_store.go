// Package objectstore provides a NATS-based implementation of the ObjectStore
// interface, used for submitted scripts and delivered audio assets.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/jash90/podcast-generator/internal/core"
)

// Error message formats.
const (
	errFmtCreateBucket = "failed to create object store bucket '%s': %w"
	errFmtBindBucket   = "failed to bind to existing object store bucket '%s': %w"
	errFmtGetObject    = "failed to get object '%s' from bucket '%s': %w"
	errFmtReadObject   = "failed to read object '%s': %w"
	errFmtCloseObject  = "failed to close object '%s': %w"
	errFmtPutObject    = "failed to put object '%s' to bucket '%s': %w"
)

// Object metadata.
const (
	bucketDescriptionFormat = "Storage for the %s bucket."
	assetDescription        = "Assembled podcast audio asset."
	metaContentType         = "content-type"
)

// NatsObjectStore implements the core.ObjectStore interface using NATS JetStream.
type NatsObjectStore struct {
	bucket string
	store  nats.ObjectStore
}

// New creates and initializes a new NatsObjectStore.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*NatsObjectStore, error) {
	// Use a "create-first" approach.
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf(bucketDescriptionFormat, bucketName),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})

	// If the bucket already exists, bind to it.
	if err != nil {
		if errors.Is(err, jetstream.ErrBucketExists) {
			store, err = jetstreamContext.ObjectStore(bucketName)
			if err != nil {
				return nil, fmt.Errorf(errFmtBindBucket, bucketName, err)
			}
		} else {
			return nil, fmt.Errorf(errFmtCreateBucket, bucketName, err)
		}
	}

	return &NatsObjectStore{
		bucket: bucketName,
		store:  store,
	}, nil
}

// Download retrieves an object from the NATS object store.
func (n *NatsObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	obj, err := n.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf(errFmtGetObject, key, n.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf(errFmtReadObject, key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf(errFmtCloseObject, key, closeErr)
	}

	return data, nil
}

// Upload saves an object to the NATS object store.
func (n *NatsObjectStore) Upload(_ context.Context, key string, data []byte) error {
	reader := bytes.NewReader(data)

	_, err := n.store.Put(&nats.ObjectMeta{
		Name:        key,
		Description: "",
		Headers:     nil,
		Metadata:    nil,
		Opts:        nil,
	}, reader)
	if err != nil {
		return fmt.Errorf(errFmtPutObject, key, n.bucket, err)
	}

	return nil
}

// UploadAsset stores a finished asset under its generated name, recording the
// MIME type on the object so consumers can type the download without sniffing.
// It returns the key the asset was stored under.
func (n *NatsObjectStore) UploadAsset(
	_ context.Context,
	asset *core.Asset,
) (string, error) {
	reader := bytes.NewReader(asset.Data)

	_, err := n.store.Put(&nats.ObjectMeta{
		Name:        asset.Name,
		Description: assetDescription,
		Headers:     nil,
		Metadata:    map[string]string{metaContentType: asset.MIME},
		Opts:        nil,
	}, reader)
	if err != nil {
		return "", fmt.Errorf(errFmtPutObject, asset.Name, n.bucket, err)
	}

	return asset.Name, nil
}
