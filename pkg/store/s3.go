package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// S3Store persists views as JSON objects in an S3 bucket under a key
// prefix. It honors the same semantics as MemoryStore, including the
// capacity guard. Latency is bounded by the caller's context.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	views := store.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "views/", 1000)
type S3Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	maxViews int
}

// NewS3Store creates an S3-backed ViewStore. maxViews <= 0 means no
// limit.
func NewS3Store(client *s3.Client, bucket, prefix string, maxViews int) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		maxViews: maxViews,
	}
}

func (s *S3Store) key(viewID string) string {
	return s.prefix + viewID + ".json"
}

// Get fetches and decodes the view or returns ErrNotFound.
func (s *S3Store) Get(ctx context.Context, viewID string) (*ui.View, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(viewID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: s3 get %s: %w", viewID, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("store: s3 read %s: %w", viewID, err)
	}
	var view ui.View
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("store: s3 decode %s: %w", viewID, err)
	}
	return &view, nil
}

// List fetches every stored view. S3 lists keys lexicographically, so
// creation order is restored by sorting on the persisted timestamps.
func (s *S3Store) List(ctx context.Context) ([]*ui.View, error) {
	var views []*ui.View

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("store: s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			id := viewIDFromKey(aws.ToString(obj.Key), s.prefix)
			if id == "" {
				continue
			}
			view, err := s.Get(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue // deleted between list and get
				}
				return nil, err
			}
			views = append(views, view)
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views, nil
}

// Save upserts the view, guarding capacity on insert.
func (s *S3Store) Save(ctx context.Context, view *ui.View) error {
	exists, err := s.exists(ctx, view.ID)
	if err != nil {
		return err
	}
	if !exists && s.maxViews > 0 {
		count, err := s.count(ctx)
		if err != nil {
			return err
		}
		if count >= s.maxViews {
			return ErrCapacityExceeded
		}
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("store: s3 encode %s: %w", view.ID, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(view.ID)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("store: s3 put %s: %w", view.ID, err)
	}
	return nil
}

// Delete removes the view or returns ErrNotFound. S3 deletes are
// idempotent, so existence is checked first to honor the contract.
func (s *S3Store) Delete(ctx context.Context, viewID string) error {
	exists, err := s.exists(ctx, viewID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(viewID)),
	})
	if err != nil {
		return fmt.Errorf("store: s3 delete %s: %w", viewID, err)
	}
	return nil
}

func (s *S3Store) exists(ctx context.Context, viewID string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(viewID)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("store: s3 head %s: %w", viewID, err)
	}
	return true, nil
}

func (s *S3Store) count(ctx context.Context) (int, error) {
	count := 0
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("store: s3 count: %w", err)
		}
		count += len(page.Contents)
	}
	return count, nil
}

func viewIDFromKey(key, prefix string) string {
	const suffix = ".json"
	if len(key) <= len(prefix)+len(suffix) {
		return ""
	}
	if key[:len(prefix)] != prefix || key[len(key)-len(suffix):] != suffix {
		return ""
	}
	return key[len(prefix) : len(key)-len(suffix)]
}
