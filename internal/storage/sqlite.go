package storage

import (
	"context"
	"errors"

	"github.com/abhisek/selfassess/internal/store"
)

// SQLiteBucket stores objects in the local database.
type SQLiteBucket struct {
	repo store.ObjectRepo
}

// NewSQLiteBucket creates a bucket over repo.
func NewSQLiteBucket(repo store.ObjectRepo) *SQLiteBucket {
	return &SQLiteBucket{repo: repo}
}

func (b *SQLiteBucket) Put(ctx context.Context, path, contentType string, data []byte) error {
	return b.repo.Put(ctx, path, contentType, data)
}

func (b *SQLiteBucket) Get(ctx context.Context, path string) (*Object, error) {
	obj, err := b.repo.Get(ctx, path)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &Object{
		Path:        obj.Key,
		ContentType: obj.ContentType,
		Data:        obj.Data,
		UpdatedAt:   obj.UpdatedAt,
	}, nil
}

func (b *SQLiteBucket) Delete(ctx context.Context, path string) error {
	return mapNotFound(b.repo.Delete(ctx, path))
}

func (b *SQLiteBucket) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	infos, err := b.repo.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]ObjectInfo, len(infos))
	for i, info := range infos {
		out[i] = ObjectInfo{Path: info.Key, Size: info.Size, UpdatedAt: info.UpdatedAt}
	}
	return out, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
