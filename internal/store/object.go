package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const objectsTable = "objects"

type objectRepo struct {
	db *sql.DB
}

func (r *objectRepo) Put(ctx context.Context, key, contentType string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	query, args := builder().Insert(objectsTable).
		Columns("path", "content_type", "data", "updated_at").
		Values(key, contentType, data, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("path"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (r *objectRepo) Get(ctx context.Context, key string) (*Object, error) {
	query, args := builder().Select("path", "content_type", "data", "updated_at").
		From(builder().Table(objectsTable)).
		Where(entsql.EQ("path", key)).
		Query()

	var (
		obj     Object
		updated int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&obj.Key, &obj.ContentType, &obj.Data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	obj.UpdatedAt = fromMillis(updated)
	return &obj, nil
}

func (r *objectRepo) Delete(ctx context.Context, key string) error {
	query, args := builder().Delete(objectsTable).
		Where(entsql.EQ("path", key)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *objectRepo) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	sel := builder().Select("path", "length(data)", "updated_at").
		From(builder().Table(objectsTable)).
		OrderBy("path")
	if prefix != "" {
		sel = sel.Where(entsql.HasPrefix("path", prefix))
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer rows.Close()

	var out []ObjectInfo
	for rows.Next() {
		var (
			info    ObjectInfo
			updated int64
		)
		if err := rows.Scan(&info.Key, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		info.UpdatedAt = fromMillis(updated)
		out = append(out, info)
	}
	return out, rows.Err()
}
