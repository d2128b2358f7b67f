package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const assessmentsTable = "assessments"

var assessmentColumns = []string{
	"id", "owner", "title", "catalog_version", "status",
	"created_at", "updated_at", "submitted_at",
}

type assessmentRepo struct {
	db *sql.DB
}

func (r *assessmentRepo) Create(ctx context.Context, rec *AssessmentRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	if rec.Status == "" {
		rec.Status = StatusDraft
	}

	query, args := builder().Insert(assessmentsTable).
		Columns(assessmentColumns...).
		Values(rec.ID, rec.Owner, rec.Title, rec.CatalogVersion, rec.Status,
			toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt), toMillis(rec.SubmittedAt)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create assessment %q: %w", rec.ID, err)
	}
	return nil
}

func (r *assessmentRepo) Get(ctx context.Context, id string) (*AssessmentRecord, error) {
	query, args := builder().Select(assessmentColumns...).
		From(builder().Table(assessmentsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanAssessment(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment %q: %w", id, err)
	}
	return rec, nil
}

func (r *assessmentRepo) List(ctx context.Context, owner string) ([]AssessmentRecord, error) {
	sel := builder().Select(assessmentColumns...).
		From(builder().Table(assessmentsTable)).
		OrderBy(entsql.Desc("updated_at"), "id")
	if owner != "" {
		sel = sel.Where(entsql.EQ("owner", owner))
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []AssessmentRecord
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *assessmentRepo) Update(ctx context.Context, rec *AssessmentRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	query, args := builder().Update(assessmentsTable).
		Set("title", rec.Title).
		Set("status", rec.Status).
		Set("updated_at", toMillis(rec.UpdatedAt)).
		Set("submitted_at", toMillis(rec.SubmittedAt)).
		Where(entsql.EQ("id", rec.ID)).
		Query()
	return r.execOne(ctx, "update", rec.ID, query, args)
}

func (r *assessmentRepo) Touch(ctx context.Context, id string) error {
	query, args := builder().Update(assessmentsTable).
		Set("updated_at", time.Now().UnixMilli()).
		Where(entsql.EQ("id", id)).
		Query()
	return r.execOne(ctx, "touch", id, query, args)
}

func (r *assessmentRepo) Delete(ctx context.Context, id string) error {
	query, args := builder().Delete(assessmentsTable).
		Where(entsql.EQ("id", id)).
		Query()
	return r.execOne(ctx, "delete", id, query, args)
}

func (r *assessmentRepo) execOne(ctx context.Context, op, id, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s assessment %q: %w", op, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*AssessmentRecord, error) {
	var (
		rec                         AssessmentRecord
		created, updated, submitted int64
	)
	err := row.Scan(&rec.ID, &rec.Owner, &rec.Title, &rec.CatalogVersion, &rec.Status,
		&created, &updated, &submitted)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = fromMillis(created)
	rec.UpdatedAt = fromMillis(updated)
	rec.SubmittedAt = fromMillis(submitted)
	return &rec, nil
}
