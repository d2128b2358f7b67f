package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/answerkey"
	"github.com/abhisek/selfassess/internal/assessment"
	"github.com/abhisek/selfassess/internal/cache"
	"github.com/abhisek/selfassess/internal/report"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/store"
)

// Submit snapshots the current answer map as the assessment's submission
// and marks it submitted. Resubmitting replaces the snapshot.
func (s *Service) Submit(ctx context.Context, id storage.Identity, assessmentID string) (*store.AssessmentRecord, error) {
	defer s.lock(assessmentID)()

	rec, err := s.record(ctx, id, storage.ActionWrite, assessmentID)
	if err != nil {
		return nil, err
	}
	bucket := storage.WithAccess(s.bucket, id)
	a, err := s.load(ctx, bucket, rec)
	if err != nil {
		return nil, err
	}
	if err := putJSON(ctx, bucket, objectPath(rec.Owner, rec.ID, SubmissionObject), a.StorageData()); err != nil {
		return nil, err
	}

	rec.Status = store.StatusSubmitted
	rec.SubmittedAt = time.Now()
	if err := s.assessments.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update assessment: %w", err)
	}
	s.invalidate(rec.ID)
	s.logger.Info("assessment submitted", zap.String("assessment_id", rec.ID))
	return rec, nil
}

// Report scores the submitted answer map of an assessment.
func (s *Service) Report(ctx context.Context, id storage.Identity, assessmentID string) (*report.Result, error) {
	if _, err := s.record(ctx, id, storage.ActionRead, assessmentID); err != nil {
		return nil, err
	}

	var (
		data *answerkey.StorageData
		err  error
	)
	if s.cache != nil {
		data, err = s.cache.FetchAssessmentData(ctx, assessmentID)
	} else {
		data, err = SubmissionLoader(s.assessments, s.bucket)(ctx, assessmentID)
	}
	if err != nil {
		return nil, err
	}

	r, err := report.New(data)
	if err != nil {
		return nil, err
	}
	res := r.Generate()
	return &res, nil
}

// SubmissionLoader reads submitted answer maps from bucket. It performs no
// access checks; callers authorise first.
func SubmissionLoader(assessments store.AssessmentRepo, bucket storage.Bucket) cache.Loader {
	return func(ctx context.Context, assessmentID string) (*answerkey.StorageData, error) {
		rec, err := assessments.Get(ctx, assessmentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &assessment.NotFoundError{Kind: "assessment", ID: assessmentID}
		}
		if err != nil {
			return nil, err
		}

		obj, err := bucket.Get(ctx, objectPath(rec.Owner, rec.ID, SubmissionObject))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &assessment.NotFoundError{Kind: "submission", ID: assessmentID}
		}
		if err != nil {
			return nil, err
		}

		var data *answerkey.StorageData
		if err := json.Unmarshal(obj.Data, &data); err != nil {
			return nil, fmt.Errorf("decode submission of %s: %w", assessmentID, err)
		}
		return data, nil
	}
}
