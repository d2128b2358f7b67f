// Package service runs assessment workflows on top of the object store:
// creating assessments, recording answers and inventory, submitting and
// reporting. Answer maps and inventories are stored as JSON objects under
// assessments/{owner}/{id}/.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/answerkey"
	"github.com/abhisek/selfassess/internal/assessment"
	"github.com/abhisek/selfassess/internal/cache"
	"github.com/abhisek/selfassess/internal/catalog"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/store"
)

// Object names within an assessment's folder.
const (
	AnswersObject    = "answers.json"
	InventoryObject  = "inventory.json"
	SubmissionObject = "submission.json"

	// QuestionnairePath holds an uploaded catalog replacing the built-in one.
	QuestionnairePath = storage.QuestionnairePrefix + "catalog.json"

	contentTypeJSON = "application/json"
)

// Service coordinates assessment state. It is safe for concurrent use;
// writes to one assessment are serialised.
type Service struct {
	assessments store.AssessmentRepo
	bucket      storage.Bucket
	cache       *cache.Cache
	logger      *zap.Logger

	catalogMu sync.RWMutex
	catalog   *catalog.Catalog

	locksMu sync.Mutex
	locks   map[string]*assessmentLock
}

// New creates a Service. c may be nil, in which case reports read the
// submission directly.
func New(assessments store.AssessmentRepo, bucket storage.Bucket, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		assessments: assessments,
		bucket:      bucket,
		cache:       c,
		logger:      logger,
		catalog:     catalog.Default(),
		locks:       make(map[string]*assessmentLock),
	}
}

// folder returns the object prefix of one assessment.
func folder(owner, id string) string {
	return storage.AssessmentsPrefix + owner + "/" + id + "/"
}

func objectPath(owner, id, name string) string {
	return path.Join(folder(owner, id), name)
}

// assessmentLock serialises writes to one assessment. refs counts the
// callers holding or waiting on it.
type assessmentLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until the caller owns assessmentID and returns the release
// func. Entries are dropped once no caller holds or waits on them.
func (s *Service) lock(assessmentID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[assessmentID]
	if !ok {
		l = &assessmentLock{}
		s.locks[assessmentID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		defer s.locksMu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, assessmentID)
		}
	}
}

// Catalog returns the active questionnaire.
func (s *Service) Catalog() *catalog.Catalog {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.catalog
}

// LoadQuestionnaire activates an uploaded questionnaire if one is stored.
func (s *Service) LoadQuestionnaire(ctx context.Context) error {
	obj, err := s.bucket.Get(ctx, QuestionnairePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read questionnaire: %w", err)
	}
	c, err := catalog.Load(obj.Data)
	if err != nil {
		return fmt.Errorf("stored questionnaire: %w", err)
	}
	s.setCatalog(c)
	s.logger.Info("loaded questionnaire", zap.String("name", c.Name()), zap.String("version", c.Version()))
	return nil
}

// PutQuestionnaire validates and stores a questionnaire document and makes
// it active.
func (s *Service) PutQuestionnaire(ctx context.Context, id storage.Identity, data []byte) (*catalog.Catalog, error) {
	if !storage.Allowed(id, storage.ActionWrite, QuestionnairePath) {
		return nil, &storage.ForbiddenError{Identity: id.ID, Action: storage.ActionWrite, Path: QuestionnairePath}
	}
	c, err := catalog.Load(data)
	if err != nil {
		return nil, &InvalidQuestionnaireError{Err: err}
	}
	if err := storage.WithAccess(s.bucket, id).Put(ctx, QuestionnairePath, contentTypeJSON, data); err != nil {
		return nil, err
	}
	s.setCatalog(c)
	return c, nil
}

func (s *Service) setCatalog(c *catalog.Catalog) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.catalog = c
}

// InvalidQuestionnaireError wraps a rejected questionnaire upload.
type InvalidQuestionnaireError struct {
	Err error
}

func (e *InvalidQuestionnaireError) Error() string {
	return fmt.Sprintf("invalid questionnaire: %v", e.Err)
}

func (e *InvalidQuestionnaireError) Unwrap() error { return e.Err }

// Loaded is an assessment with its metadata.
type Loaded struct {
	Record     *store.AssessmentRecord
	Assessment *assessment.Assessment
}

// Create starts a new assessment owned by id.
func (s *Service) Create(ctx context.Context, id storage.Identity, title string) (*Loaded, error) {
	if id.ID == "" {
		return nil, &storage.ForbiddenError{Action: storage.ActionWrite, Path: storage.AssessmentsPrefix}
	}
	c := s.Catalog()
	now := time.Now()
	rec := &store.AssessmentRecord{
		ID:             uuid.NewString(),
		Owner:          id.ID,
		Title:          title,
		CatalogVersion: c.Version(),
		Status:         store.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	a := assessment.New(c)

	bucket := storage.WithAccess(s.bucket, id)
	if err := putJSON(ctx, bucket, objectPath(rec.Owner, rec.ID, AnswersObject), a.StorageData()); err != nil {
		return nil, err
	}
	if err := putJSON(ctx, bucket, objectPath(rec.Owner, rec.ID, InventoryObject), a.Inventory()); err != nil {
		return nil, err
	}
	if err := s.assessments.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	s.logger.Info("assessment created", zap.String("assessment_id", rec.ID), zap.String("owner", rec.Owner))
	return &Loaded{Record: rec, Assessment: a}, nil
}

// List returns the assessments id may see: its own, or every one for
// admins and assessors.
func (s *Service) List(ctx context.Context, id storage.Identity) ([]store.AssessmentRecord, error) {
	owner := id.ID
	if id.InGroup(storage.GroupAdmins) || id.InGroup(storage.GroupAssessors) {
		owner = ""
	} else if owner == "" {
		return nil, &storage.ForbiddenError{Action: storage.ActionRead, Path: storage.AssessmentsPrefix}
	}
	return s.assessments.List(ctx, owner)
}

// record fetches metadata and checks that id may perform action on it.
func (s *Service) record(ctx context.Context, id storage.Identity, action storage.Action, assessmentID string) (*store.AssessmentRecord, error) {
	rec, err := s.assessments.Get(ctx, assessmentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &assessment.NotFoundError{Kind: "assessment", ID: assessmentID}
	}
	if err != nil {
		return nil, err
	}
	prefix := folder(rec.Owner, rec.ID)
	if !storage.Allowed(id, action, prefix) {
		return nil, &storage.ForbiddenError{Identity: id.ID, Action: action, Path: prefix}
	}
	return rec, nil
}

// Get loads an assessment with its answers and inventory.
func (s *Service) Get(ctx context.Context, id storage.Identity, assessmentID string) (*Loaded, error) {
	rec, err := s.record(ctx, id, storage.ActionRead, assessmentID)
	if err != nil {
		return nil, err
	}
	a, err := s.load(ctx, storage.WithAccess(s.bucket, id), rec)
	if err != nil {
		return nil, err
	}
	return &Loaded{Record: rec, Assessment: a}, nil
}

func (s *Service) load(ctx context.Context, bucket storage.Bucket, rec *store.AssessmentRecord) (*assessment.Assessment, error) {
	data := answerkey.NewStorageData()
	if err := getJSON(ctx, bucket, objectPath(rec.Owner, rec.ID, AnswersObject), data); err != nil {
		return nil, err
	}
	a := assessment.FromStorageData(s.Catalog(), data)

	var inv assessment.Inventory
	if err := getJSON(ctx, bucket, objectPath(rec.Owner, rec.ID, InventoryObject), &inv); err != nil {
		return nil, err
	}
	if err := a.RestoreInventory(inv); err != nil {
		return nil, fmt.Errorf("restore inventory of %s: %w", rec.ID, err)
	}
	return a, nil
}

// mutate loads an assessment, applies fn and saves what changed, holding
// the assessment's lock throughout.
func (s *Service) mutate(ctx context.Context, id storage.Identity, assessmentID string, fn func(a *assessment.Assessment) (answers, inventory bool, err error)) (*Loaded, error) {
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

	answers, inventory, err := fn(a)
	if err != nil {
		return nil, err
	}
	if answers {
		if err := putJSON(ctx, bucket, objectPath(rec.Owner, rec.ID, AnswersObject), a.StorageData()); err != nil {
			return nil, err
		}
	}
	if inventory {
		if err := putJSON(ctx, bucket, objectPath(rec.Owner, rec.ID, InventoryObject), a.Inventory()); err != nil {
			return nil, err
		}
	}
	if err := s.assessments.Touch(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("touch assessment: %w", err)
	}
	return &Loaded{Record: rec, Assessment: a}, nil
}

// UpdateAnswer records value for a visible question.
func (s *Service) UpdateAnswer(ctx context.Context, id storage.Identity, assessmentID, questionID, value string) (*Loaded, error) {
	return s.mutate(ctx, id, assessmentID, func(a *assessment.Assessment) (bool, bool, error) {
		return true, false, a.UpdateValue(questionID, value)
	})
}

// AddSoftware adds an entry to the software inventory.
func (s *Service) AddSoftware(ctx context.Context, id storage.Identity, assessmentID string, e assessment.SoftwareEntry) (*Loaded, error) {
	return s.mutate(ctx, id, assessmentID, func(a *assessment.Assessment) (bool, bool, error) {
		return false, true, a.AddSoftwareEntry(e)
	})
}

// AddHardware adds an entry to the hardware inventory.
func (s *Service) AddHardware(ctx context.Context, id storage.Identity, assessmentID string, e assessment.HardwareEntry) (*Loaded, error) {
	return s.mutate(ctx, id, assessmentID, func(a *assessment.Assessment) (bool, bool, error) {
		return false, true, a.AddHardwareEntry(e)
	})
}

// RemoveSoftware removes an entry from the software inventory.
func (s *Service) RemoveSoftware(ctx context.Context, id storage.Identity, assessmentID, entryID string) (*Loaded, error) {
	return s.mutate(ctx, id, assessmentID, func(a *assessment.Assessment) (bool, bool, error) {
		return false, true, a.RemoveSoftwareEntry(entryID)
	})
}

// RemoveHardware removes an entry from the hardware inventory.
func (s *Service) RemoveHardware(ctx context.Context, id storage.Identity, assessmentID, entryID string) (*Loaded, error) {
	return s.mutate(ctx, id, assessmentID, func(a *assessment.Assessment) (bool, bool, error) {
		return false, true, a.RemoveHardwareEntry(entryID)
	})
}

// Delete removes an assessment and its objects.
func (s *Service) Delete(ctx context.Context, id storage.Identity, assessmentID string) error {
	defer s.lock(assessmentID)()

	rec, err := s.record(ctx, id, storage.ActionDelete, assessmentID)
	if err != nil {
		return err
	}
	bucket := storage.WithAccess(s.bucket, id)
	infos, err := bucket.List(ctx, folder(rec.Owner, rec.ID))
	if err != nil {
		return err
	}
	for _, info := range infos {
		if err := bucket.Delete(ctx, info.Path); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	if err := s.assessments.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	s.invalidate(rec.ID)
	return nil
}

func (s *Service) invalidate(assessmentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(assessmentID); err != nil {
		s.logger.Warn("failed to invalidate cached assessment data", zap.String("assessment_id", assessmentID), zap.Error(err))
	}
}

func putJSON(ctx context.Context, bucket storage.Bucket, p string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	return bucket.Put(ctx, p, contentTypeJSON, data)
}

func getJSON(ctx context.Context, bucket storage.Bucket, p string, v any) error {
	obj, err := bucket.Get(ctx, p)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(obj.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	return nil
}
