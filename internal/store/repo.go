package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// Object is a stored blob with its metadata.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

// ObjectInfo is an object listing entry without the payload.
type ObjectInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// ObjectRepo is a flat key/value blob store.
type ObjectRepo interface {
	// Put creates or replaces the object at key.
	Put(ctx context.Context, key, contentType string, data []byte) error

	// Get returns the object at key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes the object at key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// List returns objects whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Assessment statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// AssessmentRecord is the metadata row of one assessment.
type AssessmentRecord struct {
	ID             string
	Owner          string
	Title          string
	CatalogVersion string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SubmittedAt    time.Time // zero until submitted
}

// AssessmentRepo manages assessment metadata.
type AssessmentRepo interface {
	// Create inserts a new record. CreatedAt and UpdatedAt default to now.
	Create(ctx context.Context, rec *AssessmentRecord) error

	// Get returns the record with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*AssessmentRecord, error)

	// List returns records owned by owner, most recently updated first.
	// An empty owner lists every record.
	List(ctx context.Context, owner string) ([]AssessmentRecord, error)

	// Update saves title, status and submission time and bumps UpdatedAt.
	Update(ctx context.Context, rec *AssessmentRecord) error

	// Touch bumps UpdatedAt.
	Touch(ctx context.Context, id string) error

	// Delete removes the record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// LLMRequestEventData captures the data for a single upstream AI call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	Identity     string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLMRequestEventData row.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates calls for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to the AI call ledger.
type EventRepo interface {
	// AppendLLMRequest records an upstream AI call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
