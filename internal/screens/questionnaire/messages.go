package questionnaire

import (
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/store"
)

// loadedMsg is sent when the assessment has been read.
type loadedMsg struct {
	Loaded *service.Loaded
	Err    error
}

// savedMsg is sent when an answer has been persisted.
type savedMsg struct {
	QuestionID string
	Loaded     *service.Loaded
	Err        error
}

// submittedMsg is sent when the assessment has been submitted.
type submittedMsg struct {
	Record *store.AssessmentRecord
	Err    error
}
