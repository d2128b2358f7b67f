package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhisek/selfassess/internal/assessment"
	"github.com/abhisek/selfassess/internal/catalog"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/store"
)

type createRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type answerRequest struct {
	Value *string `json:"value" validate:"required,max=32768"`
}

type recordView struct {
	ID             string     `json:"id"`
	Owner          string     `json:"owner"`
	Title          string     `json:"title"`
	CatalogVersion string     `json:"catalogVersion"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
}

type progressView struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type assessmentView struct {
	recordView
	Progress  progressView         `json:"progress"`
	Questions []catalog.Question   `json:"questions"`
	Inventory assessment.Inventory `json:"inventory"`
}

func toRecordView(rec *store.AssessmentRecord) recordView {
	v := recordView{
		ID:             rec.ID,
		Owner:          rec.Owner,
		Title:          rec.Title,
		CatalogVersion: rec.CatalogVersion,
		Status:         rec.Status,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
	if !rec.SubmittedAt.IsZero() {
		at := rec.SubmittedAt
		v.SubmittedAt = &at
	}
	return v
}

func toAssessmentView(l *service.Loaded) assessmentView {
	answered, total := l.Assessment.Progress()
	return assessmentView{
		recordView: toRecordView(l.Record),
		Progress:   progressView{Answered: answered, Total: total},
		Questions:  l.Assessment.Questions(),
		Inventory:  l.Assessment.Inventory(),
	}
}

// bind decodes the JSON body into v and validates it.
func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abort(c, bindError(err))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		abort(c, err)
		return false
	}
	return true
}

func (s *Server) createAssessment(c *gin.Context) {
	var req createRequest
	if !s.bind(c, &req) {
		return
	}
	l, err := s.svc.Create(c.Request.Context(), identityFrom(c), req.Title)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAssessmentView(l))
}

func (s *Server) listAssessments(c *gin.Context) {
	recs, err := s.svc.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		abort(c, err)
		return
	}
	out := make([]recordView, len(recs))
	for i := range recs {
		out[i] = toRecordView(&recs[i])
	}
	c.JSON(http.StatusOK, gin.H{"assessments": out})
}

func (s *Server) getAssessment(c *gin.Context) {
	l, err := s.svc.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssessmentView(l))
}

func (s *Server) deleteAssessment(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) updateAnswer(c *gin.Context) {
	var req answerRequest
	if !s.bind(c, &req) {
		return
	}
	l, err := s.svc.UpdateAnswer(c.Request.Context(), identityFrom(c), c.Param("id"), c.Param("questionId"), *req.Value)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssessmentView(l))
}

func (s *Server) addSoftware(c *gin.Context) {
	var e assessment.SoftwareEntry
	if err := c.ShouldBindJSON(&e); err != nil {
		abort(c, bindError(err))
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.validate.Struct(e); err != nil {
		abort(c, err)
		return
	}
	l, err := s.svc.AddSoftware(c.Request.Context(), identityFrom(c), c.Param("id"), e)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, l.Assessment.Inventory())
}

func (s *Server) addHardware(c *gin.Context) {
	var e assessment.HardwareEntry
	if err := c.ShouldBindJSON(&e); err != nil {
		abort(c, bindError(err))
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.validate.Struct(e); err != nil {
		abort(c, err)
		return
	}
	l, err := s.svc.AddHardware(c.Request.Context(), identityFrom(c), c.Param("id"), e)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, l.Assessment.Inventory())
}

func (s *Server) removeSoftware(c *gin.Context) {
	l, err := s.svc.RemoveSoftware(c.Request.Context(), identityFrom(c), c.Param("id"), c.Param("entryId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, l.Assessment.Inventory())
}

func (s *Server) removeHardware(c *gin.Context) {
	l, err := s.svc.RemoveHardware(c.Request.Context(), identityFrom(c), c.Param("id"), c.Param("entryId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, l.Assessment.Inventory())
}

func (s *Server) submit(c *gin.Context) {
	rec, err := s.svc.Submit(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecordView(rec))
}

func (s *Server) report(c *gin.Context) {
	res, err := s.svc.Report(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  res,
		"percent": res.Percent(),
	})
}

func (s *Server) getQuestionnaire(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Catalog())
}

func (s *Server) putQuestionnaire(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		abort(c, bindError(err))
		return
	}
	cat, err := s.svc.PutQuestionnaire(c.Request.Context(), identityFrom(c), data)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": cat.Name(), "version": cat.Version(), "questions": cat.Len()})
}
