package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/daleel/internal/audit"
	"github.com/roach88/daleel/internal/record"
	"github.com/roach88/daleel/internal/store"
)

type createSourceRequest struct {
	Title         string     `json:"title" validate:"required,max=500"`
	Publisher     string     `json:"publisher" validate:"required,max=200"`
	OriginURL     string     `json:"originUrl" validate:"required,url"`
	ArchivedURL   string     `json:"archivedUrl" validate:"required,url"`
	ArchivedAt    *timestamp `json:"archivedAt" validate:"required"`
	ArchiveMethod string     `json:"archiveMethod" validate:"required,oneof=WAYBACK PDF SCREENSHOT VIDEO_DOWNLOAD MANUAL"`
	ContentType   *string    `json:"contentType"`
	Checksum      *string    `json:"checksum"`
	Notes         *string    `json:"notes"`
}

func (s *Server) createSource(c *gin.Context) {
	var req createSourceRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	src, err := s.store.CreateSource(c.Request.Context(), record.Source{
		Title:         req.Title,
		Publisher:     req.Publisher,
		OriginURL:     req.OriginURL,
		ArchivedURL:   req.ArchivedURL,
		ArchivedAt:    req.ArchivedAt.Time,
		ArchiveMethod: record.ArchiveMethod(req.ArchiveMethod),
		ContentType:   req.ContentType,
		Checksum:      req.Checksum,
		Notes:         req.Notes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.record(c, record.AuditCreate, "Source", src.ID, map[string]any{"title": src.Title})
	success(c, http.StatusCreated, src)
}

// sourceMetadata lists the source fields an editor may correct, and
// whether each may be cleared with null.
var sourceMetadata = map[string]bool{
	"title":       false,
	"publisher":   false,
	"contentType": true,
	"checksum":    true,
	"notes":       true,
}

// updateSource applies a JSON object of field changes. Metadata values
// are type checked here; every other field is passed to the store so the
// guard can reject archive fields with FINGERPRINT_FIELD_MUTATION.
func (s *Server) updateSource(c *gin.Context) {
	changes, err := decodeChanges(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if len(changes) == 0 {
		s.respondError(c, &badRequest{store.ErrNoChanges})
		return
	}
	for field, nullable := range sourceMetadata {
		v, ok := changes[field]
		if !ok {
			continue
		}
		switch x := v.(type) {
		case string:
			if x == "" && !nullable {
				s.respondError(c, &badRequest{fmt.Errorf("%s must not be empty", field)})
				return
			}
		case nil:
			if !nullable {
				s.respondError(c, &badRequest{fmt.Errorf("%s must not be null", field)})
				return
			}
		default:
			s.respondError(c, &badRequest{fmt.Errorf("%s must be a string", field)})
			return
		}
	}

	src, err := s.store.UpdateSourceMetadata(c.Request.Context(), c.Param("id"), store.Changes(changes))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.record(c, record.AuditUpdate, "Source", src.ID, map[string]any{"fields": store.Changes(changes).Fields()})
	success(c, http.StatusOK, src)
}

func (s *Server) deleteSource(c *gin.Context) {
	err := s.store.DeleteSource(c.Request.Context(), c.Param("id"))
	if err == nil {
		// Only reachable with a permissive evaluator.
		c.Status(http.StatusNoContent)
		return
	}
	s.respondError(c, err)
}

func (s *Server) getSource(c *gin.Context) {
	src, err := s.store.GetSource(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, src)
}

type sourceVerification struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Valid       bool   `json:"valid"`
}

// verifySource recomputes a source's archival fingerprint.
func (s *Server) verifySource(c *gin.Context) {
	src, ok, err := s.store.VerifySource(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, sourceVerification{ID: src.ID, Fingerprint: src.Fingerprint, Valid: ok})
}

func (s *Server) listSources(c *gin.Context) {
	q := defaultPage()
	if err := s.bindQuery(c, &q); err != nil {
		s.respondError(c, err)
		return
	}
	sources, total, err := s.store.ListSources(c.Request.Context(), q.page())
	if err != nil {
		s.respondError(c, err)
		return
	}
	paginated(c, sources, total, q.page())
}

type createStatementRequest struct {
	CandidateID string     `json:"candidateId" validate:"required,uuid"`
	TopicID     string     `json:"topicId" validate:"required,uuid"`
	Kind        string     `json:"kind" validate:"required,oneof=QUOTE INTERVIEW VOTE PROGRAM OTHER"`
	SummaryAr   *string    `json:"summaryAr"`
	SummaryEn   *string    `json:"summaryEn"`
	SummaryFr   *string    `json:"summaryFr"`
	OccurredAt  *timestamp `json:"occurredAt"`
	SourceID    string     `json:"sourceId" validate:"required,uuid"`
}

func (s *Server) createStatement(c *gin.Context) {
	var req createStatementRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	st, err := s.store.CreateStatement(c.Request.Context(), record.Statement{
		CandidateID: req.CandidateID,
		TopicID:     req.TopicID,
		Kind:        record.StatementKind(req.Kind),
		SummaryAr:   req.SummaryAr,
		SummaryEn:   req.SummaryEn,
		SummaryFr:   req.SummaryFr,
		OccurredAt:  req.OccurredAt.ptr(),
		SourceID:    req.SourceID,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.record(c, record.AuditCreate, "Statement", st.ID, map[string]any{
		"candidateId": st.CandidateID,
		"sourceId":    st.SourceID,
	})
	success(c, http.StatusCreated, st)
}

type createAffiliationRequest struct {
	CandidateID string     `json:"candidateId" validate:"required,uuid"`
	Type        string     `json:"type" validate:"required,oneof=PARTY BLOC LIST ROLE ALLIANCE"`
	NameAr      string     `json:"nameAr" validate:"required"`
	NameEn      string     `json:"nameEn" validate:"required"`
	NameFr      string     `json:"nameFr" validate:"required"`
	StartDate   *timestamp `json:"startDate" validate:"required"`
	EndDate     *timestamp `json:"endDate"`
	Notes       *string    `json:"notes"`
	SourceID    string     `json:"sourceId" validate:"required,uuid"`
}

func (s *Server) createAffiliation(c *gin.Context) {
	var req createAffiliationRequest
	if err := s.bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate.Time) {
		s.respondError(c, &badRequest{errors.New("endDate is before startDate")})
		return
	}
	a, err := s.store.CreateAffiliation(c.Request.Context(), record.Affiliation{
		CandidateID: req.CandidateID,
		Type:        record.AffiliationType(req.Type),
		NameAr:      req.NameAr,
		NameEn:      req.NameEn,
		NameFr:      req.NameFr,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.ptr(),
		Notes:       req.Notes,
		SourceID:    req.SourceID,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.record(c, record.AuditCreate, "Affiliation", a.ID, map[string]any{
		"candidateId": a.CandidateID,
		"type":        string(a.Type),
	})
	success(c, http.StatusCreated, a)
}

type createVersionRequest struct {
	ChangeNote *string `json:"changeNote" validate:"omitempty,max=1000"`
}

func (s *Server) createVersion(c *gin.Context) {
	var req createVersionRequest
	if c.Request.ContentLength != 0 {
		if err := s.bindJSON(c, &req); err != nil {
			s.respondError(c, err)
			return
		}
	}
	sess, _ := currentSession(c)
	v, err := s.store.CreateProfileVersion(c.Request.Context(), c.Param("id"), req.ChangeNote, sess.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.record(c, record.AuditCreate, "ProfileVersion", v.ID, map[string]any{
		"candidateId":   v.CandidateID,
		"versionNumber": v.VersionNumber,
	})
	success(c, http.StatusCreated, v)
}

func (s *Server) listVersions(c *gin.Context) {
	versions, err := s.store.ListProfileVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, versions)
}

func (s *Server) listAudit(c *gin.Context) {
	q := defaultPage()
	if err := s.bindQuery(c, &q); err != nil {
		s.respondError(c, err)
		return
	}
	entries, total, err := s.store.ListAudit(c.Request.Context(), q.page())
	if err != nil {
		s.respondError(c, err)
		return
	}
	paginated(c, entries, total, q.page())
}

// record appends an audit entry for the current session.
func (s *Server) record(c *gin.Context, action record.AuditAction, entityType, entityID string, meta map[string]any) {
	sess, _ := currentSession(c)
	s.audit.Record(c.Request.Context(), audit.Event{
		Actor:      sess.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   meta,
		Client:     clientInfo(c),
	})
}
