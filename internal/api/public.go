package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/daleel/internal/record"
	"github.com/roach88/daleel/internal/store"
)

func (s *Server) listCycles(c *gin.Context) {
	cycles, err := s.store.ListCycles(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, cycles)
}

type districtQuery struct {
	pageQuery
	CycleID string `form:"cycleId"`
}

func (s *Server) listDistricts(c *gin.Context) {
	q := districtQuery{pageQuery: defaultPage()}
	if err := s.bindQuery(c, &q); err != nil {
		s.respondError(c, err)
		return
	}
	districts, total, err := s.store.ListDistricts(c.Request.Context(), q.CycleID, q.page())
	if err != nil {
		s.respondError(c, err)
		return
	}
	paginated(c, districts, total, q.page())
}

func (s *Server) getDistrict(c *gin.Context) {
	d, err := s.store.GetDistrict(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, d)
}

type listQuery struct {
	pageQuery
	CycleID    string `form:"cycleId"`
	DistrictID string `form:"districtId"`
	Status     string `form:"status" validate:"omitempty,oneof=DRAFT ANNOUNCED OFFICIAL WITHDRAWN"`
}

func (s *Server) listLists(c *gin.Context) {
	q := listQuery{pageQuery: defaultPage()}
	if err := s.bindQuery(c, &q); err != nil {
		s.respondError(c, err)
		return
	}
	lists, total, err := s.store.ListLists(c.Request.Context(), store.ListFilter{
		CycleID:    q.CycleID,
		DistrictID: q.DistrictID,
		Status:     record.ListStatus(q.Status),
	}, q.page())
	if err != nil {
		s.respondError(c, err)
		return
	}
	paginated(c, lists, total, q.page())
}

func (s *Server) getList(c *gin.Context) {
	l, err := s.store.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, l)
}

type candidateQuery struct {
	pageQuery
	CycleID    string `form:"cycleId"`
	DistrictID string `form:"districtId"`
	ListID     string `form:"listId"`
	Status     string `form:"status" validate:"omitempty,oneof=POTENTIAL OFFICIAL WITHDRAWN DISQUALIFIED"`
	Q          string `form:"q" validate:"max=200"`
}

func (s *Server) listCandidates(c *gin.Context) {
	q := candidateQuery{pageQuery: defaultPage()}
	if err := s.bindQuery(c, &q); err != nil {
		s.respondError(c, err)
		return
	}
	candidates, total, err := s.store.ListCandidates(c.Request.Context(), store.CandidateFilter{
		CycleID:    q.CycleID,
		DistrictID: q.DistrictID,
		ListID:     q.ListID,
		Status:     record.CandidateStatus(q.Status),
		Query:      q.Q,
	}, q.page())
	if err != nil {
		s.respondError(c, err)
		return
	}
	paginated(c, candidates, total, q.page())
}

func (s *Server) getCandidate(c *gin.Context) {
	p, err := s.store.GetCandidateBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, p)
}

// listCenters answers {"data": [...]} without the success flag, the shape
// the map client reads.
func (s *Server) listCenters(c *gin.Context) {
	centers, err := s.store.ListCenters(c.Request.Context(), c.Query("districtId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": centers})
}

func (s *Server) listParties(c *gin.Context) {
	parties, err := s.store.ListParties(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, parties)
}

func (s *Server) getParty(c *gin.Context) {
	p, err := s.store.GetParty(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, http.StatusOK, p)
}
