package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daleel/internal/config"
	"github.com/roach88/daleel/internal/record"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := env.do(t, "GET", path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "ok", body["status"])
		_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
		assert.NoError(t, err)
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/public/cycles", nil)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, w.Header().Get("Permissions-Policy"))
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/public/cycles", nil, withHeader("Origin", "http://localhost:3000"))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = env.do(t, "OPTIONS", "/api/admin/sources", nil, withHeader("Origin", "http://localhost:3000"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), csrfHeader)

	w = env.do(t, "GET", "/api/public/cycles", nil, withHeader("Origin", "https://evil.example"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListCycles(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/public/cycles", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, float64(2022), data[0].(map[string]any)["year"])
}

func TestListDistricts_Paginated(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/public/districts?cycleId="+env.fx.cycle.ID, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(20), body["pageSize"])
	assert.Equal(t, float64(1), body["totalPages"])

	d := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Beirut I", d["nameEn"])
	counts := d["_count"].(map[string]any)
	assert.Equal(t, float64(1), counts["candidates"])
	assert.Equal(t, float64(1), counts["lists"])
}

func TestPagination_Validation(t *testing.T) {
	env := newTestEnv(t)

	for _, query := range []string{"page=0", "pageSize=0", "pageSize=101", "page=abc"} {
		t.Run(query, func(t *testing.T) {
			w := env.do(t, "GET", "/api/public/candidates?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Validation error", body["error"])
		})
	}

	w := env.do(t, "GET", "/api/public/candidates?pageSize=101", nil)
	details := decode(t, w)["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "pageSize", details[0].(map[string]any)["field"])
	assert.Equal(t, "lte", details[0].(map[string]any)["rule"])
}

func TestGetDistrict(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/public/districts/"+env.fx.district.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Len(t, data["candidates"], 1)
	assert.Len(t, data["lists"], 1)

	w = env.do(t, "GET", "/api/public/districts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decode(t, w)["error"])
}

func TestLists(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/public/lists?status=DRAFT&districtId="+env.fx.district.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = env.do(t, "GET", "/api/public/lists?status=BOGUS", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "GET", "/api/public/lists/"+env.fx.list.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2022), data["cycle"].(map[string]any)["year"])
	assert.Equal(t, float64(8), data["district"].(map[string]any)["seatCount"])
	assert.Len(t, data["candidates"], 1)
}

func TestCandidates(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/public/candidates?q=gemayel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	c := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "nadim-gemayel", c["slug"])
	assert.Equal(t, "Sovereign Lebanon", c["currentList"].(map[string]any)["nameEn"])

	w = env.do(t, "GET", "/api/public/candidates?q=nobody", nil)
	assert.Equal(t, float64(0), decode(t, w)["total"])

	w = env.do(t, "GET", "/api/public/candidates?status=ELECTED", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCandidateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.store.CreateStatement(context.Background(), record.Statement{
		CandidateID: env.fx.candidate.ID,
		TopicID:     env.fx.topic.ID,
		Kind:        record.StatementQuote,
		SourceID:    env.fx.source.ID,
	})
	require.NoError(t, err)

	w := env.do(t, "GET", "/api/public/candidates/nadim-gemayel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "Nadim Gemayel", data["fullNameEn"])
	assert.Len(t, data["statements"], 1)
	assert.Len(t, data["sources"], 1)
	assert.Empty(t, data["affiliations"])

	w = env.do(t, "GET", "/api/public/candidates/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCenters_DataOnlyEnvelope(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.store.CreateCenter(context.Background(), record.Center{
		DistrictID: env.fx.district.ID, NameAr: "مدرسة", NameEn: "School", NameFr: "École",
		Latitude: 33.89, Longitude: 35.5,
	})
	require.NoError(t, err)

	w := env.do(t, "GET", "/api/public/centers?districtId="+env.fx.district.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotContains(t, body, "success")
	require.Len(t, body["data"], 1)
	assert.Equal(t, 33.89, body["data"].([]any)[0].(map[string]any)["latitude"])
}

func TestParties(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/public/parties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])

	_, err := env.store.CreateAffiliation(context.Background(), record.Affiliation{
		CandidateID: env.fx.candidate.ID, Type: record.AffiliationParty,
		NameAr: "الكتائب", NameEn: "Kataeb Party", NameFr: "Parti Kataëb",
		StartDate: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), SourceID: env.fx.source.ID,
	})
	require.NoError(t, err)

	w = env.do(t, "GET", "/api/public/parties", nil)
	parties := decode(t, w)["data"].([]any)
	require.Len(t, parties, 1)
	assert.Equal(t, "kataeb-party", parties[0].(map[string]any)["slug"])

	w = env.do(t, "GET", "/api/public/parties/kataeb-party", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["candidateCount"])

	w = env.do(t, "GET", "/api/public/parties/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.RateLimit.Public = config.Limit{Max: 2, Window: config.Duration(time.Minute)}
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/public/cycles", nil).Code)
	}
	w := env.do(t, "GET", "/api/public/cycles", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "Rate limit exceeded", decode(t, w)["error"])

	// Health is outside the public group.
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/health", nil).Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/public/nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "PUT", "/api/public/cycles", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decode(t, w)["error"])
}
