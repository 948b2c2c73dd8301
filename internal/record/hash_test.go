package record

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() Source {
	return Source{
		Title:         "Interview transcript",
		Publisher:     "An-Nahar",
		OriginURL:     "https://example.org/interview",
		ArchivedURL:   "https://web.archive.org/web/2022/https://example.org/interview",
		ArchivedAt:    time.Date(2022, 4, 1, 12, 0, 0, 0, time.UTC),
		ArchiveMethod: ArchiveWayback,
	}
}

func fingerprint(t *testing.T, s Source) string {
	t.Helper()
	fp, err := SourceFingerprint(s)
	require.NoError(t, err)
	return fp
}

func TestSourceFingerprint_IsRawSHA256CID(t *testing.T) {
	fp, err := SourceFingerprint(testSource())
	require.NoError(t, err)

	c, err := cid.Decode(fp)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Version())
	assert.Equal(t, uint64(cid.Raw), c.Type())
}

func TestSourceFingerprint_IgnoresMetadata(t *testing.T) {
	a := testSource()
	b := testSource()
	notes := "translated by volunteers"
	b.Title = "Different title"
	b.Notes = &notes

	assert.Equal(t, fingerprint(t, a), fingerprint(t, b))
}

func TestSourceFingerprint_CoversArchiveFields(t *testing.T) {
	base := fingerprint(t, testSource())

	mutations := map[string]func(*Source){
		"originUrl":     func(s *Source) { s.OriginURL = "https://example.org/other" },
		"archivedUrl":   func(s *Source) { s.ArchivedURL = "https://archive.ph/abc" },
		"archivedAt":    func(s *Source) { s.ArchivedAt = s.ArchivedAt.Add(time.Second) },
		"archiveMethod": func(s *Source) { s.ArchiveMethod = ArchivePDF },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := testSource()
			mutate(&s)
			assert.NotEqual(t, base, fingerprint(t, s))
		})
	}
}

func TestVerifySourceFingerprint(t *testing.T) {
	s := testSource()
	s.Fingerprint = fingerprint(t, s)

	ok, err := VerifySourceFingerprint(s)
	require.NoError(t, err)
	assert.True(t, ok)

	s.ArchivedURL = "https://archive.ph/tampered"
	ok, err = VerifySourceFingerprint(s)
	require.NoError(t, err)
	assert.False(t, ok)

	s.Fingerprint = "not-a-cid"
	_, err = VerifySourceFingerprint(s)
	assert.Error(t, err)
}

func TestSnapshotHash_DomainSeparated(t *testing.T) {
	data := []byte(`{"id":"c1"}`)
	h := SnapshotHash(data)
	assert.Len(t, h, 64)
	assert.Equal(t, h, SnapshotHash(data))
	assert.NotEqual(t, h, hashWithDomain(DomainSourceArchive, data))
}

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Free Patriotic Movement", "free-patriotic-movement"},
		{"  Lebanese Forces  ", "lebanese-forces"},
		{"Amal Movement (Harakat Amal)", "amal-movement-harakat-amal"},
		{"Kataeb_Party", "kataeb-party"},
		{"--Hezbollah--", "hezbollah"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeSlug(tt.in), tt.in)
	}
}

func TestNewID_IsUUIDv7(t *testing.T) {
	id := NewID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.False(t, strings.Contains(id, " "))
}
