package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/daleel/internal/record"
	"github.com/roach88/daleel/internal/testutil"
)

// createTestStore creates a new store in a temp dir with a deterministic clock.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithClock(testutil.NewDeterministicClock())}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// fixture is a small, fully linked dataset.
type fixture struct {
	cycle     record.Cycle
	district  record.District
	list      record.ElectoralList
	candidate record.Candidate
	topic     record.Topic
	source    record.Source
}

func seedFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.cycle, err = s.CreateCycle(ctx, record.Cycle{Name: "Parliamentary 2022", Year: 2022, IsActive: true})
	if err != nil {
		t.Fatalf("CreateCycle() failed: %v", err)
	}
	f.district, err = s.CreateDistrict(ctx, record.District{
		CycleID: f.cycle.ID, NameAr: "بيروت الأولى", NameEn: "Beirut I", NameFr: "Beyrouth I", SeatCount: 8,
	})
	if err != nil {
		t.Fatalf("CreateDistrict() failed: %v", err)
	}
	f.list, err = s.CreateList(ctx, record.ElectoralList{
		CycleID: f.cycle.ID, DistrictID: f.district.ID,
		NameAr: "لبنان السيادة", NameEn: "Sovereign Lebanon", NameFr: "Liban souverain",
	})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	f.candidate, err = s.CreateCandidate(ctx, record.Candidate{
		CycleID: f.cycle.ID, DistrictID: f.district.ID, CurrentListID: &f.list.ID,
		FullNameAr: "نديم الجميل", FullNameEn: "Nadim Gemayel", FullNameFr: "Nadim Gemayel",
	})
	if err != nil {
		t.Fatalf("CreateCandidate() failed: %v", err)
	}
	f.topic, err = s.CreateTopic(ctx, record.Topic{NameAr: "الاقتصاد", NameEn: "Economy", NameFr: "Économie"})
	if err != nil {
		t.Fatalf("CreateTopic() failed: %v", err)
	}
	f.source, err = s.CreateSource(ctx, record.Source{
		Title:         "Campaign launch speech",
		Publisher:     "LBCI",
		OriginURL:     "https://lbci.example/speech",
		ArchivedURL:   "https://web.archive.org/web/2022/https://lbci.example/speech",
		ArchivedAt:    time.Date(2022, 3, 20, 18, 0, 0, 0, time.UTC),
		ArchiveMethod: record.ArchiveWayback,
	})
	if err != nil {
		t.Fatalf("CreateSource() failed: %v", err)
	}
	return f
}
