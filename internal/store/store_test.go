package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "incidents.json"))
}

func TestCreateGeneratesID(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create("", Fields{ServiceName: String("payment-service")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(rec.IncidentID, "INC-") {
		t.Errorf("expected generated ID with INC- prefix, got %s", rec.IncidentID)
	}
	if !idPattern.MatchString(rec.IncidentID) {
		t.Errorf("generated ID %s does not match INC-<millis> pattern", rec.IncidentID)
	}
	if rec.Severity != SeverityMedium {
		t.Errorf("expected default severity Medium, got %s", rec.Severity)
	}
	if rec.Status != StatusOpen {
		t.Errorf("expected default status Open, got %s", rec.Status)
	}
	if rec.CreatedAt != rec.LastUpdated {
		t.Errorf("expected created_at == last_updated on create, got %s vs %s", rec.CreatedAt, rec.LastUpdated)
	}
}

func TestCreateReplacesMalformedID(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create("not-an-id", Fields{ServiceName: String("api")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.IncidentID == "not-an-id" {
		t.Error("malformed ID should have been replaced with a generated one")
	}
}

func TestCreateKeepsWellFormedID(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create("INC-1718000000000", Fields{ServiceName: String("api")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.IncidentID != "INC-1718000000000" {
		t.Errorf("expected provided ID to be kept, got %s", rec.IncidentID)
	}
}

func TestCreateRequiresServiceName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("", Fields{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateOverwritesExisting(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Create("INC-100", Fields{ServiceName: String("first")}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := s.Create("INC-100", Fields{ServiceName: String("second")}); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	rec, err := s.Read("INC-100")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rec.ServiceName != "second" {
		t.Errorf("expected last write to win, got service %s", rec.ServiceName)
	}
}

func TestReadNotFoundListsAvailable(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Create("INC-1", Fields{ServiceName: String("a")}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := s.Read("INC-999")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(nfErr.Available) != 1 || nfErr.Available[0] != "INC-1" {
		t.Errorf("expected available IDs [INC-1], got %v", nfErr.Available)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	rec, err := s.Create("", Fields{ServiceName: String("checkout"), Commander: String("alex")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s.now = func() time.Time { return time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC) }
	updated, err := s.Update(rec.IncidentID, Fields{Status: String(StatusResolved)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Status != StatusResolved {
		t.Errorf("expected status Resolved, got %s", updated.Status)
	}
	if updated.Commander != "alex" {
		t.Errorf("unrelated field should survive update, got commander %s", updated.Commander)
	}
	if updated.LastUpdated == updated.CreatedAt {
		t.Error("last_updated should advance on update")
	}
}

func TestUpdateEmptyPatch(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create("", Fields{ServiceName: String("checkout")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = s.Update(rec.IncidentID, Fields{})
	var noOp *NoOpError
	if !errors.As(err, &noOp) {
		t.Fatalf("expected NoOpError, got %v", err)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update("INC-404", Fields{Status: String(StatusClosed)})
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListOrdersByCreatedAtDescending(t *testing.T) {
	s := newTestStore(t)

	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		s.now = func() time.Time { return ts }
		id := []string{"INC-1", "INC-2", "INC-3"}[i]
		if _, err := s.Create(id, Fields{ServiceName: String("svc")}); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}

	recs, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 incidents, got %d", len(recs))
	}
	if recs[0].IncidentID != "INC-3" || recs[2].IncidentID != "INC-1" {
		t.Errorf("expected newest first, got order %s, %s, %s",
			recs[0].IncidentID, recs[1].IncidentID, recs[2].IncidentID)
	}
}

func TestListEmptyStore(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if recs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(recs) != 0 {
		t.Errorf("expected no incidents, got %d", len(recs))
	}
}

func TestDeleteReturnsRecord(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create("", Fields{ServiceName: String("svc")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := s.Delete(rec.IncidentID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.IncidentID != rec.IncidentID {
		t.Errorf("expected deleted record %s, got %s", rec.IncidentID, deleted.IncidentID)
	}

	if _, err := s.Read(rec.IncidentID); err == nil {
		t.Error("expected read after delete to fail")
	}
}

func TestMirrorFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "incidents.json")

	s := New(path)
	rec, err := s.Create("", Fields{
		ServiceName: String("payment-service"),
		Severity:    String(SeverityCritical),
		Timeline:    String("14:02 alert fired; 14:05 paged on-call"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// fresh store instance reads the same file
	s2 := New(path)
	got, err := s2.Read(rec.IncidentID)
	if err != nil {
		t.Fatalf("Read from fresh store failed: %v", err)
	}
	if got.ServiceName != "payment-service" || got.Severity != SeverityCritical {
		t.Errorf("round-tripped record mismatch: %+v", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading mirror file failed: %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("mirror file is not a JSON object keyed by ID: %v", err)
	}
	if _, ok := raw[rec.IncidentID]; !ok {
		t.Errorf("mirror file missing key %s", rec.IncidentID)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("mirror file should be pretty-printed")
	}
}

func TestMissingMirrorFileStartsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist.json"))

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d records", n)
	}
}

func TestCorruptMirrorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file failed: %v", err)
	}

	s := New(path)
	if _, err := s.List(); err == nil {
		t.Error("expected error loading corrupt mirror file")
	}
}
