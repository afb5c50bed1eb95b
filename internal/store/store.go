// Package store persists incident records in memory, mirrored to a
// single JSON file that is reloaded lazily and rewritten in full after
// every mutation. The store assumes single-process ownership of the
// mirror file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// timestampLayout matches the microsecond ISO-8601 form the rest of
// the pipeline parses and sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Store is a file-backed incident database. All methods are safe for
// concurrent use within one process.
type Store struct {
	mu      sync.Mutex
	path    string
	records map[string]*IncidentRecord
	loaded  bool

	// now is swappable in tests
	now func() time.Time
}

// New returns a store mirroring to the JSON file at path. The file is
// not read until the first operation.
func New(path string) *Store {
	return &Store{
		path:    path,
		records: make(map[string]*IncidentRecord),
		now:     time.Now,
	}
}

// Create inserts a new incident. A missing or malformed ID is replaced
// with a generated INC-<unix_millis> ID. ServiceName is required.
// Severity defaults to Medium and Status to Open. Creating with an ID
// that already exists overwrites the stored record.
func (s *Store) Create(incidentID string, fields Fields) (*IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	if fields.ServiceName == nil || *fields.ServiceName == "" {
		return nil, &ValidationError{Message: "service_name is required for creating an incident"}
	}

	if !idPattern.MatchString(incidentID) {
		incidentID = s.generateID()
	}

	nowStr := s.now().Format(timestampLayout)

	rec := &IncidentRecord{
		IncidentID:  incidentID,
		ServiceName: *fields.ServiceName,
		Severity:    SeverityMedium,
		Status:      StatusOpen,
		Timestamp:   nowStr,
		CreatedAt:   nowStr,
		LastUpdated: nowStr,
	}
	applyFields(rec, fields)

	if _, exists := s.records[incidentID]; exists {
		logrus.Warnf("incident %s already exists, overwriting", incidentID)
	}
	s.records[incidentID] = rec

	if err := s.save(); err != nil {
		return nil, err
	}
	logrus.Infof("created incident %s for service %s", rec.IncidentID, rec.ServiceName)
	return cloneRecord(rec), nil
}

// Read returns the incident with the given ID. Unknown IDs produce a
// NotFoundError carrying every known ID.
func (s *Store) Read(incidentID string) (*IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if incidentID == "" {
		return nil, &ValidationError{Message: "incident_id is required for read operation"}
	}

	rec, ok := s.records[incidentID]
	if !ok {
		return nil, &NotFoundError{IncidentID: incidentID, Available: s.knownIDs()}
	}
	return cloneRecord(rec), nil
}

// Update merges the non-nil fields into an existing incident and
// refreshes last_updated. An empty patch returns a NoOpError.
func (s *Store) Update(incidentID string, fields Fields) (*IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if incidentID == "" {
		return nil, &ValidationError{Message: "incident_id is required for update operation"}
	}

	rec, ok := s.records[incidentID]
	if !ok {
		return nil, &NotFoundError{IncidentID: incidentID, Available: s.knownIDs()}
	}
	if isEmptyPatch(fields) {
		return nil, &NoOpError{IncidentID: incidentID}
	}

	applyFields(rec, fields)
	rec.LastUpdated = s.now().Format(timestampLayout)

	if err := s.save(); err != nil {
		return nil, err
	}
	logrus.Infof("updated incident %s", incidentID)
	return cloneRecord(rec), nil
}

// List returns all incidents ordered by created_at, most recent first.
// An empty store yields an empty slice.
func (s *Store) List() ([]*IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	out := make([]*IncidentRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].IncidentID > out[j].IncidentID
	})
	return out, nil
}

// Delete removes an incident and returns the deleted record.
func (s *Store) Delete(incidentID string) (*IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if incidentID == "" {
		return nil, &ValidationError{Message: "incident_id is required for delete operation"}
	}

	rec, ok := s.records[incidentID]
	if !ok {
		return nil, &NotFoundError{IncidentID: incidentID, Available: s.knownIDs()}
	}
	delete(s.records, incidentID)

	if err := s.save(); err != nil {
		return nil, err
	}
	logrus.Infof("deleted incident %s", incidentID)
	return rec, nil
}

// Count returns the number of stored incidents.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(s.records), nil
}

func (s *Store) generateID() string {
	return fmt.Sprintf("INC-%d", s.now().UnixMilli())
}

func (s *Store) knownIDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ensureLoaded reads the mirror file once per store lifetime. A
// missing file starts an empty store.
func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read incident data file %s: %w", s.path, err)
	}

	var records map[string]*IncidentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse incident data file %s: %w", s.path, err)
	}
	if records != nil {
		s.records = records
	}
	s.loaded = true
	logrus.Debugf("loaded %d incident(s) from %s", len(s.records), s.path)
	return nil
}

// save rewrites the mirror file in full.
func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to write incident data file %s: %w", s.path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.records); err != nil {
		return fmt.Errorf("failed to encode incident data: %w", err)
	}
	return nil
}

func applyFields(rec *IncidentRecord, f Fields) {
	if f.ServiceName != nil {
		rec.ServiceName = *f.ServiceName
	}
	if f.Severity != nil {
		rec.Severity = *f.Severity
	}
	if f.Status != nil {
		rec.Status = *f.Status
	}
	if f.Timestamp != nil {
		rec.Timestamp = *f.Timestamp
	}
	if f.Commander != nil {
		rec.Commander = *f.Commander
	}
	if f.CommunicationLead != nil {
		rec.CommunicationLead = *f.CommunicationLead
	}
	if f.PlaybookApplied != nil {
		rec.PlaybookApplied = *f.PlaybookApplied
	}
	if f.Timeline != nil {
		rec.Timeline = *f.Timeline
	}
	if f.ResolutionDetails != nil {
		rec.ResolutionDetails = *f.ResolutionDetails
	}
	if f.ResolvedAt != nil {
		rec.ResolvedAt = *f.ResolvedAt
	}
	if f.FirstResponseAt != nil {
		rec.FirstResponseAt = *f.FirstResponseAt
	}
}

func isEmptyPatch(f Fields) bool {
	return f.ServiceName == nil &&
		f.Severity == nil &&
		f.Status == nil &&
		f.Timestamp == nil &&
		f.Commander == nil &&
		f.CommunicationLead == nil &&
		f.PlaybookApplied == nil &&
		f.Timeline == nil &&
		f.ResolutionDetails == nil &&
		f.ResolvedAt == nil &&
		f.FirstResponseAt == nil
}

func cloneRecord(rec *IncidentRecord) *IncidentRecord {
	c := *rec
	return &c
}
