// Package artifacts resolves, inspects and encodes the files generated
// for an incident (retrospective PDFs and HTML charts). All artifacts
// for one incident live under a per-incident directory.
package artifacts

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Kind identifies one artifact type an incident can have.
type Kind string

const (
	KindCOEReport Kind = "coe_report"
	KindTimeline  Kind = "timeline"
	KindGantt     Kind = "gantt"
)

// MaxEncodableSize caps files accepted by FileToBase64.
const MaxEncodableSize = 10 << 20

// Resolver maps incidents to their artifact paths under a base
// directory.
type Resolver struct {
	baseDir string
}

func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// Dir is the directory all artifacts for the incident live in.
func (r *Resolver) Dir(incidentID string) string {
	return filepath.Join(r.baseDir, SanitizeID(incidentID))
}

// EnsureDir creates the incident's artifact directory if needed and
// returns it.
func (r *Resolver) EnsureDir(incidentID string) (string, error) {
	dir := r.Dir(incidentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}
	return dir, nil
}

// Path is the full path for one artifact of the incident.
func (r *Resolver) Path(incidentID string, kind Kind) string {
	return filepath.Join(r.Dir(incidentID), Filename(incidentID, kind))
}

// Filename is the canonical file name for an artifact kind. Kinds
// without a dedicated template become "<kind>_<id>.pdf".
func Filename(incidentID string, kind Kind) string {
	id := SanitizeID(incidentID)
	switch kind {
	case KindCOEReport:
		return fmt.Sprintf("COE_%s.pdf", id)
	case KindTimeline:
		return fmt.Sprintf("timeline_%s.html", id)
	case KindGantt:
		return fmt.Sprintf("gantt_%s.html", id)
	default:
		return fmt.Sprintf("%s_%s.pdf", kind, id)
	}
}

// FileInfo describes an artifact found on disk.
type FileInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Exists reports whether the artifact is already on disk. Generators
// use this to skip regenerating reports.
func (r *Resolver) Exists(incidentID string, kind Kind) (FileInfo, bool) {
	path := r.Path(incidentID, kind)
	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		return FileInfo{}, false
	}
	return FileInfo{Path: path, Size: stat.Size()}, true
}

// SanitizeID makes an incident ID safe to use as a path component.
// Separator and drive characters become underscores; control
// characters are dropped.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r == '/' || r == '\\' || r == ':':
			b.WriteRune('_')
		case unicode.IsPrint(r):
			b.WriteRune(r)
		}
	}
	out := strings.ReplaceAll(b.String(), "..", "_")
	if out == "" {
		return "_"
	}
	return out
}

// FileToBase64 reads a file and returns its standard base64 encoding.
// Files over MaxEncodableSize are rejected before reading.
func FileToBase64(path string) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if stat.Size() > MaxEncodableSize {
		return "", fmt.Errorf("file %s is %d bytes, exceeds %d byte encoding limit", path, stat.Size(), int64(MaxEncodableSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Entry is one file in an artifact summary.
type Entry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Summary describes every artifact an incident has on disk.
type Summary struct {
	IncidentID string  `json:"incident_id"`
	Directory  string  `json:"directory"`
	Files      []Entry `json:"files"`
	TotalSize  int64   `json:"total_size"`
}

// Summarize lists the incident's artifact directory. A missing
// directory yields an empty summary, not an error.
func (r *Resolver) Summarize(incidentID string) (Summary, error) {
	dir := r.Dir(incidentID)
	summary := Summary{
		IncidentID: incidentID,
		Directory:  dir,
		Files:      []Entry{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return summary, nil
		}
		return summary, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		summary.Files = append(summary.Files, Entry{
			Name: entry.Name(),
			Size: info.Size(),
			Type: fileType(entry.Name()),
		})
		summary.TotalSize += info.Size()
	}

	sort.Slice(summary.Files, func(i, j int) bool {
		return summary.Files[i].Name < summary.Files[j].Name
	})

	return summary, nil
}

func fileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "pdf"
	case ".html":
		return "html"
	case ".json":
		return "json"
	default:
		return "other"
	}
}
