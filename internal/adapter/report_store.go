package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrNoReports is returned when the reports directory holds no saved runs.
var ErrNoReports = errors.New("no reports found")

// ErrReportNotFound is returned when no saved run matches the requested ID.
var ErrReportNotFound = errors.New("report not found")

// ReportStore persists run reports and retrieves them for later viewing.
// The reports directory is passed per call so commands can redirect it
// through the shared --output flag.
type ReportStore interface {
	// Save writes the report under dir and returns the path it was stored at.
	Save(dir m.Path, report m.RunReport) (m.Path, error)

	// LoadLatest returns the most recently saved report under dir.
	LoadLatest(dir m.Path) (m.RunReport, error)

	// Load returns the report under dir whose ID equals or starts with id.
	Load(dir m.Path, id string) (m.RunReport, error)

	// List returns every saved report under dir, most recent first.
	List(dir m.Path) ([]m.RunReport, error)
}

// YAMLReportStore stores one YAML file per run. File names embed the run's
// UTC start time, so lexical order is run order.
type YAMLReportStore struct {
	fs afero.Fs
}

// NewYAMLReportStore constructs a store over the given filesystem.
func NewYAMLReportStore(fsys afero.Fs) *YAMLReportStore {
	return &YAMLReportStore{fs: fsys}
}

// NewLocalReportStore constructs a store over the real OS filesystem.
func NewLocalReportStore() *YAMLReportStore {
	return NewYAMLReportStore(afero.NewOsFs())
}

// Save marshals the report and writes it under dir, creating the directory
// when missing.
func (s *YAMLReportStore) Save(dir m.Path, report m.RunReport) (m.Path, error) {
	if err := s.fs.MkdirAll(string(dir), 0o750); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := m.Path(filepath.Join(string(dir), reportFileName(report)))

	if err := afero.WriteFile(s.fs, string(path), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// LoadLatest returns the report with the lexically greatest filename.
func (s *YAMLReportStore) LoadLatest(dir m.Path) (m.RunReport, error) {
	names, err := s.reportNames(dir)
	if err != nil {
		return m.RunReport{}, err
	}

	return s.read(dir, names[0])
}

// Load scans saved reports, most recent first, for one whose ID equals or
// starts with id.
func (s *YAMLReportStore) Load(dir m.Path, id string) (m.RunReport, error) {
	names, err := s.reportNames(dir)
	if err != nil {
		return m.RunReport{}, err
	}

	for _, name := range names {
		report, err := s.read(dir, name)
		if err != nil {
			slog.Debug("Skipping unreadable report", "file", name, "error", err)

			continue
		}

		if report.ID == id || strings.HasPrefix(report.ID, id) {
			return report, nil
		}
	}

	return m.RunReport{}, fmt.Errorf("%w: %s", ErrReportNotFound, id)
}

// List returns every readable report, most recent first.
func (s *YAMLReportStore) List(dir m.Path) ([]m.RunReport, error) {
	names, err := s.reportNames(dir)
	if err != nil {
		return nil, err
	}

	reports := make([]m.RunReport, 0, len(names))

	for _, name := range names {
		report, err := s.read(dir, name)
		if err != nil {
			slog.Debug("Skipping unreadable report", "file", name, "error", err)

			continue
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// reportNames lists report files most recent first, or ErrNoReports.
func (s *YAMLReportStore) reportNames(dir m.Path) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, string(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReports
		}

		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, "report-") && strings.HasSuffix(name, ".yaml") {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil, ErrNoReports
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	return names, nil
}

func (s *YAMLReportStore) read(dir m.Path, name string) (m.RunReport, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(string(dir), name))
	if err != nil {
		return m.RunReport{}, fmt.Errorf("failed to read report %s: %w", name, err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("failed to parse report %s: %w", name, err)
	}

	return report, nil
}

func reportFileName(report m.RunReport) string {
	id := report.ID
	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf("report-%s-%s.yaml", report.StartedAt.UTC().Format("20060102T150405"), id)
}
