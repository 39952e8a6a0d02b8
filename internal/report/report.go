package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schemasmith/schemasmith/internal/emit"
	"github.com/schemasmith/schemasmith/internal/selection"
	"github.com/schemasmith/schemasmith/internal/snapshot"
)

// FileName is the report written next to the collections after every run.
const FileName = "schemasmith-report.json"

// Path is where the report of the last run of project is written under dir.
func Path(dir, project string) string {
	return filepath.Join(dir, project, FileName)
}

// Report summarizes one generation run.
type Report struct {
	Version     string                     `json:"version"`
	Project     string                     `json:"project"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Rotated     bool                       `json:"rotated"`
	Fingerprint string                     `json:"fingerprint,omitempty"`
	Changes     map[string]snapshot.Status `json:"changes,omitempty"`
	Tables      []string                   `json:"tables"`
	Counts      map[emit.Kind]int          `json:"counts"`
	Artifacts   []emit.Outcome             `json:"artifacts"`
	Orphans     []selection.OrphanedRef    `json:"orphaned_references,omitempty"`
}

// New starts an empty report for project.
func New(project string) *Report {
	return &Report{
		Version:     "1",
		Project:     project,
		GeneratedAt: time.Now(),
		Counts:      make(map[emit.Kind]int),
	}
}

// Add records emitter outcomes.
func (r *Report) Add(outcomes ...emit.Outcome) {
	for _, o := range outcomes {
		r.Artifacts = append(r.Artifacts, o)
		r.Counts[o.Kind]++
	}
}

// NoMatches returns the outcomes whose target region could not be located.
func (r *Report) NoMatches() []emit.Outcome {
	var out []emit.Outcome
	for _, o := range r.Artifacts {
		if o.Kind == emit.KindNoMatch {
			out = append(out, o)
		}
	}
	return out
}

// WriteJSON writes the report as JSON.
func WriteJSON(report *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON reads a report from a JSON file.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	r := &Report{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	if r.Counts == nil {
		r.Counts = make(map[emit.Kind]int)
	}
	return r, nil
}

// FormatText renders the report as human-readable text.
func FormatText(report *Report) string {
	var b strings.Builder

	b.WriteString("=== Schemasmith Generation Report ===\n")
	b.WriteString(fmt.Sprintf("Project:   %s\n", report.Project))
	b.WriteString(fmt.Sprintf("Generated: %s\n", report.GeneratedAt.Format(time.RFC3339)))
	if report.Fingerprint != "" {
		b.WriteString(fmt.Sprintf("Schema:    %s\n", report.Fingerprint))
	}
	b.WriteString("\n")

	if len(report.Changes) > 0 {
		b.WriteString("Schema changes:\n")
		names := make([]string, 0, len(report.Changes))
		for name := range report.Changes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  %-8s %s\n", report.Changes[name], name))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Tables: %d\n", len(report.Tables)))
	b.WriteString(fmt.Sprintf("Artifacts: %d created, %d updated, %d unchanged, %d no-match\n",
		report.Counts[emit.KindCreated], report.Counts[emit.KindUpdated],
		report.Counts[emit.KindUnchanged], report.Counts[emit.KindNoMatch]))

	if nm := report.NoMatches(); len(nm) > 0 {
		b.WriteString("\nLeft untouched (region not found):\n")
		for _, o := range nm {
			b.WriteString(fmt.Sprintf("  %s\n", o.Path))
		}
	}

	if len(report.Orphans) > 0 {
		b.WriteString("\nReferences to unselected tables:\n")
		for _, o := range report.Orphans {
			b.WriteString(fmt.Sprintf("  %s.%s -> %s\n", o.Table, o.Column, o.ReferencedTable))
		}
	}

	return b.String()
}
