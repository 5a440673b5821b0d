// Package rescue renders the final rescue package: a condensed markdown
// document assembled from an Analysis and a sanitized conversation,
// ready to seed a fresh conversation with any model.
package rescue

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/ctxrescue/ctxrescue/sanitize"
	"github.com/ctxrescue/ctxrescue/types"
)

//go:embed package.md.tmpl
var packageTemplate string

// Generator renders rescue package documents.
type Generator struct {
	tmpl *template.Template
}

// NewGenerator creates a Generator with the embedded template.
func NewGenerator() (*Generator, error) {
	funcMap := template.FuncMap{
		"formatDate": formatDate,
		"roleLabel":  roleLabel,
		"inc":        func(i int) int { return i + 1 },
	}

	tmpl, err := template.New("package").Funcs(funcMap).Parse(packageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse rescue package template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Document is the template context for one rescue package.
type Document struct {
	Timestamp        time.Time
	Goal             string
	Blocker          string
	CurrentState     string
	KeyInsights      []string
	RecommendedSteps []string
	LoopsDetected    []types.LoopPattern
	CleanedMessages  []*types.Message
	Stats            *sanitize.RemovalStats
}

// Generate renders the rescue package markdown.
func (g *Generator) Generate(analysis *types.Analysis, sanitized []*types.Message, stats *sanitize.RemovalStats) (string, error) {
	doc := Document{
		Timestamp:        time.Now(),
		Goal:             analysis.Goal,
		Blocker:          analysis.Blocker,
		CurrentState:     analysis.CurrentState,
		KeyInsights:      analysis.KeyInsights,
		RecommendedSteps: analysis.RecommendedSteps,
		LoopsDetected:    analysis.LoopsDetected,
		CleanedMessages:  sanitized,
		Stats:            stats,
	}

	var buf strings.Builder
	if err := g.tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render rescue package: %w", err)
	}
	return buf.String(), nil
}

// WriteFile renders the package and writes it to path, creating parent
// directories as needed.
func (g *Generator) WriteFile(path string, analysis *types.Analysis, sanitized []*types.Message, stats *sanitize.RemovalStats) error {
	content, err := g.Generate(analysis, sanitized, stats)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write rescue package: %w", err)
	}
	return nil
}

// Filename returns a timestamped filename for a rescue package.
func Filename(base string) string {
	if base == "" {
		base = "rescue"
	}
	return fmt.Sprintf("%s_%s.md", base, time.Now().Format("20060102_150405"))
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func roleLabel(role types.Role) string {
	switch role {
	case types.RoleUser:
		return "User"
	case types.RoleAssistant:
		return "Assistant"
	case types.RoleSystem:
		return "System"
	}
	return string(role)
}
