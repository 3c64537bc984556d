// Package export writes a generated suite to disk as Markdown and,
// optionally, a static HTML rendering.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/promptsuite/internal/pipeline"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// Writer exports suites into Dir.
type Writer struct {
	Dir  string
	HTML bool
}

// File names of the exported suite, relative to Writer.Dir.
const (
	IndexFile   = "index.md"
	PromptsFile = "prompts.md"
	SuiteFile   = "suite.json"
)

// DeliverableFile returns the Markdown file name of a deliverable.
func DeliverableFile(kind types.DeliverableKind) string {
	return strings.ReplaceAll(string(kind), "_", "-") + ".md"
}

// WriteSuite writes the index, the prompts, every deliverable and the raw
// suite JSON. It returns the paths written.
func (w Writer) WriteSuite(s *pipeline.Suite) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	pages := map[string]string{
		IndexFile:   Index(s),
		PromptsFile: Prompts(s),
	}
	order := []string{IndexFile, PromptsFile}
	for _, d := range s.Documents.All() {
		name := DeliverableFile(d.Kind)
		pages[name] = d.FullContent
		order = append(order, name)
	}

	var written []string
	for _, name := range order {
		path := filepath.Join(w.Dir, name)
		if err := os.WriteFile(path, []byte(pages[name]), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		written = append(written, path)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return written, fmt.Errorf("encoding suite: %w", err)
	}
	path := filepath.Join(w.Dir, SuiteFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return written, fmt.Errorf("writing %s: %w", SuiteFile, err)
	}
	written = append(written, path)

	if !w.HTML {
		return written, nil
	}
	r, err := NewRenderer()
	if err != nil {
		return written, err
	}
	for _, name := range order {
		out, err := r.WritePage(w.Dir, name, pages[name], order)
		if err != nil {
			return written, fmt.Errorf("rendering %s: %w", name, err)
		}
		written = append(written, out)
	}
	cssPath := filepath.Join(w.Dir, "style.css")
	if err := os.WriteFile(cssPath, []byte(cssContent), 0o644); err != nil {
		return written, err
	}
	return append(written, cssPath), nil
}

// Index renders the suite overview: profile, quality and links.
func Index(s *pipeline.Suite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Prompt Suite: %s\n\n", orUnnamed(s.Profile.ProjectType))
	fmt.Fprintf(&b, "- Run: `%s`\n", s.RunID)
	fmt.Fprintf(&b, "- Expert pattern: `%s` (%s)\n", s.PatternID, s.Domain)
	fmt.Fprintf(&b, "- Complexity: %s\n", s.Profile.ComplexityLevel)
	fmt.Fprintf(&b, "- Target users: %s\n", s.Profile.TargetUsers)
	fmt.Fprintf(&b, "- Core value: %s\n\n", s.Profile.CoreValue)

	b.WriteString("## Quality\n\n| Axis | Score |\n|---|---|\n")
	q := s.Quality
	for _, row := range []struct {
		name  string
		score float64
	}{
		{"Clarity", q.Clarity},
		{"Completeness", q.Completeness},
		{"Professionalism", q.Professionalism},
		{"Actionability", q.Actionability},
		{"Innovation", q.Innovation},
		{"Overall", q.OverallScore},
	} {
		fmt.Fprintf(&b, "| %s | %.1f |\n", row.name, row.score)
	}
	if s.Optimized {
		b.WriteString("\nThe requirements prompt was optimized once after review.\n")
	}
	if len(s.Suggestions) > 0 {
		b.WriteString("\n### Suggestions\n\n")
		for _, sg := range s.Suggestions {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", sg.Type, sg.Priority, sg.Description)
		}
	}

	b.WriteString("\n## Contents\n\n")
	fmt.Fprintf(&b, "- [Prompts](%s)\n", PromptsFile)
	for _, d := range s.Documents.All() {
		marker := ""
		if d.Fallback {
			marker = " (template)"
		}
		fmt.Fprintf(&b, "- [%s](%s)%s\n", d.Title, DeliverableFile(d.Kind), marker)
	}
	if len(s.Fallbacks) > 0 {
		fmt.Fprintf(&b, "\nFallbacks used: %s\n", strings.Join(s.Fallbacks, ", "))
	}
	return b.String()
}

// Prompts renders the four prompt sections.
func Prompts(s *pipeline.Suite) string {
	var b strings.Builder
	b.WriteString("# Prompts\n")
	for _, k := range types.SectionKinds {
		sec := s.Section(k)
		fmt.Fprintf(&b, "\n## %s\n\n", sec.Title)
		if sec.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", sec.Description)
		}
		fmt.Fprintf(&b, "```text\n%s\n```\n", strings.TrimSpace(sec.Prompt))
		if sec.UsageGuide != "" {
			fmt.Fprintf(&b, "\n**How to use:** %s\n", sec.UsageGuide)
		}
	}
	return b.String()
}

func orUnnamed(s string) string {
	if s == "" {
		return "Untitled Project"
	}
	return s
}

// Renderer converts Markdown pages into standalone HTML.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

type pageData struct {
	Title   string
	Content template.HTML
	Nav     []navLink
}

type navLink struct {
	Href, Label string
	Active      bool
}

// NewRenderer creates a Renderer with GFM and syntax highlighting.
func NewRenderer() (*Renderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &Renderer{md: md, tmpl: tmpl}, nil
}

// Convert renders Markdown to an HTML fragment.
func (r *Renderer) Convert(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return rewriteMDLinks(buf.String()), nil
}

// WritePage renders one Markdown page into dir and returns its path.
func (r *Renderer) WritePage(dir, name, markdown string, pages []string) (string, error) {
	body, err := r.Convert(markdown)
	if err != nil {
		return "", err
	}
	data := pageData{Title: extractTitle(markdown, name), Content: template.HTML(body)}
	for _, p := range pages {
		data.Nav = append(data.Nav, navLink{Href: mdToHTML(p), Label: navLabel(p), Active: p == name})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing page template: %w", err)
	}
	out := filepath.Join(dir, mdToHTML(name))
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func mdToHTML(name string) string {
	return strings.TrimSuffix(name, ".md") + ".html"
}

func navLabel(name string) string {
	label := strings.ReplaceAll(strings.TrimSuffix(name, ".md"), "-", " ")
	if label == "" {
		return name
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// rewriteMDLinks points relative .md links at their .html rendering.
func rewriteMDLinks(h string) string {
	return mdLinkPattern.ReplaceAllString(h, `href="$1.html"`)
}

// extractTitle returns the first H1 of markdown, or the file name.
func extractTitle(markdown, name string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return navLabel(name)
}
