// Package export turns a brief into downloadable documents and share links.
// Every format goes through the same inline rendering used on screen, so links and
// images come out the same everywhere.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/inline"
)

// Format is an export document format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatText     Format = "txt"
)

// ParseFormat validates a format name. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q (want md, html or txt)", apperr.ErrInvalidInput, s)
	}
}

// Document is a brief ready for export.
type Document struct {
	ProjectName string
	Sections    []brief.Section
}

// Result is a rendered export.
type Result struct {
	ContentType string
	Filename    string
	Body        []byte
}

var md = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))

var pageTmpl = template.Must(template.New("brief").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))

// Render produces doc in format f.
func Render(doc Document, f Format) (*Result, error) {
	base := fileBase(doc.ProjectName)
	switch f {
	case FormatMarkdown:
		return &Result{
			ContentType: "text/markdown; charset=utf-8",
			Filename:    base + ".md",
			Body:        []byte(Markdown(doc)),
		}, nil
	case FormatHTML:
		body, err := HTML(doc)
		if err != nil {
			return nil, err
		}
		return &Result{
			ContentType: "text/html; charset=utf-8",
			Filename:    base + ".html",
			Body:        body,
		}, nil
	case FormatText:
		return &Result{
			ContentType: "text/plain; charset=utf-8",
			Filename:    base + ".txt",
			Body:        []byte(Text(doc)),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", apperr.ErrInvalidInput, f)
	}
}

// Title is the document heading.
func Title(doc Document) string {
	if doc.ProjectName == "" {
		return "Project Brief"
	}
	return "Project Brief: " + doc.ProjectName
}

// Markdown renders every section as a level-two heading followed by its content,
// with links and images as Markdown markup.
func Markdown(doc Document) string {
	var sb strings.Builder
	sb.WriteString("# " + Title(doc) + "\n")
	for _, s := range doc.Sections {
		sb.WriteString("\n## " + strings.TrimSuffix(s.Title, ":") + "\n\n")
		for _, n := range inline.Render(s.Content) {
			switch n.Kind {
			case inline.KindLink:
				fmt.Fprintf(&sb, "[%s](%s)", n.Label, n.URL)
			case inline.KindImage:
				fmt.Fprintf(&sb, "![](%s)", n.URL)
			default:
				sb.WriteString(n.Text)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTML renders the Markdown export to a standalone page.
func HTML(doc Document) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(sectionsMarkdown(doc)), &body); err != nil {
		return nil, fmt.Errorf("export: convert markdown: %w", err)
	}
	var out bytes.Buffer
	err := pageTmpl.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{Title(doc), template.HTML(body.String())})
	if err != nil {
		return nil, fmt.Errorf("export: render page: %w", err)
	}
	return out.Bytes(), nil
}

// sectionsMarkdown is Markdown without the top heading, which the page template owns.
func sectionsMarkdown(doc Document) string {
	full := Markdown(doc)
	_, rest, _ := strings.Cut(full, "\n")
	return rest
}

// Text renders a plain-text document: heading lines stay as they are, links
// become "label (url)" and images their bare URL.
func Text(doc Document) string {
	var sb strings.Builder
	sb.WriteString(Title(doc) + "\n")
	for _, s := range doc.Sections {
		sb.WriteString("\n" + s.Title + "\n")
		for _, n := range inline.Render(s.Content) {
			switch n.Kind {
			case inline.KindLink:
				if n.Label == "" || n.Label == n.URL {
					sb.WriteString(n.URL)
				} else {
					fmt.Fprintf(&sb, "%s (%s)", n.Label, n.URL)
				}
			case inline.KindImage:
				sb.WriteString(n.URL)
			default:
				sb.WriteString(n.Text)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// MailtoLink returns a mailto: URL with the brief text as the message body.
func MailtoLink(text string) string {
	body := "Here is the project brief:\n\n" + text
	return "mailto:?subject=" + escape("Project Brief") + "&body=" + escape(body)
}

// escape percent-encodes s the way mail clients expect, with %20 for spaces.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func fileBase(name string) string {
	if base := brief.Slug(name); base != "" {
		return base + "-brief"
	}
	return "project-brief"
}
