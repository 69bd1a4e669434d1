// Package inline turns section content into an ordered sequence of text, link and
// image nodes. It is the single rendering rule shared by the HTTP views, the MCP
// tools and the document exporter.
package inline

import (
	"regexp"

	"github.com/bryanpdl/briefly/internal/brief"
)

// In imageRe, group 1 is the image URL; the trailing group only asserts a boundary.
var (
	linkRe  = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	imageRe = regexp.MustCompile(`(?i)(https?://[^\s<>\[\](),]+?\.(?:jpe?g|png|gif|bmp))(?:[.,;:!?]*(?:\s|$)|[)\]"',])`)
)

// Kind identifies a node type.
type Kind string

// Node kinds.
const (
	KindText  Kind = "text"
	KindLink  Kind = "link"
	KindImage Kind = "image"
)

// Node is one renderable piece of section content.
type Node struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text,omitempty"`
	Label string `json:"label,omitempty"`
	URL   string `json:"url,omitempty"`
}

// RenderedSection pairs a section title with its rendered content.
type RenderedSection struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
}

// Render scans content for markdown links first, then for bare image URLs in the
// remaining text. An image URL used as a link target stays a link.
func Render(content string) []Node {
	nodes := []Node{}
	last := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(content, -1) {
		nodes = appendText(nodes, content[last:m[0]])
		nodes = append(nodes, Node{
			Kind:  KindLink,
			Label: content[m[2]:m[3]],
			URL:   content[m[4]:m[5]],
		})
		last = m[1]
	}
	return appendText(nodes, content[last:])
}

// RenderSections renders every section in order.
func RenderSections(sections []brief.Section) []RenderedSection {
	out := make([]RenderedSection, len(sections))
	for i, s := range sections {
		out[i] = RenderedSection{Title: s.Title, Nodes: Render(s.Content)}
	}
	return out
}

// Images returns the URLs of all image nodes in order.
func Images(nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		if n.Kind == KindImage {
			out = append(out, n.URL)
		}
	}
	return out
}

// appendText splits a link-free segment into text and image nodes.
func appendText(nodes []Node, segment string) []Node {
	if segment == "" {
		return nodes
	}
	last := 0
	for _, m := range imageRe.FindAllStringSubmatchIndex(segment, -1) {
		if m[2] > last {
			nodes = append(nodes, Node{Kind: KindText, Text: segment[last:m[2]]})
		}
		nodes = append(nodes, Node{Kind: KindImage, URL: segment[m[2]:m[3]]})
		last = m[3]
	}
	if last < len(segment) {
		nodes = append(nodes, Node{Kind: KindText, Text: segment[last:]})
	}
	return nodes
}
