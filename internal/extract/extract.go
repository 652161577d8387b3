// Package extract turns uploaded documents into plain text for the producer.
// Text and Markdown files are read as-is; HTML (saved policy pages, or
// DOCX converted to HTML) is reduced to its readable content. Binary formats
// are left to external converters.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// MaxBytes is the largest document Load accepts.
const MaxBytes = 10 << 20

var (
	// ErrUnsupportedFormat is returned for extensions Load cannot read.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrTooLarge is returned for files over MaxBytes.
	ErrTooLarge = errors.New("document too large")
)

// Document is the plain-text content of one upload.
type Document struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format"`
	Text   string `json:"text"`
}

// Load reads path and extracts its text by extension.
func Load(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, err
	}
	if info.Size() > MaxBytes {
		return Document{}, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, info.Size())
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".markdown", ".text", ".html", ".htm":
	default:
		return Document{}, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	doc := FromBytes(raw, ext)
	doc.Name = filepath.Base(path)
	return doc, nil
}

// FromBytes extracts text from raw content of the given extension (".html",
// ".txt", ...). Unknown extensions are treated as plain text.
func FromBytes(raw []byte, ext string) Document {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		d := FromHTML(raw)
		d.Format = "html"
		return d
	default:
		return Document{Format: "text", Text: FromText(raw)}
	}
}

// FromText decodes plain text. Invalid UTF-8 is read as Windows-1252, the
// usual encoding of documents exported from older word processors.
func FromText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	s := string(raw)
	if !utf8.Valid(raw) {
		if dec, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
			s = string(dec)
		}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", "\n"))
}

// FromHTML extracts readable text from HTML, preferring <main> or <article>,
// falling back to <body>. Headings, paragraphs, list items and table rows
// keep their line structure; navigation, footers and consent banners are
// skipped.
func FromHTML(input []byte) Document {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Document{}
	}
	title := strings.TrimSpace(findTitle(node))
	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	var b strings.Builder
	if content != nil {
		collectText(&b, content, false)
	}
	return Document{Title: title, Text: normalizeWhitespace(b.String())}
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findFirst(c, tag); res != nil {
			return res
		}
	}
	return nil
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		if isBoilerplateContainer(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "form", "button":
			return
		case "pre":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "table", "blockquote":
			b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
		case "td", "th":
			b.WriteString(" ")
		}
	}
	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(data)
		}
		b.WriteString(data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "table", "blockquote":
			b.WriteString("\n\n")
		case "ul", "ol", "pre", "tr":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer reports whether the element looks like a cookie or
// consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, marker := range []string{"cookie", "consent", "gdpr"} {
			if strings.Contains(val, marker) {
				return true
			}
		}
	}
	return false
}

// normalizeWhitespace collapses space runs inside lines and keeps at most
// one blank line between blocks.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" || trimmed == "-" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
