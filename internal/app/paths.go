package app

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// formatFor picks the output format from an explicit setting or, failing
// that, the output file extension. Markdown is the default.
func formatFor(format, outPath string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return "markdown"
	case "html", "pdf", "json":
		return strings.ToLower(strings.TrimSpace(format))
	}
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".html", ".htm":
		return "html"
	case ".pdf":
		return "pdf"
	case ".json":
		return "json"
	}
	return "markdown"
}

var formatExt = map[string]string{"markdown": ".md", "html": ".html", "pdf": ".pdf", "json": ".json"}

// deriveOutputPath names a report after its input document and the date,
// next to the input: "lease-analysis-2026-01-02.md". Reports for URLs go to
// the working directory and are named after host and last path segment.
func deriveOutputPath(inputPath, format string, now time.Time) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if u, err := url.Parse(inputPath); err == nil && u.Host != "" {
		dir = "."
		base = u.Hostname()
		if seg := path.Base(u.Path); seg != "/" && seg != "." {
			base += "-" + strings.TrimSuffix(seg, path.Ext(seg))
		}
	}
	name := slugify(base) + "-analysis-" + now.Format("2006-01-02") + formatExt[formatFor(format, "")]
	return filepath.Join(dir, name)
}

func slugify(s string) string {
	s = slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "document"
	}
	return s
}
