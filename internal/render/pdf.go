package render

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var (
	boldRe     = regexp.MustCompile(`(^|[^\\])\*\*`)
	mdEscapeRe = regexp.MustCompile("\\\\([\\\\`*_\\[\\]<>#|+-])")
)

// WritePDF renders the report to a PDF file at outPath.
func WritePDF(r Report, outPath string) error {
	pdf := markdownPDF(Markdown(r))
	return pdf.OutputFileAndClose(outPath)
}

// PDF renders the report as PDF into w.
func PDF(r Report, w io.Writer) error {
	pdf := markdownPDF(Markdown(r))
	return pdf.Output(w)
}

// markdownPDF lays out the Markdown produced by this package: headings,
// bullet lines and paragraphs. It is not a general Markdown renderer.
func markdownPDF(markdown string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(3)
		case s == "---":
			y := pdf.GetY() + 2
			pdf.Line(10, y, 200, y)
			pdf.Ln(5)
		case strings.HasPrefix(s, "#"):
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := plainText(s[i:])
			if text == "" {
				continue
			}
			size := 16.0
			if i >= 2 {
				size = 13.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(s, "- "):
			pdf.SetX(14)
			pdf.MultiCell(0, 5, tr("• "+plainText(s[2:])), "", "L", false)
		default:
			pdf.MultiCell(0, 5, tr(plainText(s)), "", "L", false)
		}
	}
	return pdf
}

// plainText drops bold markers and backslash escapes.
func plainText(s string) string {
	s = boldRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(mdEscapeRe.ReplaceAllString(s, "$1"))
}
