package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/jonathan/candidate-profiler/internal/types"
)

// Format is the on-disk format of a candidate document
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// DetectFormat picks a format from the file extension; unknown extensions are plain text
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatText
	}
}

// Document pairs a RawDocument with metadata about where it came from
type Document struct {
	Raw      types.RawDocument
	Metadata *Metadata
}

// LoadDocument reads a file and extracts its text for the given source
func LoadDocument(path string, source types.Source) (*Document, error) {
	format := DetectFormat(path)

	var (
		text  string
		pages int
		err   error
	)
	switch format {
	case FormatPDF:
		text, pages, err = ExtractPDFText(path)
	case FormatHTML:
		var content []byte
		content, err = readFile(path)
		if err == nil {
			text, err = ExtractHTMLText(string(content))
		}
	default:
		var content []byte
		content, err = readFile(path)
		text = string(content)
	}
	if err != nil {
		return nil, withPath(err, path)
	}
	if !utf8.ValidString(text) {
		return nil, &InputError{Path: path, Message: "text is not valid UTF-8"}
	}

	metadata := NewMetadata(text, source, format)
	metadata.Path = path
	metadata.PageCount = pages

	return &Document{
		Raw:      types.RawDocument{Source: source, Text: text},
		Metadata: metadata,
	}, nil
}

func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &InputError{Message: "file not found", Cause: err}
		}
		return nil, &InputError{Message: "failed to read file", Cause: err}
	}
	return content, nil
}

func withPath(err error, path string) error {
	if inputErr, ok := err.(*InputError); ok && inputErr.Path == "" {
		inputErr.Path = path
	}
	return err
}

// ExtractPDFText returns the plain text of every page and the page count.
// Pages that fail to decode are skipped.
func ExtractPDFText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, &InputError{Path: path, Message: "failed to open PDF", Cause: err}
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		sb.WriteString(text)
		// Page boundary becomes a paragraph gap for the normalizer
		sb.WriteString("\f")
	}

	return sb.String(), totalPage, nil
}

// ExtractHTMLText reduces an already-fetched profile page or snippet to block text.
func ExtractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &InputError{Message: "failed to parse HTML", Cause: err}
	}

	doc.Find("script, style, nav, header, footer, iframe, noscript, svg").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, dt, dd").Each(func(_ int, s *goquery.Selection) {
		// Nested list items are visited on their own
		if s.Is("li") && s.Find("li").Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		// Headings open a new paragraph
		if s.Is("h1, h2, h3, h4, h5, h6") && len(blocks) > 0 {
			blocks = append(blocks, "")
		}
		blocks = append(blocks, text)
	})
	if len(blocks) > 0 {
		return strings.Join(blocks, "\n"), nil
	}

	return strings.TrimSpace(doc.Find("body").Text()), nil
}
