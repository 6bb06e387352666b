package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/documentloaders"
	"golang.org/x/net/html"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"docqa/models"
)

func init() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY"))
	if err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. PDF processing will fail.\n", err)
	}
}

// DocType is the closed set of document formats the loader understands.
// Classification happens once, up front; unknown inputs are rejected with
// ErrUnsupportedFormat instead of falling through.
type DocType int

const (
	DocTypePDF DocType = iota
	DocTypeDOCX
	DocTypeHTML
)

// InputDescriptor identifies one document to load: either a local file path
// or a remote URL, with an optionally declared MIME type.
type InputDescriptor struct {
	Path        string
	URL         string
	ContentType string
}

// Origin returns the provenance identifier recorded for the document. For a
// remote input that is the URL itself, so attribution survives any temporary
// local copies.
func (d InputDescriptor) Origin() string {
	if d.URL != "" {
		return d.URL
	}
	return d.Path
}

// DocumentSource converts a raw input into an ordered sequence of text
// segments with provenance metadata.
type DocumentSource interface {
	Load(ctx context.Context, in InputDescriptor) ([]models.Segment, error)
}

type documentLoader struct {
	httpClient *http.Client
}

// NewDocumentLoader creates a loader. The client's timeout bounds remote
// fetches; exceeding it surfaces as ErrUnreachableSource.
func NewDocumentLoader(client *http.Client) DocumentSource {
	return &documentLoader{httpClient: client}
}

func (l *documentLoader) Load(ctx context.Context, in InputDescriptor) ([]models.Segment, error) {
	data, contentType, err := l.readInput(ctx, in)
	if err != nil {
		return nil, err
	}

	docType, err := resolveDocType(contentType, in.Origin())
	if err != nil {
		return nil, err
	}

	origin := in.Origin()
	switch docType {
	case DocTypePDF:
		return loadPDF(data, origin)
	case DocTypeDOCX:
		return loadDOCX(data, origin)
	case DocTypeHTML:
		return loadHTML(ctx, data, origin)
	default:
		return nil, fmt.Errorf("%w: unhandled document type %d", ErrUnsupportedFormat, docType)
	}
}

// readInput fetches the raw bytes and the best-known content type. The
// declared type on the descriptor wins over whatever the transport reports.
func (l *documentLoader) readInput(ctx context.Context, in InputDescriptor) ([]byte, string, error) {
	if in.URL != "" {
		data, fetchedType, err := l.fetchRemote(ctx, in.URL)
		if err != nil {
			return nil, "", err
		}
		if in.ContentType != "" {
			fetchedType = in.ContentType
		}
		return data, fetchedType, nil
	}

	data, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", in.Path, err)
	}
	return data, in.ContentType, nil
}

func (l *documentLoader) fetchRemote(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid url %s: %v", ErrUnreachableSource, rawURL, err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fetching %s: %v", ErrUnreachableSource, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s returned status %d", ErrUnreachableSource, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body of %s: %v", ErrUnreachableSource, rawURL, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// resolveDocType classifies the input by declared MIME type first, falling
// back to the file extension of the path or URL.
func resolveDocType(contentType, origin string) (DocType, error) {
	mime := contentType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "application/pdf":
		return DocTypePDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return DocTypeDOCX, nil
	case "text/html", "application/xhtml+xml":
		return DocTypeHTML, nil
	}

	switch strings.ToLower(originExt(origin)) {
	case ".pdf":
		return DocTypePDF, nil
	case ".docx":
		return DocTypeDOCX, nil
	case ".html", ".htm":
		return DocTypeHTML, nil
	}

	return 0, fmt.Errorf("%w: cannot classify %q (content type %q)", ErrUnsupportedFormat, origin, contentType)
}

func originExt(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Scheme != "" {
		return path.Ext(u.Path)
	}
	return filepath.Ext(origin)
}

// loadPDF extracts one segment per page, with title/author pulled from the
// document info dictionary when present.
func loadPDF(data []byte, origin string) ([]models.Segment, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", origin, err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages of %s: %w", origin, err)
	}

	var title, author string
	if info, err := pdfReader.GetPdfInfo(); err == nil && info != nil {
		if info.Title != nil {
			title = info.Title.Decoded()
		}
		if info.Author != nil {
			author = info.Author.Decoded()
		}
	}

	segments := make([]models.Segment, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("failed to get page %d of %s: %w", i, origin, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("failed to build extractor for page %d of %s: %w", i, origin, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d of %s: %w", i, origin, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pageNum := i
		totalPages := numPages
		segments = append(segments, models.Segment{
			Text: text,
			Metadata: models.Metadata{
				Source:     origin,
				Page:       &pageNum,
				Title:      title,
				Author:     author,
				TotalPages: &totalPages,
			},
		})
	}
	return segments, nil
}

// loadHTML produces a single segment with the page's rendered text content.
// No page number for web content.
func loadHTML(ctx context.Context, data []byte, origin string) ([]models.Segment, error) {
	docs, err := documentloaders.NewHTML(bytes.NewReader(data)).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html from %s: %w", origin, err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(doc.PageContent)
	}

	return []models.Segment{{
		Text: sb.String(),
		Metadata: models.Metadata{
			Source: origin,
			Title:  htmlTitle(data),
		},
	}}, nil
}

// htmlTitle returns the text of the document's first <title> element, or ""
// when there is none. Walking the parsed tree (rather than scanning the raw
// markup) ignores titles inside comments or CDATA.
func htmlTitle(data []byte) string {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(findTitle(root))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return sb.String()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}
