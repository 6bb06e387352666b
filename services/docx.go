package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"docqa/models"
)

// loadDOCX extracts the document body as a single segment. DOCX has no fixed
// pagination, so no page number is recorded. Title and author come from the
// package's core properties when present.
func loadDOCX(data []byte, origin string) ([]models.Segment, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid docx archive", ErrUnsupportedFormat, origin)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", origin, err)
	}

	title, author := extractCoreProperties(reader)
	return []models.Segment{{
		Text: text,
		Metadata: models.Metadata{
			Source: origin,
			Title:  title,
			Author: author,
		},
	}}, nil
}

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

func extractDocumentText(reader *zip.Reader) (string, error) {
	content, err := readZipEntry(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", nil
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	var sb strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, t := range run.Text {
				sb.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// coreXML mirrors the parts of docProps/core.xml we care about.
type coreXML struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

func extractCoreProperties(reader *zip.Reader) (title, author string) {
	content, err := readZipEntry(reader, "docProps/core.xml")
	if err != nil || content == nil {
		return "", ""
	}
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return "", ""
	}
	return strings.TrimSpace(core.Title), strings.TrimSpace(core.Creator)
}

func readZipEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return content, nil
	}
	return nil, nil
}
