package services

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
)

// Supported resume formats, identified by filename extension.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// FormatFromFilename returns the substring after the last '.' of the
// filename, lower-cased. A name without a dot is returned whole.
func FormatFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	if idx := strings.LastIndex(lower, "."); idx >= 0 {
		return lower[idx+1:]
	}
	return lower
}

// IsSupportedFormat reports whether the filename carries an extension the
// extractor can handle.
func IsSupportedFormat(filename string) bool {
	format := FormatFromFilename(filename)
	return format == FormatPDF || format == FormatDOCX
}

// SupportedFormats lists the accepted extensions for error messages.
func SupportedFormats() []string {
	return []string{FormatPDF, FormatDOCX}
}

// Extract implements TextExtractor. Extraction is synchronous, single-pass
// and literal: paragraph/page breaks become newlines, nothing else is
// normalized beyond trimming the ends.
func (e *textExtractor) Extract(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch format := FormatFromFilename(filename); format {
	case FormatPDF:
		text, err = extractPDF(data)
		if err != nil {
			return "", apperrors.Wrap(apperrors.KindExtraction,
				fmt.Sprintf("Error extracting PDF: %v", err), err)
		}
	case FormatDOCX:
		text, err = extractDOCX(data)
		if err != nil {
			return "", apperrors.Wrap(apperrors.KindExtraction,
				fmt.Sprintf("Error extracting DOCX: %v", err), err)
		}
	default:
		return "", apperrors.New(apperrors.KindUnsupportedFormat,
			fmt.Sprintf("Unsupported file format: %s. Only PDF and DOCX are supported.", format))
	}

	return strings.TrimSpace(text), nil
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed files instead of returning
	// an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return docxParagraphs(doc.Editable().GetContent())
}

// docxParagraphs pulls the visible text out of a document.xml payload:
// w:t runs grouped per w:p paragraph, tabs and line breaks preserved,
// paragraphs joined with newlines.
func docxParagraphs(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		paragraphs []string
		paragraph  strings.Builder
		inText     bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				paragraph.WriteString("\t")
			case "br", "cr":
				paragraph.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, paragraph.String())
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
