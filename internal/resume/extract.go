// Package resume converts uploaded resume documents into plain text and
// runs the skills/career-path analysis pipeline over them.
package resume

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported document MIME types.
const (
	MIMEPDF   = "application/pdf"
	MIMEDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPlain = "text/plain"
)

// Supported reports whether the declared MIME type is an accepted upload
// format. Uploads are restricted to the two document formats; plain text is
// only an internal extraction passthrough.
func Supported(mime string) bool {
	switch mime {
	case MIMEPDF, MIMEDocx:
		return true
	default:
		return false
	}
}

// ExtractText converts a document to plain text. Unsupported declared types
// and parse failures both yield an empty string: downstream treats "no
// text" as "no skills found", never as a hard failure.
func ExtractText(mime string, data []byte) string {
	switch mime {
	case MIMEPlain:
		return string(data)
	case MIMEPDF:
		text, err := extractPDFText(data)
		if err != nil {
			slog.Warn("pdf extraction failed", "error", err)
			return ""
		}
		return text
	case MIMEDocx:
		text, err := extractDocxText(data)
		if err != nil {
			slog.Warn("docx extraction failed", "error", err)
			return ""
		}
		return text
	default:
		return ""
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			slog.Debug("failed to close docx reader", "error", closeErr)
		}
	}()

	return doc.Editable().GetContent(), nil
}
