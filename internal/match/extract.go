package match

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")

	xmlTag        = regexp.MustCompile(`<[^>]+>`)
	paragraphEnds = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	blankRuns     = regexp.MustCompile(`[ \t]+`)
)

// ExtractText turns a downloaded document into plain text. It never fails:
// unreadable documents and pages contribute nothing.
func ExtractText(data []byte, contentType string, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch detectKind(data, contentType) {
	case mimeDOCX:
		text, err := extractDOCXText(data)
		if err != nil {
			logger.Warn("docx extraction failed", zap.Error(err))
			return ""
		}
		return text
	default:
		return extractPDFText(data, logger)
	}
}

func detectKind(data []byte, contentType string) string {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return mimePDF
	case bytes.HasPrefix(data, zipMagic), strings.HasPrefix(contentType, mimeDOCX):
		return mimeDOCX
	default:
		return mimePDF
	}
}

func extractPDFText(data []byte, logger *zap.Logger) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("pdf reader panicked", zap.Any("panic", r))
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Warn("open pdf failed", zap.Error(err))
		return ""
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		content, err := pageText(reader, i)
		if err != nil {
			logger.Debug("skip unreadable page", zap.Int("page", i), zap.Error(err))
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(content)
	}
	return builder.String()
}

func pageText(reader *pdf.Reader, index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", index, r)
		}
	}()

	page := reader.Page(index)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func extractDOCXText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	raw := doc.Editable().GetContent()
	raw = paragraphEnds.ReplaceAllString(raw, "\n")
	raw = xmlTag.ReplaceAllString(raw, "")

	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(blankRuns.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return unescapeXML(strings.Join(kept, "\n")), nil
}

var xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

func unescapeXML(s string) string { return xmlEntities.Replace(s) }
