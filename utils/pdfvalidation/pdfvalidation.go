package pdfvalidation

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFLimits defines the validation limits for PDF uploads
type PDFLimits struct {
	MaxFileSizeMB    int
	MaxPages         int
	DocumentTypeName string // For error messages
}

// Limits applied to course material uploaded through the admin panel
var CourseMaterialLimits = PDFLimits{
	MaxFileSizeMB:    100,
	MaxPages:         1000,
	DocumentTypeName: "course material",
}

// ValidationResult contains the result of PDF validation
type ValidationResult struct {
	Valid     bool
	PageCount int
	FileSize  int64
	Error     string
}

// Validate checks PDF content against the given limits. A malformed document
// is reported through the result, not as an error; errors are reserved for
// I/O problems.
func Validate(content []byte, limits PDFLimits) *ValidationResult {
	result := &ValidationResult{FileSize: int64(len(content))}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if result.FileSize > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result
	}

	pageCount, err := pageCount(content)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
		return result
	}
	result.PageCount = pageCount

	if pageCount == 0 {
		result.Error = "PDF has no pages"
		return result
	}
	if pageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF has %d pages, which exceeds the maximum of %d pages for %s",
			pageCount, limits.MaxPages, limits.DocumentTypeName)
		return result
	}

	result.Valid = true
	return result
}

// trimTrailer removes trailing garbage after the last %%EOF marker; some
// generators append junk the parser chokes on
func trimTrailer(content []byte) []byte {
	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	end := lastEOF + len(eofMarker)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}

func pageCount(content []byte) (int, error) {
	content = trimTrailer(content)
	reader := bytes.NewReader(content)

	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return pdfReader.NumPage(), nil
}
