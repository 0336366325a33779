// Package extract converts uploaded documents into plain text for prompt
// injection. Dispatch is on the declared file extension, not on sniffed
// content.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"
	docx "github.com/fumiama/go-docx"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its plain text. The extension is
// taken from filename (the name declared at upload time), lower-cased.
// Unsupported extensions and read/parse failures return an error; callers are
// expected to skip the document rather than abort.
func (e *Extractor) Extract(path, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return readPDF(path)
	case ".doc", ".docx":
		return readDocx(path)
	case ".txt", ".md", ".csv", ".json", ".xml":
		return readText(path)
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
}

func readPDF(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func readDocx(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parsing docx: %w", err)
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			sb.WriteString(p.String())
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	// Tolerate invalid encodings instead of failing the whole document.
	return strings.ToValidUTF8(string(raw), "�"), nil
}
