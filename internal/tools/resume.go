package tools

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var ErrUnsupportedResume = errors.New("unsupported resume file type")

// MimeFromFilename maps a resume file extension to the MIME types
// ExtractResumeText understands.
func MimeFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDocx
	case ".txt", ".md":
		return MimeText
	default:
		return ""
	}
}

// ExtractResumeText returns the plain text of an uploaded resume.
func ExtractResumeText(mime string, data []byte) (string, error) {
	switch mime {
	case MimeText:
		return string(data), nil
	case MimePDF:
		return extractPDFText(bytes.NewReader(data))
	case MimeDocx:
		return extractDocxText(bytes.NewReader(data))
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedResume, mime)
	}
}

// ExtractResumeFile reads a resume from disk. PDFs are opened in place;
// other types are read fully and handed to ExtractResumeText.
func ExtractResumeFile(path string) (string, error) {
	mime := MimeFromFilename(path)
	if mime == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedResume, filepath.Base(path))
	}
	if mime == MimePDF {
		return ExtractPDFFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}
	return ExtractResumeText(mime, data)
}

// ExtractPDFFile joins the text of every page with newlines.
func ExtractPDFFile(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()
	return pagesText(r)
}

func extractPDFText(reader *bytes.Reader) (string, error) {
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	return pagesText(pdfReader)
}

func pagesText(r *pdf.Reader) (string, error) {
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

func extractDocxText(reader io.Reader) (string, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", err
	}
	r := bytes.NewReader(buf.Bytes())

	doc, err := docx.ReadDocxFromMemory(r, int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent()), nil
}

var (
	xmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	blankSpaceRe = regexp.MustCompile(`[ \t]+`)
)

// docxPlainText turns document.xml into text, one paragraph per line.
func docxPlainText(xml string) string {
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	text := html.UnescapeString(xmlTagRe.ReplaceAllString(xml, ""))

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(blankSpaceRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
