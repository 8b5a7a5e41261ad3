package parsing

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Essay is the extracted text of a submitted essay plus basic statistics.
type Essay struct {
	Text           string   `json:"text"`
	WordCount      int      `json:"word_count"`
	ParagraphCount int      `json:"paragraph_count"`
	Filename       string   `json:"filename,omitempty"`
	FileFormat     string   `json:"file_format"`
	ParsingNotes   []string `json:"parsing_notes,omitempty"`
}

var (
	multiBlank  = regexp.MustCompile(`\n{3,}`)
	trailingWS  = regexp.MustCompile(`[ \t]+\n`)
	headingMark = regexp.MustCompile(`(?m)^#{1,6}\s+`)
)

// ParseEssay extracts plain text from an uploaded essay. Supported formats:
// plain text, markdown, PDF, and DOCX. Format is resolved from the file
// extension first, the detected MIME type second.
func ParseEssay(content []byte, filename string) (Essay, error) {
	format := detectEssayFormat(content, filename)
	var notes []string

	var text string
	switch format {
	case "pdf":
		extracted, err := extractPDFText(content)
		if err != nil {
			return Essay{}, fmt.Errorf("parse pdf essay: %w", err)
		}
		text = extracted
		notes = append(notes, "Extracted from PDF format")
	case "docx":
		extracted, err := extractDOCXText(content)
		if err != nil {
			return Essay{}, fmt.Errorf("parse docx essay: %w", err)
		}
		text = extracted
		notes = append(notes, "Extracted from DOCX format")
	case "md":
		text = headingMark.ReplaceAllString(string(content), "")
		notes = append(notes, "Parsed as Markdown")
	default:
		format = "txt"
		text = string(content)
	}

	text = cleanText(text)

	paragraphs := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}

	return Essay{
		Text:           text,
		WordCount:      len(strings.Fields(text)),
		ParagraphCount: paragraphs,
		Filename:       filename,
		FileFormat:     format,
		ParsingNotes:   notes,
	}, nil
}

func detectEssayFormat(content []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".docx", ".doc":
		return "docx"
	case ".md", ".markdown":
		return "md"
	case ".txt":
		return "txt"
	}

	mime := mimetype.Detect(content)
	switch {
	case mime.Is("application/pdf"):
		return "pdf"
	case mime.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return "docx"
	case strings.HasPrefix(mime.String(), "text/"):
		return "txt"
	}

	return "txt"
}

func extractPDFText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}

// extractDOCXText pulls paragraph text out of the word/document.xml entry.
// A DOCX file is a zip archive of XML parts; the document body keeps its
// visible text in w:t runs grouped under w:p paragraphs.
func extractDOCXText(content []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var document io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open document part: %w", err)
			}
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("docx has no word/document.xml part")
	}
	defer document.Close()

	decoder := xml.NewDecoder(document)
	var buf strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document part: %w", err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "br", "cr":
				buf.WriteString("\n")
			case "tab":
				buf.WriteString("\t")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(el)
			}
		}
	}

	return buf.String(), nil
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = trailingWS.ReplaceAllString(text, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
