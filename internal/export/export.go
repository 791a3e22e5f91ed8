package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taleweaver/internal/game"
	"taleweaver/internal/game/narration"
)

type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

func (f Format) Extension() string {
	if f == FormatPDF {
		return ".pdf"
	}
	return ".txt"
}

// Document is a saved story laid out for reading.
type Document struct {
	Title string
	Meta  string
	Body  string
	Path  string
}

func NewDocument(s *game.NarrativeState) Document {
	return Document{
		Title: title(s),
		Meta:  fmt.Sprintf("Story %s | %d choices | %d words", s.StoryID, len(s.ChoicesMade), s.WordCount),
		Body:  s.CurrentText,
		Path:  pathLine(s.ChoicesMade),
	}
}

func Write(w io.Writer, f Format, s *game.NarrativeState) error {
	if f == FormatPDF {
		return PDF(w, s)
	}
	return Text(w, s)
}

func Text(w io.Writer, s *game.NarrativeState) error {
	doc := NewDocument(s)

	var sb strings.Builder
	sb.WriteString(doc.Title + "\n")
	sb.WriteString(strings.Repeat("=", len(doc.Title)) + "\n")
	sb.WriteString(doc.Meta + "\n\n")
	sb.WriteString(doc.Body + "\n")
	if doc.Path != "" {
		sb.WriteString("\n" + doc.Path + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func PDF(w io.Writer, s *game.NarrativeState) error {
	doc := NewDocument(s)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor("Tale Weaver", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, tr(doc.Title), "", "C", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(0, 6, tr(doc.Meta), "", "C", false)
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	for _, para := range strings.Split(doc.Body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if strings.HasPrefix(para, "[") && strings.HasSuffix(para, "]") {
			pdf.SetFont("Times", "I", 11)
		} else {
			pdf.SetFont("Times", "", 12)
		}
		pdf.MultiCell(0, 6, tr(para), "", "J", false)
		pdf.Ln(3)
	}

	if doc.Path != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, tr(doc.Path), "", "L", false)
	}

	return pdf.Output(w)
}

func title(s *game.NarrativeState) string {
	genre := strings.TrimSpace(s.Genre)
	if genre == "" {
		genre = "Untitled"
	}
	if name := strings.TrimSpace(s.CharacterName); name != "" {
		return fmt.Sprintf("%s Story: %s", genre, name)
	}
	return genre + " Story"
}

func pathLine(choices []string) string {
	if len(choices) == 0 {
		return ""
	}
	return "Your path: " + narration.JoinReadable(choices) + "."
}
