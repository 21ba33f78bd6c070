package services

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"tutor-rag-platform/models"
)

// DocxExtractor reads DOCX files and rebuilds the heading hierarchy into
// ordered sections. Tables are appended as their own sections in pipe-
// delimited text form.
type DocxExtractor struct{}

func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

var (
	headingStyleRegex  = regexp.MustCompile(`Heading\s*(\d+)`)
	numberedTitleRegex = regexp.MustCompile(`^\d+\.?\d*\s+`)
)

// docxParagraph is one paragraph from word/document.xml with its style.
type docxParagraph struct {
	style string
	text  string
}

type docxTable struct {
	rows [][]string
}

func (e *DocxExtractor) Extract(path string) (*models.ExtractedDocument, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer reader.Close()

	var docXML io.ReadCloser
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("docx has no word/document.xml")
	}
	defer docXML.Close()

	paragraphs, tables, err := parseDocumentXML(docXML)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(path)
	sections := buildSections(paragraphs)

	for _, table := range tables {
		text := tableToText(table)
		if text == "" {
			continue
		}
		sections = append(sections, models.Section{
			Title:    "Table",
			Content:  text,
			Level:    3,
			HasTable: true,
		})
	}

	var contents []string
	for _, s := range sections {
		contents = append(contents, s.Content)
	}
	fullText := strings.Join(contents, "\n\n")

	return &models.ExtractedDocument{
		Filename:      filename,
		ChapterNumber: extractChapterNumber(filename),
		Sections:      sections,
		FullText:      fullText,
		Metadata:      buildDocumentMetadata(sections, fullText, ""),
	}, nil
}

// parseDocumentXML walks the WordprocessingML token stream collecting
// paragraph text with styles, and table cell text row by row.
func parseDocumentXML(r io.Reader) ([]docxParagraph, []docxTable, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []docxParagraph
	var tables []docxTable

	var tableDepth int
	var curTable *docxTable
	var curRow []string
	var curCell strings.Builder

	var inParagraph bool
	var curStyle string
	var curText strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("document.xml parse failed: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					curTable = &docxTable{}
				}
			case "tr":
				if tableDepth == 1 {
					curRow = nil
				}
			case "tc":
				if tableDepth == 1 {
					curCell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inParagraph = true
					curStyle = ""
					curText.Reset()
				}
			case "pStyle":
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							curStyle = attr.Value
						}
					}
				}
			case "t":
				var content string
				if err := decoder.DecodeElement(&content, &t); err != nil {
					return nil, nil, fmt.Errorf("document.xml text decode failed: %w", err)
				}
				if tableDepth > 0 {
					curCell.WriteString(content)
				} else if inParagraph {
					curText.WriteString(content)
				}
			case "tab":
				if inParagraph && tableDepth == 0 {
					curText.WriteString("\t")
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 1 && curTable != nil {
					tables = append(tables, *curTable)
					curTable = nil
				}
				tableDepth--
			case "tr":
				if tableDepth == 1 && curTable != nil {
					curTable.rows = append(curTable.rows, curRow)
					curRow = nil
				}
			case "tc":
				if tableDepth == 1 {
					curRow = append(curRow, strings.TrimSpace(curCell.String()))
				}
			case "p":
				if tableDepth == 0 && inParagraph {
					inParagraph = false
					text := strings.TrimSpace(curText.String())
					if text != "" {
						paragraphs = append(paragraphs, docxParagraph{style: curStyle, text: text})
					}
				}
			}
		}
	}

	return paragraphs, tables, nil
}

// buildSections groups paragraphs under the nearest preceding heading.
// Content before the first heading lands in an "Introduction" section.
func buildSections(paragraphs []docxParagraph) []models.Section {
	var sections []models.Section
	title := "Introduction"
	level := 1
	var content []string

	flush := func() {
		if len(content) == 0 {
			return
		}
		body := strings.Join(content, "\n")
		sections = append(sections, models.Section{
			Title:      title,
			Content:    body,
			Level:      level,
			HasFormula: HasFormula(body),
		})
	}

	for _, para := range paragraphs {
		if strings.Contains(para.style, "Heading") || isHeadingText(para.text) {
			flush()
			title = para.text
			content = nil
			level = headingLevel(para.style)
			continue
		}
		content = append(content, para.text)
	}
	flush()

	return sections
}

// isHeadingText is the fallback heading heuristic for unstyled documents:
// short text that is all caps or starts with a section number.
func isHeadingText(text string) bool {
	return len(text) < 100 &&
		(text == strings.ToUpper(text) && strings.ToLower(text) != text ||
			numberedTitleRegex.MatchString(text))
}

func headingLevel(style string) int {
	m := headingStyleRegex.FindStringSubmatch(style)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n
}

func tableToText(table docxTable) string {
	var lines []string
	for _, row := range table.rows {
		hasContent := false
		for _, cell := range row {
			if cell != "" {
				hasContent = true
				break
			}
		}
		if hasContent {
			lines = append(lines, strings.Join(row, " | "))
		}
	}
	return strings.Join(lines, "\n")
}
