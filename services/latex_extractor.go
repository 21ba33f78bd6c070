package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"tutor-rag-platform/models"
)

// LatexExtractor parses .tex math notes built from the QuickBox / QAPair
// template. QuickBox environments become formula summary sections; every
// QAPair becomes one question/answer section. Decorative LaTeX is stripped
// while math notation is preserved.
type LatexExtractor struct{}

func NewLatexExtractor() *LatexExtractor {
	return &LatexExtractor{}
}

var (
	documentBodyRegex  = regexp.MustCompile(`(?s)\\begin\{document\}(.*?)\\end\{document\}`)
	quickBoxRegex      = regexp.MustCompile(`(?s)\\begin\{QuickBox\}(.*?)\\end\{QuickBox\}`)
	qaPairRegex        = regexp.MustCompile(`(?s)\\begin\{QAPair\}\{(.*?)\}(.*?)\\end\{QAPair\}`)
	exerciseParenRegex = regexp.MustCompile(`\((.*?)\)`)
	exerciseCenterRegex = regexp.MustCompile(`(?si)\\begin\{center\}.*?\{(Exercise[^}]*)\}`)

	tcblowerRegex    = regexp.MustCompile(`\\tcblower`)
	stepRegex        = regexp.MustCompile(`\\Step\{(\d+)\}`)
	tikzRegex        = regexp.MustCompile(`(?s)\\begin\{tikzpicture\}.*?\\end\{tikzpicture\}`)
	textcolorRegex   = regexp.MustCompile(`\\textcolor\{[^}]*\}\{([^}]*)\}`)
	colorRegex       = regexp.MustCompile(`\\color\{[^}]*\}`)
	textbfRegex      = regexp.MustCompile(`\\textbf\{([^}]*)\}`)
	bfseriesRegex    = regexp.MustCompile(`\\bfseries\b`)
	emphRegex        = regexp.MustCompile(`\\emph\{([^}]*)\}`)
	spacingRegex     = regexp.MustCompile(`\\(?:par|medskip|bigskip|smallskip|noindent)\b`)
	lineBreakPtRegex = regexp.MustCompile(`\\\\\[[\d.]*pt\]`)
	lineBreakRegex   = regexp.MustCompile(`\\\\`)
	listBeginRegex   = regexp.MustCompile(`\\begin\{(?:itemize|enumerate)\}(?:\[[^\]]*\])?`)
	listEndRegex     = regexp.MustCompile(`\\end\{(?:itemize|enumerate)\}`)
	itemRegex        = regexp.MustCompile(`\\item\b`)
	strayBraceRegex  = regexp.MustCompile(`(^|[^\\a-zA-Z])\{([^{}$]*?)\}`)
	centerRegex      = regexp.MustCompile(`\\(?:begin|end)\{center\}`)
	fontSizeRegex    = regexp.MustCompile(`\\(?:LARGE|Large|large|normalsize|small|footnotesize|tiny)\b`)
	hrefRegex        = regexp.MustCompile(`\\href\{[^}]*\}\{([^}]*)\}`)
	layoutCmdRegex   = regexp.MustCompile(`\\(?:hfill|vfill|clearpage|newpage|pagebreak)\b`)
	commentLineRegex = regexp.MustCompile(`(?m)^%.*$`)
	blankLinesRegex  = regexp.MustCompile(`\n{3,}`)

	inlineMathRegex  = regexp.MustCompile(`\$.*?\$`)
	displayMathRegex = regexp.MustCompile(`(?s)\\\[.*?\\\]`)
	mathCmdRegex     = regexp.MustCompile(`\\frac\b|\\boxed\b|\\sqrt\b|\\begin\{aligned\}`)
)

func (e *LatexExtractor) Extract(path string) (*models.ExtractedDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tex file: %w", err)
	}

	filename := filepath.Base(path)
	content := string(raw)
	exerciseTitle := extractExerciseTitle(content, filename)
	body := documentBody(content)

	var sections []models.Section

	for _, m := range quickBoxRegex.FindAllStringSubmatch(body, -1) {
		cleaned := cleanLatex(m[1])
		if strings.TrimSpace(cleaned) == "" {
			continue
		}
		sections = append(sections, models.Section{
			Title:      "Formula Summary - " + exerciseTitle,
			Content:    cleaned,
			Level:      1,
			HasFormula: true,
		})
	}

	for _, m := range qaPairRegex.FindAllStringSubmatch(body, -1) {
		cleaned := cleanLatex(strings.TrimSpace(m[2]))
		if strings.TrimSpace(cleaned) == "" {
			continue
		}
		sections = append(sections, models.Section{
			Title:      strings.TrimSpace(m[1]),
			Content:    cleaned,
			Level:      2,
			HasFormula: hasLatexMath(cleaned),
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
		Metadata:      buildDocumentMetadata(sections, fullText, exerciseTitle),
	}, nil
}

func documentBody(raw string) string {
	if m := documentBodyRegex.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// extractExerciseTitle prefers the parenthesized part of the filename,
// e.g. "Class 9 Math - Chapter 4 (Exercise 4.5).tex", with the document's
// center heading as a fallback.
func extractExerciseTitle(raw, filename string) string {
	if m := exerciseParenRegex.FindStringSubmatch(filename); m != nil {
		return m[1]
	}

	if m := exerciseCenterRegex.FindStringSubmatch(raw); m != nil {
		title := regexp.MustCompile(`\\[a-zA-Z]+\{[^}]*\}`).ReplaceAllString(m[1], "")
		title = regexp.MustCompile(`\\[a-zA-Z]+`).ReplaceAllString(title, "")
		title = strings.Trim(strings.TrimSpace(title), "{}")
		if title != "" {
			return title
		}
	}

	return "Exercise"
}

// cleanLatex strips decorative LaTeX while preserving math notation. The
// tcblower divider becomes the plain-text solution separator the math
// chunker splits on; tikz pictures collapse to a "[Diagram]" marker.
func cleanLatex(text string) string {
	text = tcblowerRegex.ReplaceAllString(text, "\n"+SolutionSeparator+"\n")
	text = stepRegex.ReplaceAllString(text, "Step $1:")
	text = tikzRegex.ReplaceAllString(text, "[Diagram]")

	text = textcolorRegex.ReplaceAllString(text, "$1")
	text = colorRegex.ReplaceAllString(text, "")
	text = textbfRegex.ReplaceAllString(text, "$1")
	text = bfseriesRegex.ReplaceAllString(text, "")
	text = emphRegex.ReplaceAllString(text, "$1")

	text = spacingRegex.ReplaceAllString(text, "")
	text = lineBreakPtRegex.ReplaceAllString(text, "\n")
	text = lineBreakRegex.ReplaceAllString(text, "\n")

	text = listBeginRegex.ReplaceAllString(text, "")
	text = listEndRegex.ReplaceAllString(text, "")
	text = itemRegex.ReplaceAllString(text, "- ")

	// Unwrap stray braces left by command removal, keeping \text{} and
	// other command arguments intact.
	text = strayBraceRegex.ReplaceAllString(text, "$1$2")

	text = centerRegex.ReplaceAllString(text, "")
	text = fontSizeRegex.ReplaceAllString(text, "")
	text = hrefRegex.ReplaceAllString(text, "$1")
	text = layoutCmdRegex.ReplaceAllString(text, "")
	text = commentLineRegex.ReplaceAllString(text, "")
	text = blankLinesRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

func hasLatexMath(text string) bool {
	return inlineMathRegex.MatchString(text) ||
		displayMathRegex.MatchString(text) ||
		mathCmdRegex.MatchString(text)
}
