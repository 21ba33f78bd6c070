package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"tutor-rag-platform/internal/ai"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/models"
)

// Completer is the completion surface the router needs. Satisfied by
// ai.CompletionClient; tests substitute a scripted fake.
type Completer interface {
	Complete(ctx context.Context, system, user, model string, temperature float32) (string, error)
}

// ChapterRouter maps a free-text query to curriculum chapters through an
// iterative sense, plan, act, observe, reflect loop. Keyword sensing feeds a
// structured LLM planning call; the plan is then validated against the
// static chapter index. Stateless across calls.
type ChapterRouter struct {
	llm           Completer
	model         string
	maxIterations int
}

// correctedConfidenceFactor discounts a plan's self-reported confidence when
// validation had to correct its chapter selection.
const correctedConfidenceFactor = 0.75

var equationRegex = regexp.MustCompile(`[A-Za-z]\s*=\s*[A-Za-z0-9]`)

type routingPlan struct {
	action            string
	primaryChapter    int
	secondaryChapters []int
	confidence        float64
	reasoning         string
	topicsIdentified  []string
	corrected         bool
}

func NewChapterRouter(llm Completer, model string, maxIterations int) *ChapterRouter {
	if maxIterations < 1 {
		maxIterations = 2
	}
	return &ChapterRouter{
		llm:           llm,
		model:         model,
		maxIterations: maxIterations,
	}
}

// Route selects the primary and secondary chapters for a query. The result
// always references known chapter numbers: an unrecognized primary falls
// back to chapter 1 with a confidence discount, never an error.
func (cr *ChapterRouter) Route(ctx context.Context, query string, classLevel int, subject string) (models.RoutingResult, error) {
	index := IndexFor(classLevel, subject)
	if index == nil {
		return models.RoutingResult{}, fmt.Errorf("no chapter index for class %d %s", classLevel, subject)
	}

	var lastPlan *routingPlan

	for iteration := 1; iteration <= cr.maxIterations; iteration++ {
		// SENSE: surface features of the query.
		keywords := index.MatchKeywords(query)
		hasEquation := equationRegex.MatchString(query)

		logger.Debug("router sense",
			"iteration", iteration,
			"keywords", keywords,
			"has_equation", hasEquation,
			"query_words", wordCount(query))

		// PLAN: one structured LLM call over the chapter index.
		plan, err := cr.plan(ctx, query, subject, keywords, index)
		if err != nil {
			return models.RoutingResult{}, fmt.Errorf("routing plan failed: %w", err)
		}

		// ACT: validate chapter numbers against the known set.
		cr.validate(plan, index)

		// OBSERVE / REFLECT: bookkeeping only, selection is unchanged.
		if plan.corrected {
			logger.Warn("routing plan corrected",
				"iteration", iteration,
				"primary", plan.primaryChapter,
				"secondary", plan.secondaryChapters)
		} else {
			logger.Debug("routing plan validated",
				"iteration", iteration,
				"primary", plan.primaryChapter)
		}

		lastPlan = plan

		if plan.action == "COMPLETE" {
			break
		}
	}

	if lastPlan == nil {
		lastPlan = &routingPlan{primaryChapter: 1, confidence: 0.5}
	}

	return cr.result(lastPlan), nil
}

func (cr *ChapterRouter) plan(ctx context.Context, query, subject string, keywords []string, index *SubjectIndex) (*routingPlan, error) {
	prompt := fmt.Sprintf(`You are routing a student's %s question to relevant chapters.

STUDENT QUERY: %s

AVAILABLE CHAPTERS:
%s

DETECTED KEYWORDS: %s

Analyze the query and determine which chapter(s) are most relevant.

Respond with ONLY valid JSON:
{
    "action": "COMPLETE",
    "primary_chapter": <chapter number>,
    "secondary_chapters": [<additional relevant chapters>],
    "confidence": <0.0 to 1.0>,
    "reasoning": "<why you chose these chapters>",
    "topics_identified": ["<topic1>", "<topic2>"]
}

Rules:
- Primary chapter should be most relevant
- Secondary chapters for related concepts (max 2)
- Confidence 0.8+ means very confident
- If query spans multiple topics, include secondary chapters`,
		subject, query, formatChapterIndex(index), strings.Join(keywords, ", "))

	raw, err := cr.llm.Complete(ctx,
		"You are a chapter routing assistant. Respond only with JSON.",
		prompt, cr.model, 0.3)
	if err != nil {
		return nil, err
	}

	decoded := ai.DecodeObject(raw)
	if decoded.Fallback {
		// Unparseable plan: proceed with the safe default rather than fail.
		logger.Warn("routing plan unparseable, using defaults", "raw_prefix", truncate(raw, 120))
		return &routingPlan{action: "COMPLETE", primaryChapter: 1, confidence: 0.5}, nil
	}

	return &routingPlan{
		action:            ai.GetString(decoded.Fields, "action", ""),
		primaryChapter:    ai.GetInt(decoded.Fields, "primary_chapter", 1),
		secondaryChapters: ai.GetIntSlice(decoded.Fields, "secondary_chapters"),
		confidence:        ai.GetFloat(decoded.Fields, "confidence", 0.5),
		reasoning:         ai.GetString(decoded.Fields, "reasoning", ""),
		topicsIdentified:  ai.GetStringSlice(decoded.Fields, "topics_identified"),
	}, nil
}

// validate corrects the plan in place: unknown primary becomes chapter 1,
// secondary chapters are filtered to known values distinct from the primary
// and capped at two. Any correction discounts the plan's confidence.
func (cr *ChapterRouter) validate(plan *routingPlan, index *SubjectIndex) {
	if !index.HasChapter(plan.primaryChapter) {
		plan.primaryChapter = 1
		plan.corrected = true
	}

	var secondary []int
	seen := map[int]bool{plan.primaryChapter: true}
	for _, c := range plan.secondaryChapters {
		if !index.HasChapter(c) || seen[c] {
			plan.corrected = true
			continue
		}
		seen[c] = true
		secondary = append(secondary, c)
	}
	if len(secondary) > 2 {
		secondary = secondary[:2]
		plan.corrected = true
	}
	plan.secondaryChapters = secondary

	if plan.corrected {
		plan.confidence *= correctedConfidenceFactor
	}
}

func (cr *ChapterRouter) result(plan *routingPlan) models.RoutingResult {
	confidence := plan.confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return models.RoutingResult{
		PrimaryChapter:    plan.primaryChapter,
		SecondaryChapters: plan.secondaryChapters,
		Confidence:        confidence,
		Reasoning:         plan.reasoning,
		TopicsIdentified:  plan.topicsIdentified,
		Corrected:         plan.corrected,
	}
}

// formatChapterIndex renders the chapter index for the planning prompt,
// one line per chapter with its leading topics.
func formatChapterIndex(index *SubjectIndex) string {
	numbers := make([]int, 0, len(index.Chapters))
	for n := range index.Chapters {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var lines []string
	for _, n := range numbers {
		info := index.Chapters[n]
		topics := info.Topics
		if len(topics) > 5 {
			topics = topics[:5]
		}
		lines = append(lines, fmt.Sprintf("Chapter %d: %s - Topics: %s", n, info.Title, strings.Join(topics, ", ")))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
