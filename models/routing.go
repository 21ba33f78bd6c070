package models

// RoutingResult is the outcome of chapter routing for a single query.
// SecondaryChapters holds at most two chapters, all distinct from the
// primary. Confidence is in [0,1].
type RoutingResult struct {
	PrimaryChapter    int      `json:"primary_chapter"`
	SecondaryChapters []int    `json:"secondary_chapters"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
	TopicsIdentified  []string `json:"topics_identified"`
	Corrected         bool     `json:"corrected,omitempty"`
}
