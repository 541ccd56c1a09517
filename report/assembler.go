// Package report assembles the final analysis response from the narrative
// text, the integrated market data, and request metadata.
package report

import (
	"fmt"
	"strings"
	"time"

	"fintech-analyst/models"
	"fintech-analyst/observability"
)

// Confidence scoring constants. Base reflects whether any live quote was
// integrated; the narrative bonus applies when the text itself came from a
// live provider rather than the synthetic fallback.
const (
	confidenceBaseLive      = 0.90
	confidenceBaseSimulated = 0.60
	narrativeLiveBonus      = 0.05
	lengthBonusMax          = 0.04
	lengthBonusPerChar      = 0.00002
)

// Input carries everything the assembler needs to produce a Report.
type Input struct {
	Prompt            string
	AnalysisType      models.AnalysisType
	Quotes            map[string]*models.Quote
	Narrative         string
	NarrativeProvider string
	NarrativeQuality  models.DataQuality
	ProcessingTime    time.Duration
}

// Assemble builds the final report. It is a pure function of its input apart
// from the timestamp and the recorded confidence metric.
func Assemble(in Input) *models.Report {
	confidence := Confidence(in)

	var b strings.Builder
	b.WriteString(in.Narrative)
	if !strings.HasSuffix(in.Narrative, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n---\n")
	fmt.Fprintf(&b, "Analysis type: %s\n", in.AnalysisType)
	fmt.Fprintf(&b, "Narrative source: %s (%s)\n", in.NarrativeProvider, in.NarrativeQuality)
	fmt.Fprintf(&b, "Market data: %s\n", dataSummary(in.Quotes))
	fmt.Fprintf(&b, "Confidence: %.2f\n", confidence)

	observability.GetMetrics().RecordConfidenceScore(confidence)

	return &models.Report{
		GeneratedText:         b.String(),
		ProviderUsed:          in.NarrativeProvider,
		ConfidenceScore:       confidence,
		ProcessingTimeSeconds: in.ProcessingTime.Seconds(),
		Timestamp:             time.Now().UTC(),
	}
}

// Confidence computes the score for the given input, clamped to [0, 1].
func Confidence(in Input) float64 {
	score := confidenceBaseSimulated
	if hasLiveQuote(in.Quotes) {
		score = confidenceBaseLive
	}
	if in.NarrativeQuality == models.QualityLive {
		score += narrativeLiveBonus
	}
	score += lengthBonus(len(in.Narrative))

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func hasLiveQuote(quotes map[string]*models.Quote) bool {
	for _, q := range quotes {
		if q != nil && q.IsLive() {
			return true
		}
	}
	return false
}

func lengthBonus(chars int) float64 {
	bonus := float64(chars) * lengthBonusPerChar
	if bonus > lengthBonusMax {
		return lengthBonusMax
	}
	return bonus
}

func dataSummary(quotes map[string]*models.Quote) string {
	if len(quotes) == 0 {
		return "none"
	}
	live := 0
	for _, q := range quotes {
		if q != nil && q.IsLive() {
			live++
		}
	}
	return fmt.Sprintf("%d symbols (%d live, %d simulated)", len(quotes), live, len(quotes)-live)
}
