package assessment

import "math"

// Confidence labels attached to criterion and authenticity results.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Evidence is one citation supporting a criterion score.
type Evidence struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
	Citation  string `json:"citation"`
	Excerpt   string `json:"excerpt"`
	Analysis  string `json:"analysis"`
}

// CriterionAssessment is the scored outcome for a single rubric criterion.
// Exactly one is produced per criterion per run; a failed criterion yields a
// zero-point placeholder instead of aborting the run.
type CriterionAssessment struct {
	CriterionName  string     `json:"criterion_name"`
	CriterionID    string     `json:"criterion_id"`
	PointsPossible int        `json:"points_possible"`
	PointsEarned   float64    `json:"points_earned"`
	Level          string     `json:"level"`
	Reasoning      string     `json:"reasoning"`
	Evidence       []Evidence `json:"evidence"`
	Feedback       string     `json:"feedback"`
	Confidence     string     `json:"confidence"`
}

// AuthenticityFlag is one pattern flagged for instructor review.
type AuthenticityFlag struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Evidence       string `json:"evidence"`
	Location       string `json:"location"`
	Recommendation string `json:"recommendation"`
}

// AuthenticityResult holds the integrity analysis for a submission. Flags
// are review prompts, not accusations.
type AuthenticityResult struct {
	Score              int                `json:"score"`
	Confidence         string             `json:"confidence"`
	Flags              []AuthenticityFlag `json:"flags"`
	PositiveIndicators []string           `json:"positive_indicators"`
	OverallAssessment  string             `json:"overall_assessment"`
}

// Summary is the holistic narrative assembled after all criteria are scored.
type Summary struct {
	Paragraphs          []string `json:"paragraphs"`
	KeyStrengths        []string `json:"key_strengths"`
	AreasForGrowth      []string `json:"areas_for_growth"`
	NotableObservations string   `json:"notable_observations"`
	OverallQuality      string   `json:"overall_quality"`
	RecommendedGrade    string   `json:"recommended_grade"`
}

// FullAssessment is the terminal artifact of one assessment run. Errors
// enumerates every degraded stage; callers should surface it alongside the
// score rather than hiding it.
type FullAssessment struct {
	SubmissionID          string                `json:"submission_id,omitempty"`
	ModelName             string                `json:"model_name"`
	Timestamp             string                `json:"timestamp"`
	CriterionAssessments  []CriterionAssessment `json:"criterion_assessments"`
	TotalScore            float64               `json:"total_score"`
	TotalPossible         int                   `json:"total_possible"`
	Percentage            float64               `json:"percentage"`
	Summary               Summary               `json:"summary"`
	Authenticity          *AuthenticityResult   `json:"authenticity,omitempty"`
	ProcessingTimeSeconds float64               `json:"processing_time_seconds"`
	Errors                []string              `json:"errors"`
}

// percentage derives earned/possible as a percent rounded to one decimal
// place; a zero possible yields 0 rather than dividing by zero.
func percentage(earned float64, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return math.Round(earned/float64(possible)*1000) / 10
}
