package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/halward/procsight/internal/parsing"
	"github.com/halward/procsight/internal/rag"
	"github.com/halward/procsight/internal/rubric"
	"github.com/halward/procsight/pkg/llm"
)

// Authenticity analysis modes.
const (
	ModeConservative = "conservative"
	ModeAggressive   = "aggressive"
)

const (
	defaultTopK     = 5
	defaultMinScore = 0.25
)

// MinScoreNone requests retrieval with no relevance cutoff. Any negative
// MinScore has the same effect; a zero value falls back to the default.
const MinScoreNone float64 = -1

// ProgressFunc receives (label, current step, total steps) notifications as
// a run advances. Side-effecting only; never part of the data flow.
type ProgressFunc func(label string, current, total int)

// ConversationStats are the coarse statistics fed to the authenticity pass.
type ConversationStats struct {
	TotalExchanges    int
	TimeSpan          string
	AvgPromptLength   int
	AvgResponseLength int
}

// RunOptions are the per-run parameters supplied by the caller.
type RunOptions struct {
	SubmissionID      string
	AssignmentContext string
	RunAuthenticity   bool
	Progress          ProgressFunc
}

// EngineConfig configures an assessment engine. Zero values fall back to
// top-k 5, min score 0.25, context window 1, and conservative authenticity.
// MinScoreNone (or any negative MinScore) disables the relevance cutoff.
type EngineConfig struct {
	Provider         llm.Provider
	Rubric           rubric.Rubric
	Model            string
	EmbeddingModel   string
	TopK             int
	MinScore         float64
	ContextWindow    int
	AuthenticityMode string
	Logger           zerolog.Logger
}

// Engine runs the full scoring workflow for one submission at a time:
// index the conversation, score each criterion against retrieved evidence,
// generate a holistic summary, then optionally analyze authenticity. Stages
// degrade independently; only a summary failure aborts the run.
type Engine struct {
	provider         llm.Provider
	rubric           rubric.Rubric
	model            string
	embeddingModel   string
	topK             int
	minScore         float64
	contextWindow    int
	authenticityMode string
	log              zerolog.Logger
	tracer           trace.Tracer
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = defaultMinScore
	}
	if cfg.MinScore < 0 {
		cfg.MinScore = 0
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 1
	}
	if cfg.AuthenticityMode == "" {
		cfg.AuthenticityMode = ModeConservative
	}

	return &Engine{
		provider:         cfg.Provider,
		rubric:           cfg.Rubric,
		model:            cfg.Model,
		embeddingModel:   cfg.EmbeddingModel,
		topK:             cfg.TopK,
		minScore:         cfg.MinScore,
		contextWindow:    cfg.ContextWindow,
		authenticityMode: cfg.AuthenticityMode,
		log:              cfg.Logger.With().Str("component", "assessment_engine").Logger(),
		tracer:           otel.Tracer("assessment-engine"),
	}
}

// Assess runs the full workflow and returns the terminal assessment. The
// returned error is non-nil only for fatal failures (the summary stage);
// every other stage failure is recorded in the result's error list.
func (e *Engine) Assess(ctx context.Context, conv parsing.Conversation, essay parsing.Essay, opts RunOptions) (*FullAssessment, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Assess", trace.WithAttributes(
		attribute.String("model", e.model),
		attribute.Int("exchanges", conv.TotalExchanges()),
		attribute.Int("criteria", e.rubric.CriteriaCount()),
	))
	defer span.End()

	start := time.Now().UTC()
	errs := []string{}

	totalSteps := e.rubric.CriteriaCount() + 3
	step := 0
	report := func(label string) {
		if opts.Progress != nil {
			opts.Progress(label, step, totalSteps)
		}
		e.log.Info().Int("step", step).Int("total", totalSteps).Msg(label)
	}

	report("Chunking and embedding chat history")
	step++

	retriever, err := e.buildIndex(ctx, conv)
	if err != nil {
		errs = append(errs, fmt.Sprintf("Embedding failed: %v", err))
		span.AddEvent("indexing degraded")
		retriever = rag.NewRetriever(e.newEmbedder(), e.log)
	}

	assessments := make([]CriterionAssessment, 0, e.rubric.CriteriaCount())
	for _, criterion := range e.rubric.Criteria() {
		report(fmt.Sprintf("Assessing: %s", criterion.Name))
		step++

		result, err := e.assessCriterion(ctx, criterion, retriever, essay.Text, opts.AssignmentContext)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Criterion '%s' failed: %v", criterion.Name, err))
			result = placeholderAssessment(criterion, err)
		}
		assessments = append(assessments, result)
	}

	var totalScore float64
	totalPossible := 0
	for _, a := range assessments {
		totalScore += a.PointsEarned
		totalPossible += a.PointsPossible
	}

	report("Generating summary assessment")
	step++

	summary, err := e.generateSummary(ctx, assessments, totalScore, totalPossible, essay.Text, opts.AssignmentContext)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary generation failed")
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	var authenticity *AuthenticityResult
	if opts.RunAuthenticity {
		report("Running authenticity analysis")
		step++

		authenticity, err = e.checkAuthenticity(ctx, conv, essay.Text)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Authenticity check failed: %v", err))
			authenticity = nil
		}
	}

	return &FullAssessment{
		SubmissionID:          opts.SubmissionID,
		ModelName:             e.model,
		Timestamp:             start.Format(time.RFC3339),
		CriterionAssessments:  assessments,
		TotalScore:            totalScore,
		TotalPossible:         totalPossible,
		Percentage:            percentage(totalScore, totalPossible),
		Summary:               summary,
		Authenticity:          authenticity,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
		Errors:                errs,
	}, nil
}

func (e *Engine) newEmbedder() rag.Embedder {
	return rag.NewEmbedder(rag.EmbedderConfig{
		Provider: e.provider,
		Model:    e.embeddingModel,
		Logger:   e.log,
	})
}

func (e *Engine) buildIndex(ctx context.Context, conv parsing.Conversation) (*rag.Retriever, error) {
	embedder := e.newEmbedder()
	chunks := rag.ChunkConversation(conv, e.contextWindow)

	if err := embedder.EmbedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	retriever := rag.NewRetriever(embedder, e.log)
	retriever.Add(chunks)
	e.log.Debug().Int("indexed", retriever.Len()).Msg("conversation indexed")
	return retriever, nil
}

func (e *Engine) assessCriterion(ctx context.Context, criterion rubric.Criterion, retriever *rag.Retriever, essayText, assignmentContext string) (CriterionAssessment, error) {
	query := QueryForCriterion(criterion.Name)
	results := retriever.Search(ctx, query, e.topK, e.minScore)
	retrieved := rag.FormatForPrompt(results, 2000)

	raw, err := e.provider.Generate(ctx, llm.GenerateRequest{
		Model:  e.model,
		Prompt: CriterionPrompt(criterion, retrieved, essayText, assignmentContext),
		System: SystemPrompt,
		Format: "json",
	})
	if err != nil {
		return CriterionAssessment{}, err
	}

	m := Normalize(raw)

	var evidence []Evidence
	for _, ev := range mapSliceField(m, "evidence") {
		evidence = append(evidence, Evidence{
			Type:      stringField(ev, "type", "unknown"),
			Reference: stringField(ev, "reference", ""),
			Citation:  stringField(ev, "citation", ""),
			Excerpt:   ellipsizeRaw(stringField(ev, "excerpt", ""), 200),
			Analysis:  stringField(ev, "analysis", ""),
		})
	}

	earned := floatField(m, "points_earned", 0)
	if earned > float64(criterion.Points) {
		earned = float64(criterion.Points)
	}
	if earned < 0 {
		earned = 0
	}

	return CriterionAssessment{
		CriterionName:  criterion.Name,
		CriterionID:    criterionID(criterion.Name),
		PointsPossible: criterion.Points,
		PointsEarned:   earned,
		Level:          stringField(m, "level", rubric.LevelInadequate),
		Reasoning:      stringField(m, "reasoning", "No reasoning provided"),
		Evidence:       evidence,
		Feedback:       stringField(m, "feedback", "No feedback provided"),
		Confidence:     stringField(m, "confidence", ConfidenceLow),
	}, nil
}

func (e *Engine) generateSummary(ctx context.Context, results []CriterionAssessment, totalScore float64, totalPossible int, essayText, assignmentContext string) (Summary, error) {
	raw, err := e.provider.Generate(ctx, llm.GenerateRequest{
		Model:  e.model,
		Prompt: SummaryPrompt(results, totalScore, totalPossible, essayText, assignmentContext),
		System: SystemPrompt,
		Format: "json",
	})
	if err != nil {
		return Summary{}, err
	}

	m := Normalize(raw)
	return Summary{
		Paragraphs:          stringSliceField(m, "summary_paragraphs"),
		KeyStrengths:        stringSliceField(m, "key_strengths"),
		AreasForGrowth:      stringSliceField(m, "areas_for_growth"),
		NotableObservations: stringField(m, "notable_observations", ""),
		OverallQuality:      stringField(m, "overall_quality", "unknown"),
		RecommendedGrade:    stringField(m, "recommended_grade", "N/A"),
	}, nil
}

func (e *Engine) checkAuthenticity(ctx context.Context, conv parsing.Conversation, essayText string) (*AuthenticityResult, error) {
	stats := conversationStats(conv)
	excerpts := sampleExcerpts(conv.Exchanges)

	raw, err := e.provider.Generate(ctx, llm.GenerateRequest{
		Model:  e.model,
		Prompt: AuthenticityPrompt(stats, excerpts, essayText, e.authenticityMode),
		System: SystemPrompt,
		Format: "json",
	})
	if err != nil {
		return nil, err
	}

	m := Normalize(raw)

	var flags []AuthenticityFlag
	for _, f := range mapSliceField(m, "flags") {
		flags = append(flags, AuthenticityFlag{
			Type:           stringField(f, "type", "unknown"),
			Severity:       stringField(f, "severity", "low"),
			Description:    stringField(f, "description", ""),
			Evidence:       stringField(f, "evidence", ""),
			Location:       stringField(f, "location", ""),
			Recommendation: stringField(f, "recommendation", ""),
		})
	}

	return &AuthenticityResult{
		Score:              intField(m, "authenticity_score", 50),
		Confidence:         stringField(m, "confidence", ConfidenceLow),
		Flags:              flags,
		PositiveIndicators: stringSliceField(m, "positive_indicators"),
		OverallAssessment:  stringField(m, "overall_assessment", "Unable to assess"),
	}, nil
}

func conversationStats(conv parsing.Conversation) ConversationStats {
	stats := ConversationStats{
		TotalExchanges: conv.TotalExchanges(),
		TimeSpan:       "Unknown",
	}

	if len(conv.Exchanges) > 0 {
		promptTotal, responseTotal := 0, 0
		for _, ex := range conv.Exchanges {
			promptTotal += len(ex.StudentPrompt)
			responseTotal += len(ex.AIResponse)
		}
		stats.AvgPromptLength = promptTotal / len(conv.Exchanges)
		stats.AvgResponseLength = responseTotal / len(conv.Exchanges)
	}

	return stats
}

// sampleExcerpts picks a representative subset of exchanges for the
// authenticity prompt: the first three, two from the middle, and the last
// two when the conversation has at least seven exchanges, otherwise all of
// them.
func sampleExcerpts(exchanges []parsing.Exchange) string {
	if len(exchanges) == 0 {
		return ""
	}

	n := len(exchanges)
	var indices []int
	if n >= 7 {
		indices = []int{0, 1, 2, n / 2, n/2 + 1, n - 2, n - 1}
	} else {
		for i := 0; i < n; i++ {
			indices = append(indices, i)
		}
	}

	parts := make([]string, 0, len(indices))
	for _, idx := range indices {
		ex := exchanges[idx]
		parts = append(parts, fmt.Sprintf("\n[CHAT:%d]\nStudent: %s\nAI: %s\n",
			ex.Number, excerptText(ex.StudentPrompt), excerptText(ex.AIResponse)))
	}
	return strings.Join(parts, "\n")
}

func excerptText(s string) string {
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}

func placeholderAssessment(criterion rubric.Criterion, cause error) CriterionAssessment {
	return CriterionAssessment{
		CriterionName:  criterion.Name,
		CriterionID:    fmt.Sprintf("err_%s", criterion.Name),
		PointsPossible: criterion.Points,
		PointsEarned:   0,
		Level:          rubric.LevelInadequate,
		Reasoning:      fmt.Sprintf("Assessment failed: %v", cause),
		Evidence:       []Evidence{},
		Feedback:       "Unable to assess this criterion due to an error.",
		Confidence:     ConfidenceLow,
	}
}

func criterionID(name string) string {
	return "crit_" + strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
