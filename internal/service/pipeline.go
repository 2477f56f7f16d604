package service

import (
	"context"

	"github.com/rs/zerolog"

	"pricecompare/internal/aggregator"
	"pricecompare/internal/domain"
	"pricecompare/internal/index"
	"pricecompare/internal/interpreter"
	"pricecompare/internal/ranking"
	"pricecompare/internal/recommend"
)

// Progress checkpoints reported by Run.
const (
	StepParse     = "Parsing your request..."
	StepSearch    = "Searching for products..."
	StepRank      = "Ranking results..."
	StepIndex     = "Storing product data..."
	StepRecommend = "Generating recommendations..."
	StepNoResults = "No results found"
	StepDone      = "Complete!"
)

// PipelineServiceImpl sequences the query-to-recommendation stages.
type PipelineServiceImpl struct {
	interpreter *interpreter.Interpreter
	aggregator  *aggregator.Aggregator
	index       *index.Index
	synthesizer *recommend.Synthesizer
	policy      ranking.Policy
	topN        int
	log         zerolog.Logger
}

func NewPipelineService(
	in *interpreter.Interpreter,
	agg *aggregator.Aggregator,
	ix *index.Index,
	syn *recommend.Synthesizer,
	policy ranking.Policy,
	topN int,
	log zerolog.Logger,
) *PipelineServiceImpl {
	return &PipelineServiceImpl{
		interpreter: in,
		aggregator:  agg,
		index:       ix,
		synthesizer: syn,
		policy:      policy,
		topN:        topN,
		log:         log,
	}
}

// Run never fails: every stage degrades to its own fallback, and an empty
// search short-circuits to a no_results recommendation.
func (s *PipelineServiceImpl) Run(ctx context.Context, raw string, onProgress domain.ProgressFunc) (domain.StructuredRequest, domain.Recommendation, []domain.Offer) {
	progress := func(step string, pct int) {
		if onProgress != nil {
			onProgress(step, pct)
		}
	}

	progress(StepParse, 10)
	req := s.interpreter.Interpret(ctx, raw)
	s.log.Info().Str("search_query", req.SearchQuery).Msg("parsed request")

	progress(StepSearch, 30)
	offers := s.aggregator.Aggregate(ctx, req)
	if len(offers) == 0 {
		progress(StepNoResults, 100)
		return req, recommend.NoResults(), []domain.Offer{}
	}
	s.log.Info().Int("offers", len(offers)).Msg("aggregated offers")

	progress(StepRank, 50)
	ranked := ranking.Rank(offers, req.Preferences, s.policy)

	progress(StepIndex, 60)
	if s.index != nil {
		if err := s.index.Index(ctx, ranked); err != nil {
			s.log.Error().Err(err).Msg("indexing failed; continuing without it")
		}
	}

	progress(StepRecommend, 80)
	rec := s.synthesizer.Synthesize(ctx, req, ranked, s.topN)

	progress(StepDone, 100)
	return req, rec, ranked
}

// Index exposes the semantic index for retrieval and maintenance.
func (s *PipelineServiceImpl) Index() *index.Index { return s.index }
