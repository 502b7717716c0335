// Package chat is the turn-level entry point: it derives the metabolic
// context, runs the extractor and hands complete cravings to the
// recommender.
package chat

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Eat42/internal/craving"
	"Eat42/internal/metabolic"
	"Eat42/internal/recommender"
)

// Response is the JSON reply for one turn. Complete replies carry Data and
// CravingInput; incomplete ones carry FollowUpQuestion and, unless
// OffTopic, MissingField and PartialData.
type Response struct {
	Complete         bool                 `json:"complete"`
	OffTopic         bool                 `json:"off_topic,omitempty"`
	FollowUpQuestion string               `json:"follow_up_question,omitempty"`
	MissingField     craving.MissingField `json:"missing_field,omitempty"`
	PartialData      *craving.Record      `json:"partial_data,omitempty"`
	Data             *recommender.Result  `json:"data,omitempty"`
	CravingInput     *CravingInput        `json:"craving_input,omitempty"`
	Craving          *craving.Record      `json:"craving,omitempty"`
	Context          *metabolic.Context   `json:"metabolic_context,omitempty"`
}

// CravingInput echoes what the recommendation was computed for.
type CravingInput struct {
	Foods      []string `json:"foods"`
	Categories []string `json:"categories"`
}

// Extractor is the craving extraction capability the service needs.
type Extractor interface {
	Extract(utterance string, mc metabolic.Context, userID string) craving.Result
	ClearPending(userID string)
}

// Recommender is the recommendation capability the service needs.
type Recommender interface {
	Recommend(rec craving.Record, mc metabolic.Context) recommender.Result
}

// Service wires extraction to recommendation.
type Service struct {
	extractor   Extractor
	recommender Recommender
	log         zerolog.Logger
}

// NewService returns a Service logging through the global logger.
func NewService(x Extractor, r Recommender) *Service {
	return &Service{extractor: x, recommender: r, log: log.Logger}
}

// WithLogger returns a copy of s logging through l.
func (s *Service) WithLogger(l zerolog.Logger) *Service {
	c := *s
	c.log = l
	return &c
}

// ExtractToJSON runs one turn. history may be in any order; a zero
// glucoseLevel falls back to the newest reading.
func (s *Service) ExtractToJSON(utterance string, glucoseLevel int, history []metabolic.Reading, pregnancyWeek int, userID string) Response {
	mc := metabolic.FromReadings(glucoseLevel, history, pregnancyWeek)

	res := s.extractor.Extract(utterance, mc, userID)
	if !res.Complete {
		out := Response{
			OffTopic:         res.OffTopic,
			FollowUpQuestion: res.Question,
		}
		if !res.OffTopic {
			rec := res.Record
			out.MissingField = res.Missing
			out.PartialData = &rec
		}
		return out
	}

	rec := res.Record
	ctx := res.Context
	result := s.recommender.Recommend(rec, ctx)

	s.log.Info().
		Str("user_id", userID).
		Strs("foods", rec.Foods).
		Int("glucose_level", ctx.GlucoseLevel).
		Bool("picked", result.Food != nil).
		Msg("Recommendation produced")

	return Response{
		Complete:     true,
		Data:         &result,
		CravingInput: &CravingInput{Foods: rec.Foods, Categories: rec.Categories},
		Craving:      &rec,
		Context:      &ctx,
	}
}

// ClearPending drops any follow-up state for userID.
func (s *Service) ClearPending(userID string) {
	s.extractor.ClearPending(userID)
}
