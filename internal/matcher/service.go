package matcher

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/codemate-app/matcher/pkg/types"
)

var greetingKeywords = []string{"hi", "hello", "hey", "hlo", "helo"}

var greetingResponses = []string{
	"Hi there! Welcome to Codemate. How can I help you find a partner?",
	"Hello, coder! What can I do for you today?",
	"Hey! Ready to find a coding partner? Just tell me what you're looking for.",
}

const (
	matchesFoundResponse   = "I've found some potential coding partners for you! Here are the top matches based on your request:"
	noMatchesFoundResponse = "I couldn't find any suitable coding partners. Try rephrasing your message with more specific skills or interests."
)

// CandidatePool provides read access to every user except the requester.
type CandidatePool interface {
	ListCandidates(ctx context.Context, excludeID string) ([]types.User, error)
}

// QueryExpander enriches a raw query into a descriptive passage.
type QueryExpander interface {
	Expand(ctx context.Context, rawQuery string) (string, error)
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Response is the chat matching result for one message.
type Response struct {
	BotResponse string              `json:"botResponse"`
	Matches     []types.MatchResult `json:"matches"`
}

// Service runs the chat matching pipeline: greeting short-circuit, query
// expansion, embedding, then candidate ranking.
type Service struct {
	pool      CandidatePool
	expander  QueryExpander
	embedder  Embedder
	threshold float64
	logger    *zap.Logger
}

// NewService creates a matching service. A threshold <= 0 falls back to
// DefaultThreshold.
func NewService(pool CandidatePool, expander QueryExpander, embedder Embedder, threshold float64, logger *zap.Logger) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pool:      pool,
		expander:  expander,
		embedder:  embedder,
		threshold: threshold,
		logger:    logger,
	}
}

// Respond handles one chat message from requesterID and returns a bot
// response with ranked matches. An embedding failure for the query is not
// recoverable and surfaces as an error: an empty match list always means
// "genuinely no matches", never a swallowed provider failure.
func (s *Service) Respond(ctx context.Context, requesterID, message string) (*Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("message is required")
	}

	if isGreeting(message) {
		return &Response{
			BotResponse: greetingResponses[rand.Intn(len(greetingResponses))],
			Matches:     []types.MatchResult{},
		}, nil
	}

	// Expansion failure degrades to embedding the raw query. That loses
	// recall but keeps the request serviceable; the fallback is logged so
	// it never happens silently.
	queryText, err := s.expander.Expand(ctx, message)
	if err != nil {
		s.logger.Warn("query expansion failed, embedding raw query",
			zap.String("query", message),
			zap.Error(err),
		)
		queryText = message
	}

	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.pool.ListCandidates(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	matches := RankMatches(queryVec, candidates, s.threshold)

	s.logger.Debug("chat match complete",
		zap.String("requester", requesterID),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
	)

	response := noMatchesFoundResponse
	if len(matches) > 0 {
		response = matchesFoundResponse
	}

	return &Response{
		BotResponse: response,
		Matches:     matches,
	}, nil
}

// Threshold returns the configured match threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// isGreeting matches greeting keywords against whole words only, so a
// query like "machine learning" never trips on the "hi" inside it.
func isGreeting(message string) bool {
	words := strings.Fields(strings.ToLower(message))
	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		for _, g := range greetingKeywords {
			if w == g {
				return true
			}
		}
	}
	return false
}
