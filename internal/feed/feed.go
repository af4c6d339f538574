// Package feed builds the categorized discovery feed: four independent
// recommendation strategies run concurrently against the candidate pool.
package feed

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codemate-app/matcher/internal/similarity"
	"github.com/codemate-app/matcher/internal/store"
	"github.com/codemate-app/matcher/pkg/types"
)

const (
	// PairThreshold is the minimum similarity for a skill pair to count
	// toward the by-skill overlap average.
	PairThreshold = 0.7

	// FeedLimit caps each feed category.
	FeedLimit = 10
)

// Store is the profile access the aggregator needs.
type Store interface {
	GetUser(ctx context.Context, id string) (*types.User, error)
	ListCandidates(ctx context.Context, excludeID string) ([]types.User, error)
	FilterUsers(ctx context.Context, excludeID string, filter store.Filter) ([]types.User, error)
}

// Aggregator assembles discovery feeds.
type Aggregator struct {
	store         Store
	pairThreshold float64
	limit         int
	logger        *zap.Logger
}

// New creates an Aggregator. Zero pairThreshold or limit fall back to the
// package defaults.
func New(s Store, pairThreshold float64, limit int, logger *zap.Logger) *Aggregator {
	if pairThreshold <= 0 {
		pairThreshold = PairThreshold
	}
	if limit <= 0 {
		limit = FeedLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:         s,
		pairThreshold: pairThreshold,
		limit:         limit,
		logger:        logger,
	}
}

// Build assembles the four feed categories for the requester. Categories
// run concurrently and fail independently: a category whose computation
// errors comes back empty with the error recorded on Feed.Errors, and the
// other three still return results. Only a missing requester fails the
// whole call.
func (a *Aggregator) Build(ctx context.Context, requesterID string) (*types.Feed, error) {
	requester, err := a.store.GetUser(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester: %w", err)
	}

	feed := &types.Feed{
		BySkill:        []types.ScoredUser{},
		ByLocation:     []types.PublicUser{},
		ByCollege:      []types.PublicUser{},
		ByAvailability: []types.PublicUser{},
	}

	var mu sync.Mutex
	fail := func(category string, err error) {
		a.logger.Warn("feed category failed",
			zap.String("category", category),
			zap.String("requester", requesterID),
			zap.Error(err),
		)
		mu.Lock()
		if feed.Errors == nil {
			feed.Errors = make(map[string]string)
		}
		feed.Errors[category] = err.Error()
		mu.Unlock()
	}

	// Fire-and-join: each category records its own outcome, so every
	// closure returns nil and no sibling gets cancelled.
	var g errgroup.Group

	g.Go(func() error {
		bySkill, err := a.bySkill(ctx, requester)
		if err != nil {
			fail("bySkill", err)
			return nil
		}
		mu.Lock()
		feed.BySkill = bySkill
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		byLocation, err := a.byField(ctx, requesterID, store.Filter{Location: requester.Location}, requester.Location)
		if err != nil {
			fail("byLocation", err)
			return nil
		}
		mu.Lock()
		feed.ByLocation = byLocation
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		byCollege, err := a.byField(ctx, requesterID, store.Filter{College: requester.College}, requester.College)
		if err != nil {
			fail("byCollege", err)
			return nil
		}
		mu.Lock()
		feed.ByCollege = byCollege
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		byAvailability, err := a.byField(ctx, requesterID, store.Filter{Availability: requester.Availability}, requester.Availability)
		if err != nil {
			fail("byAvailability", err)
			return nil
		}
		mu.Lock()
		feed.ByAvailability = byAvailability
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	return feed, nil
}

// bySkill ranks candidates by average overlap strength: the mean of all
// requester-candidate skill pair similarities that individually exceed
// the pair threshold. This is deliberately different from the chat
// ranker's max-of-pairs; it measures overall compatibility, not the best
// single reason to connect.
func (a *Aggregator) bySkill(ctx context.Context, requester *types.User) ([]types.ScoredUser, error) {
	candidates, err := a.store.ListCandidates(ctx, requester.ID)
	if err != nil {
		return nil, err
	}

	scored := make([]types.ScoredUser, 0)
	for i := range candidates {
		candidate := &candidates[i]

		var total float64
		var count int
		for _, mine := range requester.ValidSkills(0) {
			for _, theirs := range candidate.ValidSkills(len(mine.Vector)) {
				sim := similarity.Cosine(mine.Vector, theirs.Vector)
				if sim > a.pairThreshold {
					total += sim
					count++
				}
			}
		}

		if count == 0 {
			continue
		}

		scored = append(scored, types.ScoredUser{
			User:  candidate.Public(),
			Score: total / float64(count),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > a.limit {
		scored = scored[:a.limit]
	}

	return scored, nil
}

// byField returns candidates matching a single-field filter. An empty
// requester field yields an empty category, never the full pool.
func (a *Aggregator) byField(ctx context.Context, requesterID string, filter store.Filter, requesterValue string) ([]types.PublicUser, error) {
	if requesterValue == "" {
		return []types.PublicUser{}, nil
	}

	users, err := a.store.FilterUsers(ctx, requesterID, filter)
	if err != nil {
		return nil, err
	}

	if len(users) > a.limit {
		users = users[:a.limit]
	}

	public := make([]types.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}

	return public, nil
}
