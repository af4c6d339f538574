package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemate-app/matcher/internal/store"
	"github.com/codemate-app/matcher/pkg/types"
)

// fakeStore serves users from memory and can fail selected operations.
type fakeStore struct {
	users       map[string]*types.User
	listErr     error
	filterErr   error
	filterCalls int
}

func (s *fakeStore) GetUser(_ context.Context, id string) (*types.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) ListCandidates(_ context.Context, excludeID string) ([]types.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]types.User, 0)
	for _, u := range s.users {
		if u.ID != excludeID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeStore) FilterUsers(_ context.Context, excludeID string, filter store.Filter) ([]types.User, error) {
	s.filterCalls++
	if s.filterErr != nil {
		return nil, s.filterErr
	}
	out := make([]types.User, 0)
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(u.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.College != "" && !strings.Contains(strings.ToLower(u.College), strings.ToLower(filter.College)) {
			continue
		}
		if filter.Availability != "" && u.Availability != filter.Availability {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func newFakeStore(users ...*types.User) *fakeStore {
	m := make(map[string]*types.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeStore{users: m}
}

func TestBuildBySkillAverageOfQualifyingPairs(t *testing.T) {
	// Requester has two orthogonal skills. Candidate "close" matches one
	// of them nearly exactly; candidate "far" matches nothing above the
	// pair threshold.
	requester := &types.User{ID: "me", Name: "Me", Skills: []types.SkillVector{
		{Name: "react", Vector: []float64{1, 0}},
		{Name: "sql", Vector: []float64{0, 1}},
	}}
	closeMatch := &types.User{ID: "close", Name: "Close", Skills: []types.SkillVector{
		{Name: "react", Vector: []float64{1, 0}},
	}}
	farMatch := &types.User{ID: "far", Name: "Far", Skills: []types.SkillVector{
		{Name: "design", Vector: []float64{0.5, math.Sqrt(1 - 0.25)}}, // 0.5 and ~0.87 sims
	}}

	agg := New(newFakeStore(requester, closeMatch, farMatch), 0.9, 0, nil)
	feed, err := agg.Build(context.Background(), "me")
	require.NoError(t, err)

	require.Len(t, feed.BySkill, 1, "only candidates with qualifying pairs appear")
	assert.Equal(t, "close", feed.BySkill[0].User.ID)
	// One qualifying pair of similarity 1.0: average is 1.0, not dragged
	// down by the sub-threshold pair.
	assert.InDelta(t, 1.0, feed.BySkill[0].Score, 1e-9)
	assert.Empty(t, feed.Errors)
}

func TestBuildBySkillRankingAndCap(t *testing.T) {
	requester := &types.User{ID: "me", Name: "Me", Skills: []types.SkillVector{
		{Name: "go", Vector: []float64{1, 0}},
	}}

	users := []*types.User{requester}
	for i := 0; i < 15; i++ {
		// Decreasing similarity as i grows, all above threshold
		x := 0.99 - float64(i)*0.01
		users = append(users, &types.User{
			ID:   fmt.Sprintf("u%02d", i),
			Name: fmt.Sprintf("User %d", i),
			Skills: []types.SkillVector{
				{Name: "go", Vector: []float64{x, math.Sqrt(1 - x*x)}},
			},
		})
	}

	agg := New(newFakeStore(users...), PairThreshold, FeedLimit, nil)
	feed, err := agg.Build(context.Background(), "me")
	require.NoError(t, err)

	require.Len(t, feed.BySkill, FeedLimit, "category capped at limit")
	for i := 1; i < len(feed.BySkill); i++ {
		assert.GreaterOrEqual(t, feed.BySkill[i-1].Score, feed.BySkill[i].Score,
			"by-skill scores must be non-increasing")
	}
	assert.Equal(t, "u00", feed.BySkill[0].User.ID)
}

func TestBuildEmptyRequesterFieldsYieldEmptyCategories(t *testing.T) {
	requester := &types.User{ID: "me", Name: "Me"} // no location/college/availability
	other := &types.User{ID: "o", Name: "O", Location: "Delhi", College: "IIT", Availability: "weekends"}

	fs := newFakeStore(requester, other)
	agg := New(fs, 0, 0, nil)

	feed, err := agg.Build(context.Background(), "me")
	require.NoError(t, err)

	assert.Empty(t, feed.ByLocation, "empty location must not match everything")
	assert.Empty(t, feed.ByCollege)
	assert.Empty(t, feed.ByAvailability)
	assert.Equal(t, 0, fs.filterCalls, "empty fields skip the store entirely")
}

func TestBuildFieldCategories(t *testing.T) {
	requester := &types.User{ID: "me", Name: "Me", Location: "Chennai", College: "Anna University", Availability: "weekends"}
	sameCity := &types.User{ID: "city", Name: "City", Location: "chennai suburb"}
	sameCollege := &types.User{ID: "college", Name: "College", College: "anna university"}
	sameAvail := &types.User{ID: "avail", Name: "Avail", Availability: "weekends"}
	differentAvail := &types.User{ID: "navail", Name: "NAvail", Availability: "Weekends"} // case differs: no match

	agg := New(newFakeStore(requester, sameCity, sameCollege, sameAvail, differentAvail), 0, 0, nil)
	feed, err := agg.Build(context.Background(), "me")
	require.NoError(t, err)

	require.Len(t, feed.ByLocation, 1)
	assert.Equal(t, "city", feed.ByLocation[0].ID)
	require.Len(t, feed.ByCollege, 1)
	assert.Equal(t, "college", feed.ByCollege[0].ID)
	require.Len(t, feed.ByAvailability, 1)
	assert.Equal(t, "avail", feed.ByAvailability[0].ID)
}

func TestBuildCategoryFailureIsIsolated(t *testing.T) {
	requester := &types.User{ID: "me", Name: "Me", Location: "Pune", Availability: "evenings",
		Skills: []types.SkillVector{{Name: "go", Vector: []float64{1, 0}}}}
	other := &types.User{ID: "o", Name: "O", Location: "Pune", Availability: "evenings",
		Skills: []types.SkillVector{{Name: "go", Vector: []float64{1, 0}}}}

	fs := newFakeStore(requester, other)
	fs.listErr = errors.New("pool unavailable")

	agg := New(fs, 0, 0, nil)
	feed, err := agg.Build(context.Background(), "me")
	require.NoError(t, err, "one failed category must not fail the feed")

	assert.Empty(t, feed.BySkill)
	assert.Contains(t, feed.Errors, "bySkill")

	// The other categories still populated
	require.Len(t, feed.ByLocation, 1)
	require.Len(t, feed.ByAvailability, 1)
}

func TestBuildUnknownRequester(t *testing.T) {
	agg := New(newFakeStore(), 0, 0, nil)
	_, err := agg.Build(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
