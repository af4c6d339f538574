package store

import (
	"context"
	"errors"

	"github.com/codemate-app/matcher/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// ProfileUpdate carries the mutable profile fields. Nil pointers leave
// the corresponding field untouched.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	ProfilePic   *string
	Bio          *string
	Location     *string
	Availability *string
	College      *string
}

// Filter narrows a user search. Zero values mean "no constraint".
type Filter struct {
	Query        string // matches name or skill name, case-insensitive substring
	Availability string // exact match; "all" is treated as unset
	Location     string // case-insensitive substring
	College      string // case-insensitive substring
}

// Empty reports whether the filter has no constraints at all.
func (f Filter) Empty() bool {
	return f.Query == "" && (f.Availability == "" || f.Availability == "all") &&
		f.Location == "" && f.College == ""
}

// Store defines the interface for persisting and querying user profiles
// and their skill vectors.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error

	// Skill operations. Vectors are immutable: edits are add/remove.
	AddSkill(ctx context.Context, userID, name string, vector []float64) error
	RemoveSkill(ctx context.Context, userID, name string) error

	// Candidate-pool operations
	ListCandidates(ctx context.Context, excludeID string) ([]types.User, error)
	FilterUsers(ctx context.Context, excludeID string, filter Filter) ([]types.User, error)

	// Database operations
	Close() error
}
