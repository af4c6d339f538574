package types

import "errors"

// Skill vector errors, surfaced at the storage boundary.
var (
	ErrEmptyVector        = errors.New("skill vector is empty")
	ErrDimensionMismatch  = errors.New("skill vector has wrong dimensionality")
	ErrDuplicateSkillName = errors.New("skill name already exists")
)
