package types

import "strings"

// SkillVector is a named skill with its embedding vector.
// Vectors are immutable once created: skill edits are add/remove, never update.
type SkillVector struct {
	Name   string    `json:"name"`
	Vector []float64 `json:"vector,omitempty"`
}

// User is a registered developer profile with embedded skills.
type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email,omitempty"`
	ProfilePic   string        `json:"profilePic,omitempty"`
	Bio          string        `json:"bio,omitempty"`
	Location     string        `json:"location,omitempty"`
	Availability string        `json:"availability,omitempty"`
	College      string        `json:"college,omitempty"`
	Skills       []SkillVector `json:"skills,omitempty"`
}

// PublicUser is the projection of a User returned to callers.
// Skills carry names only; vectors never leave the service.
type PublicUser struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ProfilePic   string   `json:"profilePic,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Location     string   `json:"location,omitempty"`
	Availability string   `json:"availability,omitempty"`
	College      string   `json:"college,omitempty"`
	Skills       []string `json:"skills"`
}

// Public returns the caller-facing projection of the user.
func (u *User) Public() PublicUser {
	skills := make([]string, 0, len(u.Skills))
	for _, s := range u.Skills {
		skills = append(skills, s.Name)
	}
	return PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		ProfilePic:   u.ProfilePic,
		Bio:          u.Bio,
		Location:     u.Location,
		Availability: u.Availability,
		College:      u.College,
		Skills:       skills,
	}
}

// HasSkill reports whether the user already owns a skill with the given
// name. Skill names are unique case-insensitively.
func (u *User) HasSkill(name string) bool {
	for _, s := range u.Skills {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// ValidSkills returns the user's skills whose vectors are usable for
// scoring: non-empty and, when dim > 0, of exactly that dimensionality.
// Malformed vectors are filtered out here rather than propagated as
// request-fatal errors.
func (u *User) ValidSkills(dim int) []SkillVector {
	valid := make([]SkillVector, 0, len(u.Skills))
	for _, s := range u.Skills {
		if len(s.Vector) == 0 {
			continue
		}
		if dim > 0 && len(s.Vector) != dim {
			continue
		}
		valid = append(valid, s)
	}
	return valid
}
