package models

import (
	"time"

	"github.com/google/uuid"
)

// BrandProfile is a user's brand identity record. One profile per user,
// keyed by user id. The logo follows the same split-storage pattern as
// project assets.
type BrandProfile struct {
	UserID     uuid.UUID `json:"user_id"`
	Business   string    `json:"business"`
	Overview   string    `json:"overview,omitempty"`
	Fonts      []string  `json:"fonts,omitempty"`
	Colors     []string  `json:"colors,omitempty"`
	Missions   []string  `json:"missions,omitempty"`
	Values     []string  `json:"values,omitempty"`
	Tones      []string  `json:"tones,omitempty"`
	Aesthetics []string  `json:"aesthetics,omitempty"`
	Logo       *Asset    `json:"logo,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the profile.
func (b *BrandProfile) Clone() *BrandProfile {
	clone := *b
	clone.Logo = b.Logo.Clone()
	clone.Fonts = cloneStrings(b.Fonts)
	clone.Colors = cloneStrings(b.Colors)
	clone.Missions = cloneStrings(b.Missions)
	clone.Values = cloneStrings(b.Values)
	clone.Tones = cloneStrings(b.Tones)
	clone.Aesthetics = cloneStrings(b.Aesthetics)
	return &clone
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
