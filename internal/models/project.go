package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreativeMode selects which generation workflow a project runs.
type CreativeMode string

const (
	ModeProductAd  CreativeMode = "product_ad"
	ModeArtMaker   CreativeMode = "art_maker"
	ModeVideoMaker CreativeMode = "video_maker"
	ModeUGCVideo   CreativeMode = "ugc_video"
	ModeAIAgent    CreativeMode = "ai_agent"
)

// Valid reports whether the mode is one of the five creative modes.
func (m CreativeMode) Valid() bool {
	switch m {
	case ModeProductAd, ModeArtMaker, ModeVideoMaker, ModeUGCVideo, ModeAIAgent:
		return true
	}
	return false
}

// Project is a single creative work item: the user's inputs, settings and
// generated outputs. Every referenced asset has a stable unique id that keys
// its payload in the separate asset store.
type Project struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Mode        CreativeMode `json:"mode"`
	Prompt      string       `json:"prompt,omitempty"`
	Script      string       `json:"script,omitempty"`
	Scene       string       `json:"scene,omitempty"`
	AspectRatio string       `json:"aspect_ratio,omitempty"`
	BatchSize   int          `json:"batch_size,omitempty"`

	ProductAsset    *Asset   `json:"product_asset,omitempty"`
	GeneratedImages []*Asset `json:"generated_images,omitempty"`
	GeneratedVideos []*Asset `json:"generated_videos,omitempty"`
	ReferenceAssets []*Asset `json:"reference_assets,omitempty"`
	StartFrame      *Asset   `json:"start_frame,omitempty"`
	EndFrame        *Asset   `json:"end_frame,omitempty"`

	// Structured documents produced by the generative collaborator. Stored
	// verbatim; this service never interprets their inner fields.
	Brief          json.RawMessage `json:"brief,omitempty"`
	Concepts       json.RawMessage `json:"concepts,omitempty"`
	PublishingPack json.RawMessage `json:"publishing_pack,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// VisitAssets calls fn for every non-nil asset slot of the project, single
// slots first, then the generated and reference lists in order. The store
// relies on this being the complete set of binary-bearing fields.
func (p *Project) VisitAssets(fn func(a *Asset)) {
	for _, a := range []*Asset{p.ProductAsset, p.StartFrame, p.EndFrame} {
		if a != nil {
			fn(a)
		}
	}
	for _, list := range [][]*Asset{p.GeneratedImages, p.GeneratedVideos, p.ReferenceAssets} {
		for _, a := range list {
			if a != nil {
				fn(a)
			}
		}
	}
}

// AssetIDs returns the ids of every asset the project references.
func (p *Project) AssetIDs() []string {
	var ids []string
	p.VisitAssets(func(a *Asset) {
		ids = append(ids, a.ID)
	})
	return ids
}

// FindAsset returns the referenced asset with the given id, or nil.
func (p *Project) FindAsset(id string) *Asset {
	var found *Asset
	p.VisitAssets(func(a *Asset) {
		if a.ID == id && found == nil {
			found = a
		}
	})
	return found
}

// Clone returns a deep copy of the project. Workflows merge new assets into a
// clone and commit the clone, so a failed workflow leaves the current project
// untouched.
func (p *Project) Clone() *Project {
	clone := *p
	clone.ProductAsset = p.ProductAsset.Clone()
	clone.StartFrame = p.StartFrame.Clone()
	clone.EndFrame = p.EndFrame.Clone()
	clone.GeneratedImages = cloneAssets(p.GeneratedImages)
	clone.GeneratedVideos = cloneAssets(p.GeneratedVideos)
	clone.ReferenceAssets = cloneAssets(p.ReferenceAssets)
	clone.Brief = cloneRaw(p.Brief)
	clone.Concepts = cloneRaw(p.Concepts)
	clone.PublishingPack = cloneRaw(p.PublishingPack)
	return &clone
}

func cloneAssets(in []*Asset) []*Asset {
	if in == nil {
		return nil
	}
	out := make([]*Asset, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(json.RawMessage, len(in))
	copy(out, in)
	return out
}
