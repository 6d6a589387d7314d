// Package store persists projects and brand profiles across sessions,
// splitting binary payloads from metadata so large blobs never bloat the
// serialized records. Metadata lives in the projects/brand_profiles
// collections as lean JSON documents; payloads live in the assets collection
// keyed by asset id. Reads rehydrate the lean record by reattaching each
// referenced payload.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"genieus-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence contract shared by the postgres and in-memory
// implementations.
//
// SaveProject and SaveBrandProfile have upsert semantics and write blobs plus
// the lean record inside one transaction. DeleteProject removes the metadata
// record and every blob it references; deleting a missing project is a no-op.
// Reads tolerate missing blobs: the asset comes back with State BlobMissing
// instead of failing the whole read.
type Store interface {
	SaveProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	ProjectsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	// Asset fetches a single binary payload by id.
	Asset(ctx context.Context, id string) (*models.Asset, error)

	SaveBrandProfile(ctx context.Context, b *models.BrandProfile) error
	BrandProfile(ctx context.Context, userID uuid.UUID) (*models.BrandProfile, error)
	DeleteBrandProfile(ctx context.Context, userID uuid.UUID) error
}

// Blob is a binary payload as stored in the assets collection.
type Blob struct {
	ID       string
	MimeType string
	Name     string
	Data     []byte
}

// Lean returns a metadata-only deep copy of the project plus the distinct
// binary payloads to write into the asset store. Assets without a payload are
// skipped on the blob side but still referenced by the lean record; duplicate
// ids are written once.
func Lean(p *models.Project) (*models.Project, []Blob) {
	clone := p.Clone()
	seen := make(map[string]bool)
	var blobs []Blob
	clone.VisitAssets(func(a *models.Asset) {
		if a.HasData() && !seen[a.ID] {
			seen[a.ID] = true
			blobs = append(blobs, Blob{ID: a.ID, MimeType: a.MimeType, Name: a.Name, Data: a.Data})
		}
		a.Data = nil
		a.State = models.BlobStripped
	})
	return clone, blobs
}

// LeanBrand is the brand-profile specialization of Lean: a single optional
// logo instead of a list of heterogeneous asset fields.
func LeanBrand(b *models.BrandProfile) (*models.BrandProfile, []Blob) {
	clone := b.Clone()
	var blobs []Blob
	if clone.Logo != nil {
		if clone.Logo.HasData() {
			blobs = append(blobs, Blob{ID: clone.Logo.ID, MimeType: clone.Logo.MimeType, Name: clone.Logo.Name, Data: clone.Logo.Data})
		}
		clone.Logo.Data = nil
		clone.Logo.State = models.BlobStripped
	}
	return clone, blobs
}

// Rehydrate reattaches payloads to a lean project in place. lookup returns
// the payload for an asset id, or false when the blob is absent; absent blobs
// leave the asset in the BlobMissing state.
func Rehydrate(p *models.Project, lookup func(id string) ([]byte, bool)) {
	p.VisitAssets(func(a *models.Asset) {
		rehydrateAsset(a, lookup)
	})
}

// RehydrateBrand reattaches the logo payload to a lean brand profile.
func RehydrateBrand(b *models.BrandProfile, lookup func(id string) ([]byte, bool)) {
	if b.Logo != nil {
		rehydrateAsset(b.Logo, lookup)
	}
}

func rehydrateAsset(a *models.Asset, lookup func(id string) ([]byte, bool)) {
	if data, ok := lookup(a.ID); ok {
		a.Data = data
		a.State = models.BlobAttached
		return
	}
	a.Data = nil
	a.State = models.BlobMissing
}

// orphanedAssetIDs lists asset ids referenced by a previously stored lean
// record but absent from the incoming save. A save that replaces an asset
// (regeneration, a re-uploaded slot) leaves the old payload unreferenced, and
// nothing else would ever clean it up.
func orphanedAssetIDs(record []byte, keep []string) []string {
	var old models.Project
	if err := json.Unmarshal(record, &old); err != nil {
		return nil
	}
	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	var orphans []string
	for _, id := range old.AssetIDs() {
		if !kept[id] {
			orphans = append(orphans, id)
		}
	}
	return orphans
}
