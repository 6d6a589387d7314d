package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"genieus-backend/internal/models"
)

// Memory implements Store on in-process maps. It keeps the same lean-record /
// blob split as the postgres implementation so the round-trip behavior is
// identical. Used by tests and by local development without a database.
type Memory struct {
	mu       sync.Mutex
	projects map[uuid.UUID]memoryRecord
	assets   map[string]Blob
	brands   map[uuid.UUID][]byte
}

type memoryRecord struct {
	userID    uuid.UUID
	createdAt time.Time
	record    []byte
}

func NewMemory() *Memory {
	return &Memory{
		projects: make(map[uuid.UUID]memoryRecord),
		assets:   make(map[string]Blob),
		brands:   make(map[uuid.UUID][]byte),
	}
}

func (s *Memory) SaveProject(ctx context.Context, p *models.Project) error {
	lean, blobs := Lean(p)

	record, err := json.Marshal(lean)
	if err != nil {
		return fmt.Errorf("failed to encode project record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.projects[p.ID]; ok {
		for _, id := range orphanedAssetIDs(prev.record, p.AssetIDs()) {
			delete(s.assets, id)
		}
	}
	for _, b := range blobs {
		s.assets[b.ID] = b
	}
	s.projects[p.ID] = memoryRecord{userID: p.UserID, createdAt: p.CreatedAt, record: record}
	return nil
}

func (s *Memory) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.projects[projectID]
	if !ok || rec.userID != userID {
		return nil, ErrNotFound
	}
	return s.decodeLocked(rec.record)
}

func (s *Memory) ProjectsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []memoryRecord
	for _, rec := range s.projects {
		if rec.userID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].createdAt.After(recs[j].createdAt)
	})

	projects := make([]*models.Project, 0, len(recs))
	for _, rec := range recs {
		p, err := s.decodeLocked(rec.record)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *Memory) decodeLocked(record []byte) (*models.Project, error) {
	var p models.Project
	if err := json.Unmarshal(record, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project record: %w", err)
	}
	Rehydrate(&p, s.lookupLocked)
	return &p, nil
}

func (s *Memory) lookupLocked(id string) ([]byte, bool) {
	b, ok := s.assets[id]
	if !ok {
		return nil, false
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return data, true
}

func (s *Memory) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.projects[projectID]
	if !ok {
		return nil
	}

	var p models.Project
	if err := json.Unmarshal(rec.record, &p); err != nil {
		return fmt.Errorf("failed to decode project record: %w", err)
	}
	for _, id := range p.AssetIDs() {
		delete(s.assets, id)
	}
	delete(s.projects, projectID)
	return nil
}

func (s *Memory) Asset(ctx context.Context, id string) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &models.Asset{ID: b.ID, MimeType: b.MimeType, Name: b.Name, Data: data, State: models.BlobAttached}, nil
}

func (s *Memory) SaveBrandProfile(ctx context.Context, b *models.BrandProfile) error {
	lean, blobs := LeanBrand(b)

	record, err := json.Marshal(lean)
	if err != nil {
		return fmt.Errorf("failed to encode brand profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.brands[b.UserID]; ok {
		var old models.BrandProfile
		if err := json.Unmarshal(prev, &old); err == nil && old.Logo != nil {
			if b.Logo == nil || old.Logo.ID != b.Logo.ID {
				delete(s.assets, old.Logo.ID)
			}
		}
	}
	for _, blob := range blobs {
		s.assets[blob.ID] = blob
	}
	s.brands[b.UserID] = record
	return nil
}

func (s *Memory) BrandProfile(ctx context.Context, userID uuid.UUID) (*models.BrandProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.brands[userID]
	if !ok {
		return nil, ErrNotFound
	}
	var b models.BrandProfile
	if err := json.Unmarshal(record, &b); err != nil {
		return nil, fmt.Errorf("failed to decode brand profile: %w", err)
	}
	RehydrateBrand(&b, s.lookupLocked)
	return &b, nil
}

func (s *Memory) DeleteBrandProfile(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.brands[userID]
	if !ok {
		return nil
	}
	var b models.BrandProfile
	if err := json.Unmarshal(record, &b); err != nil {
		return fmt.Errorf("failed to decode brand profile: %w", err)
	}
	if b.Logo != nil {
		delete(s.assets, b.Logo.ID)
	}
	delete(s.brands, userID)
	return nil
}

// RawProject returns the lean record exactly as stored, for inspection in
// tests and debug tooling.
func (s *Memory) RawProject(projectID uuid.UUID) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[projectID]
	if !ok {
		return nil, false
	}
	out := make(json.RawMessage, len(rec.record))
	copy(out, rec.record)
	return out, true
}

// HasBlob reports whether the asset store holds a payload for id.
func (s *Memory) HasBlob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.assets[id]
	return ok
}
