package store_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"genieus-backend/internal/models"
	"genieus-backend/internal/store"
)

func newProject(userID uuid.UUID) *models.Project {
	return &models.Project{
		ID:        uuid.New(),
		UserID:    userID,
		Mode:      models.ModeProductAd,
		Prompt:    "a bottle on a beach",
		CreatedAt: time.Now(),
		ProductAsset: &models.Asset{
			ID:       uuid.NewString(),
			MimeType: "image/png",
			Name:     "product.png",
			Data:     []byte("png-bytes"),
			State:    models.BlobAttached,
		},
	}
}

func TestMemory_SaveAndGetProject(t *testing.T) {
	s := store.NewMemory()
	userID := uuid.New()
	p := newProject(userID)

	require.NoError(t, s.SaveProject(context.Background(), p))

	got, err := s.GetProject(context.Background(), p.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Prompt, got.Prompt)
	require.NotNil(t, got.ProductAsset)
	assert.Equal(t, []byte("png-bytes"), got.ProductAsset.Data)
	assert.Equal(t, models.BlobAttached, got.ProductAsset.State)
}

func TestMemory_GetProject_WrongUser(t *testing.T) {
	s := store.NewMemory()
	p := newProject(uuid.New())
	require.NoError(t, s.SaveProject(context.Background(), p))

	_, err := s.GetProject(context.Background(), p.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemory_LeanRecordHoldsNoBinary(t *testing.T) {
	s := store.NewMemory()
	p := newProject(uuid.New())
	require.NoError(t, s.SaveProject(context.Background(), p))

	raw, ok := s.RawProject(p.ID)
	require.True(t, ok)

	// The stored metadata record must never contain the payload, in any
	// encoding.
	assert.NotContains(t, string(raw), "png-bytes")
	assert.NotContains(t, string(raw), "cG5nLWJ5dGVz") // base64 of the payload
	assert.True(t, s.HasBlob(p.ProductAsset.ID))
}

func TestMemory_MissingBlobDegradesSilently(t *testing.T) {
	s := store.NewMemory()
	userID := uuid.New()
	p := newProject(userID)
	// A referenced asset with no payload never reaches the blob store, so the
	// read finds the reference but not the bytes.
	p.GeneratedImages = []*models.Asset{{
		ID:       uuid.NewString(),
		MimeType: "image/png",
		Name:     "lost.png",
	}}
	require.NoError(t, s.SaveProject(context.Background(), p))

	got, err := s.GetProject(context.Background(), p.ID, userID)
	require.NoError(t, err)
	require.Len(t, got.GeneratedImages, 1)
	assert.Equal(t, models.BlobMissing, got.GeneratedImages[0].State)
	assert.Empty(t, got.GeneratedImages[0].Data)
	// The healthy asset is unaffected.
	assert.Equal(t, models.BlobAttached, got.ProductAsset.State)
}

func TestMemory_SaveProject_PrunesReplacedBlobs(t *testing.T) {
	s := store.NewMemory()
	userID := uuid.New()
	p := newProject(userID)
	replaced := &models.Asset{
		ID:       uuid.NewString(),
		MimeType: "image/png",
		Name:     "generated_1.png",
		Data:     []byte("first-take"),
		State:    models.BlobAttached,
	}
	p.GeneratedImages = []*models.Asset{replaced}
	require.NoError(t, s.SaveProject(context.Background(), p))
	require.True(t, s.HasBlob(replaced.ID))

	p.GeneratedImages = []*models.Asset{{
		ID:       uuid.NewString(),
		MimeType: "image/png",
		Name:     "generated_1.png",
		Data:     []byte("second-take"),
		State:    models.BlobAttached,
	}}
	require.NoError(t, s.SaveProject(context.Background(), p))

	// The dropped reference takes its payload with it; the kept assets stay.
	assert.False(t, s.HasBlob(replaced.ID))
	assert.True(t, s.HasBlob(p.GeneratedImages[0].ID))
	assert.True(t, s.HasBlob(p.ProductAsset.ID))
}

func TestMemory_SaveBrandProfile_PrunesReplacedLogo(t *testing.T) {
	s := store.NewMemory()
	userID := uuid.New()
	oldLogo := &models.Asset{
		ID:       uuid.NewString(),
		MimeType: "image/png",
		Name:     "logo.png",
		Data:     []byte("old-logo"),
		State:    models.BlobAttached,
	}
	b := &models.BrandProfile{UserID: userID, Business: "Acme Soda", Logo: oldLogo, UpdatedAt: time.Now()}
	require.NoError(t, s.SaveBrandProfile(context.Background(), b))
	require.True(t, s.HasBlob(oldLogo.ID))

	b.Logo = &models.Asset{
		ID:       uuid.NewString(),
		MimeType: "image/png",
		Name:     "logo.png",
		Data:     []byte("new-logo"),
		State:    models.BlobAttached,
	}
	require.NoError(t, s.SaveBrandProfile(context.Background(), b))

	assert.False(t, s.HasBlob(oldLogo.ID))
	assert.True(t, s.HasBlob(b.Logo.ID))
}

func TestMemory_DeleteProjectRemovesBlobs(t *testing.T) {
	s := store.NewMemory()
	userID := uuid.New()
	p := newProject(userID)
	require.NoError(t, s.SaveProject(context.Background(), p))
	require.True(t, s.HasBlob(p.ProductAsset.ID))

	require.NoError(t, s.DeleteProject(context.Background(), p.ID))

	assert.False(t, s.HasBlob(p.ProductAsset.ID))
	_, err := s.GetProject(context.Background(), p.ID, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, s.DeleteProject(context.Background(), p.ID))
}

func TestMemory_ProjectsForUser_NewestFirstAndFiltered(t *testing.T) {
	s := store.NewMemory()
	userID := uuid.New()

	older := newProject(userID)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newProject(userID)
	other := newProject(uuid.New())

	for _, p := range []*models.Project{older, newer, other} {
		require.NoError(t, s.SaveProject(context.Background(), p))
	}

	projects, err := s.ProjectsForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, newer.ID, projects[0].ID)
	assert.Equal(t, older.ID, projects[1].ID)
}

func TestMemory_Asset(t *testing.T) {
	s := store.NewMemory()
	p := newProject(uuid.New())
	require.NoError(t, s.SaveProject(context.Background(), p))

	a, err := s.Asset(context.Background(), p.ProductAsset.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), a.Data)
	assert.Equal(t, "image/png", a.MimeType)

	_, err = s.Asset(context.Background(), "no-such-asset")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemory_BrandProfileRoundTrip(t *testing.T) {
	s := store.NewMemory()
	userID := uuid.New()
	b := &models.BrandProfile{
		UserID:   userID,
		Business: "Acme Soda",
		Colors:   []string{"#ff0000", "#00ff00"},
		Logo: &models.Asset{
			ID:       uuid.NewString(),
			MimeType: "image/png",
			Name:     "logo.png",
			Data:     []byte("logo-bytes"),
			State:    models.BlobAttached,
		},
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.SaveBrandProfile(context.Background(), b))

	got, err := s.BrandProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Soda", got.Business)
	require.NotNil(t, got.Logo)
	assert.Equal(t, []byte("logo-bytes"), got.Logo.Data)
	assert.Equal(t, models.BlobAttached, got.Logo.State)

	require.NoError(t, s.DeleteBrandProfile(context.Background(), userID))
	assert.False(t, s.HasBlob(b.Logo.ID))
	_, err = s.BrandProfile(context.Background(), userID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLean_DeduplicatesSharedAssetIDs(t *testing.T) {
	shared := &models.Asset{
		ID:       uuid.NewString(),
		MimeType: "image/png",
		Name:     "shared.png",
		Data:     []byte(strings.Repeat("x", 64)),
		State:    models.BlobAttached,
	}
	p := &models.Project{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Mode:            models.ModeArtMaker,
		ProductAsset:    shared,
		ReferenceAssets: []*models.Asset{shared},
	}

	lean, blobs := store.Lean(p)
	assert.Len(t, blobs, 1)
	assert.Equal(t, models.BlobStripped, lean.ProductAsset.State)
	assert.Nil(t, lean.ProductAsset.Data)
	// The original is untouched.
	assert.Equal(t, models.BlobAttached, p.ProductAsset.State)
	assert.NotEmpty(t, p.ProductAsset.Data)
}
