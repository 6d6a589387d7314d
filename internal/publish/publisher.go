// Package publish mirrors final generated assets to a Supabase storage
// bucket so they can be served from a public URL. The durable copy always
// lives in the local asset store; mirroring is best-effort.
package publish

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
	"genieus-backend/internal/models"
)

type Publisher struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewPublisher(supabaseURL, serviceRoleKey, bucket string) (*Publisher, error) {
	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &Publisher{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadAsset mirrors one asset under users/{user_id}/projects/{project_id}/
// and returns the storage path and public URL.
func (p *Publisher) UploadAsset(userID, projectID uuid.UUID, a *models.Asset) (string, string, error) {
	if !a.HasData() {
		return "", "", fmt.Errorf("asset %s has no binary payload to publish", a.ID)
	}

	storagePath := fmt.Sprintf("users/%s/projects/%s/%s", userID.String(), projectID.String(), a.ID)

	contentType := a.MimeType
	upsert := true
	_, err := p.client.UploadFile(p.bucket, storagePath, bytes.NewReader(a.Data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload asset: %w", err)
	}

	return storagePath, p.PublicURL(storagePath), nil
}

func (p *Publisher) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", p.baseURL, p.bucket, storagePath)
}

// DeleteProjectAssets removes every mirrored object for a project.
func (p *Publisher) DeleteProjectAssets(userID, projectID uuid.UUID) error {
	prefix := fmt.Sprintf("users/%s/projects/%s/", userID.String(), projectID.String())

	files, err := p.client.ListFiles(p.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		filePaths := make([]string, len(files))
		for i, file := range files {
			filePaths[i] = file.Name
		}
		if _, err := p.client.RemoveFile(p.bucket, filePaths); err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}
