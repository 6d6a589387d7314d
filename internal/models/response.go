package models

import "time"

type ProjectResponse struct {
	ID              string          `json:"project_id"`
	Mode            string          `json:"mode"`
	Prompt          string          `json:"prompt,omitempty"`
	Script          string          `json:"script,omitempty"`
	Scene           string          `json:"scene,omitempty"`
	AspectRatio     string          `json:"aspect_ratio,omitempty"`
	BatchSize       int             `json:"batch_size,omitempty"`
	ProductAsset    *AssetResponse  `json:"product_asset,omitempty"`
	GeneratedImages []AssetResponse `json:"generated_images,omitempty"`
	GeneratedVideos []AssetResponse `json:"generated_videos,omitempty"`
	ReferenceAssets []AssetResponse `json:"reference_assets,omitempty"`
	Brief           interface{}     `json:"brief,omitempty"`
	Concepts        interface{}     `json:"concepts,omitempty"`
	PublishingPack  interface{}     `json:"publishing_pack,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type ProjectSummary struct {
	ID         string    `json:"project_id"`
	Mode       string    `json:"mode"`
	Prompt     string    `json:"prompt,omitempty"`
	ImageCount int       `json:"image_count"`
	VideoCount int       `json:"video_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type AssetResponse struct {
	ID        string `json:"asset_id"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size,omitempty"`
	BlobState string `json:"blob_state"`
	// URL serves the binary from this API; PublicURL points at the mirror
	// bucket when the asset has been published
	URL       string `json:"url,omitempty"`
	PublicURL string `json:"public_url,omitempty"`
}

type UploadResponse struct {
	ProjectID string          `json:"project_id"`
	Assets    []AssetResponse `json:"assets"`
}

type GenerateResponse struct {
	Project  ProjectResponse `json:"project"`
	Statuses []StatusEntry   `json:"statuses"`
	Credits  CreditsResponse `json:"credits"`
}

type StatusEntry struct {
	Stage string `json:"stage"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

type CreditsResponse struct {
	Current int `json:"current"`
	Monthly int `json:"monthly"`
}

type AccountResponse struct {
	UserID        string          `json:"user_id"`
	Plan          string          `json:"plan"`
	Credits       CreditsResponse `json:"credits"`
	PaymentMethod *PaymentMethod  `json:"payment_method,omitempty"`
}

type ChatMessageResponse struct {
	Role  string      `json:"role"`
	Text  string      `json:"text,omitempty"`
	Kind  string      `json:"kind"`
	Cards interface{} `json:"cards,omitempty"`
}

type ChatTranscriptResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}

type SessionResponse struct {
	Stack   []string `json:"stack"`
	Current string   `json:"current"`
	Busy    bool     `json:"busy"`
	Error   string   `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
