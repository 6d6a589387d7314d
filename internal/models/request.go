package models

type CreateProjectRequest struct {
	// Mode is one of: product_ad, art_maker, video_maker, ugc_video, ai_agent
	Mode        string `json:"mode" example:"product_ad"`
	Prompt      string `json:"prompt,omitempty"`
	Script      string `json:"script,omitempty"`
	Scene       string `json:"scene,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty" example:"1:1"`
	BatchSize   int    `json:"batch_size,omitempty" example:"2"`
}

type GenerateRequest struct {
	// Prompt overrides the project prompt when set
	Prompt string `json:"prompt,omitempty"`
}

type RegenerateRequest struct {
	// AssetID selects the generated image to replace; when empty a new image
	// is appended instead
	AssetID string `json:"asset_id,omitempty"`
	Prompt  string `json:"prompt,omitempty"`
}

type AnimateRequest struct {
	// AssetID selects the generated image used as the video start frame
	AssetID string `json:"asset_id"`
	Prompt  string `json:"prompt,omitempty"`
}

type ExtendRequest struct {
	// AssetID selects the generated video to continue from
	AssetID string `json:"asset_id"`
	Prompt  string `json:"prompt,omitempty"`
}

type BrandProfileRequest struct {
	Business   string   `json:"business"`
	Overview   string   `json:"overview,omitempty"`
	Fonts      []string `json:"fonts,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Missions   []string `json:"missions,omitempty"`
	Values     []string `json:"values,omitempty"`
	Tones      []string `json:"tones,omitempty"`
	Aesthetics []string `json:"aesthetics,omitempty"`
}

type BrandFetchRequest struct {
	// URL of the business website to extract a brand profile from
	URL string `json:"url" example:"https://example.com"`
}

type ChatMessageRequest struct {
	Text string `json:"text"`
	// AssetIDs attach previously uploaded assets as image context
	AssetIDs []string `json:"asset_ids,omitempty"`
}

type SelectPlanRequest struct {
	// Plan is one of: free, creator, studio
	Plan string `json:"plan" example:"creator"`
	// CardNumber is only used to derive the mock payment method record
	CardNumber string `json:"card_number,omitempty"`
	ExpMonth   int    `json:"exp_month,omitempty"`
	ExpYear    int    `json:"exp_year,omitempty"`
}

type NavigateRequest struct {
	Step string `json:"step" example:"result"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
