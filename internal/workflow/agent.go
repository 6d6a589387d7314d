package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/genai"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
)

// Schemas handed to the collaborator for structured generation. These are
// plain JSON Schema fragments; the collaborator enforces them server side.
var (
	briefSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"product_name":    map[string]any{"type": "string"},
			"product_summary": map[string]any{"type": "string"},
			"audience":        map[string]any{"type": "string"},
			"tone":            map[string]any{"type": "string"},
			"key_messages":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"product_name", "product_summary", "audience"},
	}

	conceptsSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"visual_cues": map[string]any{"type": "string"},
					},
					"required": []string{"title", "description"},
				},
			},
		},
		"required": []string{"concepts"},
	}

	promptsSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompts": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"prompts"},
	}

	publishingPackSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"caption":        map[string]any{"type": "string"},
			"hashtags":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"call_to_action": map[string]any{"type": "string"},
		},
		"required": []string{"caption"},
	}

	brandProfileSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"business":   map[string]any{"type": "string"},
			"overview":   map[string]any{"type": "string"},
			"fonts":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"colors":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"missions":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"values":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"tones":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"aesthetics": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"business"},
	}
)

type agentPrompts struct {
	Prompts []string `json:"prompts"`
}

// RunAgent runs the full campaign chain for an agent project: brief the
// product, propose concepts, elaborate them into image prompts, generate the
// images, then write the publishing copy. Requires an uploaded product image.
func (e *Engine) RunAgent(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	return e.run(ctx, userID, projectID, "agent", CostAgent,
		func(ctx context.Context, sess *session.State, work *models.Project) error {
			if !work.ProductAsset.HasData() {
				return fmt.Errorf("%w: product image", ErrMissingInput)
			}
			product := imageInputs(work.ProductAsset)

			idx := sess.PushStatus("brief", "Studying your product")
			brief, err := e.gen.GenerateJSON(ctx, genai.StructuredRequest{
				Prompt:     "Analyze this product image and write a creative brief for an ad campaign.\n\nUser direction: " + work.Prompt,
				SchemaName: "creative_brief",
				Schema:     briefSchema,
				Images:     product,
			})
			if err != nil {
				return fmt.Errorf("brief generation failed: %w", err)
			}
			work.Brief = brief
			sess.MarkDone(idx)

			idx = sess.PushStatus("concepts", "Developing ad concepts")
			concepts, err := e.gen.GenerateJSON(ctx, genai.StructuredRequest{
				Prompt:     "Propose three distinct ad concepts for this brief:\n" + string(brief),
				SchemaName: "ad_concepts",
				Schema:     conceptsSchema,
				Images:     product,
			})
			if err != nil {
				return fmt.Errorf("concept generation failed: %w", err)
			}
			work.Concepts = concepts
			sess.MarkDone(idx)

			idx = sess.PushStatus("prompts", "Elaborating visual prompts")
			doc, err := e.gen.GenerateJSON(ctx, genai.StructuredRequest{
				Prompt:     "Turn each of these ad concepts into one detailed image generation prompt. Keep the product faithful to the reference image.\n" + string(concepts),
				SchemaName: "image_prompts",
				Schema:     promptsSchema,
			})
			if err != nil {
				return fmt.Errorf("prompt elaboration failed: %w", err)
			}
			var prompts agentPrompts
			if err := json.Unmarshal(doc, &prompts); err != nil {
				return fmt.Errorf("prompt elaboration returned malformed document: %w", err)
			}
			if len(prompts.Prompts) == 0 {
				return fmt.Errorf("prompt elaboration returned no prompts")
			}
			sess.MarkDone(idx)

			idx = sess.PushStatus("images", "Generating campaign visuals")
			for _, prompt := range prompts.Prompts {
				images, err := e.gen.GenerateImages(ctx, genai.ImageRequest{
					Prompt:      prompt,
					AspectRatio: work.AspectRatio,
					Count:       1,
					Images:      product,
				})
				if err != nil {
					return fmt.Errorf("image generation failed: %w", err)
				}
				work.GeneratedImages = append(work.GeneratedImages, newImageAsset(len(work.GeneratedImages), images[0]))
			}
			sess.MarkDone(idx)

			return e.generateCopy(ctx, sess, work)
		})
}

// BrandFromURL reserves credits, asks the collaborator to extract a brand
// profile from the given website, and saves it. There is no project; the
// in-flight lock is keyed by the user instead.
func (e *Engine) BrandFromURL(ctx context.Context, userID uuid.UUID, siteURL string) (*models.BrandProfile, error) {
	sess := e.sessions.For(userID)

	if !e.tryAcquire(userID) {
		return nil, ErrBusy
	}
	defer e.release(userID)

	e.accounts.Ensure(userID)

	if err := e.ledger.Reserve(userID, CostBrandFetch); err != nil {
		sess.SetError("Not enough credits for this generation.")
		return nil, err
	}

	e.log.Info("workflow started",
		zap.String("workflow", "brand_fetch"),
		zap.String("user_id", userID.String()),
		zap.Int("cost", CostBrandFetch))

	sess.BeginOp()

	fetch := func() (*models.BrandProfile, error) {
		idx := sess.PushStatus("brand", "Reading your website")
		doc, err := e.gen.GenerateJSON(ctx, genai.StructuredRequest{
			Prompt:     "Visit this website and extract the brand profile: business name, overview, fonts, brand colors, missions, values, tones of voice and visual aesthetics.\n\nURL: " + siteURL,
			SchemaName: "brand_profile",
			Schema:     brandProfileSchema,
		})
		if err != nil {
			return nil, fmt.Errorf("brand extraction failed: %w", err)
		}

		var profile models.BrandProfile
		if err := json.Unmarshal(doc, &profile); err != nil {
			return nil, fmt.Errorf("brand document is malformed: %w", err)
		}
		profile.UserID = userID
		profile.UpdatedAt = time.Now()

		if err := e.store.SaveBrandProfile(ctx, &profile); err != nil {
			return nil, fmt.Errorf("failed to save brand profile: %w", err)
		}
		sess.MarkDone(idx)
		return &profile, nil
	}

	profile, err := fetch()
	if err != nil {
		if e.RefundOnFailure {
			e.ledger.Refund(userID, CostBrandFetch)
		}
		e.log.Warn("workflow failed",
			zap.String("workflow", "brand_fetch"),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		sess.EndOp(brandUserFacing(err))
		return nil, err
	}

	sess.NavigateTo(session.StepBrand)
	sess.EndOp("")
	if e.events != nil {
		e.events.PublishUserEvent(userID, "brand_fetched", map[string]interface{}{
			"user_id":  userID.String(),
			"business": profile.Business,
		})
	}
	return profile, nil
}

func brandUserFacing(err error) string {
	if errors.Is(err, credits.ErrInsufficient) {
		return "Not enough credits for this generation."
	}
	return "We couldn't read that website. Check the URL and try again."
}
