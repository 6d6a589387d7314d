package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"genieus-backend/internal/genai"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
)

// Generate runs the project's primary workflow, branching on its creative
// mode: image batches for the ad and art modes, a polled video generation for
// the video modes, the full agent chain for agent projects.
func (e *Engine) Generate(ctx context.Context, userID, projectID uuid.UUID, overridePrompt string) (*models.Project, error) {
	p, err := e.store.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	switch p.Mode {
	case models.ModeProductAd, models.ModeArtMaker:
		return e.run(ctx, userID, projectID, "generate_images", CostImageBatch,
			func(ctx context.Context, sess *session.State, work *models.Project) error {
				if err := e.generateImages(ctx, sess, work, overridePrompt); err != nil {
					return err
				}
				if work.Mode == models.ModeProductAd {
					return e.generateCopy(ctx, sess, work)
				}
				return nil
			})
	case models.ModeVideoMaker, models.ModeUGCVideo:
		return e.run(ctx, userID, projectID, "generate_video", CostVideo,
			func(ctx context.Context, sess *session.State, work *models.Project) error {
				return e.generateVideo(ctx, sess, work, overridePrompt)
			})
	case models.ModeAIAgent:
		return e.RunAgent(ctx, userID, projectID)
	default:
		return nil, fmt.Errorf("unknown creative mode %q", p.Mode)
	}
}

func (e *Engine) generateImages(ctx context.Context, sess *session.State, work *models.Project, overridePrompt string) error {
	prompt := work.Prompt
	if overridePrompt != "" {
		prompt = overridePrompt
		work.Prompt = overridePrompt
	}
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt", ErrMissingInput)
	}

	count := work.BatchSize
	if count <= 0 {
		count = 1
	}

	idx := sess.PushStatus("images", "Generating your visuals")
	refs := append(imageInputs(work.ProductAsset), imageInputs(work.ReferenceAssets...)...)
	images, err := e.gen.GenerateImages(ctx, genai.ImageRequest{
		Prompt:      prompt,
		AspectRatio: work.AspectRatio,
		Count:       count,
		Images:      refs,
	})
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	sess.MarkDone(idx)

	for _, img := range images {
		work.GeneratedImages = append(work.GeneratedImages, newImageAsset(len(work.GeneratedImages), img))
	}
	return nil
}

func (e *Engine) generateVideo(ctx context.Context, sess *session.State, work *models.Project, overridePrompt string) error {
	prompt := work.Prompt
	if overridePrompt != "" {
		prompt = overridePrompt
		work.Prompt = overridePrompt
	}
	if work.Script != "" {
		prompt = prompt + "\n\nScript:\n" + work.Script
	}
	if work.Scene != "" {
		prompt = prompt + "\n\nScene:\n" + work.Scene
	}
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt", ErrMissingInput)
	}

	req := genai.VideoRequest{
		Prompt:      prompt,
		AspectRatio: work.AspectRatio,
	}
	if work.StartFrame.HasData() {
		in := imageInputs(work.StartFrame)
		req.StartFrame = &in[0]
	}
	if work.EndFrame.HasData() {
		in := imageInputs(work.EndFrame)
		req.EndFrame = &in[0]
	}

	idx := sess.PushStatus("video", "Submitting video generation")
	opID, err := e.gen.StartVideo(ctx, req)
	if err != nil {
		return fmt.Errorf("video generation failed: %w", err)
	}
	sess.MarkDone(idx)

	idx = sess.PushStatus("render", "Rendering your video")
	op, err := e.gen.WaitVideo(ctx, opID)
	if err != nil {
		return fmt.Errorf("video generation failed: %w", err)
	}
	sess.MarkDone(idx)

	work.GeneratedVideos = append(work.GeneratedVideos, newVideoAsset(op))
	return nil
}

func (e *Engine) generateCopy(ctx context.Context, sess *session.State, work *models.Project) error {
	idx := sess.PushStatus("copy", "Writing your social copy")
	doc, err := e.gen.GenerateJSON(ctx, genai.StructuredRequest{
		Prompt:     "Write a social publishing package (caption, hashtags, call to action) for this ad:\n" + work.Prompt,
		SchemaName: "publishing_pack",
		Schema:     publishingPackSchema,
		Images:     imageInputs(work.ProductAsset),
	})
	if err != nil {
		return fmt.Errorf("copy generation failed: %w", err)
	}
	sess.MarkDone(idx)

	work.PublishingPack = doc
	return nil
}

// RegenerateImage replaces one generated image (or appends a fresh one when
// no target is named) using the project prompt or an override.
func (e *Engine) RegenerateImage(ctx context.Context, userID, projectID uuid.UUID, assetID, overridePrompt string) (*models.Project, error) {
	return e.run(ctx, userID, projectID, "regenerate_image", CostRegenerate,
		func(ctx context.Context, sess *session.State, work *models.Project) error {
			target := -1
			if assetID != "" {
				for i, a := range work.GeneratedImages {
					if a.ID == assetID {
						target = i
						break
					}
				}
				if target < 0 {
					return fmt.Errorf("%w: generated image %s", ErrMissingInput, assetID)
				}
			}

			prompt := work.Prompt
			if overridePrompt != "" {
				prompt = overridePrompt
			}
			if strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("%w: prompt", ErrMissingInput)
			}

			idx := sess.PushStatus("images", "Regenerating image")
			images, err := e.gen.GenerateImages(ctx, genai.ImageRequest{
				Prompt:      prompt,
				AspectRatio: work.AspectRatio,
				Count:       1,
				Images:      append(imageInputs(work.ProductAsset), imageInputs(work.ReferenceAssets...)...),
			})
			if err != nil {
				return fmt.Errorf("image generation failed: %w", err)
			}
			sess.MarkDone(idx)

			replacement := newImageAsset(len(work.GeneratedImages), images[0])
			if target >= 0 {
				work.GeneratedImages[target] = replacement
			} else {
				work.GeneratedImages = append(work.GeneratedImages, replacement)
			}
			return nil
		})
}

// AnimateImage turns one generated image into a video, using it as the start
// frame.
func (e *Engine) AnimateImage(ctx context.Context, userID, projectID uuid.UUID, assetID, prompt string) (*models.Project, error) {
	return e.run(ctx, userID, projectID, "animate_image", CostAnimate,
		func(ctx context.Context, sess *session.State, work *models.Project) error {
			source := work.FindAsset(assetID)
			if !source.HasData() {
				return fmt.Errorf("%w: image %s", ErrMissingInput, assetID)
			}
			if strings.TrimSpace(prompt) == "" {
				prompt = "Animate this image with subtle, natural motion."
			}

			frame := genai.ImageInput{MimeType: source.MimeType, Data: source.Data}

			idx := sess.PushStatus("video", "Submitting animation")
			opID, err := e.gen.StartVideo(ctx, genai.VideoRequest{
				Prompt:      prompt,
				AspectRatio: work.AspectRatio,
				StartFrame:  &frame,
			})
			if err != nil {
				return fmt.Errorf("video generation failed: %w", err)
			}
			sess.MarkDone(idx)

			idx = sess.PushStatus("render", "Rendering your video")
			op, err := e.gen.WaitVideo(ctx, opID)
			if err != nil {
				return fmt.Errorf("video generation failed: %w", err)
			}
			sess.MarkDone(idx)

			work.GeneratedVideos = append(work.GeneratedVideos, newVideoAsset(op))
			return nil
		})
}

// ExtendVideo continues one generated video into a longer clip.
func (e *Engine) ExtendVideo(ctx context.Context, userID, projectID uuid.UUID, assetID, prompt string) (*models.Project, error) {
	return e.run(ctx, userID, projectID, "extend_video", CostExtend,
		func(ctx context.Context, sess *session.State, work *models.Project) error {
			source := work.FindAsset(assetID)
			if !source.HasData() {
				return fmt.Errorf("%w: video %s", ErrMissingInput, assetID)
			}
			if strings.TrimSpace(prompt) == "" {
				prompt = "Continue this video naturally."
			}

			clip := genai.ImageInput{MimeType: source.MimeType, Data: source.Data}

			idx := sess.PushStatus("video", "Submitting extension")
			opID, err := e.gen.StartVideo(ctx, genai.VideoRequest{
				Prompt:      prompt,
				AspectRatio: work.AspectRatio,
				SourceVideo: &clip,
			})
			if err != nil {
				return fmt.Errorf("video generation failed: %w", err)
			}
			sess.MarkDone(idx)

			idx = sess.PushStatus("render", "Rendering your video")
			op, err := e.gen.WaitVideo(ctx, opID)
			if err != nil {
				return fmt.Errorf("video generation failed: %w", err)
			}
			sess.MarkDone(idx)

			work.GeneratedVideos = append(work.GeneratedVideos, newVideoAsset(op))
			return nil
		})
}
