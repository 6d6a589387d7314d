// Package events publishes workflow lifecycle events on per-project and
// per-user channels so a frontend can follow generation progress without
// polling.
package events

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type Publisher struct {
	client *supabase.Client
}

func NewPublisher(client *supabase.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEvent appends a row to the workflow_events table. Supabase Realtime
// relays inserts on that table, so subscribers filtered on the channel column
// receive the event without any direct Realtime publish from here.
func (p *Publisher) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	row := map[string]interface{}{
		"channel": channel,
		"event":   event,
		"payload": payload,
	}
	if _, _, err := p.client.From("workflow_events").Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to publish %s on %s: %w", event, channel, err)
	}
	return nil
}

func (p *Publisher) PublishProjectEvent(projectID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("project:%s", projectID.String())
	return p.PublishEvent(channel, event, payload)
}

func (p *Publisher) PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("user:%s", userID.String())
	return p.PublishEvent(channel, event, payload)
}

// Event payloads
func GenerationStartedPayload(projectID uuid.UUID, workflow string, cost int) map[string]interface{} {
	return map[string]interface{}{
		"project_id": projectID.String(),
		"workflow":   workflow,
		"status":     "running",
		"cost":       cost,
	}
}

func GenerationStagePayload(projectID uuid.UUID, stage, label string) map[string]interface{} {
	return map[string]interface{}{
		"project_id": projectID.String(),
		"status":     "running",
		"stage":      stage,
		"label":      label,
	}
}

func GenerationCompletedPayload(projectID uuid.UUID, imageCount, videoCount int) map[string]interface{} {
	return map[string]interface{}{
		"project_id":  projectID.String(),
		"status":      "completed",
		"image_count": imageCount,
		"video_count": videoCount,
	}
}

func GenerationFailedPayload(projectID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"project_id": projectID.String(),
		"status":     "failed",
		"error":      errorMsg,
	}
}
