// Package workflow sequences the steps of turning a user's creative intent
// into stored, navigable results: guard, reserve credits, call the
// collaborator, commit to the store, navigate, clean up. Every workflow runs
// under a per-project in-flight lock so concurrent invocations cannot race on
// the asset merge.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"genieus-backend/internal/account"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/events"
	"genieus-backend/internal/genai"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
	"genieus-backend/internal/store"
)

// Credit costs per workflow.
const (
	CostImageBatch = 10
	CostVideo      = 25
	CostRegenerate = 5
	CostAnimate    = 20
	CostExtend     = 15
	CostAgent      = 50
	CostBrandFetch = 5
)

var (
	// ErrBusy rejects a workflow while another one is in flight for the
	// same project.
	ErrBusy = errors.New("workflow: operation already in flight")
	// ErrMissingInput rejects a workflow whose required input (product
	// image, target asset) is absent.
	ErrMissingInput = errors.New("workflow: required input missing")
)

// Collaborator is the subset of the generative client the engine calls.
type Collaborator interface {
	GenerateJSON(ctx context.Context, req genai.StructuredRequest) (json.RawMessage, error)
	GenerateImages(ctx context.Context, req genai.ImageRequest) ([]genai.GeneratedImage, error)
	StartVideo(ctx context.Context, req genai.VideoRequest) (string, error)
	WaitVideo(ctx context.Context, operationID string) (*genai.VideoOperation, error)
}

type Engine struct {
	log      *zap.Logger
	store    store.Store
	gen      Collaborator
	ledger   *credits.Ledger
	accounts *account.Registry
	sessions *session.Manager
	events   *events.Publisher // optional

	// RefundOnFailure controls whether a failed workflow returns its
	// reserved credits. Off by default: the historical rule is that failed
	// generations still cost credits.
	RefundOnFailure bool

	mu       sync.Mutex
	inflight map[uuid.UUID]bool
}

func NewEngine(log *zap.Logger, st store.Store, gen Collaborator, ledger *credits.Ledger, accounts *account.Registry, sessions *session.Manager, ev *events.Publisher) *Engine {
	return &Engine{
		log:      log,
		store:    st,
		gen:      gen,
		ledger:   ledger,
		accounts: accounts,
		sessions: sessions,
		events:   ev,
		inflight: make(map[uuid.UUID]bool),
	}
}

func (e *Engine) tryAcquire(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[id] {
		return false
	}
	e.inflight[id] = true
	return true
}

func (e *Engine) release(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, id)
}

// run is the shared state machine. fn receives a deep copy of the stored
// project and mutates it; run commits the copy only when fn succeeds, so a
// failed workflow leaves the stored project untouched. Credits reserved
// before fn are not returned on failure unless RefundOnFailure is set.
func (e *Engine) run(ctx context.Context, userID, projectID uuid.UUID, name string, cost int,
	fn func(ctx context.Context, sess *session.State, work *models.Project) error) (*models.Project, error) {

	sess := e.sessions.For(userID)

	if !e.tryAcquire(projectID) {
		return nil, ErrBusy
	}
	defer e.release(projectID)

	p, err := e.store.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	// An authenticated user may run a workflow before ever touching the
	// account endpoint; first sight still grants the plan allowance.
	e.accounts.Ensure(userID)

	if err := e.ledger.Reserve(userID, cost); err != nil {
		sess.SetError("Not enough credits for this generation.")
		return nil, err
	}

	e.log.Info("workflow started",
		zap.String("workflow", name),
		zap.String("project_id", projectID.String()),
		zap.Int("cost", cost))
	if e.events != nil {
		e.events.PublishProjectEvent(projectID, "generation_started",
			events.GenerationStartedPayload(projectID, name, cost))
	}

	sess.BeginOp()
	work := p.Clone()

	runErr := fn(ctx, sess, work)
	if runErr == nil {
		runErr = e.commit(ctx, sess, work)
	}

	if runErr != nil {
		if e.RefundOnFailure {
			e.ledger.Refund(userID, cost)
		}
		e.log.Warn("workflow failed",
			zap.String("workflow", name),
			zap.String("project_id", projectID.String()),
			zap.Error(runErr))
		if e.events != nil {
			e.events.PublishProjectEvent(projectID, "generation_failed",
				events.GenerationFailedPayload(projectID, runErr.Error()))
		}
		sess.EndOp(userFacing(runErr))
		return nil, runErr
	}

	sess.NavigateTo(session.StepResult)
	sess.EndOp("")
	if e.events != nil {
		e.events.PublishProjectEvent(projectID, "generation_completed",
			events.GenerationCompletedPayload(projectID, len(work.GeneratedImages), len(work.GeneratedVideos)))
	}

	// Return the canonical rehydrated copy, not the working clone.
	committed, err := e.store.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return committed, nil
}

func (e *Engine) commit(ctx context.Context, sess *session.State, work *models.Project) error {
	idx := sess.PushStatus("save", "Saving your project")
	if err := e.store.SaveProject(ctx, work); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	sess.MarkDone(idx)
	sess.SetCurrentProject(work.ID)
	return nil
}

// userFacing flattens an internal error chain into the banner message shown
// next to the action that failed.
func userFacing(err error) string {
	switch {
	case errors.Is(err, credits.ErrInsufficient):
		return "Not enough credits for this generation."
	case errors.Is(err, ErrMissingInput):
		return "Something required is missing. Add the needed image and try again."
	default:
		return "Generation failed. Please try again."
	}
}

// imageInputs converts asset slots into collaborator image inputs, skipping
// nil slots and assets without a payload.
func imageInputs(assets ...*models.Asset) []genai.ImageInput {
	var in []genai.ImageInput
	for _, a := range assets {
		if a.HasData() {
			in = append(in, genai.ImageInput{MimeType: a.MimeType, Data: a.Data})
		}
	}
	return in
}

func newImageAsset(i int, img genai.GeneratedImage) *models.Asset {
	return &models.Asset{
		ID:       uuid.NewString(),
		MimeType: img.MimeType,
		Name:     fmt.Sprintf("generated_%d%s", i+1, extensionFor(img.MimeType)),
		Data:     img.Data,
		State:    models.BlobAttached,
	}
}

func newVideoAsset(op *genai.VideoOperation) *models.Asset {
	mime := op.MimeType
	if mime == "" {
		mime = "video/mp4"
	}
	return &models.Asset{
		ID:       uuid.NewString(),
		MimeType: mime,
		Name:     "generated_video" + extensionFor(mime),
		Data:     op.Data,
		State:    models.BlobAttached,
	}
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/webm":
		return ".webm"
	case "video/mp4":
		return ".mp4"
	}
	return ""
}
