package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos"
	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

// Target statuses reported in a BatchResult.
const (
	TargetApplied        = "applied"
	TargetReverted       = "reverted"
	TargetSkippedMissing = "skipped_missing"
	TargetFailed         = "failed"
	TargetRejected       = "rejected"
)

// BatchTarget is one requested field-level change. AfterState maps column
// names to desired values; only whitelisted columns per entity kind are
// accepted, which keeps before/after capture at exactly the granularity
// being mutated.
type BatchTarget struct {
	EntityKind   string                 `json:"entity_kind"`
	EntityID     uuid.UUID              `json:"entity_id"`
	SubEntityRef *string                `json:"sub_entity_ref,omitempty"`
	AfterState   map[string]interface{} `json:"after_state"`
	Rationale    string                 `json:"rationale"`
}

type TargetResult struct {
	EntityKind string    `json:"entity_kind"`
	EntityID   uuid.UUID `json:"entity_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// BatchResult summarizes which targets actually took effect so the UI can
// tell the user; batch execution is best-effort per target, never
// all-or-nothing.
type BatchResult struct {
	BatchID uuid.UUID      `json:"batch_id"`
	Results []TargetResult `json:"results"`
}

// MutationService applies a set of field-level changes across owned entities
// as one named batch and can reverse that batch later. The batch record is
// persisted before any entity is touched, so a record of intended changes
// exists even when a later step fails. Undo is not marked consumed: repeating
// it rewrites the same before-state, which is harmless unless an intervening
// edit occurred.
type MutationService interface {
	ApplyBatch(ctx context.Context, userID uuid.UUID, batchKind string, targets []BatchTarget) (*BatchResult, error)
	UndoBatch(ctx context.Context, userID uuid.UUID, batchID uuid.UUID) (*BatchResult, error)
}

type mutationService struct {
	db      *gorm.DB
	log     *logger.Logger
	batches repos.MutationBatchRepo
	pipes   repos.PipeRepo
	blends  repos.BlendRepo
}

func NewMutationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	batches repos.MutationBatchRepo,
	pipes repos.PipeRepo,
	blends repos.BlendRepo,
) MutationService {
	return &mutationService{
		db:      db,
		log:     baseLog.With("service", "MutationService"),
		batches: batches,
		pipes:   pipes,
		blends:  blends,
	}
}

// mutableFields is the per-kind whitelist of columns the engine may touch.
var mutableFields = map[string]map[string]struct{}{
	types.EntityKindPipe: {
		"focus_tags": {},
	},
	types.EntityKindBlend: {
		"focus_tags": {},
		"blend_type": {},
	},
}

func (s *mutationService) ApplyBatch(ctx context.Context, userID uuid.UUID, batchKind string, targets []BatchTarget) (*BatchResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user id")
	}
	if batchKind == "" {
		batchKind = types.BatchKindRecommendationApply
	}

	result := &BatchResult{Results: make([]TargetResult, len(targets))}

	type pendingChange struct {
		targetIdx int
		change    *types.MutationChange
		update    map[string]interface{}
	}
	var pending []pendingChange

	for i, t := range targets {
		result.Results[i] = TargetResult{EntityKind: t.EntityKind, EntityID: t.EntityID}

		if err := validateTarget(t); err != nil {
			result.Results[i].Status = TargetRejected
			result.Results[i].Error = err.Error()
			continue
		}

		before, exists, err := s.captureFields(ctx, userID, t.EntityKind, t.EntityID, fieldNames(t.AfterState))
		if err != nil {
			result.Results[i].Status = TargetFailed
			result.Results[i].Error = err.Error()
			continue
		}
		if !exists {
			result.Results[i].Status = TargetSkippedMissing
			continue
		}

		update, after, err := normalizeAfterState(t.EntityKind, t.AfterState)
		if err != nil {
			result.Results[i].Status = TargetRejected
			result.Results[i].Error = err.Error()
			continue
		}

		beforeRaw, err := json.Marshal(before)
		if err != nil {
			result.Results[i].Status = TargetFailed
			result.Results[i].Error = err.Error()
			continue
		}

		pending = append(pending, pendingChange{
			targetIdx: i,
			change: &types.MutationChange{
				ID:           uuid.New(),
				EntityKind:   t.EntityKind,
				EntityID:     t.EntityID,
				SubEntityRef: t.SubEntityRef,
				BeforeState:  datatypes.JSON(beforeRaw),
				AfterState:   datatypes.JSON(after),
				Rationale:    t.Rationale,
			},
			update: update,
		})
	}

	// Persist the batch record before mutating anything.
	batch := &types.MutationBatch{
		ID:        uuid.New(),
		UserID:    userID,
		BatchKind: batchKind,
		CreatedAt: time.Now().UTC(),
	}
	for _, pc := range pending {
		batch.Changes = append(batch.Changes, pc.change)
	}
	if _, err := s.batches.Create(ctx, nil, batch); err != nil {
		return nil, fmt.Errorf("persist mutation batch: %w", err)
	}
	result.BatchID = batch.ID

	// Best-effort per target: one failure does not abort the rest.
	for _, pc := range pending {
		if err := s.updateEntity(ctx, pc.change.EntityKind, pc.change.EntityID, pc.update); err != nil {
			result.Results[pc.targetIdx].Status = TargetFailed
			result.Results[pc.targetIdx].Error = err.Error()
			s.log.Warn("batch target apply failed",
				"batch_id", batch.ID.String(),
				"entity_kind", pc.change.EntityKind,
				"entity_id", pc.change.EntityID.String(),
				"error", err,
			)
			continue
		}
		result.Results[pc.targetIdx].Status = TargetApplied
	}

	s.log.Info("mutation batch applied",
		"batch_id", batch.ID.String(),
		"user_id", userID.String(),
		"targets", len(targets),
		"recorded", len(pending),
	)
	return result, nil
}

func (s *mutationService) UndoBatch(ctx context.Context, userID uuid.UUID, batchID uuid.UUID) (*BatchResult, error) {
	batch, err := s.batches.GetByID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.UserID != userID {
		return nil, ErrBatchNotFound
	}

	result := &BatchResult{BatchID: batch.ID, Results: make([]TargetResult, len(batch.Changes))}

	for i, ch := range batch.Changes {
		result.Results[i] = TargetResult{EntityKind: ch.EntityKind, EntityID: ch.EntityID}

		_, exists, err := s.captureFields(ctx, userID, ch.EntityKind, ch.EntityID, nil)
		if err != nil {
			result.Results[i].Status = TargetFailed
			result.Results[i].Error = err.Error()
			continue
		}
		if !exists {
			// Entity deleted since apply: skip, never fail the whole undo.
			result.Results[i].Status = TargetSkippedMissing
			continue
		}

		var before map[string]interface{}
		if err := json.Unmarshal(ch.BeforeState, &before); err != nil {
			result.Results[i].Status = TargetFailed
			result.Results[i].Error = fmt.Sprintf("decode before state: %v", err)
			continue
		}
		update, _, err := normalizeAfterState(ch.EntityKind, before)
		if err != nil {
			result.Results[i].Status = TargetFailed
			result.Results[i].Error = err.Error()
			continue
		}

		// Write back only the captured fields so edits to anything else made
		// after the apply survive.
		if err := s.updateEntity(ctx, ch.EntityKind, ch.EntityID, update); err != nil {
			result.Results[i].Status = TargetFailed
			result.Results[i].Error = err.Error()
			continue
		}
		result.Results[i].Status = TargetReverted
	}

	s.log.Info("mutation batch undone",
		"batch_id", batch.ID.String(),
		"user_id", userID.String(),
		"changes", len(batch.Changes),
	)
	return result, nil
}

func validateTarget(t BatchTarget) error {
	allowed, ok := mutableFields[t.EntityKind]
	if !ok {
		return fmt.Errorf("unknown entity kind: %q", t.EntityKind)
	}
	if t.EntityID == uuid.Nil {
		return fmt.Errorf("missing entity id")
	}
	if len(t.AfterState) == 0 {
		return fmt.Errorf("empty after state")
	}
	for field := range t.AfterState {
		if _, ok := allowed[field]; !ok {
			return fmt.Errorf("field %q is not mutable on %s", field, t.EntityKind)
		}
	}
	return nil
}

func fieldNames(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// captureFields reads the entity and returns the current values of the named
// fields. exists=false when the entity is gone or owned by someone else.
func (s *mutationService) captureFields(ctx context.Context, userID uuid.UUID, kind string, entityID uuid.UUID, fields []string) (map[string]interface{}, bool, error) {
	switch kind {
	case types.EntityKindPipe:
		p, err := s.pipes.GetByID(ctx, nil, entityID)
		if err != nil {
			return nil, false, err
		}
		if p == nil || p.UserID != userID {
			return nil, false, nil
		}
		out := map[string]interface{}{}
		for _, f := range fields {
			switch f {
			case "focus_tags":
				out[f] = decodeTags(p.FocusTags)
			}
		}
		return out, true, nil

	case types.EntityKindBlend:
		b, err := s.blends.GetByID(ctx, nil, entityID)
		if err != nil {
			return nil, false, err
		}
		if b == nil || b.UserID != userID {
			return nil, false, nil
		}
		out := map[string]interface{}{}
		for _, f := range fields {
			switch f {
			case "focus_tags":
				out[f] = decodeTags(b.FocusTags)
			case "blend_type":
				out[f] = b.BlendType
			}
		}
		return out, true, nil

	default:
		return nil, false, fmt.Errorf("unknown entity kind: %q", kind)
	}
}

// normalizeAfterState converts a field->value map into a GORM update map and
// its canonical JSON encoding for the batch record.
func normalizeAfterState(kind string, state map[string]interface{}) (map[string]interface{}, []byte, error) {
	update := map[string]interface{}{}
	doc := map[string]interface{}{}

	for field, v := range state {
		switch field {
		case "focus_tags":
			tags, err := toStringList(v)
			if err != nil {
				return nil, nil, fmt.Errorf("field focus_tags: %w", err)
			}
			raw, err := json.Marshal(tags)
			if err != nil {
				return nil, nil, err
			}
			update[field] = datatypes.JSON(raw)
			doc[field] = tags
		case "blend_type":
			sv, ok := v.(string)
			if !ok {
				return nil, nil, fmt.Errorf("field blend_type: expected string")
			}
			update[field] = sv
			doc[field] = sv
		default:
			return nil, nil, fmt.Errorf("field %q is not mutable on %s", field, kind)
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}
	return update, raw, nil
}

func toStringList(v interface{}) ([]string, error) {
	switch vv := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return vv, nil
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings")
	}
}

func (s *mutationService) updateEntity(ctx context.Context, kind string, entityID uuid.UUID, fields map[string]interface{}) error {
	switch kind {
	case types.EntityKindPipe:
		return s.pipes.UpdateFields(ctx, nil, entityID, fields)
	case types.EntityKindBlend:
		return s.blends.UpdateFields(ctx, nil, entityID, fields)
	default:
		return fmt.Errorf("unknown entity kind: %q", kind)
	}
}
