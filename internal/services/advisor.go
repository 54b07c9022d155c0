package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
	"github.com/briarkeep/briarkeep-backend/internal/platform/openai"
)

// Advisor produces the recommendation payload from the collection state. The
// versioning engine treats the payload as opaque; only the advisor and the UI
// know its shape.
type Advisor interface {
	Generate(ctx context.Context, state CollectionState) (datatypes.JSON, error)
}

const advisorSystemPrompt = `You are a pipe and tobacco cellar advisor. Given a collector's pipes,
blends and stated preferences, reply with a single JSON object with three
keys: "specializations" (suggested focus tags per pipe, each entry
{"pipe_id", "focus_tags", "rationale"}), "gap_analysis" (blend families the
cellar under-covers, each entry {"family", "severity", "comment"}), and
"next_purchases" (up to five suggestions, each entry {"kind", "name",
"reason"}). Be concrete and reference the collector's own items.`

type openaiAdvisor struct {
	log *logger.Logger
	ai  openai.Client
}

func NewAdvisor(baseLog *logger.Logger, ai openai.Client) Advisor {
	return &openaiAdvisor{log: baseLog.With("service", "Advisor"), ai: ai}
}

func (a *openaiAdvisor) Generate(ctx context.Context, state CollectionState) (datatypes.JSON, error) {
	raw, err := a.ai.GenerateJSON(ctx, advisorSystemPrompt, describeCollection(state))
	if err != nil {
		a.log.Warn("advisor generation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	return datatypes.JSON(raw), nil
}

// describeCollection renders the state as a compact JSON document for the
// prompt. It reuses the fingerprint canonicalization so the advisor sees
// exactly the fields that define recommendation validity.
func describeCollection(state CollectionState) string {
	doc := map[string]interface{}{
		"pipes":  []map[string]interface{}{},
		"blends": []map[string]interface{}{},
	}

	pipes := make([]map[string]interface{}, 0, len(state.Pipes))
	for _, p := range state.Pipes {
		if p == nil {
			continue
		}
		pipes = append(pipes, map[string]interface{}{
			"id":         p.ID.String(),
			"maker":      p.Maker,
			"name":       p.Name,
			"shape":      p.Shape,
			"material":   p.Material,
			"focus_tags": decodeTags(p.FocusTags),
		})
	}
	doc["pipes"] = pipes

	blends := make([]map[string]interface{}, 0, len(state.Blends))
	for _, b := range state.Blends {
		if b == nil {
			continue
		}
		blends = append(blends, map[string]interface{}{
			"id":             b.ID.String(),
			"name":           b.Name,
			"brand":          b.Brand,
			"blend_type":     b.BlendType,
			"tins_in_cellar": b.TinsInCellar,
			"rating":         b.Rating,
		})
	}
	doc["blends"] = blends

	if state.Profile != nil {
		doc["preferences"] = map[string]interface{}{
			"preferred_styles":  decodeTags(state.Profile.PreferredStyles),
			"smoking_frequency": state.Profile.SmokingFrequency,
			"goals":             decodeTags(state.Profile.Goals),
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("Collection state:\n")
	sb.Write(raw)
	return sb.String()
}
