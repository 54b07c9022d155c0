package services

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"gorm.io/datatypes"
)

// CollectionState is the slice of an owner's data that determines what a
// recommendation should say.
type CollectionState struct {
	Pipes   []*types.Pipe
	Blends  []*types.Blend
	Profile *types.PreferenceProfile
}

type fpPipe struct {
	ID            string   `json:"id"`
	Maker         string   `json:"maker"`
	Name          string   `json:"name"`
	Shape         string   `json:"shape"`
	Material      string   `json:"material"`
	FocusTags     []string `json:"focus_tags"`
	ChamberVolume float64  `json:"chamber_volume"`
}

type fpBlend struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	BlendType    string   `json:"blend_type"`
	FocusTags    []string `json:"focus_tags"`
	TinsInCellar int      `json:"tins_in_cellar"`
	OpenTins     int      `json:"open_tins"`
	Rating       int      `json:"rating"`
}

type fpProfile struct {
	PreferredStyles  []string `json:"preferred_styles"`
	SmokingFrequency string   `json:"smoking_frequency"`
	Goals            []string `json:"goals"`
}

type fpDoc struct {
	Pipes   []fpPipe   `json:"pipes"`
	Blends  []fpBlend  `json:"blends"`
	Profile *fpProfile `json:"profile"`
}

// ComputeFingerprint maps the collection state to a short deterministic
// digest. Entities are canonicalized by id before encoding, so two logically
// equal states supplied in different iteration order produce the same output.
// Volatile and display-only fields (timestamps, photo URLs, free-text notes)
// are deliberately left out so changing them never forces a regeneration.
// The empty collection has a well-defined fingerprint.
func ComputeFingerprint(state CollectionState) string {
	doc := fpDoc{
		Pipes:  make([]fpPipe, 0, len(state.Pipes)),
		Blends: make([]fpBlend, 0, len(state.Blends)),
	}

	for _, p := range state.Pipes {
		if p == nil {
			continue
		}
		doc.Pipes = append(doc.Pipes, fpPipe{
			ID:            p.ID.String(),
			Maker:         p.Maker,
			Name:          p.Name,
			Shape:         p.Shape,
			Material:      p.Material,
			FocusTags:     decodeTags(p.FocusTags),
			ChamberVolume: p.ChamberVolume,
		})
	}
	sort.Slice(doc.Pipes, func(i, j int) bool { return doc.Pipes[i].ID < doc.Pipes[j].ID })

	for _, b := range state.Blends {
		if b == nil {
			continue
		}
		doc.Blends = append(doc.Blends, fpBlend{
			ID:           b.ID.String(),
			Name:         b.Name,
			Brand:        b.Brand,
			BlendType:    b.BlendType,
			FocusTags:    decodeTags(b.FocusTags),
			TinsInCellar: b.TinsInCellar,
			OpenTins:     b.OpenTins,
			Rating:       b.Rating,
		})
	}
	sort.Slice(doc.Blends, func(i, j int) bool { return doc.Blends[i].ID < doc.Blends[j].ID })

	if state.Profile != nil {
		doc.Profile = &fpProfile{
			PreferredStyles:  decodeTags(state.Profile.PreferredStyles),
			SmokingFrequency: state.Profile.SmokingFrequency,
			Goals:            decodeTags(state.Profile.Goals),
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		// fpDoc contains nothing json.Marshal can reject; keep the contract
		// total anyway.
		raw = []byte("{}")
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}

func decodeTags(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
