package recommendation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/briarkeep/briarkeep-backend/internal/domain/user"
)

const (
	EntityKindPipe  = "pipe"
	EntityKindBlend = "blend"

	BatchKindRecommendationApply = "recommendation-apply"
)

// MutationBatch is one named, reversible unit of field-level edits applied
// across the owner's entities. The batch row and its changes are written
// before any entity is touched and are immutable afterwards; undo reads them
// back but never amends them.
type MutationBatch struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	BatchKind string `gorm:"column:batch_kind;not null" json:"batch_kind"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`

	Changes []*MutationChange `gorm:"foreignKey:BatchID;references:ID" json:"changes,omitempty"`
}

func (MutationBatch) TableName() string { return "mutation_batch" }

// MutationChange records before and after values for exactly the fields
// mutated on one entity, at the granularity the engine wrote them. Reversal
// writes BeforeState back onto those fields only, so edits to unrelated
// fields made between apply and undo survive.
type MutationChange struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BatchID uuid.UUID `gorm:"type:uuid;not null;index" json:"batch_id"`
	Seq     int       `gorm:"not null" json:"seq"`

	EntityKind   string    `gorm:"column:entity_kind;not null" json:"entity_kind"`
	EntityID     uuid.UUID `gorm:"type:uuid;column:entity_id;not null" json:"entity_id"`
	SubEntityRef *string   `gorm:"column:sub_entity_ref" json:"sub_entity_ref,omitempty"`

	BeforeState datatypes.JSON `gorm:"type:jsonb;column:before_state;not null" json:"before_state"`
	AfterState  datatypes.JSON `gorm:"type:jsonb;column:after_state;not null" json:"after_state"`
	Rationale   string         `json:"rationale"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MutationChange) TableName() string { return "mutation_change" }
