package recommendation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/briarkeep/briarkeep-backend/internal/domain/user"
)

// Snapshot is one computed Collection Optimization recommendation.
//
// Payload is opaque to the versioning engine and never changes after
// creation; IsActive is the only mutable column and is written exclusively by
// the snapshot repo. PreviousVersionID links each snapshot to the one it
// superseded, forming a per-owner singly linked undo chain that is never
// compacted. The partial unique index enforces at most one active snapshot
// per owner at the store level.
type Snapshot struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uniq_snapshot_active_owner,where:is_active" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	InputFingerprint  string         `gorm:"column:input_fingerprint;not null" json:"input_fingerprint"`
	Payload           datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	IsActive          bool           `gorm:"column:is_active;not null;default:false" json:"is_active"`
	PreviousVersionID *uuid.UUID     `gorm:"type:uuid;column:previous_version_id" json:"previous_version_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Snapshot) TableName() string { return "recommendation_snapshot" }
