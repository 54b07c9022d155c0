package collection

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/briarkeep/briarkeep-backend/internal/domain/user"
)

// PreferenceProfile holds the owner's stated tastes and goals, one row per
// owner. All of it feeds the recommendation fingerprint.
type PreferenceProfile struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	PreferredStyles  datatypes.JSON `gorm:"type:jsonb;column:preferred_styles" json:"preferred_styles"`
	SmokingFrequency string         `gorm:"column:smoking_frequency" json:"smoking_frequency"`
	Goals            datatypes.JSON `gorm:"type:jsonb" json:"goals"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (PreferenceProfile) TableName() string { return "preference_profile" }
