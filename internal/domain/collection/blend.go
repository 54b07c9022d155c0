package collection

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/domain/user"
)

// Blend is one tobacco blend the owner tracks, with cellar quantities used by
// the gap analysis. TinsInCellar and Rating feed the recommendation
// fingerprint; PhotoURL and timestamps do not.
type Blend struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Name      string `gorm:"not null" json:"name"`
	Brand     string `json:"brand"`
	BlendType string `gorm:"column:blend_type" json:"blend_type"`

	FocusTags    datatypes.JSON `gorm:"type:jsonb;column:focus_tags" json:"focus_tags"`
	TinsInCellar int            `gorm:"column:tins_in_cellar;not null;default:0" json:"tins_in_cellar"`
	OpenTins     int            `gorm:"column:open_tins;not null;default:0" json:"open_tins"`
	Rating       int            `gorm:"not null;default:0" json:"rating"`
	Notes        string         `json:"notes"`

	PhotoBucketKey string `gorm:"column:photo_bucket_key" json:"-"`
	PhotoURL       string `gorm:"column:photo_url" json:"photo_url"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Blend) TableName() string { return "blend" }
