package collection

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/domain/user"
)

// Pipe is one briar (or meerschaum, cob, ...) in the owner's collection.
//
// FocusTags is the user-editable dedication of the pipe to blend families
// ("Virginia", "Aromatic", ...). It is the field the optimization engine
// suggests changes to, and it participates in the recommendation fingerprint.
// PhotoURL and LastSmokedAt are display/volatile fields and do not.
type Pipe struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Maker    string `gorm:"not null" json:"maker"`
	Name     string `json:"name"`
	Shape    string `json:"shape"`
	Material string `json:"material"`

	FocusTags     datatypes.JSON `gorm:"type:jsonb;column:focus_tags" json:"focus_tags"`
	ChamberVolume float64        `gorm:"column:chamber_volume" json:"chamber_volume"`
	Notes         string         `json:"notes"`

	PhotoBucketKey string     `gorm:"column:photo_bucket_key" json:"-"`
	PhotoURL       string     `gorm:"column:photo_url" json:"photo_url"`
	LastSmokedAt   *time.Time `gorm:"column:last_smoked_at" json:"last_smoked_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Pipe) TableName() string { return "pipe" }
