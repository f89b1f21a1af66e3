package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/aarav-aiphi/Backend/pkg/enums"
)

// PendingChange is the audit record of a moderated mutation against a listing.
type PendingChange struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Action          enums.ChangeAction     `gorm:"column:action;not null"`
	Collection      enums.ChangeCollection `gorm:"column:collection;not null"`
	TargetID        *uuid.UUID             `gorm:"column:target_id;type:uuid;index"`
	ProposedData    datatypes.JSON         `gorm:"column:proposed_data"`
	RequestedBy     uuid.UUID              `gorm:"column:requested_by;type:uuid;not null;index"`
	Status          enums.ChangeStatus     `gorm:"column:status;not null;default:'pending';index"`
	ReviewedBy      *uuid.UUID             `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt      *time.Time             `gorm:"column:reviewed_at"`
	RejectionReason *string                `gorm:"column:rejection_reason"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
