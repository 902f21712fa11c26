package models

import (
	"github.com/google/uuid"
)

// DealStage is the deal pipeline enumeration. ClosedWon and ClosedLost are
// terminal.
type DealStage string

const (
	DealStageNegotiation DealStage = "Negotiation"
	DealStageContract    DealStage = "Contract"
	DealStageClosedWon   DealStage = "ClosedWon"
	DealStageClosedLost  DealStage = "ClosedLost"
)

// Valid reports whether s is a member of the stage enumeration.
func (s DealStage) Valid() bool {
	switch s {
	case DealStageNegotiation, DealStageContract, DealStageClosedWon, DealStageClosedLost:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s is allowed.
func (s DealStage) Terminal() bool {
	return s == DealStageClosedWon || s == DealStageClosedLost
}

// Deal is the match record between exactly one lead and one developer. The
// ambassador is carried over from the lead at match time and never updated
// afterwards.
type Deal struct {
	Base
	LeadID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"lead_id"`
	Lead         *Lead      `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	DeveloperID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"developer_id"`
	Developer    *Developer `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
	AmbassadorID *uuid.UUID `gorm:"type:uuid;index" json:"ambassador_id"`
	Stage        DealStage  `gorm:"type:varchar(30);not null;default:'Negotiation';index" json:"stage"`
	Notes        *string    `gorm:"type:text" json:"notes"`
}
