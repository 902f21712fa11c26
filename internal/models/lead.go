package models

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the canonical pipeline status enumeration for leads.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "New"
	LeadStatusContacted   LeadStatus = "Contacted"
	LeadStatusQualified   LeadStatus = "Qualified"
	LeadStatusMatched     LeadStatus = "Matched"
	LeadStatusClosedWon   LeadStatus = "ClosedWon"
	LeadStatusClosedLost  LeadStatus = "ClosedLost"
	LeadStatusNotRelevant LeadStatus = "NotRelevant"
)

// Valid reports whether s is a member of the status enumeration.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusMatched, LeadStatusClosedWon, LeadStatusClosedLost,
		LeadStatusNotRelevant:
		return true
	}
	return false
}

// LeadSource records how a lead entered the system.
type LeadSource string

const (
	LeadSourceManual   LeadSource = "manual"
	LeadSourceReferral LeadSource = "referral"
	LeadSourceLanding  LeadSource = "landing"
)

// NotRelevantReason is the fixed list captured when a lead is marked NotRelevant.
type NotRelevantReason string

const (
	NotRelevantNoBudget      NotRelevantReason = "NoBudget"
	NotRelevantWrongArea     NotRelevantReason = "WrongArea"
	NotRelevantNotInterested NotRelevantReason = "NotInterested"
	NotRelevantUnreachable   NotRelevantReason = "Unreachable"
	NotRelevantOther         NotRelevantReason = "Other"
)

// Valid reports whether r is a member of the reason list.
func (r NotRelevantReason) Valid() bool {
	switch r {
	case NotRelevantNoBudget, NotRelevantWrongArea, NotRelevantNotInterested,
		NotRelevantUnreachable, NotRelevantOther:
		return true
	}
	return false
}

// Lead represents a prospective customer.
type Lead struct {
	Base
	FullName              string             `gorm:"type:varchar(255);not null" json:"full_name"`
	Email                 string             `gorm:"type:varchar(255);not null" json:"email"`
	Phone                 *string            `gorm:"type:varchar(30)" json:"phone"`
	Country               string             `gorm:"type:varchar(100);not null;default:'Israel'" json:"country"`
	City                  *string            `gorm:"type:varchar(100)" json:"city"`
	Status                LeadStatus         `gorm:"type:varchar(30);not null;default:'New';index" json:"status"`
	Budget                *string            `gorm:"type:varchar(100)" json:"budget"`
	PreferredArea         *string            `gorm:"type:varchar(100)" json:"preferred_area"`
	Rooms                 *string            `gorm:"type:varchar(20)" json:"rooms"`
	PropertyType          *string            `gorm:"type:varchar(50)" json:"property_type"`
	Readiness             *string            `gorm:"type:varchar(50)" json:"readiness"`
	DealType              *string            `gorm:"type:varchar(50)" json:"deal_type"`
	Notes                 *string            `gorm:"type:text" json:"notes"`
	NotRelevantReason     *NotRelevantReason `gorm:"type:varchar(30)" json:"not_relevant_reason"`
	Source                LeadSource         `gorm:"type:varchar(20);not null;default:'manual';index" json:"source"`
	ReferralCode          *string            `gorm:"type:varchar(100)" json:"referral_code"`
	AmbassadorID          *uuid.UUID         `gorm:"type:uuid;index" json:"ambassador_id"`
	Ambassador            *Ambassador        `gorm:"foreignKey:AmbassadorID" json:"ambassador,omitempty"`
	ConvertedAmbassadorID *uuid.UUID         `gorm:"type:uuid" json:"converted_ambassador_id"`
	Deals                 []Deal             `gorm:"foreignKey:LeadID" json:"deals,omitempty"`
}

// LeadNote is a timestamped free-text note on a lead.
type LeadNote struct {
	Base
	LeadID  uuid.UUID `gorm:"type:uuid;not null;index" json:"lead_id"`
	Content string    `gorm:"type:text;not null" json:"content"`
}

// LeadTask is a follow-up task on a lead.
type LeadTask struct {
	Base
	LeadID    uuid.UUID `gorm:"type:uuid;not null;index" json:"lead_id"`
	Subject   string    `gorm:"type:varchar(255);not null" json:"subject"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`
	DueTime   *string   `gorm:"type:varchar(10)" json:"due_time"`
	Completed bool      `gorm:"default:false" json:"completed"`
}
