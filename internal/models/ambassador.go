package models

import (
	"github.com/google/uuid"
)

// Ambassador represents a referral-program participant. TotalReferrals and
// ClosedDeals are derived counters owned by the service layer; nothing else
// may write them.
type Ambassador struct {
	Base
	FullName            string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Email               string     `gorm:"type:varchar(255);not null" json:"email"`
	Phone               *string    `gorm:"type:varchar(30)" json:"phone"`
	Country             string     `gorm:"type:varchar(100);not null;default:'Israel'" json:"country"`
	City                string     `gorm:"type:varchar(100)" json:"city"`
	Languages           string     `gorm:"type:varchar(255)" json:"languages"` // comma-joined
	HostsEvents         bool       `gorm:"default:false" json:"hosts_events"`
	TotalReferrals      int        `gorm:"not null;default:0" json:"total_referrals"`
	ClosedDeals         int        `gorm:"not null;default:0" json:"closed_deals"`
	ReferralCode        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"referral_code"`
	UserProfileID       *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_profile_id"`
	ConvertedFromLeadID *uuid.UUID `gorm:"type:uuid" json:"converted_from_lead_id"`
}
