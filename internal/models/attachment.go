package models

import (
	"github.com/google/uuid"
)

// AttachmentOwner names the entity kind a file belongs to.
type AttachmentOwner string

const (
	AttachmentOwnerAmbassador AttachmentOwner = "ambassador"
	AttachmentOwnerDeveloper  AttachmentOwner = "developer"
)

// Attachment is the metadata row written after a successful blob-store
// upload.
type Attachment struct {
	Base
	OwnerType   AttachmentOwner `gorm:"type:varchar(20);not null;index:idx_attachments_owner" json:"owner_type"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_attachments_owner" json:"owner_id"`
	FileName    string          `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType string          `gorm:"type:varchar(100);not null" json:"content_type"`
	URL         string          `gorm:"type:text;not null" json:"url"`
}
