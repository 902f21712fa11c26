package models

// Developer represents a property-development company or project a lead can
// be matched to. BuildAreas is a comma-joined list used for case-insensitive
// area matching.
type Developer struct {
	Base
	CompanyName string  `gorm:"type:varchar(255);not null" json:"company_name"`
	ContactName string  `gorm:"type:varchar(255)" json:"contact_name"`
	Email       string  `gorm:"type:varchar(255)" json:"email"`
	Phone       *string `gorm:"type:varchar(30)" json:"phone"`
	BuildAreas  string  `gorm:"type:varchar(500)" json:"build_areas"`
	ProjectType string  `gorm:"type:varchar(50)" json:"project_type"`
	PriceRange  string  `gorm:"type:varchar(100)" json:"price_range"`
	Deals       []Deal  `gorm:"foreignKey:DeveloperID" json:"deals,omitempty"`
}
