package models

import "gorm.io/datatypes"

// Institution represents a university identified by its accepted email domain suffix.
// Records are pre-seeded or created lazily the first time an email with a known domain
// is resolved; this backend never deletes them.
type Institution struct {
	BaseModel

	Name string `gorm:"uniqueIndex;not null" json:"name"`

	// EmailDomain is the primary accepted suffix including the leading "@",
	// e.g. "@sakarya.edu.tr". Unique across all institutions: no two institutions
	// may claim the same suffix.
	EmailDomain string `gorm:"uniqueIndex;not null" json:"emailDomain"`

	// Domains carries every suffix known for this institution from the reference
	// dataset, stored as a JSON array of strings.
	Domains datatypes.JSON `json:"domains,omitempty"`

	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	IsActive bool   `gorm:"default:true" json:"isActive"`

	Users []User `gorm:"foreignKey:InstitutionID" json:"-"`
}
