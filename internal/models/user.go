package models

// Account roles. Exactly one of the two is assigned to every user.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the durable account entity. It is created exactly once, at the moment email
// verification succeeds, and never without a resolved Institution.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `gorm:"not null" json:"fullName"`

	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`

	InstitutionID string       `gorm:"type:uuid;not null;index" json:"universityId"`
	Institution   *Institution `gorm:"foreignKey:InstitutionID" json:"university,omitempty"`

	Role          string `gorm:"not null;default:USER" json:"role"`
	EmailVerified bool   `gorm:"default:false" json:"emailVerified"`
	IsActive      bool   `gorm:"default:true" json:"isActive"`
}

// IsAdmin reports whether the account carries the administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
