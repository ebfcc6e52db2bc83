package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleTailor   Role = "tailor"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleTailor
}

// User is keyed by the Firebase UID of the account.
type User struct {
	UserID            string         `gorm:"column:user_id;primaryKey;size:128" json:"user_id"`
	Username          string         `gorm:"column:username;size:64;not null;uniqueIndex:uk_users_username" json:"username"`
	Email             string         `gorm:"column:email;size:255;not null" json:"email"`
	Role              Role           `gorm:"column:role;size:16;not null;index" json:"role"`
	FullName          *string        `gorm:"column:full_name;size:255" json:"full_name"`
	Location          *string        `gorm:"column:location;size:255" json:"location"`
	Dialect           *string        `gorm:"column:dialect;size:64" json:"dialect"`
	ProfilePictureURL *string        `gorm:"column:profile_picture_url;size:512" json:"profile_picture_url"`
	RightArmLength    *float64       `gorm:"column:right_arm_length" json:"right_arm_length"`
	ShoulderWidth     *float64       `gorm:"column:shoulder_width" json:"shoulder_width"`
	LeftArmLength     *float64       `gorm:"column:left_arm_length" json:"left_arm_length"`
	UpperBodyHeight   *float64       `gorm:"column:upper_body_height" json:"upper_body_height"`
	HipWidth          *float64       `gorm:"column:hip_width" json:"hip_width"`
	TailorDetails     *TailorDetails `gorm:"foreignKey:UserID;references:UserID" json:"tailor_details,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsTailor() bool {
	return u != nil && u.Role == RoleTailor
}

func (u *User) IsCustomer() bool {
	return u != nil && u.Role == RoleCustomer
}

// TailorDetails exists only for users with RoleTailor.
type TailorDetails struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:128" json:"user_id"`
	Bio       *string   `gorm:"column:bio;type:text" json:"bio"`
	Rating    float64   `gorm:"column:rating;not null;default:0" json:"rating"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TailorDetails) TableName() string {
	return "tailor_details"
}
