package models

import "etix/src/types"

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	UID       string `gorm:"uniqueIndex" json:"uid,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `gorm:"default:'user'" json:"role,omitempty"`

	types.Timestamps
}
