package models

import (
	"etix/src/types"
	"time"
)

type Event struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	Name      string            `json:"name,omitempty"`
	Slug      string            `gorm:"uniqueIndex" json:"slug,omitempty"`
	About     *string           `json:"about,omitempty"`
	Location  string            `json:"location,omitempty"`
	DateTime  time.Time         `json:"date_time,omitempty"`
	Status    types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`
	CreatedBy uint              `json:"created_by,omitempty"`

	Creator  User      `gorm:"foreignKey:created_by" json:"-"`
	Bookings []Booking `json:"bookings,omitempty"`

	types.Timestamps
}
