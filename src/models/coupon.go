package models

import "etix/src/types"

type Coupon struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	Code     string  `gorm:"uniqueIndex" json:"code"`
	Discount float64 `json:"discount"`
	IsActive bool    `gorm:"default:true" json:"is_active"`

	types.Timestamps
}
