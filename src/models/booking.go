package models

import (
	"etix/src/types"

	"github.com/google/uuid"
)

// Booking is one ticket purchase. PaymentID starts out as the merchant txnid
// minted at initiation and is overwritten with the gateway's own transaction
// id once the callback confirms payment.
type Booking struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  uint      `json:"user_id,omitempty"`
	EventID *uint     `json:"event_id,omitempty"`

	TicketType string `json:"ticket_type,omitempty"`
	Quantity   uint8  `gorm:"default:1" json:"quantity,omitempty"`

	BaseAmount     float64 `json:"base_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	TotalAmount    float64 `json:"total_amount"`
	Currency       string  `gorm:"default:'INR'" json:"currency,omitempty"`

	PaymentID       string              `gorm:"index" json:"payment_id,omitempty"`
	PaymentStatus   types.PaymentStatus `gorm:"default:'pending'" json:"payment_status,omitempty"`
	PaymentMethod   string              `json:"payment_method,omitempty"`
	GatewayResponse types.JSONB         `gorm:"type:jsonb" json:"-"`

	ReferralCode           string           `gorm:"uniqueIndex" json:"referral_code,omitempty"`
	ReferralCodeUsed       bool             `json:"referral_code_used"`
	ReferralCodeRedeemedBy *uint            `json:"referral_code_redeemed_by,omitempty"`
	ReferralCoupons        types.JSONBArray `gorm:"type:jsonb" json:"referral_coupons,omitempty"`

	CouponID       *uint   `json:"coupon_id,omitempty"`
	CouponCode     string  `json:"coupon_code,omitempty"`
	CouponDiscount float64 `json:"coupon_discount,omitempty"`

	AttendeeName  string `json:"attendee_name,omitempty"`
	AttendeeEmail string `json:"attendee_email,omitempty"`
	AttendeePhone string `json:"attendee_phone,omitempty"`
	Gender        string `json:"gender,omitempty"`
	TshirtSize    string `json:"tshirt_size,omitempty"`
	AadharNumber  string `json:"aadhar_number,omitempty"`

	Status types.BookingStatus `gorm:"default:'confirmed'" json:"status,omitempty"`

	Event  *Event  `gorm:"foreignKey:event_id" json:"event,omitempty"`
	User   *User   `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Coupon *Coupon `gorm:"foreignKey:coupon_id" json:"coupon,omitempty"`

	types.Timestamps
}
