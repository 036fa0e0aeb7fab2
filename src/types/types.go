package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_FAILED    PaymentStatus = "failed"
	PAYMENT_REFUNDED  PaymentStatus = "refunded"
)

type BookingStatus string

const (
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
	BOOKING_ATTENDED  BookingStatus = "attended"
	BOOKING_NO_SHOW   BookingStatus = "no-show"
)

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_COMPLETED EventStatus = "completed"
	EVENT_CANCELED  EventStatus = "cancelled"
)

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	UID      string `json:"uid"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type BookingURIParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type CreateBookingRequestBody struct {
	Event        *uint  `json:"event,omitempty"`
	Category     string `json:"category,omitempty"`
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName,omitempty"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	Gender       string `json:"gender,omitempty"`
	TshirtSize   string `json:"tshirtSize,omitempty"`
	AadharNumber string `json:"aadhar_number,omitempty"`
	CouponCode   string `json:"coupon_code,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type UpdateBookingRequestBody struct {
	TicketType    string `json:"ticketType,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Status        string `json:"status,omitempty"`
	TshirtSize    string `json:"tshirtSize,omitempty"`
}

type InitiatePaymentRequestBody struct {
	BookingID string `json:"bookingId" binding:"required,uuid"`
}

type ValidateReferralCodesRequestBody struct {
	Codes []string `json:"codes" binding:"required"`
}

type CreateEventRequestBody struct {
	Name     string `json:"name" binding:"required"`
	About    string `json:"about,omitempty"`
	Location string `json:"location,omitempty" binding:"required"`
	DateTime string `json:"date_time" binding:"required" time_format:"2006-01-02 15:04:05 -07:00"`
	Publish  bool   `json:"publish,omitempty"`
}

type CreateCouponRequestBody struct {
	Code     string  `json:"code" binding:"required"`
	Discount float64 `json:"discount" binding:"required,gt=0"`
}
