package payu

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"etix/src/models"
	"etix/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testConfig() *Config {
	return &Config{
		MerchantKey: "gtKFFx",
		Salt:        "eCwWELxi",
		PaymentURL:  "https://test.payu.in/_payment",
		CallbackURL: "http://localhost:9090/api/v1/payment-callback",
		SuccessURL:  "http://localhost:3000/payment/success",
		FailureURL:  "http://localhost:3000/payment/failure",
	}
}

func sha512hex(joined string) string {
	sum := sha512.Sum512([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func TestRequestHash(t *testing.T) {
	cfg := testConfig()
	hash, err := cfg.RequestHash("txn001", "1311", "Booking for Event ID: 1", "Guest", "guest@example.com", "booking-001")
	assert.Nil(t, err)

	// key|txnid|amount|productinfo|firstname|email|udf1|udf2..udf10|salt
	fields := []string{
		"gtKFFx", "txn001", "1311", "Booking for Event ID: 1", "Guest", "guest@example.com",
		"booking-001", "", "", "", "", "", "", "", "", "",
		"eCwWELxi",
	}
	assert.Len(t, fields, 17)
	assert.Equal(t, sha512hex(strings.Join(fields, "|")), hash)
}

func TestRequestHashRequiresSalt(t *testing.T) {
	cfg := testConfig()
	cfg.Salt = ""
	_, err := cfg.RequestHash("txn001", "1311", "p", "f", "e", "u")
	assert.NotNil(t, err)
}

func TestCallbackHash(t *testing.T) {
	cfg := testConfig()
	p := &CallbackPayload{
		Mihpayid:    "403993715534100000",
		Txnid:       "txn001",
		Amount:      "1311",
		ProductInfo: "Booking for Event ID: 1",
		Firstname:   "Guest",
		Email:       "guest@example.com",
		Status:      "success",
		Udf1:        "booking-001",
	}

	// salt|status|udf10..udf1|email|firstname|productinfo|amount|txnid|key
	// with the amount normalized to two decimal places
	fields := []string{
		"eCwWELxi", "success",
		"", "", "", "", "", "", "", "", "", "booking-001",
		"guest@example.com", "Guest", "Booking for Event ID: 1", "1311.00", "txn001",
		"gtKFFx",
	}
	assert.Len(t, fields, 18)
	assert.Equal(t, sha512hex(strings.Join(fields, "|")), cfg.CallbackHash(p))
}

func TestVerifyCallback(t *testing.T) {
	cfg := testConfig()
	p := &CallbackPayload{
		Txnid:     "txn001",
		Amount:    "100.00",
		Firstname: "Guest",
		Email:     "guest@example.com",
		Status:    "success",
		Udf1:      "booking-001",
	}
	p.Hash = cfg.CallbackHash(p)
	assert.True(t, cfg.VerifyCallback(p))

	p.Amount = "1.00"
	assert.False(t, cfg.VerifyCallback(p), "a tampered amount must fail verification")

	p.Amount = "100.00"
	p.Hash = strings.ToUpper(p.Hash)
	assert.False(t, cfg.VerifyCallback(p))

	cfg.Salt = ""
	assert.False(t, cfg.VerifyCallback(p))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1311.00", FormatAmount("1311"))
	assert.Equal(t, "1311.50", FormatAmount("1311.5"))
	assert.Equal(t, "1311.00", FormatAmount("1311.004"))
	assert.Equal(t, "abc", FormatAmount("abc"))
	assert.Equal(t, "", FormatAmount(""))
}

func TestNewPaymentRequest(t *testing.T) {
	cfg := testConfig()
	req, err := cfg.NewPaymentRequest("txn001", "1311", "Booking for Event ID: 1", "Guest", "guest@example.com", "9876543210", "booking-001")
	assert.Nil(t, err)
	assert.Equal(t, cfg.MerchantKey, req.Key)
	assert.Equal(t, cfg.CallbackURL, req.Surl)
	assert.Equal(t, cfg.CallbackURL, req.Furl)
	assert.Equal(t, cfg.PaymentURL, req.Action)
	assert.Equal(t, "booking-001", req.Udf1)

	hash, err := cfg.RequestHash("txn001", "1311", "Booking for Event ID: 1", "Guest", "guest@example.com", "booking-001")
	assert.Nil(t, err)
	assert.Equal(t, hash, req.Hash)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PAYU_MERCHANT_KEY", "")
	t.Setenv("PAYU_SALT", "")
	_, err := ConfigFromEnv()
	assert.NotNil(t, err)

	t.Setenv("PAYU_MERCHANT_KEY", "gtKFFx")
	t.Setenv("PAYU_SALT", "eCwWELxi")
	cfg, err := ConfigFromEnv()
	assert.Nil(t, err)
	assert.Equal(t, "gtKFFx", cfg.MerchantKey)
}

func newTestBooking(status types.PaymentStatus) *models.Booking {
	return &models.Booking{
		ID:            uuid.MustParse("6f6b2f7a-9d7e-4d7b-8f3e-112233445566"),
		PaymentID:     "txn001",
		PaymentStatus: status,
	}
}

func TestDecide(t *testing.T) {
	cfg := testConfig()

	t.Run("success on a pending booking completes it", func(t *testing.T) {
		b := newTestBooking(types.PAYMENT_PENDING)
		p := &CallbackPayload{Txnid: "txn001", Mihpayid: "mih001", Status: "success"}
		out := cfg.Decide(b, p)
		assert.Equal(t, types.PAYMENT_COMPLETED, out.SetStatus)
		assert.Equal(t, "mih001", out.NewPaymentID)
		assert.Equal(t, "payu", out.PaymentMethod)
		assert.True(t, out.StoreResponse)
		assert.Contains(t, out.Redirect, cfg.SuccessURL)
		assert.Contains(t, out.Redirect, "status=success")
		assert.Contains(t, out.Redirect, "bookingId="+b.ID.String())
	})

	t.Run("duplicate success delivery leaves the booking untouched", func(t *testing.T) {
		b := newTestBooking(types.PAYMENT_COMPLETED)
		p := &CallbackPayload{Txnid: "txn001", Mihpayid: "mih001", Status: "success"}
		out := cfg.Decide(b, p)
		assert.Empty(t, out.SetStatus)
		assert.False(t, out.StoreResponse)
		assert.Contains(t, out.Redirect, cfg.SuccessURL)
	})

	t.Run("failure on a pending booking marks it failed", func(t *testing.T) {
		b := newTestBooking(types.PAYMENT_PENDING)
		p := &CallbackPayload{Txnid: "txn001", Status: "failure", ErrorMessage: "Transaction declined by bank"}
		out := cfg.Decide(b, p)
		assert.Equal(t, types.PAYMENT_FAILED, out.SetStatus)
		assert.Empty(t, out.NewPaymentID)
		assert.True(t, out.StoreResponse)
		assert.Contains(t, out.Redirect, cfg.FailureURL)
		assert.Contains(t, out.Redirect, "status=failure")
		assert.Contains(t, out.Redirect, "message=Transaction+declined+by+bank")
	})

	t.Run("failure without a gateway message gets the default", func(t *testing.T) {
		b := newTestBooking(types.PAYMENT_PENDING)
		p := &CallbackPayload{Txnid: "txn001", Status: "failure"}
		out := cfg.Decide(b, p)
		assert.Contains(t, out.Redirect, "message=Payment+failed.")
	})

	t.Run("failure never downgrades a completed booking", func(t *testing.T) {
		b := newTestBooking(types.PAYMENT_COMPLETED)
		p := &CallbackPayload{Txnid: "txn001", Status: "failure"}
		out := cfg.Decide(b, p)
		assert.Empty(t, out.SetStatus)
		assert.False(t, out.StoreResponse)
		assert.Contains(t, out.Redirect, cfg.FailureURL)
	})
}
