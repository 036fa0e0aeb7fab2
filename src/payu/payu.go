package payu

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries the merchant credentials and redirect targets. It is built
// once at process start and passed by reference into the handlers; nothing in
// this package reads the environment after that, and the salt is never logged.
type Config struct {
	MerchantKey string
	Salt        string
	PaymentURL  string
	CallbackURL string
	SuccessURL  string
	FailureURL  string
}

func ConfigFromEnv() (*Config, error) {
	c := &Config{
		MerchantKey: os.Getenv("PAYU_MERCHANT_KEY"),
		Salt:        os.Getenv("PAYU_SALT"),
		PaymentURL:  os.Getenv("PAYU_PAYMENT_URL"),
		CallbackURL: os.Getenv("PAYU_CALLBACK_URL"),
		SuccessURL:  os.Getenv("FRONTEND_PAYMENT_SUCCESS_URL"),
		FailureURL:  os.Getenv("FRONTEND_PAYMENT_FAILURE_URL"),
	}
	if c.MerchantKey == "" || c.Salt == "" {
		return nil, errors.New("PAYU_MERCHANT_KEY and PAYU_SALT must be set")
	}
	return c, nil
}

// signFields is the shared keyed digest for both directions: SHA-512 over the
// pipe-joined field sequence. Field order and count are fixed by the gateway
// contract; empty fields stay empty strings, never a literal "null".
func signFields(fields []string) string {
	sum := sha512.Sum512([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

const udfCount = 10

// udfSlots renders the ten user-defined fields for the request hash. Only
// udf1 is used, to carry the booking id through the payment round-trip.
func udfSlots(udf1 string) []string {
	slots := make([]string, udfCount)
	slots[0] = udf1
	return slots
}

// RequestHash computes the initiation hash:
// key|txnid|amount|productinfo|firstname|email|udf1|udf2..udf10|salt
func (c *Config) RequestHash(txnid, amount, productinfo, firstname, email, udf1 string) (string, error) {
	if c.Salt == "" {
		return "", errors.New("payment salt is not configured")
	}
	fields := []string{c.MerchantKey, txnid, amount, productinfo, firstname, email}
	fields = append(fields, udfSlots(udf1)...)
	fields = append(fields, c.Salt)
	return signFields(fields), nil
}

// FormatAmount renders an amount the way the gateway echoes it back: a plain
// decimal string with exactly two fraction digits. Unparsable input is
// returned as-is so a forged amount still fails hash verification.
func FormatAmount(amount string) string {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return amount
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// PaymentRequest is the form payload the frontend submits to the gateway's
// hosted checkout endpoint.
type PaymentRequest struct {
	Key         string `json:"key"`
	Txnid       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	Firstname   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Surl        string `json:"surl"`
	Furl        string `json:"furl"`
	Hash        string `json:"hash"`
	Udf1        string `json:"udf1"`
	Action      string `json:"action"`
}

func (c *Config) NewPaymentRequest(txnid, amount, productinfo, firstname, email, phone, udf1 string) (*PaymentRequest, error) {
	hash, err := c.RequestHash(txnid, amount, productinfo, firstname, email, udf1)
	if err != nil {
		return nil, fmt.Errorf("could not sign payment request: %w", err)
	}
	return &PaymentRequest{
		Key:         c.MerchantKey,
		Txnid:       txnid,
		Amount:      amount,
		ProductInfo: productinfo,
		Firstname:   firstname,
		Email:       email,
		Phone:       phone,
		Surl:        c.CallbackURL,
		Furl:        c.CallbackURL,
		Hash:        hash,
		Udf1:        udf1,
		Action:      c.PaymentURL,
	}, nil
}
