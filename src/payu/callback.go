package payu

import (
	"crypto/hmac"
	"net/url"

	"etix/src/models"
	"etix/src/types"
)

// CallbackPayload is the gateway's asynchronous notification, delivered as a
// form POST or query GET. Mihpayid is the gateway's own transaction id,
// distinct from the merchant txnid minted at initiation.
type CallbackPayload struct {
	Mihpayid     string `form:"mihpayid"`
	Txnid        string `form:"txnid"`
	Amount       string `form:"amount"`
	ProductInfo  string `form:"productinfo"`
	Firstname    string `form:"firstname"`
	Email        string `form:"email"`
	Phone        string `form:"phone"`
	Status       string `form:"status"`
	Hash         string `form:"hash"`
	Mode         string `form:"mode"`
	ErrorMessage string `form:"error_Message"`
	Udf1         string `form:"udf1"`
	Udf2         string `form:"udf2"`
	Udf3         string `form:"udf3"`
	Udf4         string `form:"udf4"`
	Udf5         string `form:"udf5"`
	Udf6         string `form:"udf6"`
	Udf7         string `form:"udf7"`
	Udf8         string `form:"udf8"`
	Udf9         string `form:"udf9"`
	Udf10        string `form:"udf10"`
}

// CallbackHash computes the verification hash over the gateway-mandated
// reverse sequence:
// salt|status|udf10..udf1|email|firstname|productinfo|amount|txnid|key
// The amount is normalized to two decimal places before hashing.
func (c *Config) CallbackHash(p *CallbackPayload) string {
	fields := []string{
		c.Salt,
		p.Status,
		p.Udf10, p.Udf9, p.Udf8, p.Udf7, p.Udf6,
		p.Udf5, p.Udf4, p.Udf3, p.Udf2, p.Udf1,
		p.Email,
		p.Firstname,
		p.ProductInfo,
		FormatAmount(p.Amount),
		p.Txnid,
		c.MerchantKey,
	}
	return signFields(fields)
}

func (c *Config) VerifyCallback(p *CallbackPayload) bool {
	if c.Salt == "" {
		return false
	}
	calculated := c.CallbackHash(p)
	return hmac.Equal([]byte(calculated), []byte(p.Hash))
}

// AuditRecord is the raw payload snapshot persisted on the booking.
func (p *CallbackPayload) AuditRecord() types.JSONB {
	return types.JSONB{
		"mihpayid":      p.Mihpayid,
		"txnid":         p.Txnid,
		"amount":        p.Amount,
		"productinfo":   p.ProductInfo,
		"firstname":     p.Firstname,
		"email":         p.Email,
		"phone":         p.Phone,
		"status":        p.Status,
		"mode":          p.Mode,
		"error_Message": p.ErrorMessage,
		"udf1":          p.Udf1,
	}
}

// Outcome is what a verified callback does to a booking: an optional status
// transition plus the redirect the gateway contract expects. A zero SetStatus
// means the booking is left untouched.
type Outcome struct {
	SetStatus     types.PaymentStatus
	NewPaymentID  string
	PaymentMethod string
	StoreResponse bool
	Redirect      string
}

func (c *Config) SuccessRedirect(bookingID, txnid string) string {
	q := url.Values{}
	q.Set("bookingId", bookingID)
	q.Set("txnid", txnid)
	q.Set("status", "success")
	return c.SuccessURL + "?" + q.Encode()
}

func (c *Config) FailureRedirect(q url.Values) string {
	return c.FailureURL + "?" + q.Encode()
}

// Decide maps a stored booking and a hash-verified callback onto the status
// transition and redirect to apply. It performs no I/O so every branch of the
// reconciliation table is testable without a store. Callers must persist the
// transition conditionally (only while the current status still permits it).
func (c *Config) Decide(b *models.Booking, p *CallbackPayload) Outcome {
	completed := b.PaymentStatus == types.PAYMENT_COMPLETED
	if p.Status == "success" {
		if completed {
			// Duplicate delivery. Acknowledge without touching state.
			return Outcome{Redirect: c.SuccessRedirect(b.ID.String(), p.Txnid)}
		}
		return Outcome{
			SetStatus:     types.PAYMENT_COMPLETED,
			NewPaymentID:  p.Mihpayid,
			PaymentMethod: "payu",
			StoreResponse: true,
			Redirect:      c.SuccessRedirect(b.ID.String(), p.Txnid),
		}
	}

	msg := p.ErrorMessage
	if msg == "" {
		msg = "Payment failed."
	}
	q := url.Values{}
	q.Set("bookingId", b.ID.String())
	q.Set("txnid", p.Txnid)
	q.Set("status", p.Status)
	q.Set("message", msg)
	if completed {
		// Never downgrade a completed booking; surface the report only.
		return Outcome{Redirect: c.FailureRedirect(q)}
	}
	return Outcome{
		SetStatus:     types.PAYMENT_FAILED,
		StoreResponse: true,
		Redirect:      c.FailureRedirect(q),
	}
}
