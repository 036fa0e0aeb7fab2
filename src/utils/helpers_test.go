package utils

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	discount, total := ComputeTotals(1311, 0, 0)
	assert.Equal(t, float64(0), discount)
	assert.Equal(t, float64(1311), total)

	discount, total = ComputeTotals(1311, 100, 2)
	assert.Equal(t, float64(200), discount)
	assert.Equal(t, float64(1111), total)

	// the discount is capped at the base, so total stays base minus discount
	discount, total = ComputeTotals(100, 500, 2)
	assert.Equal(t, float64(100), discount)
	assert.Equal(t, float64(0), total)
	assert.Equal(t, float64(100)-discount, total)
}

func TestSplitReferralCodes(t *testing.T) {
	assert.Nil(t, SplitReferralCodes(""))
	assert.Equal(t, []string{"AAAA1111"}, SplitReferralCodes("AAAA1111"))
	assert.Equal(t, []string{"AAAA1111", "BBBB2222"}, SplitReferralCodes(" AAAA1111 , BBBB2222 "))
	assert.Equal(t, []string{"AAAA1111"}, SplitReferralCodes("AAAA1111,,"))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1311", FormatMoney(1311))
	assert.Equal(t, "1261.5", FormatMoney(1261.5))
	assert.Equal(t, "0", FormatMoney(0))
}

func TestNewTxnID(t *testing.T) {
	id := NewTxnID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, NewTxnID())
}

func TestNewReferralCode(t *testing.T) {
	code := NewReferralCode()
	assert.Len(t, code, 8)
	assert.Equal(t, strings.ToUpper(code), code)
	assert.NotEqual(t, code, NewReferralCode())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := hex.DecodeString("6368616e676520746869732070617373776f726420746f206120736563726574")
	assert.Nil(t, err)

	enc, err := EncryptMessage(key, "booking-001")
	assert.Nil(t, err)
	assert.NotEqual(t, "booking-001", enc)

	dec, err := DecryptMessage(key, enc)
	assert.Nil(t, err)
	assert.Equal(t, "booking-001", *dec)
}
