package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"etix/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ReferralDiscount is the fixed discount granted per consumed referral code.
const ReferralDiscount float64 = 50

// MaxReferralCodes is the cap on referral codes a single booking may redeem.
const MaxReferralCodes = 2

// NewTxnID mints a fresh merchant transaction id. Every initiation attempt
// gets a new one; a retried initiation orphans the previous pending id so a
// stale callback cannot be replayed against the new attempt.
func NewTxnID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewReferralCode issues the code other users can redeem against a booking.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// FormatMoney renders an amount for the gateway request the way the original
// request carried it: no forced decimals, no exponent.
func FormatMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// ComputeTotals applies the discount model: coupon discount plus a fixed
// amount per consumed referral code. The discount is capped at the base so
// total = base - discount always holds and the total never goes negative.
func ComputeTotals(base, couponDiscount float64, referralCount int) (discount, total float64) {
	discount = couponDiscount + float64(referralCount)*ReferralDiscount
	if discount > base {
		discount = base
	}
	total = base - discount
	return discount, total
}

func SplitReferralCodes(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if code := strings.TrimSpace(p); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func GenerateJWT(email string, userId uint, role string) (string, error) {
	claims := types.Claims{
		Username: email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userId)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}

func QRCSecret() ([]byte, error) {
	keyEnv := os.Getenv("API_QRC_SECRET")
	key, err := hex.DecodeString(keyEnv)
	if err != nil {
		log.Printf("Could not read key from string: %s\n", err.Error())
		return nil, fmt.Errorf("invalid API_QRC_SECRET: %w", err)
	}
	return key, nil
}
