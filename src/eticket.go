package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"time"

	"etix/src/db"
	"etix/src/lib"
	awslib "etix/src/lib/aws"
	"etix/src/models"
	"etix/src/utils"

	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
)

func eticketCacheKey(bookingId uuid.UUID) string {
	return fmt.Sprintf("eticket:%s", bookingId.String())
}

// generateETicket renders the booking's QR e-ticket, uploads it to the assets
// bucket and caches the signed download URL. The QR content is the encrypted
// booking reference so a scanned code cannot be forged offline.
func generateETicket(booking *models.Booking) (*string, error) {
	key, err := utils.QRCSecret()
	if err != nil {
		return nil, err
	}
	rawData := map[string]any{
		"bookingId": booking.ID.String(),
		"txnid":     booking.PaymentID,
	}
	rawBytes, _ := json.Marshal(rawData)

	encryptedMessage, err := utils.EncryptMessage(key, string(rawBytes))
	if err != nil {
		log.Printf("Error encrypting message: %s\n", err.Error())
		return nil, err
	}
	qrc, err := qrcode.New(encryptedMessage)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s.jpeg", booking.ID.String())
	filepath := path.Join(os.TempDir(), filename)
	if err = qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return nil, err
	}
	url, err := awslib.S3UploadAsset(filename, filepath)
	if err != nil {
		log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
		return nil, err
	}
	rd := lib.GetRedisClient()
	if rd != nil {
		rd.SetEx(context.Background(), eticketCacheKey(booking.ID), *url, 2*time.Hour)
	}
	return url, nil
}

// deliverETicket runs after a payment completes: generate the e-ticket and
// mail the attendee. Failures are logged only; the payment itself already
// succeeded and must not be affected.
func deliverETicket(bookingId uuid.UUID) {
	db := db.GetDb()
	var booking models.Booking
	if err := db.
		Model(&models.Booking{}).
		Where("id = ?", bookingId).
		Preload("Event").
		First(&booking).
		Error; err != nil {
		log.Printf("Could not load booking %s for e-ticket delivery: %s\n", bookingId, err.Error())
		return
	}
	url, err := generateETicket(&booking)
	if err != nil {
		log.Printf("Error generating e-ticket for booking %s: %s\n", bookingId, err.Error())
		return
	}
	if err := sendBookingConfirmation(&booking, *url); err != nil {
		log.Printf("Error sending confirmation for booking %s: %s\n", bookingId, err.Error())
	}
}

func sendBookingConfirmation(booking *models.Booking, ticketURL string) error {
	if booking.AttendeeEmail == "" {
		return nil
	}
	eventName := "your event"
	if booking.Event != nil {
		eventName = booking.Event.Name
	}
	body := fmt.Sprintf(
		"Hi %s,<br><br>Your payment was received and your booking <b>%s</b> for %s is confirmed.<br>"+
			"Download your e-ticket here: <a href=\"%s\">e-ticket</a><br><br>See you there!",
		booking.AttendeeName, booking.ID.String(), eventName, ticketURL,
	)
	return lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("SMTP_FROM"),
		FromName: os.Getenv("SMTP_FROM_NAME"),
		To:       []string{booking.AttendeeEmail},
		Subject:  fmt.Sprintf("Booking confirmed: %s", eventName),
		Body:     body,
		Html:     true,
	})
}
