package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"etix/src/boot"
	"etix/src/db"
	"etix/src/lib"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/payu"
	"etix/src/types"
	"etix/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var payuConfig *payu.Config

func getPayuConfig() *payu.Config {
	if payuConfig != nil {
		return payuConfig
	}
	cfg, err := payu.ConfigFromEnv()
	if err != nil {
		log.Printf("Error loading payment gateway config: %s\n", err.Error())
		return nil
	}
	payuConfig = cfg
	return payuConfig
}

// NewPayuConfig Replace gateway config with custom instance
func NewPayuConfig(c *payu.Config) *payu.Config {
	payuConfig = c
	return payuConfig
}

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/initiate-payment", func(ctx *gin.Context) {
			var body types.InitiatePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			cfg := getPayuConfig()
			if cfg == nil {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Payment gateway is not configured"})
				return
			}
			db := db.GetDb()
			var booking models.Booking
			err := db.
				Model(&models.Booking{}).
				Where("id = ?", body.BookingID).
				Preload("Event").
				First(&booking).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Booking not found"})
					return
				}
				log.Printf("Error retrieving booking %s: %s\n", body.BookingID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Error while processing request"})
				return
			}
			if booking.PaymentStatus == types.PAYMENT_COMPLETED {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "This booking has already been paid."})
				return
			}

			// A fresh txnid per attempt. The previous pending id is orphaned
			// so a late callback for it can no longer match this booking.
			txnid := utils.NewTxnID()
			amount := utils.FormatMoney(booking.TotalAmount)
			productinfo := "Booking for Event ID: N/A"
			if booking.EventID != nil {
				productinfo = fmt.Sprintf("Booking for Event ID: %d", *booking.EventID)
			}
			firstname := booking.AttendeeName
			if firstname == "" {
				firstname = "Guest"
			}
			email := booking.AttendeeEmail
			if email == "" {
				email = "guest@example.com"
			}
			phone := booking.AttendeePhone
			if phone == "" {
				phone = "0000000000"
			}

			payload, err := cfg.NewPaymentRequest(txnid, amount, productinfo, firstname, email, phone, booking.ID.String())
			if err != nil {
				log.Printf("Error signing payment request for booking %s: %s\n", booking.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				return
			}

			// Persist the txnid before handing the payload out. The condition
			// guards against a callback completing the booking in between.
			res := db.
				Model(&models.Booking{}).
				Where("id = ? AND payment_status <> ?", booking.ID, types.PAYMENT_COMPLETED).
				Updates(map[string]any{
					"payment_id":     txnid,
					"payment_status": types.PAYMENT_PENDING,
				})
			if res.Error != nil {
				log.Printf("Error persisting txnid for booking %s: %s\n", booking.ID, res.Error.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Error while processing request"})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusConflict, gin.H{"success": false, "message": "This booking has already been paid."})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Payment initiated successfully",
				"data":    payload,
			})
		})
	return g
}

func paymentCallbackRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	// The gateway notifies via form POST; some integrations echo the same
	// payload back through the browser as a GET. Both land here.
	apiv1.POST("/payment-callback", handlePaymentCallback)
	apiv1.GET("/payment-callback", handlePaymentCallback)
	return apiv1
}

func paymentRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	grp := apiv1.Group("/", middlewares.AuthMiddleware)
	paymentHandlers(grp)
	return apiv1
}

func handlePaymentCallback(ctx *gin.Context) {
	var p payu.CallbackPayload
	if err := ctx.ShouldBind(&p); err != nil {
		log.Printf("Error binding callback payload: %s\n", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Parameters"})
		return
	}
	if p.Txnid == "" || p.Status == "" || p.Hash == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Parameters"})
		return
	}
	cfg := getPayuConfig()
	if cfg == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Payment gateway is not configured"})
		return
	}

	// Nothing below runs on an unverified payload.
	if !cfg.VerifyCallback(&p) {
		log.Printf("Hash mismatch on callback for txnid %s\n", p.Txnid)
		q := url.Values{}
		q.Set("status", "hash_mismatch")
		q.Set("message", "Payment verification failed. Contact support if amount was deducted.")
		ctx.Redirect(http.StatusFound, cfg.FailureRedirect(q))
		return
	}

	db := db.GetDb()
	var booking models.Booking
	err := db.
		Model(&models.Booking{}).
		Where("id = ? AND payment_id = ?", p.Udf1, p.Txnid).
		First(&booking).
		Error
	if err != nil {
		// Duplicate deliveries arrive after payment_id was overwritten with
		// the gateway id. Fall back to that before giving up.
		ferr := db.
			Model(&models.Booking{}).
			Where("payment_id = ?", p.Mihpayid).
			First(&booking).
			Error
		if ferr == nil && booking.PaymentStatus == types.PAYMENT_COMPLETED {
			ctx.Redirect(http.StatusFound, cfg.SuccessRedirect(booking.ID.String(), p.Txnid))
			return
		}
		log.Printf("No booking matches callback txnid %s: %s\n", p.Txnid, err.Error())
		q := url.Values{}
		q.Set("status", "booking_not_found")
		q.Set("message", "No booking matches this payment.")
		ctx.Redirect(http.StatusFound, cfg.FailureRedirect(q))
		return
	}

	outcome := cfg.Decide(&booking, &p)
	if outcome.SetStatus != "" {
		updates := map[string]any{"payment_status": outcome.SetStatus}
		if outcome.NewPaymentID != "" {
			updates["payment_id"] = outcome.NewPaymentID
		}
		if outcome.PaymentMethod != "" {
			updates["payment_method"] = outcome.PaymentMethod
		}
		if outcome.StoreResponse {
			updates["gateway_response"] = p.AuditRecord()
		}
		res := db.
			Model(&models.Booking{}).
			Where("id = ? AND payment_status <> ?", booking.ID, types.PAYMENT_COMPLETED).
			Updates(updates)
		if res.Error != nil {
			log.Printf("Error reconciling booking %s: %s\n", booking.ID, res.Error.Error())
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Error while processing request"})
			return
		}
		if res.RowsAffected > 0 && outcome.SetStatus == types.PAYMENT_COMPLETED {
			go publishPaymentUpdate(&booking, &p)
			go deliverETicket(booking.ID)
		}
	}
	ctx.Redirect(http.StatusFound, outcome.Redirect)
}

func publishPaymentUpdate(booking *models.Booking, p *payu.CallbackPayload) {
	err := lib.KafkaProduceMessage(boot.PaymentUpdatesTopic, map[string]any{
		"bookingId": booking.ID.String(),
		"txnid":     p.Txnid,
		"mihpayid":  p.Mihpayid,
		"status":    p.Status,
		"amount":    p.Amount,
		"mode":      p.Mode,
	})
	if err != nil {
		log.Printf("Error producing payment update for booking %s: %s\n", booking.ID, err.Error())
	}
}
