package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"

	"etix/src/db"
	"etix/src/lib"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BaseTicketAmount is the list price of a booking before discounts.
const BaseTicketAmount float64 = 1311

var (
	ticketTypes    = []string{"General", "PC", "Associate"}
	paymentStates  = []string{"pending", "completed", "failed", "refunded"}
	paymentMethods = []string{"card", "upi", "netbanking", "wallet", "demo_payment", "payu"}
	bookingStates  = []string{"confirmed", "cancelled", "attended", "no-show"}
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")

			referralCodes := utils.SplitReferralCodes(body.ReferralCode)
			if len(referralCodes) > utils.MaxReferralCodes {
				ctx.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("A maximum of %d referral codes can be applied", utils.MaxReferralCodes),
				})
				return
			}

			db := db.GetDb()
			var booking models.Booking
			err := db.Transaction(func(tx *gorm.DB) error {
				var couponDiscount float64
				var couponId *uint
				if body.CouponCode != "" {
					coupon, err := lookupCoupon(tx, body.CouponCode)
					if err != nil {
						return err
					}
					if coupon != nil {
						couponDiscount = coupon.Discount
						couponId = &coupon.ID
					}
				}

				// Referral consumption is all or nothing. Each code flips its
				// owner booking's used flag with a conditional update; zero
				// rows means taken, unknown or self-owned, and the whole
				// booking rolls back.
				for _, code := range referralCodes {
					res := tx.
						Model(&models.Booking{}).
						Where("referral_code = ? AND referral_code_used = ? AND user_id <> ?", code, false, userId).
						Updates(map[string]any{
							"referral_code_used":        true,
							"referral_code_redeemed_by": userId,
						})
					if res.Error != nil {
						return res.Error
					}
					if res.RowsAffected == 0 {
						return fmt.Errorf("referral code %s is invalid or already used", code)
					}
				}

				discount, total := utils.ComputeTotals(BaseTicketAmount, couponDiscount, len(referralCodes))
				coupons := make(types.JSONBArray, 0, len(referralCodes))
				for _, code := range referralCodes {
					coupons = append(coupons, code)
				}

				booking = models.Booking{
					UserID:          userId,
					EventID:         body.Event,
					TicketType:      body.Category,
					BaseAmount:      BaseTicketAmount,
					DiscountAmount:  discount,
					TotalAmount:     total,
					PaymentStatus:   types.PAYMENT_PENDING,
					ReferralCode:    utils.NewReferralCode(),
					ReferralCoupons: coupons,
					CouponID:        couponId,
					CouponCode:      body.CouponCode,
					CouponDiscount:  couponDiscount,
					AttendeeName:    fmt.Sprintf("%s %s", body.FirstName, body.LastName),
					AttendeeEmail:   body.Email,
					AttendeePhone:   body.Phone,
					Gender:          body.Gender,
					TshirtSize:      body.TshirtSize,
					AadharNumber:    body.AadharNumber,
					Status:          types.BOOKING_CONFIRMED,
				}
				if err := tx.Create(&booking).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				log.Printf("Error creating booking: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			db := db.GetDb()
			var bookings []models.Booking
			err := db.
				Model(&models.Booking{}).
				Preload("Event").
				Order("created_at desc").
				Limit(100).
				Find(&bookings).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/mine", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{UserID: userId}).
				Preload("Event").
				Order("created_at desc").
				Find(&bookings).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where("id = ?", params.ID).
				Preload("Event").
				Preload("Coupon").
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			// Bookings carry attendee PII. Only the owner or an admin may read.
			if booking.UserID != ctx.GetUint("id") && ctx.GetString("role") != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:id", func(ctx *gin.Context) {
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.TicketType != "" {
				if !slices.Contains(ticketTypes, body.TicketType) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket type"})
					return
				}
				updates["ticket_type"] = body.TicketType
			}
			if body.PaymentStatus != "" {
				if !slices.Contains(paymentStates, body.PaymentStatus) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment status"})
					return
				}
				updates["payment_status"] = body.PaymentStatus
			}
			if body.PaymentMethod != "" {
				if !slices.Contains(paymentMethods, body.PaymentMethod) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
					return
				}
				updates["payment_method"] = body.PaymentMethod
			}
			if body.Status != "" {
				if !slices.Contains(bookingStates, body.Status) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking status"})
					return
				}
				updates["status"] = body.Status
			}
			if body.TshirtSize != "" {
				updates["tshirt_size"] = body.TshirtSize
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Booking{}).
				Where("id = ?", params.ID).
				Updates(updates)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/bookings/:id", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			res := db.
				Where("id = ?", params.ID).
				Delete(&models.Booking{})
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/bookings/:id/eticket", func(ctx *gin.Context) {
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where("id = ?", params.ID).
				Preload("Event").
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if booking.UserID != ctx.GetUint("id") && ctx.GetString("role") != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			if booking.PaymentStatus != types.PAYMENT_COMPLETED {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Booking has not been paid yet"})
				return
			}
			rd := lib.GetRedisClient()
			if rd != nil {
				cached, err := rd.Get(context.Background(), eticketCacheKey(booking.ID)).Result()
				if err == nil && cached != "" {
					ctx.JSON(http.StatusOK, gin.H{"url": cached})
					return
				}
			}
			url, err := generateETicket(&booking)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": *url})
		})
	return g
}

func bookingRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	grp := apiv1.Group("/", middlewares.AuthMiddleware)
	bookingHandlers(grp)
	return apiv1
}
