package main

import (
	"fmt"
	"log"
	"net/http"

	"etix/src/db"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"

	"github.com/gin-gonic/gin"
)

func referralHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/validate-referral-codes", func(ctx *gin.Context) {
			var body types.ValidateReferralCodesRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if len(body.Codes) > utils.MaxReferralCodes {
				ctx.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("A maximum of %d referral codes can be applied", utils.MaxReferralCodes),
				})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()

			// Validation is advisory only. Codes are not reserved here; the
			// authoritative consumption happens when the booking is created.
			validCodes := []string{}
			for _, code := range body.Codes {
				if code == "" {
					continue
				}
				var count int64
				err := db.
					Model(&models.Booking{}).
					Where("referral_code = ? AND referral_code_used = ? AND user_id <> ?", code, false, userId).
					Count(&count).
					Error
				if err != nil {
					log.Printf("Error validating referral code %s: %s\n", code, err.Error())
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
					return
				}
				if count > 0 {
					validCodes = append(validCodes, code)
				}
			}
			if len(validCodes) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid referral codes found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"validCodes":    validCodes,
				"totalDiscount": float64(len(validCodes)) * utils.ReferralDiscount,
			})
		})
	return g
}

func referralRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	grp := apiv1.Group("/", middlewares.AuthMiddleware)
	referralHandlers(grp)
	return apiv1
}
