package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"etix/src/db"
	"etix/src/lib"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func couponCacheKey(code string) string {
	return fmt.Sprintf("coupon:%s", code)
}

// lookupCoupon resolves an active coupon, serving from the cache when warm.
// Inactive and unknown codes both come back as an error so a stale code
// cannot silently price a booking at full discount.
func lookupCoupon(tx *gorm.DB, code string) (*models.Coupon, error) {
	rd := lib.GetRedisClient()
	if rd != nil {
		cached, err := rd.Get(context.Background(), couponCacheKey(code)).Result()
		if err == nil && cached != "" {
			var coupon models.Coupon
			if err := json.Unmarshal([]byte(cached), &coupon); err == nil && coupon.IsActive {
				return &coupon, nil
			}
		}
	}
	var coupon models.Coupon
	err := tx.
		Model(&models.Coupon{}).
		Where("code = ? AND is_active = ?", code, true).
		First(&coupon).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon code %s is invalid or inactive", code)
		}
		return nil, err
	}
	if rd != nil {
		if raw, err := json.Marshal(&coupon); err == nil {
			rd.SetEx(context.Background(), couponCacheKey(code), string(raw), 10*time.Minute)
		}
	}
	return &coupon, nil
}

func couponHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/coupons", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var body types.CreateCouponRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			coupon := models.Coupon{
				Code:     body.Code,
				Discount: body.Discount,
				IsActive: true,
			}
			if err := db.Create(&coupon).Error; err != nil {
				log.Printf("Error creating coupon: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": coupon})
		}).
		GET("/coupons", func(ctx *gin.Context) {
			db := db.GetDb()
			var coupons []models.Coupon
			if err := db.
				Model(&models.Coupon{}).
				Where("is_active = ?", true).
				Order("created_at desc").
				Find(&coupons).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": coupons, "count": len(coupons)})
		}).
		PUT("/coupons/:id/deactivate", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var coupon models.Coupon
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Coupon{}).
					Where("id = ?", params.ID).
					First(&coupon).
					Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Coupon{}).
					Where("id = ?", params.ID).
					Update("is_active", false).
					Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			rd := lib.GetRedisClient()
			if rd != nil {
				rd.Del(context.Background(), couponCacheKey(coupon.Code))
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func couponRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	grp := apiv1.Group("/", middlewares.AuthMiddleware)
	couponHandlers(grp)
	return apiv1
}
