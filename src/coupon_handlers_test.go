package main

import (
	"encoding/json"
	"testing"
	"time"

	"etix/src/lib"
	"etix/src/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestLookupCoupon(t *testing.T) {
	rd, rmock := redismock.NewClientMock()
	lib.NewRedisClient(rd)

	t.Run("serves an active coupon from the cache", func(t *testing.T) {
		rmock.ExpectGet("coupon:SAVE100").SetVal(`{"id":1,"code":"SAVE100","discount":100,"is_active":true}`)

		coupon, err := lookupCoupon(nil, "SAVE100")
		assert.Nil(t, err)
		assert.Equal(t, float64(100), coupon.Discount)
	})

	t.Run("falls back to the database on a cache miss", func(t *testing.T) {
		gdb, dmock := NewMockDB()

		rmock.ExpectGet("coupon:WELCOME50").RedisNil()
		dmock.ExpectQuery(`SELECT (.+) FROM "coupons"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount", "is_active"}).
				AddRow(2, "WELCOME50", 50, true))

		expected := models.Coupon{ID: 2, Code: "WELCOME50", Discount: 50, IsActive: true}
		raw, _ := json.Marshal(&expected)
		rmock.ExpectSetEx("coupon:WELCOME50", string(raw), 10*time.Minute).SetVal("OK")

		coupon, err := lookupCoupon(gdb, "WELCOME50")
		assert.Nil(t, err)
		assert.Equal(t, float64(50), coupon.Discount)
	})

	t.Run("unknown or inactive codes are rejected", func(t *testing.T) {
		gdb, dmock := NewMockDB()

		rmock.ExpectGet("coupon:NOPE").RedisNil()
		dmock.ExpectQuery(`SELECT (.+) FROM "coupons"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := lookupCoupon(gdb, "NOPE")
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "invalid or inactive")
	})
}
