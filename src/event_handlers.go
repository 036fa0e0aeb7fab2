package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"etix/src/config"
	"etix/src/db"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/events", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dateTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.DateTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			status := types.EVENT_DRAFT
			if body.Publish {
				status = types.EVENT_PUBLISHED
			}
			event := models.Event{
				Name:      body.Name,
				Slug:      slug.Make(body.Name),
				Location:  body.Location,
				DateTime:  dateTime,
				Status:    status,
				CreatedBy: userId,
			}
			if body.About != "" {
				event.About = &body.About
			}
			db := db.GetDb()
			if err := db.Create(&event).Error; err != nil {
				log.Printf("Error creating event: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": event})
		}).
		PATCH("/events/:id/status", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != "admin" {
				ctx.Status(http.StatusForbidden)
				return
			}
			var body struct {
				NewStatus *types.EventStatus `json:"new_status" binding:"required"`
			}
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Event{}).
				Where("id = ?", params.ID).
				Update("status", *body.NewStatus)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func eventsRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/events", func(ctx *gin.Context) {
			var events []models.Event
			db := db.GetDb()
			today := time.Now()
			in3months := today.Add((24 * 30 * 3) * time.Hour)
			err := db.
				Model(&models.Event{}).
				Where("status = ?", types.EVENT_PUBLISHED).
				Where("date_time BETWEEN ? AND ?", today, in3months).
				Order("date_time asc").
				Limit(20).
				Find(&events).
				Error
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		GET("/events/:slug", func(ctx *gin.Context) {
			slugParam := ctx.Params.ByName("slug")
			var event models.Event
			db := db.GetDb()
			err := db.
				Model(&models.Event{}).
				Where(&models.Event{Slug: slugParam, Status: types.EVENT_PUBLISHED}).
				First(&event).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		})
	grp := apiv1.Group("/", middlewares.AuthMiddleware)
	eventHandlers(grp)
	return apiv1
}
