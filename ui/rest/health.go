package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/AzielCF/az-giveaway/pkg/utils"
)

type Health struct {
	db      *gorm.DB
	started time.Time
}

func InitRestHealth(app fiber.Router, db *gorm.DB) Health {
	handler := Health{db: db, started: time.Now()}
	app.Get("/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	dbStatus := "up"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	status := 200
	if dbStatus == "down" {
		status = 503
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: fiber.Map{
			"database": dbStatus,
			"uptime":   time.Since(h.started).String(),
		},
	})
}
