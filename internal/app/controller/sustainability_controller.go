package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdana/verdana-backend/internal/app/service"
	apperrors "github.com/verdana/verdana-backend/internal/errors"
	"github.com/verdana/verdana-backend/internal/middleware"
)

type SustainabilityController struct {
	sustainabilityService service.SustainabilityService
}

func NewSustainabilityController(sustainabilityService service.SustainabilityService) *SustainabilityController {
	return &SustainabilityController{
		sustainabilityService: sustainabilityService,
	}
}

// GetStats returns the storefront impact rollup
// GET /api/v1/sustainability/stats
func (ctrl *SustainabilityController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.sustainabilityService.GetStats()
	if err != nil {
		log.Error("Failed to fetch sustainability stats", err, nil)
		apperrors.InternalError(c, "Failed to fetch sustainability stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// GetMyImpact returns the caller's share of the program
// GET /api/v1/sustainability/me/impact
func (ctrl *SustainabilityController) GetMyImpact(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	impact, err := ctrl.sustainabilityService.GetUserImpact(userID)
	if err != nil {
		log.Error("Failed to fetch user impact", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch your impact")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"impact": impact,
	})
}
