package controllers

import (
	"net/http"
	"time"

	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Stats *services.StatsService
}

// GetStats returns the admin overview counters.
func (d *DashboardController) GetStats(c *gin.Context) {
	stats, err := d.Stats.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{
		"orders":       stats.Orders,
		"reservations": stats.Reservations,
		"usersAll":     stats.UsersAll,
		"ordersToday":  stats.OrdersToday,
	})
}

func Health(c *gin.Context) {
	utils.RespondOK(c, http.StatusOK, gin.H{"ts": time.Now().UnixMilli()})
}
