package controllers

import (
	"encoding/json"
	"math"
	"net/http"

	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type AdjustInput struct {
	MilkID string         `json:"milkId"`
	Delta  json.Number    `json:"delta"`
	Text   string         `json:"text"`
	Meta   datatypes.JSON `json:"meta"`
}

type MilkpointsController struct {
	Ledger *services.LedgerService
}

func (m *MilkpointsController) Get(c *gin.Context) {
	ledger, err := m.Ledger.Get(c.Request.Context(), c.Param("milkId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{
		"milkId":  ledger.MilkID,
		"points":  ledger.Points,
		"history": ledger.History,
	})
}

// Adjust applies a signed point delta to a MilkID ledger.
func (m *MilkpointsController) Adjust(c *gin.Context) {
	var input AdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	delta, ok := parseDelta(input.Delta)
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "delta musi być != 0")
		return
	}

	points, err := m.Ledger.Adjust(c.Request.Context(), services.Adjustment{
		MilkID: input.MilkID,
		Delta:  delta,
		Text:   input.Text,
		Meta:   input.Meta,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"milkId": input.MilkID, "points": points})
}

// Card serves the loyalty QR code as a PNG.
func (m *MilkpointsController) Card(c *gin.Context) {
	png, err := m.Ledger.LoyaltyCard(c.Request.Context(), c.Param("milkId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// parseDelta accepts integral numbers only. Zero and fractions are rejected.
func parseDelta(n json.Number) (int64, bool) {
	if i, err := n.Int64(); err == nil {
		return i, i != 0
	}
	f, err := n.Float64()
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if err != nil || f != math.Trunc(f) || f >= math.Exp2(63) || f < -math.Exp2(63) {
		return 0, false
	}
	return int64(f), f != 0
}
