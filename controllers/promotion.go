package controllers

import (
	"net/http"

	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

type SetPromotionInput struct {
	Text     string `json:"text"`
	Active   bool   `json:"active"`
	Location string `json:"location"`
}

type PromotionController struct {
	Promotions *services.PromotionService
}

// Data returns the current banner flattened for display.
func (p *PromotionController) Data(c *gin.Context) {
	current, err := p.Promotions.Current(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{
		"happy": gin.H{
			"text":     current.Text,
			"active":   current.Active,
			"location": current.Location,
		},
	})
}

// Get returns the latest stored record, or null when none exists.
func (p *PromotionController) Get(c *gin.Context) {
	latest, err := p.Promotions.Latest(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"happy": latest})
}

func (p *PromotionController) Set(c *gin.Context) {
	var input SetPromotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	promo, err := p.Promotions.Set(c.Request.Context(), input.Text, input.Active, input.Location)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"happy": promo})
}
