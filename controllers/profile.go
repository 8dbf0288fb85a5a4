package controllers

import (
	"net/http"

	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type ProfileController struct {
	Accounts *services.AccountService
}

func (p *ProfileController) UpdateProfile(c *gin.Context) {
	claims, ok := utils.SessionFrom(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Brak tokena")
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	acc, err := p.Accounts.UpdateProfile(c.Request.Context(), claims.Email, input.FullName, input.Phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondOK(c, http.StatusOK, gin.H{
		"user": gin.H{
			"email":    acc.Email,
			"fullName": acc.FullName,
			"phone":    acc.Phone,
			"milkId":   acc.MilkID,
		},
	})
}
