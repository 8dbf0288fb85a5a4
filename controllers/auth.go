package controllers

import (
	"net/http"

	"milk-backend/models"
	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	FullName string `json:"fullName"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthController struct {
	Accounts *services.AccountService
}

// Register creates an account (password optional) and returns a session.
func (a *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	session, err := a.Accounts.Register(c.Request.Context(), services.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
		FullName: input.FullName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSession(c, session)
}

// Login signs in, creating a passwordless account for unknown emails.
func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	session, err := a.Accounts.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSession(c, session)
}

func (a *AuthController) Me(c *gin.Context) {
	claims, ok := utils.SessionFrom(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Brak tokena")
		return
	}

	profile, err := a.Accounts.Profile(c.Request.Context(), claims.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	acc := profile.Account
	utils.RespondOK(c, http.StatusOK, gin.H{
		"user": gin.H{
			"email":               acc.Email,
			"fullName":            acc.FullName,
			"phone":               acc.Phone,
			"milkId":              acc.MilkID,
			"points":              profile.Points,
			"pointsHistory":       acc.PointsHistory,
			"ordersHistory":       acc.OrdersHistory,
			"reservationsHistory": acc.ReservationsHistory,
		},
	})
}

func respondSession(c *gin.Context, s *services.Session) {
	utils.RespondOK(c, http.StatusOK, gin.H{
		"token": s.Token,
		"user":  publicUser(s.Account),
	})
}

func publicUser(acc *models.Account) gin.H {
	name := acc.FullName
	if name == "" {
		name = services.DefaultDisplayName
	}
	return gin.H{
		"email":  acc.Email,
		"name":   name,
		"phone":  acc.Phone,
		"milkId": acc.MilkID,
	}
}
