// controllers/reservation.go
package controllers

import (
	"net/http"

	"milk-backend/models"
	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReservationInput struct {
	Name        string      `json:"name"`
	Phone       looseString `json:"phone"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Guests      looseString `json:"guests"`
	Room        string      `json:"room"`
	Notes       string      `json:"notes"`
	Source      string      `json:"source"`
	LoyaltyCode looseString `json:"loyaltyCode"`
	User        struct {
		Email string `json:"email"`
	} `json:"user"`
}

type ReservationController struct {
	Reservations *services.ReservationService
}

func (r *ReservationController) List(c *gin.Context) {
	list, err := r.Reservations.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"reservations": list})
}

func (r *ReservationController) Create(c *gin.Context) {
	var input ReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reservation, err := r.Reservations.Create(c.Request.Context(), &models.Reservation{
		Name:        input.Name,
		Phone:       string(input.Phone),
		Date:        input.Date,
		Time:        input.Time,
		Guests:      string(input.Guests),
		Room:        input.Room,
		Notes:       input.Notes,
		Source:      input.Source,
		Customer:    models.Customer{Email: input.User.Email},
		LoyaltyCode: string(input.LoyaltyCode),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"reservation": reservation})
}

// Delete always succeeds for ids that do not exist.
func (r *ReservationController) Delete(c *gin.Context) {
	if err := r.Reservations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, nil)
}
