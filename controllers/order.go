// controllers/order.go
package controllers

import (
	"net/http"

	"milk-backend/models"
	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OrderItemInput struct {
	Title string          `json:"title"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

type OrderInput struct {
	Source         string           `json:"source"`
	PickupTime     string           `json:"pickupTime"`
	PickupLocation string           `json:"pickupLocation"`
	Notes          string           `json:"notes"`
	Items          []OrderItemInput `json:"items"`
	Total          decimal.Decimal  `json:"total"`
	Status         string           `json:"status"`
	LoyaltyCode    looseString      `json:"loyaltyCode"`
	User           struct {
		Email string      `json:"email"`
		Name  string      `json:"name"`
		Phone looseString `json:"phone"`
	} `json:"user"`
}

type OrderController struct {
	Orders *services.OrderService
	Log    logrus.FieldLogger
}

func (o *OrderController) Create(c *gin.Context) {
	var input OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	order := &models.Order{
		Source:         input.Source,
		PickupTime:     input.PickupTime,
		PickupLocation: input.PickupLocation,
		Notes:          input.Notes,
		Total:          input.Total,
		Status:         input.Status,
		LoyaltyCode:    string(input.LoyaltyCode),
		Customer: models.Contact{
			Email: input.User.Email,
			Name:  input.User.Name,
			Phone: string(input.User.Phone),
		},
	}
	for _, it := range input.Items {
		order.Items = append(order.Items, models.OrderItem{Title: it.Title, Qty: it.Qty, Price: it.Price})
	}

	created, err := o.Orders.Create(c.Request.Context(), order)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"order": created})
}

// My lists orders placed with ?email=. Store failures degrade to an empty list.
func (o *OrderController) My(c *gin.Context) {
	orders, err := o.Orders.ListMine(c.Request.Context(), c.Query("email"))
	if err != nil {
		o.Log.WithError(err).Error("listing orders failed")
		orders = []models.Order{}
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"orders": orders})
}
