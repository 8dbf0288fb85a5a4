package controllers

import (
	"net/http"

	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	Products *services.ProductService
}

func (p *ProductController) List(c *gin.Context) {
	products, err := p.Products.ListActive(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"products": products})
}
