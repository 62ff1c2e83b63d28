package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aramkechichian/fintech-credits/internal/bankprovider"
)

// BankProviderHandler answers bank provider integration queries.
type BankProviderHandler struct {
	client *bankprovider.Client
}

// NewBankProviderHandler constructs a BankProviderHandler.
func NewBankProviderHandler(client *bankprovider.Client) *BankProviderHandler {
	return &BankProviderHandler{client: client}
}

// Info reports the current provider connection state.
func (h *BankProviderHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.Info(c.Request.Context()))
}
