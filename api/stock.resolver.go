package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

type stockResponse struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}

func (m ApiHandler) stock(c *gin.Context) {
	ticker := c.Query("ticker")
	if ticker == "" {
		returnErrorJsonCode(fmt.Errorf("ticker symbol required"), c, 400)
		return
	}

	price, err := m.QuoteRepository.LatestPrice(ticker)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, stockResponse{
		Ticker: ticker,
		Price:  price,
	})
}
