package api

import (
	"notesim/internal/service"

	"github.com/gin-gonic/gin"
)

type simulateEnsembleRequest struct {
	simulateRequest
	Runs int `json:"runs"`
}

type simulateEnsembleResponse struct {
	Runs                int     `json:"runs"`
	AutocallProbability float64 `json:"autocall_probability"`
	CouponHitRate       float64 `json:"coupon_hit_rate"`
	MeanTotalCoupons    float64 `json:"mean_total_coupons"`
	MedianTotalCoupons  float64 `json:"median_total_coupons"`
	MeanPeriods         float64 `json:"mean_periods"`
}

func (m ApiHandler) simulateEnsemble(c *gin.Context) {
	var requestBody simulateEnsembleRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	in, err := m.toSimulationInput(c, requestBody.simulateRequest)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	summary, err := m.SimulationService.SimulateEnsemble(c.Request.Context(), service.EnsembleInput{
		SimulationInput: in,
		Runs:            requestBody.Runs,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, simulateEnsembleResponse{
		Runs:                summary.Runs,
		AutocallProbability: summary.AutocallProbability,
		CouponHitRate:       summary.CouponHitRate,
		MeanTotalCoupons:    roundMoney(summary.MeanTotalCoupons),
		MedianTotalCoupons:  roundMoney(summary.MedianTotalCoupons),
		MeanPeriods:         summary.MeanPeriods,
	})
}
