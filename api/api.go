package api

import (
	"errors"
	"fmt"
	"time"

	"notesim/internal/domain"
	"notesim/internal/logger"
	"notesim/internal/repository"
	"notesim/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	SimulationService service.SimulationHandler
	QuoteRepository   repository.QuoteRepository
	Logger            *zap.SugaredLogger
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "notesim is running"})
	})
	router.GET("/stock", m.stock)
	router.POST("/simulate", m.simulate)
	router.POST("/simulate/ensemble", m.simulateEnsemble)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func statusForError(err error) int {
	var invalidParams domain.InvalidParametersError
	var priceUnavailable domain.PriceUnavailableError
	switch {
	case errors.As(err, &invalidParams):
		return 400
	case errors.As(err, &priceUnavailable):
		return 502
	}
	return 500
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusForError(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	requestID := uuid.New()
	requestLogger := m.Logger.With("requestID", requestID)
	ctx.Request = ctx.Request.WithContext(
		logger.AddToContext(ctx.Request.Context(), requestLogger),
	)

	start := time.Now()
	ctx.Next()

	requestLogger.Infow("handled request",
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"elapsedMs", time.Since(start).Milliseconds(),
	)
}
