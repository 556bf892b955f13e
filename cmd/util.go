package cmd

import (
	"notesim/api"
	"notesim/internal"
	"notesim/internal/logger"
	"notesim/internal/repository"
	"notesim/internal/service"
)

func InitializeDependencies() (*api.ApiHandler, error) {
	config, err := internal.LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New()

	quoteRepository := repository.NewQuoteRepository()
	volatilityService := service.NewVolatilityService(quoteRepository)

	simulationService := service.SimulationHandler{
		QuoteRepository:   quoteRepository,
		VolatilityService: volatilityService,
		PeriodsPerYear:    config.Simulation.PeriodsPerYear,
		TermYears:         config.Simulation.TermYears,
		DefaultVolatility: config.Simulation.Volatility,
	}

	return &api.ApiHandler{
		SimulationService: simulationService,
		QuoteRepository:   quoteRepository,
		Logger:            log,
	}, nil
}
