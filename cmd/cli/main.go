package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"notesim/cmd"
	"notesim/internal"
	"notesim/internal/domain"
	"notesim/internal/service"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notesim",
		Short: "simulate autocallable structured notes from the terminal",
	}
	root.AddCommand(simulateCmd())
	root.AddCommand(batchCmd())
	return root
}

type noteFlags struct {
	barrier    float64
	investment float64
	couponRate float64
	sigma      float64
	seed       int64
}

func registerNoteFlags(c *cobra.Command, f *noteFlags) {
	c.Flags().Float64Var(&f.barrier, "barrier", 0.5, "barrier ratio, strictly between 0 and 1")
	c.Flags().Float64Var(&f.investment, "investment", 10000, "initial investment")
	c.Flags().Float64Var(&f.couponRate, "coupon-rate", 0.08, "annual coupon rate, strictly between 0 and 1")
	c.Flags().Float64Var(&f.sigma, "sigma", 0, "per-period volatility (configured default when omitted)")
	c.Flags().Int64Var(&f.seed, "seed", 0, "random seed for a reproducible run")
}

func (f noteFlags) toInput(c *cobra.Command, underlyings []domain.Underlying) service.SimulationInput {
	in := service.SimulationInput{
		Underlyings:       underlyings,
		BarrierRatio:      f.barrier,
		InitialInvestment: f.investment,
		AnnualCouponRate:  f.couponRate,
	}
	if c.Flags().Changed("sigma") {
		sigma := f.sigma
		in.Volatility = &sigma
	}
	if c.Flags().Changed("seed") {
		seed := f.seed
		in.Seed = &seed
	}
	return in
}

func simulateCmd() *cobra.Command {
	flags := noteFlags{}
	var tickers []string
	var prices []float64

	c := &cobra.Command{
		Use:   "simulate",
		Short: "run one simulation for three tickers",
		RunE: func(c *cobra.Command, args []string) error {
			handler, err := cmd.InitializeDependencies()
			if err != nil {
				return err
			}
			ctx := context.Background()

			var underlyings []domain.Underlying
			if len(prices) == 0 {
				underlyings, err = handler.SimulationService.ResolveUnderlyings(ctx, tickers)
				if err != nil {
					return err
				}
			} else {
				if len(prices) != len(tickers) {
					return fmt.Errorf("got %d tickers but %d prices", len(tickers), len(prices))
				}
				for i, ticker := range tickers {
					underlyings = append(underlyings, domain.Underlying{
						Symbol:       ticker,
						InitialPrice: prices[i],
					})
				}
			}

			result, err := handler.SimulationService.Simulate(ctx, flags.toInput(c, underlyings))
			if err != nil {
				return err
			}

			internal.Pprint(result)
			return nil
		},
	}

	c.Flags().StringSliceVar(&tickers, "tickers", nil, "three underlying tickers")
	c.Flags().Float64SliceVar(&prices, "prices", nil, "initial prices; fetched live when omitted")
	registerNoteFlags(c, &flags)
	_ = c.MarkFlagRequired("tickers")

	return c
}

type scenarioRow struct {
	Scenario     string  `csv:"scenario"`
	Ticker       string  `csv:"ticker"`
	InitialPrice float64 `csv:"initial_price"`
}

func batchCmd() *cobra.Command {
	flags := noteFlags{}
	var file string

	c := &cobra.Command{
		Use:   "batch",
		Short: "run one simulation per scenario from a CSV of underlyings",
		RunE: func(c *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("could not open %s: %w", file, err)
			}
			defer f.Close()

			rows := []scenarioRow{}
			if err := gocsv.UnmarshalFile(f, &rows); err != nil {
				return fmt.Errorf("could not parse %s: %w", file, err)
			}

			scenarioOrder := []string{}
			scenarios := map[string][]domain.Underlying{}
			for _, row := range rows {
				if _, ok := scenarios[row.Scenario]; !ok {
					scenarioOrder = append(scenarioOrder, row.Scenario)
				}
				scenarios[row.Scenario] = append(scenarios[row.Scenario], domain.Underlying{
					Symbol:       row.Ticker,
					InitialPrice: row.InitialPrice,
				})
			}

			handler, err := cmd.InitializeDependencies()
			if err != nil {
				return err
			}
			ctx := context.Background()

			for _, name := range scenarioOrder {
				result, err := handler.SimulationService.Simulate(ctx, flags.toInput(c, scenarios[name]))
				if err != nil {
					return fmt.Errorf("scenario %s failed: %w", name, err)
				}
				fmt.Printf("--- scenario %s ---\n", name)
				internal.Pprint(result)
			}

			return nil
		},
	}

	c.Flags().StringVar(&file, "file", "scenarios.csv", "CSV file with scenario,ticker,initial_price rows")
	registerNoteFlags(c, &flags)

	return c
}
