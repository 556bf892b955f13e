package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

func Pprint(i interface{}) {
	bytes, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(bytes))
}

type Config struct {
	Port       int              `json:"port"`
	Simulation SimulationConfig `json:"simulation"`
}

type SimulationConfig struct {
	PeriodsPerYear int     `json:"periodsPerYear"`
	TermYears      int     `json:"termYears"`
	Volatility     float64 `json:"volatility"`
}

func defaultConfig() Config {
	return Config{
		Port: 5000,
		Simulation: SimulationConfig{
			PeriodsPerYear: 4,
			TermYears:      3,
			Volatility:     0.10,
		},
	}
}

// LoadConfig reads config.json (config-dev.json under NOTESIM_ENV=dev) and
// applies env overrides. A missing file just means defaults.
func LoadConfig() (*Config, error) {
	configFile := "config.json"
	if os.Getenv("NOTESIM_ENV") == "dev" {
		configFile = "config-dev.json"
	}

	config := defaultConfig()

	f, err := os.ReadFile(configFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not open %s: %w", configFile, err)
	}
	if err == nil {
		if err := json.Unmarshal(f, &config); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", configFile, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Port = p
	}

	return &config, nil
}
