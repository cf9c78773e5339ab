package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexivanou/cityweather/internal/config"
	"github.com/alexivanou/cityweather/internal/model"
	"github.com/alexivanou/cityweather/internal/presenter"
	"github.com/alexivanou/cityweather/internal/weather"
	"go.uber.org/zap"
)

func main() {
	var (
		city    = flag.String("city", "", "City name to look up")
		asJSON  = flag.Bool("json", false, "Print the record as JSON")
		verbose = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if strings.TrimSpace(*city) == "" {
		*city = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(*city) == "" {
		fmt.Fprintln(os.Stderr, "usage: weather [-json] [-v] -city <name>")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		logger = l
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := weather.NewClient(cfg.Weather, nil, logger)
	record, err := client.Fetch(ctx, strings.TrimSpace(*city))
	if err != nil {
		logger.Debug("Lookup failed", zap.String("kind", weather.KindOf(err).String()), zap.Error(err))
		fmt.Fprintln(os.Stderr, presenter.Message(err))
		os.Exit(1)
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(record); err != nil {
			logger.Fatal("Failed to encode record", zap.Error(err))
		}
		return
	}
	printHumanReadable(record, cfg.Weather)
}

func printHumanReadable(r model.WeatherRecord, cfg config.WeatherConfig) {
	fmt.Printf("=== %s ===\n", r.Name)
	fmt.Printf("Conditions:  %s\n", r.Description)
	fmt.Printf("Temperature: %.1f%s\n", r.Temperature, unitSuffix(cfg.Units))
	fmt.Printf("Feels like:  %.1f%s\n", r.FeelsLike, unitSuffix(cfg.Units))
	fmt.Printf("Humidity:    %d%%\n", r.Humidity)
	if icon := r.IconURL(cfg.IconBaseURL); icon != "" {
		fmt.Printf("Icon:        %s\n", icon)
	}
}

func unitSuffix(units string) string {
	switch units {
	case "imperial":
		return "°F"
	case "metric":
		return "°C"
	default:
		return " K"
	}
}
