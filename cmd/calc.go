package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/ingest"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
)

var (
	calcLat      float64
	calcLon      float64
	calcSubtotal float64
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute tax for single orders interactively",
	Long: `Computes tax for coordinates entered on stdin, or for a single order
given as flags.

Examples:
  # One-shot
  taxkit calc --lat 42.6526 --lon -73.7562 --subtotal 19.99

  # Interactive loop (enter "exit" to quit)
  taxkit calc`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if cmd.Flags().Changed("subtotal") {
			return calcOne(env, calcLat, calcLon, calcSubtotal)
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("lat lon subtotal> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
				return nil
			}

			fields := strings.Fields(line)
			if len(fields) != 3 {
				fmt.Fprintln(os.Stderr, "expected: <latitude> <longitude> <subtotal>")
				continue
			}
			lat, latErr := strconv.ParseFloat(fields[0], 64)
			lon, lonErr := strconv.ParseFloat(fields[1], 64)
			sub, subErr := strconv.ParseFloat(fields[2], 64)
			if latErr != nil || lonErr != nil || subErr != nil {
				fmt.Fprintln(os.Stderr, "latitude, longitude and subtotal must be numbers")
				continue
			}

			if err := calcOne(env, lat, lon, sub); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		}
	},
}

func init() {
	calcCmd.Flags().Float64Var(&calcLat, "lat", 0, "order latitude")
	calcCmd.Flags().Float64Var(&calcLon, "lon", 0, "order longitude")
	calcCmd.Flags().Float64Var(&calcSubtotal, "subtotal", 0, "order subtotal in dollars")
	calcCmd.MarkFlagsRequiredTogether("lat", "lon", "subtotal")
	rootCmd.AddCommand(calcCmd)
}

func calcOne(env *taxEnv, lat, lon, subtotal float64) error {
	order := model.Order{
		ID:        uuid.NewString(),
		Latitude:  lat,
		Longitude: lon,
		Subtotal:  subtotal,
		Timestamp: ingest.JournalTimestamp(time.Now().UTC()),
	}
	if err := order.Validate(); err != nil {
		return err
	}

	result, err := env.Engine.Process(order)
	if err != nil {
		return eris.Wrap(err, "calc: process order")
	}
	return ingest.WriteResultsJSON(os.Stdout, []model.TaxResult{result})
}
