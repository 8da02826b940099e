// Command toki prints Japanese lunisolar calendar records as JSON, or
// serves them over HTTP.
//
// Usage:
//
//	toki day 2017-06-24
//	toki range 2017-06-01 2017-09-30
//	toki serve --addr :8035
//
// The ephemeris is resolved from --ephemeris-path, $TOKI_EPHEMERIS_PATH,
// --ephemeris, $TOKI_EPHEMERIS, then data/de440s.bsp; the reserved name
// "analytic" selects the built-in series and needs no file.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toki-jp/toki"
	"github.com/toki-jp/toki/internal/httpapi"
)

const defaultConfigFile = "toki.yaml"

var (
	flagConfig        string
	flagEphemeris     string
	flagEphemerisPath string
	flagLat           float64
	flagLon           float64
	flagAddr          string
)

func main() {
	root := &cobra.Command{
		Use:           "toki",
		Short:         "Japanese lunisolar calendar (旧暦, 二十四節気, 六曜) as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (default "+defaultConfigFile+" if present)")
	root.PersistentFlags().StringVar(&flagEphemeris, "ephemeris", "", `ephemeris name, e.g. "de440s.bsp" or "analytic"`)
	root.PersistentFlags().StringVar(&flagEphemerisPath, "ephemeris-path", "", "explicit ephemeris file path")
	root.PersistentFlags().Float64Var(&flagLat, "lat", toki.DefaultLatitude, "observer latitude for sunrise/sunset")
	root.PersistentFlags().Float64Var(&flagLon, "lon", toki.DefaultLongitude, "observer longitude for sunrise/sunset")

	dayCmd := &cobra.Command{
		Use:   "day DATE",
		Short: "Print the record for one date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := calendarFromFlags(cmd)
			if err != nil {
				return err
			}
			d, err := toki.ParseCivilDate(args[0])
			if err != nil {
				return err
			}
			rec, err := cal.Day(cmd.Context(), d)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}

	rangeCmd := &cobra.Command{
		Use:   "range START END",
		Short: "Print the record for an inclusive date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := calendarFromFlags(cmd)
			if err != nil {
				return err
			}
			start, err := toki.ParseCivilDate(args[0])
			if err != nil {
				return err
			}
			end, err := toki.ParseCivilDate(args[1])
			if err != nil {
				return err
			}
			rec, err := cal.Range(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cal, err := calendarFromFlags(cmd)
			if err != nil {
				return err
			}
			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()

			addr := flagAddr
			log.Info("listening", zap.String("addr", addr))
			return http.ListenAndServe(addr, httpapi.New(cal, log).Router())
		},
	}
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8035", "listen address")

	root.AddCommand(dayCmd, rangeCmd, serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "toki:", err)
		os.Exit(exitCode(err))
	}
}

// calendarFromFlags merges the config file and flags into a Calendar.
func calendarFromFlags(cmd *cobra.Command) (*toki.Calendar, error) {
	path := flagConfig
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return nil, err
	}

	ephemeris := cfg.Ephemeris
	ephemerisPath := cfg.EphemerisPath
	lat, lon := cfg.Lat, cfg.Lon
	if lat == 0 && lon == 0 {
		lat, lon = toki.DefaultLatitude, toki.DefaultLongitude
	}
	if cmd.Flags().Changed("ephemeris") || flagEphemeris != "" {
		ephemeris = flagEphemeris
	}
	if cmd.Flags().Changed("ephemeris-path") || flagEphemerisPath != "" {
		ephemerisPath = flagEphemerisPath
	}
	if cmd.Flags().Changed("lat") {
		lat = flagLat
	}
	if cmd.Flags().Changed("lon") {
		lon = flagLon
	}
	if cfg.Addr != "" && !cmd.Flags().Changed("addr") {
		flagAddr = cfg.Addr
	}

	return toki.New(
		toki.WithEphemeris(ephemeris),
		toki.WithEphemerisPath(ephemerisPath),
		toki.WithObserver(lat, lon),
	), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode distinguishes bad input from operational failures for scripts.
func exitCode(err error) int {
	if errors.Is(err, toki.ErrInvalidInput) {
		return 2
	}
	return 1
}
