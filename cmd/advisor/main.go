// cmd/advisor/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"advisory-workers/internal/common/config"
	"advisory-workers/internal/common/logger"
)

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Run the advisory and planning workers from the command line",
	Long: `advisor runs the same code paths the Zeebe workers use, without a broker.

Available commands:
  ask        - answer a chat message through the full advisory pipeline
  goal       - project a savings goal
  portfolio  - summarize holdings from a JSON file
  sip        - monthly contribution needed for a target
  probe      - check whether the generation backend is reachable`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (defaults to configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func newLogger() (*zap.Logger, logger.Logger) {
	z := logger.New(logLevel, "console", "stderr")
	return z, logger.NewZapAdapter(z)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
