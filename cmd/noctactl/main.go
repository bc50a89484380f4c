// noctactl runs operational maintenance tasks against the service database:
// archiving expired events, rewriting stored video URLs after a CDN move and
// auditing event images for stale formats.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "noctactl",
	Short: "Operational tooling for the nocta service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("dsn", "", "database DSN; defaults to DB_DSN")
	_ = viper.BindPFlag("dsn", rootCmd.PersistentFlags().Lookup("dsn"))
	_ = viper.BindEnv("dsn", "DB_DSN")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
