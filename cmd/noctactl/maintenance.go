package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nocta-service/internal/db"
	"nocta-service/internal/repositories"
)

func openEventRepo() (*sqlx.DB, *repositories.EventRepo, error) {
	dsn := viper.GetString("dsn")
	var (
		database *sqlx.DB
		err      error
	)
	if dsn != "" {
		database, err = db.ConnectDSN(dsn)
	} else {
		database, err = db.Connect()
	}
	if err != nil {
		return nil, nil, err
	}
	return database, repositories.NewEventRepo(database), nil
}

var sweepEventsCmd = &cobra.Command{
	Use:   "sweep-events",
	Short: "Archive events that have already ended",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, events, err := openEventRepo()
		if err != nil {
			return err
		}
		defer database.Close()

		moved, err := events.ArchiveExpired(context.Background(), time.Now())
		if err != nil {
			return err
		}
		log.Printf("archived %d expired events", moved)
		return nil
	},
}

var migrateVideoURLsCmd = &cobra.Command{
	Use:   "migrate-video-urls",
	Short: "Rewrite stored video URLs from one prefix to another",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from := viper.GetString("from")
		to := viper.GetString("to")
		if from == "" || to == "" {
			return fmt.Errorf("both --from and --to are required")
		}

		database, events, err := openEventRepo()
		if err != nil {
			return err
		}
		defer database.Close()

		updated, err := events.RewriteVideoURLPrefix(context.Background(), from, to)
		if err != nil {
			return err
		}
		log.Printf("rewrote video urls on %d events (%s -> %s)", updated, from, to)
		return nil
	},
}

var auditImagesCmd = &cobra.Command{
	Use:   "audit-images",
	Short: "Report event images that are not stored as webp",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, events, err := openEventRepo()
		if err != nil {
			return err
		}
		defer database.Close()

		withImages, err := events.ListWithImages(context.Background())
		if err != nil {
			return err
		}

		stale := 0
		for _, event := range withImages {
			url := strings.ToLower(event.ImageURL)
			if idx := strings.IndexAny(url, "?#"); idx >= 0 {
				url = url[:idx]
			}
			if strings.HasSuffix(url, ".webp") {
				continue
			}
			stale++
			fmt.Printf("%s\t%s\t%s\n", event.ID, event.CompanyID, event.ImageURL)
		}
		log.Printf("checked %d events with images, %d not webp", len(withImages), stale)
		return nil
	},
}

func init() {
	migrateVideoURLsCmd.Flags().String("from", "", "URL prefix to replace")
	migrateVideoURLsCmd.Flags().String("to", "", "replacement URL prefix")
	_ = viper.BindPFlag("from", migrateVideoURLsCmd.Flags().Lookup("from"))
	_ = viper.BindPFlag("to", migrateVideoURLsCmd.Flags().Lookup("to"))

	rootCmd.AddCommand(sweepEventsCmd)
	rootCmd.AddCommand(migrateVideoURLsCmd)
	rootCmd.AddCommand(auditImagesCmd)
}
