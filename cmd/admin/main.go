// Command admin runs maintenance tasks against the complaint desk database.
package main

import (
	"fmt"
	"os"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/workflow"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// systemActor is the identity admin commands act as.
var systemActor = workflow.Actor{Role: models.RoleAdmin}

var (
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Complaint desk administration",
	Long: `Administrative tasks for the complaint desk: schema migration, account and
committee management, stereotype seeding and statistics.

Connection settings are read from the same environment (and .env file) as the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// env holds what every command needs once connected.
type env struct {
	db    *gorm.DB
	store *storage.Service
	svc   *complaint.Service
}

func connect() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logging.NewWithWriter(os.Stderr, level, true)

	db, err := storage.OpenPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}
	store := storage.NewStorageService(db, nil) // No redis needed for admin CLI
	return &env{
		db:    db,
		store: store,
		svc:   complaint.NewService(store, nil, nil, log),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
