// Package cli provides the command-line interface for cardbox.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardbox-tools/cardbox/internal/adapter"
	"github.com/cardbox-tools/cardbox/internal/config"
	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/internal/service"
	"github.com/cardbox-tools/cardbox/internal/store"
	"github.com/cardbox-tools/cardbox/models"
)

// Build information, set via ldflags.
var (
	BuildVersion = "N/A"
	BuildDate    = "N/A"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cobra.Command{
	Use:           "cardbox",
	Short:         "cardbox - a local address book synchronized with a remote card collection",
	Long:          "Query, import, back up and synchronize contact cards stored in a local database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags
var (
	flagConfigPath string
	flagDBPath     string
	flagDebug      bool
)

// Query command flags
var (
	queryEmailsOnly bool
	queryPhonesOnly bool
)

// Backup command flags
var (
	backupOutput string
)

// app bundles everything a command needs after configuration is loaded.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *store.DB
	services *service.Services
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// setup loads configuration, opens the local store and wires the service
// layer. Every command goes through it so that flag/env/file precedence is
// identical everywhere.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(config.Overrides{
		ConfigPath: flagConfigPath,
		DBPath:     flagDBPath,
		Debug:      flagDebug,
	})
	if err != nil {
		return nil, err
	}

	log := logger.NewFileLogger(cfg.App.LogPath, "cardbox", cfg.App.Debug)

	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open card store: %w", err)
	}

	repo := store.NewCardRepository(db, log)
	remote := adapter.NewHTTPRemoteAdapter(cfg.Remote, log)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		services: service.NewServices(repo, remote, cfg, log),
	}, nil
}

var queryCmd = &cobra.Command{
	Use:   "query [term]",
	Short: "Search the local address book",
	Long: `Search contact cards by a case-insensitive substring match against
names, phone numbers and email addresses. Without a term, every card is
listed. Matching always considers all fields; -e / -p only change what is
printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryEmailsOnly && queryPhonesOnly {
			return errors.New("choose at most one of --emails-only and --phones-only")
		}

		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.log.WithContext(cmd.Context())

		q := models.SearchQuery{Projection: models.ProjectionFull}
		if len(args) == 1 {
			q.Term = args[0]
		}
		if queryEmailsOnly {
			q.Projection = models.ProjectionEmails
		}
		if queryPhonesOnly {
			q.Projection = models.ProjectionPhones
		}

		cards, err := a.services.Query.Search(ctx, q)
		if err != nil {
			return err
		}

		renderCards(cmd.OutOrStdout(), cards, q.Projection)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the local store with the remote address book",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err = a.cfg.ValidateRemote(); err != nil {
			return err
		}

		ctx := a.log.WithContext(cmd.Context())

		report, err := a.services.Sync.Run(ctx)
		if err != nil {
			return err
		}

		renderReport(cmd.OutOrStdout(), report)
		if !report.Clean() {
			return errors.New("sync finished with conflicts or per-record failures")
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a contact card into the local store",
	Long: `Import one serialized contact card from a file, or from standard
input when no file is given. The card is stored locally only and flagged as
locally modified; it is never pushed to the remote side.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.log.WithContext(cmd.Context())

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, openErr := os.Open(args[0])
			if openErr != nil {
				return fmt.Errorf("open import file: %w", openErr)
			}
			defer f.Close()
			in = f
		}

		card, err := a.services.Cards.Import(ctx, in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s)\n", card.Name, card.ID)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup [term]",
	Short: "Write matching cards to a backup file",
	Long: `Write the serialized payloads of every card matching the term to
the output file (standard output by default). Without a term the whole
store is backed up.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.log.WithContext(cmd.Context())

		term := ""
		if len(args) == 1 {
			term = args[0]
		}

		var out io.Writer = cmd.OutOrStdout()
		if backupOutput != "" {
			f, createErr := os.Create(backupOutput)
			if createErr != nil {
				return fmt.Errorf("create backup file: %w", createErr)
			}
			defer f.Close()
			out = f
		}

		count, err := a.services.Cards.Backup(ctx, term, out)
		if err != nil {
			return err
		}

		if backupOutput != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "backed up %d cards to %s\n", count, backupOutput)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <term>",
	Short: "Delete matching cards from the local store",
	Long: `Delete every card matching the term from the local store. The term
must match at least one card. Nothing is propagated to the remote side: a
card the remote still holds reappears on the next sync run. Requires
write support to be enabled in the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.log.WithContext(cmd.Context())

		removed, err := a.services.Cards.DeleteLocal(ctx, args[0])
		if err != nil {
			return err
		}

		for _, id := range removed {
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cardbox version %s (built %s)\n", BuildVersion, BuildDate)
	},
}

// Init registers flags and subcommands on the root command.
func Init() {
	RootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "path to a JSON configuration file")
	RootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the local card database")
	RootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	queryCmd.Flags().BoolVarP(&queryEmailsOnly, "emails-only", "e", false, "print email addresses only")
	queryCmd.Flags().BoolVarP(&queryPhonesOnly, "phones-only", "p", false, "print phone numbers only")

	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "backup file path (default: standard output)")

	RootCmd.AddCommand(queryCmd, syncCmd, importCmd, backupCmd, deleteCmd, versionCmd)
}
