package main

import (
	"github.com/spf13/cobra"

	"legacyvault/internal/client/api"
	"legacyvault/internal/client/config"
	"legacyvault/internal/client/session"
)

// Global flag values.
var (
	flagServer    string
	flagConfigDir string
	flagJSON      bool
)

// Initialized by PersistentPreRunE so all subcommands can use them.
var (
	cfg       *config.Config
	sess      *session.Session
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Vault keeps your legacy planning records",
	Long: `Vault is a client for the legacy vault server. It stores personal,
legal, digital and wishes entries with optional file attachments, scoped
to your account.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfigDir)
		if err != nil {
			return err
		}
		if flagServer != "" {
			cfg.ServerAddr = flagServer
		}

		sess, err = session.Load(cfg.SessionFile)
		if err != nil {
			return err
		}

		apiClient = api.NewClient(cfg.ServerAddr)
		apiClient.SetTokens(sess.Tokens())
		apiClient.OnTokenRefresh = func(pair api.TokenPair) {
			_ = sess.SetTokens(pair.AccessToken, pair.RefreshToken)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "server address (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: ~/.legacyvault)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(entryCmd)
}
