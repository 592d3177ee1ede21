package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/cmd/operators"
	"github.com/tablehost/restaurantapi/internal/config"
	"github.com/tablehost/restaurantapi/internal/logging"
)

var (
	cfg        *config.Config
	logger     *zap.Logger
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "restaurantapi",
	Short: "Restaurant ordering API server",
	Long: `restaurantapi serves the operator, customer, order and inventory records
of a restaurant over a JSON REST API, with Google login for operators and customers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			configFile = os.Getenv(config.EnvPrefix + "_CONFIG")
		}
		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = logging.New(logging.Options{Debug: cfg.Debug, Format: cfg.LogFormat})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (env: RESTO_CONFIG)")
	flags.String("db-url", "", "Database connection URL (env: RESTO_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: RESTO_SERVER_ADDR)")
	flags.String("server-url", "", "Public base URL of the server (env: RESTO_SERVER_URL)")
	flags.Bool("debug", false, "Enable debug logging (env: RESTO_DEBUG)")

	_ = viper.BindPFlag("database_url", flags.Lookup("db-url"))
	_ = viper.BindPFlag("server_addr", flags.Lookup("server-addr"))
	_ = viper.BindPFlag("server_url", flags.Lookup("server-url"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))

	rootCmd.AddCommand(operators.OperatorsCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
