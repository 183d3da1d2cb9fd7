// internal/commands/root.go
package paper2pod

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
)

var (
	cfgFile       string
	envFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "paper2pod",
	Short:         "paper2pod turns an academic PDF into a two-voice podcast",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}
		if err := appconfig.LoadDotEnv(envFile); err != nil {
			return err
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		appconfig.ApplyCredentials(&cfg)
		cfg.ApplyDefaults()
		if err := cfg.ValidateChunking(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		var console io.Writer
		if cfg.Debug {
			console = cmd.ErrOrStderr()
		}
		if err := logging.Init(console, cfg.LogFilePath(), cfg.Debug); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	err := rootCmd.Execute()
	_ = logging.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, failure("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (json or yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "envFile", ".env", "dotenv file with OPENAI_API_KEY / GOOGLE_API_KEY")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging (full request payloads)")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("openaiBaseURL", "", "OpenAI-compatible API root")
	rootCmd.PersistentFlags().String("chatModel", "", "chat model for the agents")
	rootCmd.PersistentFlags().String("outputDir", "", "directory for generated episodes")

	bindConfig()
}

// configKeys are the config keys that can also come from PAPER2POD_* variables.
// AutomaticEnv only resolves keys viper already knows, so each is bound.
var configKeys = []string{
	"openaiBaseURL", "googleBaseURL", "hostType", "chatModel",
	"parameters.temperature", "parameters.top_p", "parameters.max_tokens",
	"embeddingModel", "ttsModel", "imageModel",
	"chunkSize", "chunkOverlap", "topK", "contextTokenLimit", "maxToolRounds",
	"plainScript", "persona", "hostVoice", "guestVoice", "outputDir",
	"coverSize", "ttsRequestsPerSecond", "timeout", "logFile", "debug",
}

// bindConfig wires the persistent flags and environment variables into viper.
func bindConfig() {
	for _, name := range []string{"debug", "logFile", "openaiBaseURL", "chatModel", "outputDir"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	viper.SetEnvPrefix("PAPER2POD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. A missing file means defaults.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
