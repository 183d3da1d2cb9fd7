package paper2pod

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/paper2pod/internal/appconfig"
)

var showConfigRaw bool

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show the resolved configuration after the config file, flags, environment and defaults are applied. Credentials are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		if showConfigRaw {
			masked := *cfg
			masked.OpenAIAPIKey = appconfig.MaskSecret(masked.OpenAIAPIKey)
			masked.GoogleAPIKey = appconfig.MaskSecret(masked.GoogleAPIKey)
			_, err := pp.Fprintln(cmd.OutOrStdout(), masked)
			return err
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), cfg)
		return nil
	},
}

func init() {
	showConfigCmd.Flags().BoolVar(&showConfigRaw, "raw", false, "dump the full config struct")
	showCmd.AddCommand(showConfigCmd)
}
