/*
 * @description: Cobra root command definition for the lanscape CLI.
 */

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lanscape/internal/config"
	"lanscape/internal/pkg/logger"
)

var (
	cfgFile          string
	flagLogfile      string
	flagLoglevel     string
	flagPersistent   bool
	flagReloader     bool
	flagFlaskLogging bool
)

// rootCmd is the base command when lanscape is invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "lanscape",
	Short: "LANscape — LAN discovery and inventory scanner",
	Long: `lanscape discovers live hosts on a LAN, probes their open ports, and
fingerprints the services behind them.

Run it as an HTTP front end for a UI or automation to drive:
  lanscape serve --port 5000

Or run a single scan to completion from the terminal:
  lanscape scan 192.168.1.0/24
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initCLILogger()
	},
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nlanscape: unexpected error: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initViperConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogfile, "logfile", "", "write logs to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&flagLoglevel, "loglevel", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&flagPersistent, "persistent", false, "keep the process alive after /shutdown instead of exiting")
	rootCmd.PersistentFlags().BoolVar(&flagReloader, "reloader", false, "watch the config file and hot-reload ambient settings")
	rootCmd.PersistentFlags().BoolVar(&flagFlaskLogging, "flask-logging", false, "accepted for backward compatibility; LANscape has no Flask layer to toggle")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("loglevel"))
	viper.BindPFlag("log.file_path", rootCmd.PersistentFlags().Lookup("logfile"))
	viper.BindPFlag("persistent", rootCmd.PersistentFlags().Lookup("persistent"))
}

func initViperConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// initCLILogger brings up internal/pkg/logger for every subcommand,
// honoring --logfile/--loglevel before any business logic runs.
func initCLILogger() {
	level := strings.ToLower(flagLoglevel)

	logCfg := &config.LogConfig{
		Level:  level,
		Format: "text",
		Output: "stdout",
		Caller: false,
	}
	if flagLogfile != "" {
		logCfg.Output = "file"
		logCfg.FilePath = flagLogfile
		logCfg.MaxSize = 50
		logCfg.MaxBackups = 5
		logCfg.MaxAge = 14
		logCfg.Compress = true
	}

	if _, err := logger.InitLogger(logCfg); err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
	}

	if flagFlaskLogging {
		logger.Warn("--flask-logging is accepted for backward compatibility and has no effect")
	}
}
