package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tara-vision/nexus/internal/agent"
	"github.com/tara-vision/nexus/internal/llm"
	"github.com/tara-vision/nexus/internal/logger"
	"github.com/tara-vision/nexus/internal/remote"
	"github.com/tara-vision/nexus/internal/ui"
)

var (
	cfgFile   string
	host      string
	apiKey    string
	model     string
	vendor    string
	theme     string
	logLevel  string
	logFile   string
	noSpinner bool
	Version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "nexus",
	Version: Version,
	Short:   "Nexus - LLM-driven command agent",
	Long: `Nexus turns requests in plain language into terminal actions. The
model proposes one tool call at a time; shell commands pass a safety gate
before they run, and risky ones need your confirmation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Configure(viper.GetString("log_level"), viper.GetString("log_file"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Start interactive REPL mode
		startREPL(cmd.Context())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nexus/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "LLM server URL (e.g., https://openrouter.ai/api or http://localhost:11434)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", "", "API key (required for hosted backends)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model name (optional, auto-detected from server)")
	rootCmd.PersistentFlags().StringVar(&vendor, "vendor", "", "LLM vendor (auto, openai, vllm, ollama, llama.cpp)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "", "color theme ("+strings.Join(ui.ThemeNames(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&noSpinner, "no-spinner", false, "disable spinner animations")

	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("vendor", rootCmd.PersistentFlags().Lookup("vendor"))
	viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("no_spinner", rootCmd.PersistentFlags().Lookup("no-spinner"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("theme", ui.DefaultTheme)
	viper.SetDefault("log_level", "warn")

	viper.SetDefault("llm.temperature", llm.DefaultTemperature)
	viper.SetDefault("llm.timeout", llm.DefaultTimeout)
	viper.SetDefault("llm.json_mode", true)

	viper.SetDefault("agent.max_steps", agent.DefaultMaxSteps)
	viper.SetDefault("agent.history_window", agent.DefaultHistoryWindow)
	viper.SetDefault("agent.history_cap", agent.DefaultHistoryCap)
	viper.SetDefault("agent.auto_approve", false)

	viper.SetDefault("safety.timeout", "120s")
	viper.SetDefault("safety.package_manager", "auto")

	viper.SetDefault("remote.timeout", "10s")
	viper.SetDefault("remote.default_url", remote.DefaultURL)
}

func initConfig() {
	// .env values land in the process environment before viper reads it;
	// a missing file is normal.
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		os.Exit(1)
	}
	configDir := filepath.Join(home, ".nexus")
	viper.SetDefault("data_dir", configDir)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		os.MkdirAll(configDir, 0755)

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NEXUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}
