package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordhoard/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordhoard --source FILE [--source FILE...]",
		Short: "Wikidot vocabulary extractor and Merriam-Webster lookup",
		Long: `wordhoard extracts the unique words of Wikidot page source and looks
every word up in the Merriam-Webster collegiate dictionary and thesaurus.

Results are cached per word, so an interrupted or rate-limited run can be
resumed without repeating lookups.

Examples:
  wordhoard --source page.txt                       # Look up every word
  wordhoard --source a.txt --source b.txt --list-words
  wordhoard --source page.txt --start-word lantern   # Resume a run
  wordhoard --archive                               # Archive the cache
  wordhoard --mcp                                   # Serve tools over MCP stdio`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wordhoard.yaml)")

	// Input
	cmd.Flags().StringArrayVarP(&flags.Sources, "source", "s", nil, "Source markup file (repeatable, concatenated in order)")
	cmd.Flags().IntVar(&flags.MinLength, "min-length", flags.MinLength, "Minimum word length to keep")
	cmd.Flags().BoolVar(&flags.ListWords, "list-words", false, "Print the extracted words and exit")

	// Run control
	cmd.Flags().StringVar(&flags.StartWord, "start-word", "", "Resume processing from this word")
	cmd.Flags().IntVar(&flags.MaxWords, "max-words", 0, "Process at most this many words (0 means all)")
	cmd.Flags().BoolVar(&flags.ForceRefresh, "force-refresh", false, "Look words up again even when cached")

	// Cache
	cmd.Flags().StringVar(&flags.CacheBackend, "cache-backend", flags.CacheBackend, "Cache backend: files, sqlite or postgres")
	cmd.Flags().StringVar(&flags.DataDir, "data-dir", flags.DataDir, "Cache data directory")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the cache directory to the archive and exit")

	// Other modes and outputs
	cmd.Flags().BoolVar(&flags.MCPMode, "mcp", false, "Serve extraction and lookup tools over MCP on stdio")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file at exit")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("extract.min_word_length", cmd.Flags().Lookup("min-length"))
	viper.BindPFlag("cache.backend", cmd.Flags().Lookup("cache-backend"))
	viper.BindPFlag("cache.dir", cmd.Flags().Lookup("data-dir"))
	viper.BindPFlag("metrics.file", cmd.Flags().Lookup("metrics-file"))
	viper.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wordhoard" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wordhoard")
	}

	// Environment variables, WORDHOARD_API_MAX_RETRIES for api.max_retries
	viper.SetEnvPrefix("WORDHOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetDictionaryKey retrieves the dictionary API key from environment or config
func GetDictionaryKey() string {
	if key := os.Getenv("MERRIAM_WEBSTER_DICT_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("api.dictionary_key")
}

// GetThesaurusKey retrieves the thesaurus API key from environment or config
func GetThesaurusKey() string {
	if key := os.Getenv("MERRIAM_WEBSTER_THES_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("api.thesaurus_key")
}
