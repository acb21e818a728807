package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/folio-ssg/folio/internal/config"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a personal blog and portfolio site generator",
	Long: `folio takes a directory of Markdown articles with front-matter and
generates a complete static site: home page, blog listing, per-post pages
with syntax-highlighted code and a table of contents, an RSS feed, and a
search index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return initializeConfig()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./folio.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setupLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func initializeConfig() error {
	v := viper.New()

	v.SetDefault("siteTitle", "My Site")
	v.SetDefault("siteDescription", "")
	v.SetDefault("author", "")
	v.SetDefault("baseURL", "")
	v.SetDefault("contentDir", "content")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("staticDir", "static")
	v.SetDefault("outputDir", "public")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				return fmt.Errorf("config file %s not found: %w", cfgFile, err)
			}
			log.Debug().Msg("no config file found, using defaults and environment")
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("using config file")
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}
