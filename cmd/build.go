package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/folio-ssg/folio/internal/site"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from content, layouts, and static assets",
	Long: `The build command reads Markdown articles from the content directory,
extracts front-matter, renders them through the layouts, copies static
assets, and writes the site (pages, RSS feed, search index) into the
configured output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder := site.NewBuilder(appConfig, log.Logger)
		_, err := builder.Build(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
