package config

// Config holds site-wide settings decoded from folio.yaml (or FOLIO_*
// environment variables) by viper.
type Config struct {
	SiteTitle       string `mapstructure:"siteTitle"`
	SiteDescription string `mapstructure:"siteDescription"`
	Author          string `mapstructure:"author"`
	BaseURL         string `mapstructure:"baseURL"`
	ContentDir      string `mapstructure:"contentDir"`
	LayoutsDir      string `mapstructure:"layoutsDir"`
	StaticDir       string `mapstructure:"staticDir"`
	OutputDir       string `mapstructure:"outputDir"`
}
