package utils

import (
	"log"
	"os"
	"path"

	"github.com/spf13/viper"
)

// Config is the cofiguration for the application.
type Config struct {
	RootPath  string `mapstructure:"root_path"`  // Directory holding the notes.
	Editor    string `mapstructure:"editor"`     // Editor to open the notes with.
	Extension string `mapstructure:"extension"`  // Note file extension, dot included.
	IndexPath string `mapstructure:"index_path"` // On-disk location of the search index.
	Language  string `mapstructure:"language"`   // Stemming language code.
}

// NewConfig returns a new Config object by reading from the config file.
// A missing config file is fine: every key has a default, so the app
// starts on a bare machine.
func NewConfig() *Config {
	homedir, _ := os.UserHomeDir()
	configPath := path.Join(homedir, ".config/nvvim/config.yaml")
	viper.SetConfigFile(configPath)

	cachedir, _ := os.UserCacheDir()
	cwd, _ := os.Getwd()

	viper.SetDefault("root_path", cwd)
	viper.SetDefault("editor", defaultEditor())
	viper.SetDefault("extension", ".md")
	viper.SetDefault("index_path", path.Join(cachedir, "nvvim/index.bleve"))
	viper.SetDefault("language", "en")

	if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Fatal("failed to read config file: ", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatal("unable to parse the config file: ", err)
	}

	return config
}

func defaultEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vim"
}
