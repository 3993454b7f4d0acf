package main

import (
	"context"
	"log"
	"os"
	"path"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwoac/nvvim/search"
	"github.com/cwoac/nvvim/search/bleve_indexer"
	"github.com/cwoac/nvvim/utils"
)

func main() {
	// Setup logging.
	homedir, _ := os.UserHomeDir()
	logDir := path.Join(homedir, ".config/nvvim")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Fatal(err)
	}
	f, err := tea.LogToFile(path.Join(logDir, "debug.log"), "debug")
	if err != nil {
		log.Fatal(err)
	}

	defer f.Close()

	// read application config
	config := utils.NewConfig()

	// open the index.
	indexer, err := bleve_indexer.New(config)
	if err != nil {
		log.Fatal(err)
	}
	if !indexer.Stemming() {
		log.Printf("stemming disabled for language %q", config.Language)
	}

	// Bring the index in line with the notes directory before the first
	// listing renders; this also recovers from a crash that left stale
	// entries behind.
	if err := indexer.Rebuild(); err != nil {
		log.Fatal(err)
	}

	// Create a new bubbletea Model
	m := New(indexer, config)
	p := tea.NewProgram(m)

	// Keep the index fresh while the session runs.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := search.Watch(ctx, indexer, config.RootPath, config.Extension, func() {
			p.Send(indexChangedMsg{})
		})
		if err != nil {
			log.Printf("watcher: %v", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		panic(err)
	}
}
