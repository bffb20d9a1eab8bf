package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"library-lending/internal/config"
	"library-lending/library"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedBook is one entry of the YAML seed file.
type seedBook struct {
	ISBN        string `yaml:"isbn"`
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Genre       string `yaml:"genre"`
	Description string `yaml:"description"`
	Copies      int    `yaml:"copies"`
}

type seedFile struct {
	Books []seedBook `yaml:"books"`
}

func main() {
	var (
		file    string
		dbPath  string
		envFile string
		reset   bool
	)
	cmd := &cobra.Command{
		Use:          "import_books",
		Short:        "Import books from a YAML file into the library database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			return importBooks(cfg, file, reset)
		},
	}
	cmd.Flags().StringVar(&file, "file", "books.yaml", "YAML file with a top-level 'books' list")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the library database (overrides LIBRARY_DB)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file")
	cmd.Flags().BoolVar(&reset, "reset", false, "remove the existing database first")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func readSeed(path string) ([]seedBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return seed.Books, nil
}

func importBooks(cfg *config.Config, file string, reset bool) error {
	if reset {
		fmt.Println("Cleaning up existing database files...")
		for _, f := range []string{cfg.DBPath, cfg.DBPath + "-shm", cfg.DBPath + "-wal"} {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				fmt.Printf("Warning: Could not remove %s: %v\n", f, err)
			}
		}
	}

	books, err := readSeed(file)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	manager, err := library.NewLibraryManager(cfg.DBPath, library.LibrarianCredentials{
		Name:     cfg.Librarian.Name,
		Age:      cfg.Librarian.Age,
		Email:    cfg.Librarian.Email,
		Password: cfg.Librarian.Password,
	}, logger)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}

	fmt.Printf("Importing books from %s...\n", file)
	successCount, errorCount := 0, 0
	for _, sb := range books {
		if strings.TrimSpace(sb.ISBN) == "" || strings.TrimSpace(sb.Title) == "" {
			fmt.Printf("Warning: entry without ISBN or title, skipping\n")
			errorCount++
			continue
		}
		fmt.Printf("Importing: %s by %s... ", sb.Title, sb.Author)
		err := manager.AddBook(library.NewBook(sb.ISBN, sb.Title, sb.Author, sb.Genre, sb.Description, sb.Copies))
		if errors.Is(err, library.ErrConflict) {
			fmt.Println("SKIPPED - ISBN already in catalog")
			continue
		}
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Println("SUCCESS")
		successCount++
	}

	if err := manager.Close(); err != nil {
		return err
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)
	return nil
}
