package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	"library-lending/internal/config"
	"library-lending/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dbPath  string
		envFile string
	)
	cmd := &cobra.Command{
		Use:          "library",
		Short:        "Interactive library lending desk",
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
			return run(cfg)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the library database (overrides LIBRARY_DB)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file")
	return cmd
}

func run(cfg *config.Config) error {
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
	defer func() {
		if err := manager.Close(); err != nil {
			fmt.Printf("Error saving library: %v\n", err)
		} else {
			fmt.Println("Library saved.")
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Library Management System")
	for {
		fmt.Print("\nCommands: login, forgot password, quit\n> ")
		if !scanner.Scan() {
			return nil
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "login", "l":
			handleLogin(scanner, manager)
		case "forgot password", "fp":
			handleChangePassword(scanner, manager, "")
		case "quit", "q", "exit":
			fmt.Println("Exiting...")
			return nil
		default:
			fmt.Println("Invalid choice.")
		}
	}
}

// readPassword securely reads a password with masking. When stdin is not a
// terminal the line is read from the scanner instead.
func readPassword(sc *bufio.Scanner, prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		if !sc.Scan() {
			return "", errors.New("no input")
		}
		return strings.TrimSpace(sc.Text()), nil
	}
	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func promptInt(sc *bufio.Scanner, label string) (int, bool) {
	s, ok := prompt(sc, label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", s)
		return 0, false
	}
	return n, true
}

func handleLogin(sc *bufio.Scanner, mgr *library.LibraryManager) {
	email, ok := prompt(sc, "Email: ")
	if !ok {
		return
	}
	password, err := readPassword(sc, "Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	principal, err := mgr.SignIn(email, password)
	if err != nil {
		fmt.Println("Invalid email or password.")
		return
	}
	fmt.Printf("Welcome, %s!\n", principal.Name)

	switch principal.Role {
	case library.RoleLibrarian:
		librarianMenu(sc, mgr)
	default:
		if n := mgr.PendingNotifications(principal.Email); n > 0 {
			fmt.Printf("You have %d new notification(s). Use 'notifications' to check them.\n", n)
		}
		memberMenu(sc, mgr, principal.Email)
	}
}
