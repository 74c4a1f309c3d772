package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultServerURL = "http://localhost:8080/api"

func main() {
	serverFlag := flag.String("server", "", "base URL of the lookup-table API")
	themeFlag := flag.String("theme", "", "markdown theme: auto, dark, light or notty")
	forgetFlag := flag.String("forget", "", "remove a server from the remembered history and exit")
	flag.Parse()

	if target := strings.TrimSpace(*forgetFlag); target != "" {
		if err := forgetServer(target); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Forgot %s\n", labelForServer(target))
		return
	}

	cfg, cfgPath := loadUIConfig()
	if cfg == nil {
		cfg = &uiConfig{}
	}

	serverURL := resolveServerURL(*serverFlag, cfg)
	if theme := strings.TrimSpace(*themeFlag); theme != "" {
		cfg.Theme = theme
	}
	if strings.TrimSpace(cfg.Theme) != "" {
		setMarkdownTheme(markdownThemeFromString(cfg.Theme))
	}

	store, err := openProfileStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: server history unavailable: %v\n", err)
	} else {
		defer store.Close()
		if err := store.Touch(serverURL); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record server %s: %v\n", labelForServer(serverURL), err)
		}
	}

	if cfg.ServerURL != serverURL && cfgPath != "" {
		cfg.ServerURL = serverURL
		if err := saveUIConfig(cfg, cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save config: %v\n", err)
		}
	}

	client := newAPIClient(serverURL)
	program := tea.NewProgram(
		initialModel(client, store),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func forgetServer(baseURL string) error {
	store, err := openProfileStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Remove(baseURL)
}

// resolveServerURL picks the server in order of flag, saved config, most
// recently used profile, built-in default.
func resolveServerURL(flagValue string, cfg *uiConfig) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}
	if trimmed := strings.TrimSpace(cfg.ServerURL); trimmed != "" {
		return trimmed
	}
	if store, err := openProfileStore(); err == nil {
		profiles, listErr := store.List()
		store.Close()
		if listErr == nil && len(profiles) > 0 {
			return profiles[0].BaseURL
		}
	}
	return defaultServerURL
}
