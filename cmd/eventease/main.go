// eventease is a terminal client for browsing events and managing the
// caller's registrations through the EventEase HTTP API.
//
// Typing searches with a debounce; only the newest response is shown.
// Enter registers for (or cancels) the highlighted ticket type and tab
// cycles the registration filter over the events already loaded.
package main

import (
	"fmt"
	"os"
	"time"

	"eventease/internal/client"
	"eventease/internal/config"
	"eventease/internal/logger"
	"eventease/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	var apiURL, userID, logOutput string
	var debounce, timeout time.Duration

	flagSet := pflag.NewFlagSet("eventease", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api-url", cfg.Client.APIURL, "EventEase API base URL")
	flagSet.StringVar(&userID, "user", cfg.Client.UserID, "user id sent as X-User-ID")
	flagSet.DurationVar(&debounce, "debounce", cfg.Client.SearchDebounce, "pause after typing before a search is issued")
	flagSet.DurationVar(&timeout, "timeout", cfg.Client.Timeout, "per-request timeout")
	flagSet.StringVar(&logOutput, "log-output", "", "write logs to this file (the terminal is owned by the UI)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("--user must be a UUID (or set EVENTEASE_USER_ID): %q", userID)
	}

	if err := setupLogging(logOutput, cfg.LogLevel); err != nil {
		return err
	}

	apiClient := client.New(client.Config{
		BaseURL: apiURL,
		UserID:  userID,
		Timeout: timeout,
	})

	browser := session.NewBrowser(apiClient.Search, apiClient, userID, debounce)
	defer browser.Close()

	program := tea.NewProgram(NewModel(browser, timeout), tea.WithAltScreen())
	browser.OnUpdate(func() { program.Send(refreshMsg{}) })

	_, err := program.Run()
	return err
}

// setupLogging keeps log output off the terminal the UI draws on
func setupLogging(path, level string) error {
	if path == "" {
		logger.InitWriter(level, "json", nil)
		return nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log output: %w", err)
	}
	logger.InitWriter(level, "json", file)
	return nil
}
