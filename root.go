package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rainbow-csv/internal/app"
	"rainbow-csv/internal/config"
	"rainbow-csv/internal/editor"
	"rainbow-csv/internal/logging"
)

var version = "dev"

type rootFlags struct {
	configPath string
	locale     string
	logFile    string
	preview    bool
	debug      bool
	noWatch    bool
}

func rootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "rainbow-csv [file.csv]",
		Short: "View and edit CSV files with rainbow-colored columns",
		Long: `rainbow-csv edits comma-separated files with every column in its own color
and previews them as a table that can be sorted by clicking through the headers.
Without a file argument a list of recently opened files is shown.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default ~/.config/rainbow-csv/config.yaml)")
	cmd.Flags().StringVar(&flags.locale, "locale", "", "Collation locale for sorting text columns, e.g. de or sv")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().BoolVarP(&flags.preview, "preview", "p", false, "Start in table preview mode")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "Do not reload the file when it changes on disk")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func run(cmd *cobra.Command, args []string, flags rootFlags) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v. Using default settings.\n", err)
	}
	if cmd.Flags().Changed("locale") {
		cfg.Preview.Locale = flags.locale
	}
	if cmd.Flags().Changed("preview") {
		cfg.Preview.StartInPreview = flags.preview
	}
	if flags.noWatch {
		cfg.Editor.WatchFile = false
	}
	lang, err := cfg.Language()
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(flags.logFile, flags.debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		var ok bool
		path, ok, err = choosePath(cfg)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	doc := editor.NewDocument("", "")
	if path != "" {
		doc, err = editor.Open(path)
		if err != nil {
			return err
		}
		cfg.Touch(path, time.Now())
		if err := cfg.Save(); err != nil {
			logger.Warn("Could not save config", "err", err)
		}
	}

	model := app.NewModel(doc, app.Options{
		Config:         cfg,
		Logger:         logger,
		Language:       lang,
		StartInPreview: cfg.Preview.StartInPreview,
		Watch:          cfg.Editor.WatchFile,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()
	if err := model.Close(); err != nil {
		logger.Error("Close failed", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if runErr != nil {
		return fmt.Errorf("program failed: %w", runErr)
	}
	return nil
}

// choosePath runs the recent-file picker and, when needed, the path prompt.
// ok is false when the user quit; an empty path starts an unsaved document.
func choosePath(cfg *config.Config) (path string, ok bool, err error) {
	if len(csvRecent(cfg)) > 0 {
		result, err := tea.NewProgram(newPickerModel(cfg), tea.WithAltScreen()).Run()
		if err != nil {
			return "", false, err
		}
		pm, isPicker := result.(pickerModel)
		if !isPicker || !pm.done {
			return "", false, nil
		}
		if !pm.newFile {
			return pm.path, true, nil
		}
	}

	result, err := tea.NewProgram(newPromptModel(), tea.WithAltScreen()).Run()
	if err != nil {
		return "", false, err
	}
	prompt, isPrompt := result.(promptModel)
	if !isPrompt || !prompt.done {
		return "", false, nil
	}
	return prompt.path, true, nil
}
