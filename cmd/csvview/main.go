package main

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"csvview/internal/config"
	"csvview/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose   bool
	homeDir   string
	delimiter string
	noWatch   bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "csvview [file]",
	Short: "Browse CSV files as a paginated, searchable table",
	Long: `csvview opens a CSV file in an interactive terminal table.

Rows are shown 50 per page with page-number navigation and a search box
that filters across every column. Press enter on a row to see each field
and copy values to the clipboard.

The last file you open is saved locally and restored when csvview starts
without arguments.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		home := homeDir
		if home == "" {
			home = config.DefaultHome()
		}
		c, err := config.Load(home)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", c.Path(), err)
		}
		cfg = c

		if err := logging.Initialize(home, cfg.Logging.Settings()); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("csvview %s starting (%s)", version, cmd.CommandPath())

		// The interactive viewer owns the terminal.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runView,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "State directory (default: $CSVVIEW_HOME or ~/.csvview)")
	rootCmd.PersistentFlags().StringVarP(&delimiter, "delimiter", "d", "", `Field separator, e.g. ";" or "tab" (default: auto-detect)`)
	rootCmd.PersistentFlags().BoolVar(&noWatch, "no-watch", false, "Do not reload when the file changes on disk")

	pageCmd.Flags().IntVarP(&pageNum, "page", "p", 1, "Page number to print")
	pageCmd.Flags().StringVarP(&pageQuery, "query", "q", "", "Only rows containing this text")
	pageCmd.Flags().IntVar(&pageWidth, "width", 0, "Maximum line width (default: terminal width, unlimited when piped)")
	pageCmd.Flags().BoolVar(&pageJSON, "json", false, "Print the page as JSON")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the viewer in a browser")

	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseDelimiter turns the --delimiter flag into a rune; "" auto-detects.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}
