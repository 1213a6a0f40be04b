// Package main provides the entry point for the docreader CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/docreader/internal/library"
	"github.com/dgnsrekt/docreader/internal/reader"
	"github.com/dgnsrekt/docreader/tts"
	"github.com/dgnsrekt/docreader/ui"
	"github.com/dgnsrekt/docreader/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	catalogFile string
	engine      string
	voice       string
	speed       float64
	watchFile   bool
	mouse       bool
	headless    bool
	debug       bool

	// TTS settings resolved from config file, environment and flags.
	ttsConfig tts.Config

	rootCmd = &cobra.Command{
		Use:   "docreader [DOCUMENT]",
		Short: "Read documents aloud in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nRead documents aloud, %s. DOCUMENT is a file path, a catalog id or part of a title; - reads from stdin.", keyword("one sentence at a time")),
		),
		Example:          paragraph("docreader notes.md\ndocreader doc4 --speed 1.25\ncat notes.txt | docreader --headless"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(*cobra.Command) error {
	if configFile != "" {
		viper.SetConfigFile(utils.ExpandPath(configFile))
		if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to read config file %s: %w", configFile, err)
		}
	}

	// grab config values from Viper
	mouse = viper.GetBool("mouse")
	watchFile = viper.GetBool("watch")
	catalogFile = viper.GetString("catalog")

	if debug {
		enableDebugLog()
	}

	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err //nolint:wrapcheck
	}
	ttsConfig = cfg

	log.Debug("configuration loaded",
		"engine", ttsConfig.Engine,
		"language", ttsConfig.Language,
		"speed", ttsConfig.Speed,
		"config", viper.ConfigFileUsed(),
	)
	return nil
}

// openLibrary returns the document catalog, merged with the configured
// catalog file if any.
func openLibrary() (*library.Library, error) {
	lib, err := library.New(
		library.WithLatency(ttsConfig.Simulated.VoiceLatency),
		library.WithLogger(log.Default().WithPrefix("library")),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if catalogFile != "" {
		if err := lib.LoadCatalog(utils.ExpandPath(catalogFile)); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}
	return lib, nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// resolveDocument finds the document an argument refers to: stdin, a local
// file, a catalog id or a title. Without an argument the newest catalog
// document is used.
func resolveDocument(lib *library.Library, args []string) (library.Document, error) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	if arg == "-" {
		return documentFromReader(os.Stdin)
	}
	if arg == "" {
		if yes, err := stdinIsPipe(); err != nil {
			return library.Document{}, err
		} else if yes {
			return documentFromReader(os.Stdin)
		}

		docs := lib.Documents("")
		if len(docs) == 0 {
			return library.Document{}, library.ErrNotFound
		}
		return docs[0], nil
	}

	path := utils.ExpandPath(arg)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return library.Document{}, fmt.Errorf("%s is a directory", arg)
		}
		return lib.AddFile(path) //nolint:wrapcheck
	}

	return lib.Resolve(arg) //nolint:wrapcheck
}

func documentFromReader(r io.Reader) (library.Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return library.Document{}, fmt.Errorf("unable to read from reader: %w", err)
	}
	return library.Document{
		ID:         "stdin",
		Title:      "stdin",
		FileType:   "md",
		Content:    string(utils.RemoveFrontmatter(b)),
		SourceType: "stdin",
	}, nil
}

// segmentCacheDir returns the on-disk segment cache location, or "" to keep
// the cache in memory.
func segmentCacheDir() string {
	dir, err := gap.NewScope(gap.User, "docreader").CacheDir()
	if err != nil {
		log.Debug("no user cache dir, segment cache stays in memory", "error", err)
		return ""
	}
	return filepath.Join(dir, "segments")
}

func execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib, err := openLibrary()
	if err != nil {
		return err
	}
	doc, err := resolveDocument(lib, args)
	if err != nil {
		return err
	}

	session, err := reader.Open(ctx, reader.Options{
		Config:   ttsConfig,
		Document: doc,
		Voices:   lib,
		CacheDir: segmentCacheDir(),
		Watch:    watchFile,
		Logger:   log.Default(),
	})
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("closing session", "error", err)
		}
	}()

	if headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stderr, "Reading %s with the %s engine\n", doc.Title, session.Speech.Kind())
		if err := session.Play(ctx, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return err //nolint:wrapcheck
		}
		return nil
	}

	return runTUI(session)
}

func runTUI(session *reader.Session) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.EnableMouse = cfg.EnableMouse || mouse
	cfg.Highlight = ttsConfig.HighlightEnabled
	cfg.HighlightColor = ttsConfig.HighlightColor
	cfg.ShowProgress = ttsConfig.ShowProgress

	opts := ui.Options{
		Document: ui.Document{Title: session.Document.Title, Path: session.Document.Path},
		Player:   session.Controller,
		Updates:  session.Manager.Updates(),
		Errors:   session.Manager.Errors(),
		Reloads:  session.Reloads(),
		Load:     session.Reload,
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, opts).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "extra YAML document catalog")
	rootCmd.PersistentFlags().StringVarP(&engine, "engine", "e", tts.EngineAuto, "speech engine: auto, espeak or simulated")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice id to read with")
	rootCmd.Flags().Float64Var(&speed, "speed", tts.DefaultSpeed, "playback speed (0.5 to 2)")
	rootCmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "reload the document when its file changes")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse: click a sentence to jump to it")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "read without the TUI, printing each sentence")

	// Config bindings
	_ = viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("tts.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("tts.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("tts.speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("mouse", false)
	viper.SetDefault("watch", false)
	tts.SetDefaults()

	rootCmd.AddCommand(configCmd, manCmd, docsCmd, showCmd, voicesCmd, checkCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "docreader")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "docreader")}, dirs...)
	}

	if c := os.Getenv("DOCREADER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("docreader")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("docreader")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "docreader.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
