package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/docreader/internal/library"
	"github.com/dgnsrekt/docreader/tts"
	"github.com/dgnsrekt/docreader/tts/engines"
	"github.com/dgnsrekt/docreader/utils"
)

const voicesTimeout = 5 * time.Second

var (
	findQuery string
	style     string
	width     uint

	docsCmd = &cobra.Command{
		Use:     "docs [FILTER]",
		Short:   "List documents in the catalog",
		Long:    paragraph(fmt.Sprintf("\n%s documents, newest first. FILTER keeps documents whose title contains it or whose file type matches it.", keyword("List"))),
		Example: paragraph("docreader docs\ndocreader docs pdf\ndocreader docs --find react"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}

			var docs []library.Document
			switch {
			case findQuery != "":
				docs = lib.Find(findQuery)
			case len(args) > 0:
				docs = lib.Documents(args[0])
			default:
				docs = lib.Documents("")
			}
			return printDocuments(os.Stdout, docs, time.Now())
		},
	}

	showCmd = &cobra.Command{
		Use:     "show DOCUMENT",
		Short:   "Render a document",
		Long:    paragraph(fmt.Sprintf("\n%s a document in the terminal without reading it aloud.", keyword("Render"))),
		Example: paragraph("docreader show doc4\ndocreader show notes.md"),
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			doc, err := resolveDocument(lib, args)
			if err != nil {
				return err
			}
			return renderDocument(os.Stdout, doc)
		},
	}

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List the voices of the speech engine",
		Long:  paragraph(fmt.Sprintf("\n%s the voices offered by the selected speech engine. The voice picked by default is marked.", keyword("List"))),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), voicesTimeout+ttsConfig.Simulated.VoiceLatency)
			defer cancel()

			speech, voices, err := loadVoices(ctx, lib)
			if err != nil {
				return err
			}
			defer func() { _ = speech.Close() }()

			fmt.Fprintf(os.Stdout, "%s %s\n\n", header("Engine:"), speech.Kind())
			return printVoices(os.Stdout, voices, ttsConfig)
		},
	}
)

func printDocuments(w io.Writer, docs []library.Document, now time.Time) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, faint("No documents."))
		return err //nolint:wrapcheck
	}

	idWidth := len("ID")
	for _, d := range docs {
		idWidth = max(idWidth, runewidth.StringWidth(d.ID))
	}
	const titleWidth = 40

	row := func(id, title, fileType, date string) string {
		return fmt.Sprintf("%s  %s  %s  %s",
			runewidth.FillRight(id, idWidth),
			runewidth.FillRight(runewidth.Truncate(title, titleWidth, "…"), titleWidth),
			runewidth.FillRight(fileType, 5),
			date,
		)
	}

	if _, err := fmt.Fprintln(w, header(row("ID", "TITLE", "TYPE", "ADDED"))); err != nil {
		return err //nolint:wrapcheck
	}
	for _, d := range docs {
		added := humanize.RelTime(d.UploadDate, now, "ago", "from now")
		if _, err := fmt.Fprintln(w, row(d.ID, d.Title, d.FileType, faint(added))); err != nil {
			return err //nolint:wrapcheck
		}
	}
	return nil
}

func renderDocument(w io.Writer, doc library.Document) error {
	content := doc.Content
	isCode := doc.IsPlainText()
	switch {
	case doc.IsMarkdown():
		content = string(utils.RemoveFrontmatter([]byte(content)))
	case isCode:
		// Plain text keeps its own line breaks.
		content = utils.WrapCodeBlock(content, "")
	}

	wrap := int(width) //nolint:gosec
	style := style
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if wrap == 0 {
			if cols, _, err := term.GetSize(fd); err == nil {
				wrap = min(cols, 120)
			}
		}
	} else if style == styles.AutoStyle {
		style = styles.NoTTYStyle
	}
	if wrap == 0 {
		wrap = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style, isCode),
		glamour.WithWordWrap(wrap),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}

	title := "# " + doc.Title + "\n\n"
	if doc.IsMarkdown() && strings.HasPrefix(strings.TrimSpace(content), "# ") {
		title = ""
	}
	out, err := r.Render(title + content)
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}

	_, err = fmt.Fprint(w, out)
	return err //nolint:wrapcheck
}

// loadVoices starts the configured engine and waits for its first voice
// list.
func loadVoices(ctx context.Context, dir engines.VoiceDirectory) (tts.Speech, []tts.Voice, error) {
	speech, err := engines.New(ctx, ttsConfig, dir, log.Default().WithPrefix("tts"))
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	ch := make(chan []tts.Voice, 1)
	speech.OnVoicesChanged(func(v []tts.Voice) {
		select {
		case ch <- v:
		default:
		}
	})
	if v := speech.Voices(); len(v) > 0 {
		return speech, v, nil
	}

	select {
	case v := <-ch:
		return speech, v, nil
	case <-ctx.Done():
		_ = speech.Close()
		return nil, nil, fmt.Errorf("waiting for voices: %w", ctx.Err())
	}
}

func printVoices(w io.Writer, voices []tts.Voice, cfg tts.Config) error {
	if len(voices) == 0 {
		_, err := fmt.Fprintln(w, faint("No voices."))
		return err //nolint:wrapcheck
	}

	selected, ok := tts.FindVoice(voices, cfg.Voice)
	if !ok {
		selected, _ = tts.PreferredVoice(voices, cfg.Language)
	}

	for _, v := range voices {
		marker := "  "
		if v.ID == selected.ID {
			marker = keyword("* ")
		}
		if _, err := fmt.Fprintf(w, "%s%s  %s  %s\n", marker, runewidth.FillRight(v.ID, 12), runewidth.FillRight(v.Name, 24), faint(v.Language)); err != nil {
			return err //nolint:wrapcheck
		}
	}
	return nil
}

func init() {
	docsCmd.Flags().StringVarP(&findQuery, "find", "f", "", "fuzzy find documents by title")
	showCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	showCmd.Flags().UintVarP(&width, "width", "W", 0, "word-wrap at width (set to 0 to detect)")
}
