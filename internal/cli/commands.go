package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"moodify/internal/ai"
	"moodify/internal/playlist"
	"moodify/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP recommendation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if a.cfg.Gemini.APIKey == "" {
				slog.Warn("no gemini api key configured; /api/generate will fail, /api/mock still works")
			}
			router := server.NewRouter(server.Options{
				Recommender: newGenerator(a.cfg),
				RateLimit:   a.cfg.Server.RateLimit,
			})
			return server.Serve(cmd.Context(), addr, router)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var d ai.Descriptor
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Recommend five songs for a mood",
		Example: strings.Join([]string{
			"  moodify generate --era 90s --mood romantic --language Hindi --feeling nostalgic",
			`  echo '{"era":"80s","mood":"upbeat","language":"English","feeling":"happy"}' | moodify generate --json`,
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := a.output()
			flagsSet := false
			for _, name := range []string{"era", "mood", "language", "feeling"} {
				if cmd.Flags().Changed(name) {
					flagsSet = true
				}
			}
			if !flagsSet {
				if !stdinIsPipe(a.stdin) {
					return UsageError{Msg: "Missing descriptor. Pass --era, --mood, --language and --feeling, or pipe a JSON descriptor on stdin."}
				}
				parsed, err := readDescriptor(a.stdin)
				if err != nil {
					return UsageError{Msg: "invalid descriptor on stdin: " + err.Error()}
				}
				d = parsed
			}
			if a.cfg.Gemini.APIKey == "" {
				out.Error("No API key configured.")
				out.Error("Set one of: MOODIFY_GEMINI_API_KEY, GEMINI_API_KEY, GOOGLE_API_KEY")
				return fmt.Errorf("missing api key")
			}

			out.Info(out.Gray(fmt.Sprintf("Generating songs for %s %s (%s, %s)...", d.Era, d.Mood, d.Language, d.Feeling)))
			songs, err := newGenerator(a.cfg).Generate(cmd.Context(), d)
			if err != nil {
				return err
			}
			if n := playlist.FallbackCount(songs); n > 0 {
				out.Warn(fmt.Sprintf("%d of %d songs come from the fallback list", n, len(songs)))
			}
			return out.Songs(songs)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&d.Era, "era", "e", "", "Era, e.g. 90s")
	f.StringVarP(&d.Mood, "mood", "m", "", "Mood, e.g. romantic")
	f.StringVarP(&d.Language, "language", "l", "", "Song language")
	f.StringVarP(&d.Feeling, "feeling", "f", "", "Feeling, e.g. nostalgic")
	return cmd
}

func newMockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mock",
		Short: "Print the static fallback songs",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.output().Songs(playlist.Mock())
		},
	}
}

func stdinIsPipe(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	return !term.IsTerminal(int(f.Fd()))
}

func readDescriptor(r io.Reader) (ai.Descriptor, error) {
	b, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil {
		return ai.Descriptor{}, err
	}
	var d ai.Descriptor
	if err := gojson.Unmarshal(b, &d); err != nil {
		return ai.Descriptor{}, err
	}
	return d, nil
}
