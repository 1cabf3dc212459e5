package playlist

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"moodify/internal/metrics"
)

// ResultSize is the number of songs every recommendation returns.
const ResultSize = 5

const (
	videoSearchURL = "https://www.youtube.com/results?search_query="
	videoFilter    = "&sp=EgIQAQ%3D%3D"
	audioSearchURL = "https://open.spotify.com/search/"
)

// FallbackSongs pad results, in this order, when too few candidates survive.
var FallbackSongs = []string{
	"Tum Hi Ho - Arijit Singh",
	"Pehla Nasha - Udit Narayan",
	"Kal Ho Naa Ho - Sonu Nigam",
	"Channa Mereya - Arijit Singh",
	"Tujh Mein Rab Dikhta Hai - Roop Kumar Rathod",
}

// Validator reports whether a normalized song plausibly exists. A non-nil
// error means the answer is unknown.
type Validator interface {
	Exists(ctx context.Context, song string) (bool, error)
}

type Assembler struct {
	validator Validator
}

func NewAssembler(v Validator) *Assembler {
	return &Assembler{validator: v}
}

// Assemble picks up to ResultSize validated songs from lines in order,
// pads with FallbackSongs and decorates each entry.
func (a *Assembler) Assemble(ctx context.Context, lines []string) []string {
	songs := a.Select(ctx, lines)
	out := make([]string, 0, len(songs))
	for _, s := range songs {
		out = append(out, Decorate(s))
	}
	return out
}

// Select returns the undecorated songs Assemble would produce.
func (a *Assembler) Select(ctx context.Context, lines []string) []string {
	songs := make([]string, 0, ResultSize)
	seen := map[string]struct{}{}
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		songs = append(songs, s)
	}

	for _, raw := range lines {
		if len(songs) >= ResultSize {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		song, ok := NormalizeLine(StripNumbering(line))
		if !ok {
			continue
		}
		if _, dup := seen[song]; dup {
			continue
		}
		exists, err := a.validator.Exists(ctx, song)
		switch {
		case err != nil:
			slog.Warn("existence lookup failed, accepting candidate", "song", song, "err", err)
			add(song)
		case exists:
			add(song)
		default:
			slog.Info("skipping candidate (no video results)", "song", song)
		}
	}

	for _, f := range FallbackSongs {
		if len(songs) >= ResultSize {
			break
		}
		if _, ok := seen[f]; ok {
			continue
		}
		add(f)
		metrics.FallbackSongs.Inc()
	}
	return songs
}

// Decorate appends the video and audio search links for song.
func Decorate(song string) string {
	if !utf8.ValidString(song) {
		slog.Warn("song is not valid utf-8, using plain links", "song", song)
		q := strings.ReplaceAll(song, " ", "+")
		return song + " | " + videoSearchURL + q + " | " + audioSearchURL + q
	}
	q := url.QueryEscape(song)
	return song + " | " + videoSearchURL + q + videoFilter + " | " + audioSearchURL + q
}

// FallbackCount reports how many of songs, plain or decorated, are entries
// of FallbackSongs.
func FallbackCount(songs []string) int {
	n := 0
	for _, s := range songs {
		title, _, _ := strings.Cut(s, " | ")
		for _, f := range FallbackSongs {
			if title == f {
				n++
				break
			}
		}
	}
	return n
}

// Mock returns the decorated fallback songs.
func Mock() []string {
	out := make([]string, 0, len(FallbackSongs))
	for _, s := range FallbackSongs {
		out = append(out, Decorate(s))
	}
	return out
}
