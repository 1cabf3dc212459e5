package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	gojson "github.com/goccy/go-json"
)

type Options struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Stdout  io.Writer
	Stderr  io.Writer
}

type Output struct {
	JSON  bool
	Quiet bool

	stdout io.Writer
	stderr io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	gray   *color.Color
	bold   *color.Color
}

func New(opts Options) *Output {
	if opts.NoColor {
		color.NoColor = true
	}
	o := &Output{
		JSON:   opts.JSON,
		Quiet:  opts.Quiet,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		gray:   color.New(color.FgHiBlack),
		bold:   color.New(color.Bold),
	}
	if o.stdout == nil {
		o.stdout = os.Stdout
	}
	if o.stderr == nil {
		o.stderr = os.Stderr
	}
	return o
}

func (o *Output) Green(s string) string  { return o.green.Sprint(s) }
func (o *Output) Yellow(s string) string { return o.yellow.Sprint(s) }
func (o *Output) Red(s string) string    { return o.red.Sprint(s) }
func (o *Output) Gray(s string) string   { return o.gray.Sprint(s) }
func (o *Output) Bold(s string) string   { return o.bold.Sprint(s) }

func (o *Output) Info(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, msg)
}

func (o *Output) Warn(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, o.Yellow(msg))
}

func (o *Output) Error(msg string) {
	fmt.Fprintln(o.stderr, o.Red(msg))
}

// Songs prints decorated songs, or emits {"songs": [...]} in JSON mode.
func (o *Output) Songs(songs []string) error {
	if o.JSON {
		return o.EmitJSON(map[string]any{"songs": songs})
	}
	for i, s := range songs {
		parts := strings.Split(s, " | ")
		fmt.Fprintf(o.stdout, "%s %s\n", o.Green(fmt.Sprintf("%d.", i+1)), o.Bold(parts[0]))
		for _, link := range parts[1:] {
			fmt.Fprintln(o.stdout, "   "+o.Gray(link))
		}
	}
	return nil
}

func (o *Output) EmitJSON(v any) error {
	enc := gojson.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
