package prompt

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Output prints the progress of a session, one framed line per message.
type Output struct {
	w io.Writer
}

func NewOutput(w io.Writer) *Output {
	if w == nil {
		w = os.Stderr
	}
	return &Output{w: w}
}

func (o *Output) Intro(title string) {
	fmt.Fprintf(o.w, "┌  %s\n", color.New(color.Bold, color.BgCyan, color.FgBlack).Sprintf(" %s ", title))
}

func (o *Output) Info(message string) {
	fmt.Fprintf(o.w, "│\n%s  %s\n", color.BlueString("●"), message)
}

func (o *Output) Outro(message string) {
	fmt.Fprintf(o.w, "│\n└  %s\n", color.GreenString(message))
}

func (o *Output) OutroCancel(message string) {
	fmt.Fprintf(o.w, "│\n└  %s\n", color.RedString(message))
}
