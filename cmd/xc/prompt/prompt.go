package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cordialsys/xcall/chain/substrate/resolver"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/manifoldco/promptui"
)

// Terminal asks the operator on a terminal. Pre-supplied fragments are not its concern.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
	// rows shown at once by a selection
	Size int
}

var _ resolver.Source = &Terminal{}

func NewTerminal() *Terminal {
	return &Terminal{Size: 12}
}

// AsCanceled maps an interrupted prompt (ctrl+c, ctrl+d) onto a cancellation.
func AsCanceled(label string, err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return xcerrors.Wrap(xcerrors.Canceled, err, "%s", strings.TrimSuffix(label, ":"))
	}
	return err
}

func (t *Terminal) NextPositional() (string, bool) {
	return "", false
}

func (t *Terminal) Input(label string, placeholder string, defaultValue string) (string, error) {
	if placeholder != "" && placeholder != defaultValue {
		label = fmt.Sprintf("%s (%s)", label, placeholder)
	}
	p := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: defaultValue != "",
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	value, err := p.Run()
	if err != nil {
		return "", AsCanceled(label, err)
	}
	if strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	return value, nil
}

func (t *Terminal) Select(label string, choices []resolver.Choice) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .Label | cyan }}{{ if .Hint }} - {{ .Hint | faint }}{{ end }}",
		Inactive: "  {{ .Label }}{{ if .Hint }} - {{ .Hint | faint }}{{ end }}",
		Selected: "✓ {{ .Label | green }}",
	}
	size := t.Size
	if size <= 0 || size > len(choices) {
		size = len(choices)
	}
	p := promptui.Select{
		Label:     label,
		Items:     choices,
		Templates: templates,
		Size:      size,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(choices[index].Label), strings.ToLower(strings.TrimSpace(input)))
		},
		Stdin:  t.Stdin,
		Stdout: t.Stdout,
	}
	index, _, err := p.Run()
	if err != nil {
		return "", AsCanceled(label, err)
	}
	return choices[index].Value, nil
}

func (t *Terminal) Confirm(label string, initial bool) (bool, error) {
	defaultValue := "n"
	if initial {
		defaultValue = "y"
	}
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   defaultValue,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	_, err := p.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, AsCanceled(label, err)
	}
	return true, nil
}

// Interactive reports whether stdin is a terminal that can be prompted.
func Interactive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
