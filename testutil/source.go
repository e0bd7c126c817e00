package testutil

import (
	"fmt"

	"github.com/cordialsys/xcall/chain/substrate/resolver"
	xcerrors "github.com/cordialsys/xcall/client/errors"
)

// Answer is one scripted response to a prompt
type Answer struct {
	Text string
	Yes  bool
	Err  error
}

func Text(text string) Answer    { return Answer{Text: text} }
func Choose(value string) Answer { return Answer{Text: value} }
func Yes() Answer                { return Answer{Yes: true} }
func No() Answer                 { return Answer{Yes: false} }
func Cancel() Answer {
	return Answer{Err: xcerrors.Canceledf("operation canceled")}
}

// ScriptedSource answers prompts from a script and records every prompt label.
type ScriptedSource struct {
	Fragments []string
	Answers   []Answer
	Prompts   []string
	// placeholders shown for Input prompts, in order
	Placeholders []string
	// choices offered by Select prompts, in order
	Choices [][]resolver.Choice
}

var _ resolver.Source = &ScriptedSource{}

func NewScriptedSource(answers ...Answer) *ScriptedSource {
	return &ScriptedSource{Answers: answers}
}

func (s *ScriptedSource) WithFragments(fragments ...string) *ScriptedSource {
	s.Fragments = fragments
	return s
}

func (s *ScriptedSource) NextPositional() (string, bool) {
	if len(s.Fragments) == 0 {
		return "", false
	}
	next := s.Fragments[0]
	s.Fragments = s.Fragments[1:]
	return next, true
}

func (s *ScriptedSource) next(label string) (Answer, error) {
	s.Prompts = append(s.Prompts, label)
	if len(s.Answers) == 0 {
		return Answer{}, fmt.Errorf("unexpected prompt: %s", label)
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, answer.Err
}

func (s *ScriptedSource) Input(label string, placeholder string, defaultValue string) (string, error) {
	s.Placeholders = append(s.Placeholders, placeholder)
	answer, err := s.next(label)
	if err != nil {
		return "", err
	}
	if answer.Text == "" {
		return defaultValue, nil
	}
	return answer.Text, nil
}

func (s *ScriptedSource) Select(label string, choices []resolver.Choice) (string, error) {
	s.Choices = append(s.Choices, choices)
	answer, err := s.next(label)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

func (s *ScriptedSource) Confirm(label string, _ bool) (bool, error) {
	answer, err := s.next(label)
	if err != nil {
		return false, err
	}
	return answer.Yes, nil
}

// Done reports whether every scripted answer was used.
func (s *ScriptedSource) Done() bool {
	return len(s.Answers) == 0
}
