// Package prompt asks the operator whether a popular untrusted candidate
// may be installed.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/Pirikara/pipgate/internal/logger"
	"github.com/Pirikara/pipgate/internal/resolve"
)

const prog = "pipgate"

// ErrNoTerminal reports that no interactive terminal is available.
var ErrNoTerminal = errors.New("no interactive terminal available")

// Prompter asks a yes/no question and reports the answer.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Affirmative reports whether an answer means yes. Only a literal "yes",
// ignoring case and surrounding whitespace, confirms.
func Affirmative(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == "yes"
}

// Question renders the confirmation question for an untrusted candidate.
func Question(name, version, origin string) string {
	return fmt.Sprintf("%s: installation candidate %s %s from %s satisfies popularity threshold; allow (yes/no)? ",
		prog, name, version, origin)
}

// Canned answers every question from a preconfigured answer without
// asking.
type Canned struct {
	Answer string
	Log    *logger.Logger
}

func (c Canned) Confirm(_ string) (bool, error) {
	if c.Log != nil {
		c.Log.Debug("prompt", "using canned answer", map[string]interface{}{
			"answer": c.Answer,
		})
	}
	return Affirmative(c.Answer), nil
}

// Terminal prompts interactively, writing the question to Out and
// reading one line from In. Confirm fails with ErrNoTerminal when In is
// not attached to a terminal.
type Terminal struct {
	In         io.Reader
	Out        io.Writer
	IsTerminal bool
}

// NewTerminal builds a prompter on stdin and stderr, detecting whether
// stdin is a terminal.
func NewTerminal() *Terminal {
	return &Terminal{
		In:         os.Stdin,
		Out:        os.Stderr,
		IsTerminal: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

func (t *Terminal) Confirm(question string) (bool, error) {
	if !t.IsTerminal {
		return false, ErrNoTerminal
	}
	if _, err := fmt.Fprint(t.Out, question); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}
	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read answer: %w", err)
	}
	return Affirmative(line), nil
}

// ForAnswer returns a canned prompter when answer is non-empty and an
// interactive terminal prompter otherwise.
func ForAnswer(answer string, log *logger.Logger) Prompter {
	if answer != "" {
		return Canned{Answer: answer, Log: log}
	}
	return NewTerminal()
}

// Result describes how a confirmation attempt went.
type Result struct {
	Allowed     bool
	Prompted    bool
	Unavailable bool
}

// Mediator resolves whether an untrusted candidate may be installed.
// A missing or failing prompter counts as a refusal, reported through
// Result.Unavailable.
type Mediator struct {
	Prompter Prompter
	Log      *logger.Logger
}

// Resolve asks about the candidate and absorbs prompt failures.
func (m Mediator) Resolve(candidate resolve.Candidate) Result {
	if m.Prompter == nil {
		return Result{Unavailable: true}
	}
	allowed, err := m.Prompter.Confirm(Question(candidate.Name, candidate.Version, candidate.OriginDomain()))
	if err != nil {
		if m.Log != nil {
			m.Log.Warn("prompt", "prompt unavailable, keeping trusted candidate", map[string]interface{}{
				"package": candidate.Name,
				"error":   err.Error(),
			})
		}
		return Result{Unavailable: true}
	}
	return Result{Allowed: allowed, Prompted: true}
}
