package shell

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Prompter asks questions on a line-oriented console and re-prompts until
// the answer is valid. Invalid input never escalates into an error; only a
// closed input does, as io.EOF.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints msg and returns the next input line without its line ending.
func (p *Prompter) Line(msg string) (string, error) {
	fmt.Fprint(p.out, msg)

	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Int asks until the answer is an integer between low and high inclusive.
func (p *Prompter) Int(msg, errMsg string, low, high int) (int, error) {
	for {
		line, err := p.Line(msg)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= low && n <= high {
			return n, nil
		}
		fmt.Fprintln(p.out, errMsg)
	}
}

// Choice asks until the lower-cased, trimmed answer is one of options.
func (p *Prompter) Choice(msg, errMsg string, options []string) (string, error) {
	for {
		line, err := p.Line(msg)
		if err != nil {
			return "", err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		if slices.Contains(options, answer) {
			return answer, nil
		}
		fmt.Fprintln(p.out, errMsg)
	}
}

// NonEmpty asks until the trimmed answer is not empty.
func (p *Prompter) NonEmpty(msg, errMsg string) (string, error) {
	for {
		line, err := p.Line(msg)
		if err != nil {
			return "", err
		}
		if answer := strings.TrimSpace(line); answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out, errMsg)
	}
}
