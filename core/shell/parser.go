package shell

import (
	"errors"
	"strings"
)

// Parse interprets one input line as a pipeline. Tokens are separated by
// whitespace with no quoting or escaping; `|` separates stages, `<` and `>`
// take the following token as a redirection path and `&` marks the line as
// background. A nil error with zero stages means the line was blank.
//
// The first parse error aborts the whole line; no partial pipeline is
// returned.
func Parse(line string) (*Pipeline, error) {
	tokens := strings.Fields(line)

	p := &Pipeline{}
	top := true // the next plain token opens a new stage
	for i, token := range tokens {
		switch token {
		case "&":
			if i != len(tokens)-1 {
				return nil, errors.New("& can appear only after the last command")
			}
			p.background = true

		case "|":
			if i == 0 || tokens[i-1] == "|" {
				return nil, errors.New("| cannot appear as the first word in a command")
			}
			top = true

		case "<":
			if i == len(tokens)-1 {
				return nil, errors.New("No filename after <")
			}
			if isOperator(tokens[i+1]) {
				return nil, errors.New("Illegal filename after <")
			}
			if pipeSeen(tokens[:i]) {
				return nil, errors.New("< can appear only in the first command")
			}
			p.inFile = tokens[i+1]

		case ">":
			if i == len(tokens)-1 {
				return nil, errors.New("No filename after >")
			}
			if isOperator(tokens[i+1]) {
				return nil, errors.New("Illegal filename after >")
			}
			if pipeSeen(tokens[i+1:]) {
				return nil, errors.New("> can appear only in the last command")
			}
			p.outFile = tokens[i+1]

		default:
			if i > 0 && (tokens[i-1] == "<" || tokens[i-1] == ">") {
				continue // consumed as a redirection path
			}
			if top {
				p.cmds = append(p.cmds, &Command{})
				top = false
			}
			p.cmds[len(p.cmds)-1].push(token)
		}
	}

	if len(p.cmds) == 0 {
		if p.inFile != "" {
			return nil, errors.New("No command before <")
		}
		if p.outFile != "" {
			return nil, errors.New("No command before >")
		}
	}
	return p, nil
}

func isOperator(token string) bool {
	switch token {
	case "&", "|", "<", ">":
		return true
	}
	return false
}

func pipeSeen(tokens []string) bool {
	for _, token := range tokens {
		if token == "|" {
			return true
		}
	}
	return false
}
