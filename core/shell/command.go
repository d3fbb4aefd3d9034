package shell

// Command is a single invocation within a pipeline: a program or builtin
// name followed by its arguments. The parser never produces an empty one.
type Command struct {
	tokens []string
}

func (c *Command) push(token string) {
	c.tokens = append(c.tokens, token)
}

// Name returns the program name, the command's first token.
func (c *Command) Name() string {
	return c.tokens[0]
}

// Args returns the full token list, name included, in execvp order.
func (c *Command) Args() []string {
	return c.tokens
}

// IsBuiltin reports whether the command is handled inside the shell rather
// than by launching a program.
func (c *Command) IsBuiltin() bool {
	_, ok := AllBuiltins[c.Name()]
	return ok
}
