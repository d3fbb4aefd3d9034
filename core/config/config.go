// Package config loads the shell's optional configuration file.
//
// Nothing here changes the command language; the file only dresses the
// console and enables the event log. With no file present the shell runs
// with the stock settings.
package config

import (
	"reflect"
	"strings"

	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
)

const (
	// ConfigName is the file name searched for under the config directory.
	ConfigName = "config.yaml"

	// EnvConfig, when set, overrides the configuration file location.
	EnvConfig = "RUSH_CONFIG"

	PromptColorNever  = "never"
	PromptColorAuto   = "auto"
	PromptColorAlways = "always"
)

type Config struct {
	// Prompt is written before each read, without a trailing newline.
	Prompt string `json:"prompt"`

	// PromptColor controls prompt coloring: never, auto (only when the
	// console is a terminal) or always.
	PromptColor string `json:"prompt_color" validate:"oneof=never auto always"`

	// LogPath enables the JSON event log when non-empty. The console
	// output itself is never written there.
	LogPath string `json:"log_path"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Prompt:      "$ ",
		PromptColor: PromptColorNever,
	}
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// RenderPrompt returns the prompt with coloring applied per PromptColor.
func (c *Config) RenderPrompt() string {
	prompt := color.New(color.FgGreen, color.Bold)
	switch c.PromptColor {
	case PromptColorAlways:
		prompt.EnableColor()
	case PromptColorAuto:
		// The color package detects non-terminal output itself.
	default:
		return c.Prompt
	}
	return prompt.Sprint(c.Prompt)
}
