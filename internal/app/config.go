package app

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Commands understood by App.Run.
const (
	CommandCompile = "compile"
	CommandRun     = "run"
	CommandDot     = "dot"
	CommandWatch   = "watch"
	CommandServe   = "serve"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string   `validate:"required,oneof=compile run dot watch serve"`
	Paths   []string `validate:"dive,required"`

	// Function selects one declared function; empty means all of them, or
	// the first one for run.
	Function  string
	Args      []string
	Highlight []string
	PrintCode bool

	// NotifyURL is a socket.io server told about every watch round.
	NotifyURL   string `validate:"omitempty,url"`
	NotifyEvent string

	Port            int `validate:"min=0,max=65535"`
	HealthcheckPort int `validate:"min=0,max=65535"`
	CacheSize       int `validate:"min=0"`
	// Workers bounds the files compiled concurrently.
	Workers int `validate:"min=1"`

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("invalid %s: %q does not satisfy '%s'", fe.Field(), fmt.Sprint(fe.Value()), fe.ActualTag())
		}
		return nil, err
	}
	if cfg.Command != CommandServe && len(cfg.Paths) == 0 {
		return nil, errors.New("at least one graph file is required")
	}
	if cfg.Command == CommandRun && len(cfg.Paths) != 1 {
		return nil, errors.New("run takes exactly one graph file")
	}
	if cfg.Command == CommandServe && cfg.Port == 0 {
		return nil, errors.New("serve needs a port")
	}
	return &cfg, nil
}
