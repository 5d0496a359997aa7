// Package talent defines the contract every command handler plugin implements:
// cheap keyword matching, execution into a uniform Result, and a declarative
// configuration schema.
package talent

import "context"

// Info describes a talent to the router and to configuration surfaces.
type Info struct {
	Name        string
	Description string
	Keywords    []string
	Exclusions  []string
	// Priority breaks ties between talents that both accept a command. Higher wins.
	Priority int
}

// Matcher returns the keyword/exclusion matcher for this descriptor.
func (i Info) Matcher() Matcher {
	return Matcher{Keywords: i.Keywords, Exclusions: i.Exclusions}
}

// Talent is a self-contained command handler for one domain.
type Talent interface {
	Info() Info
	CanHandle(text string) bool
	Execute(ctx context.Context, cmd Command) Result
	ConfigSchema() Schema
}

// Initializer is implemented by talents that need the resolved configuration
// before the first command.
type Initializer interface {
	Initialize(cfg Config) error
}

// ConfigUpdater is implemented by talents that re-derive runtime parameters
// whenever settings change. cfg is always the full mapping.
type ConfigUpdater interface {
	UpdateConfig(cfg Config) error
}

// Stopper is implemented by talents that own background work.
type Stopper interface {
	Stop()
}

// Generator is the language model collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt, system string, temperature float64) (string, error)
}

// Env carries the collaborators a host hands to a command.
type Env struct {
	// Notify shows a notification to the user. May be nil.
	Notify func(title, message string)
	// LLM may be nil when no model is configured.
	LLM Generator
}

// Command is one user utterance plus its collaborators.
type Command struct {
	Text string
	Env  Env
}

// NewCommand builds a Command without collaborators.
func NewCommand(text string) Command {
	return Command{Text: text}
}

// Notify calls the notification collaborator when present.
func (c Command) Notify(title, message string) {
	if c.Env.Notify != nil {
		c.Env.Notify(title, message)
	}
}
