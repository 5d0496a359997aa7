// Package notify delivers short user notifications.
package notify

import (
	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"
)

// Notifier shows a titled message to the user.
type Notifier interface {
	Notify(title, message string) error
}

// Func adapts a plain function to Notifier.
type Func func(title, message string) error

func (f Func) Notify(title, message string) error { return f(title, message) }

// Desktop posts OS notifications.
type Desktop struct {
	AppIcon string
}

func (d Desktop) Notify(title, message string) error {
	return beeep.Notify(title, message, d.AppIcon)
}

// Multi fans a notification out to several notifiers. Failures are logged so
// one broken sink does not hide the others.
type Multi struct {
	Sinks  []Notifier
	Logger *log.Logger
}

func (m Multi) Notify(title, message string) error {
	for _, s := range m.Sinks {
		if err := s.Notify(title, message); err != nil && m.Logger != nil {
			m.Logger.Warn("notification failed", "title", title, "err", err)
		}
	}
	return nil
}

// Callback turns n into the fire-and-forget form talents receive.
func Callback(n Notifier, logger *log.Logger) func(title, message string) {
	if n == nil {
		return nil
	}
	return func(title, message string) {
		if err := n.Notify(title, message); err != nil && logger != nil {
			logger.Warn("notification failed", "title", title, "err", err)
		}
	}
}
