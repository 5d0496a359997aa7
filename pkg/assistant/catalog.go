package assistant

import (
	"github.com/charmbracelet/log"

	"github.com/talon-assistant/talent-catalog/pkg/clip"
	"github.com/talon-assistant/talent-catalog/pkg/config"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/talents/clipboard"
	"github.com/talon-assistant/talent-catalog/pkg/talents/crypto"
	"github.com/talon-assistant/talent-catalog/pkg/talents/docker"
	"github.com/talon-assistant/talent-catalog/pkg/talents/files"
	"github.com/talon-assistant/talent-catalog/pkg/talents/github"
	"github.com/talon-assistant/talent-catalog/pkg/talents/jsonfmt"
	"github.com/talon-assistant/talent-catalog/pkg/talents/pomodoro"
	"github.com/talon-assistant/talent-catalog/pkg/talents/regex"
	"github.com/talon-assistant/talent-catalog/pkg/talents/snippet"
	"github.com/talon-assistant/talent-catalog/pkg/talents/stock"
	"github.com/talon-assistant/talent-catalog/pkg/talents/todo"
	"github.com/talon-assistant/talent-catalog/pkg/talents/units"
)

// Catalog builds the built-in talents in registration order. Order matters:
// it breaks priority ties in the router.
func Catalog(s *config.Settings, board clip.Board, clipboardCap talent.Capability, logger *log.Logger) []talent.Talent {
	return []talent.Talent{
		crypto.New(logger),
		stock.New(nil, "", logger),
		github.New(logger),
		docker.New(nil, logger),
		todo.New(s.StorePath("todo"), logger),
		pomodoro.New(logger),
		snippet.New(s.StorePath("snippets"), board, clipboardCap, logger),
		clipboard.New(board, clipboardCap, logger),
		files.New(nil, "", logger),
		regex.New(),
		jsonfmt.New(board, clipboardCap),
		units.New(nil, ""),
	}
}
