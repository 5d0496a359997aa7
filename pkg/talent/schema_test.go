package talent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{Fields: []Field{
		Int("max_entries", "Max entries", 50, 10, 500),
		Float("interval", "Interval", 1.0, 0.5, 10, 0.5),
		Bool("auto", "Auto", true),
		Choice("priority", "Priority", "medium", "low", "medium", "high"),
		String("dir", "Directory", "~/Downloads"),
		Password("token", "Token"),
	}}
}

func TestSchemaDefaults(t *testing.T) {
	cfg := testSchema().Defaults()
	assert.Equal(t, 50, cfg.Int("max_entries"))
	assert.InDelta(t, 1.0, cfg.Float("interval"), 1e-9)
	assert.True(t, cfg.Bool("auto"))
	assert.Equal(t, "medium", cfg.String("priority"))
	assert.Equal(t, "~/Downloads", cfg.String("dir"))
	assert.Equal(t, "", cfg.String("token"))
}

func TestSchemaResolve(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		key       string
		want      any
	}{
		{"int from float", map[string]any{"max_entries": 20.0}, "max_entries", 20},
		{"int from string", map[string]any{"max_entries": "30"}, "max_entries", 30},
		{"int clamped high", map[string]any{"max_entries": 9000}, "max_entries", 500},
		{"int clamped low", map[string]any{"max_entries": 1}, "max_entries", 10},
		{"int garbage keeps default", map[string]any{"max_entries": "lots"}, "max_entries", 50},
		{"float clamped", map[string]any{"interval": 0.1}, "interval", 0.5},
		{"bool from string", map[string]any{"auto": "false"}, "auto", false},
		{"valid choice", map[string]any{"priority": "high"}, "priority", "high"},
		{"invalid choice keeps default", map[string]any{"priority": "urgent"}, "priority", "medium"},
		{"nil keeps default", map[string]any{"dir": nil}, "dir", "~/Downloads"},
		{"password", map[string]any{"token": "s3cret"}, "token", "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSchema().Resolve(tt.overrides)
			assert.Equal(t, tt.want, cfg[tt.key])
		})
	}
}

func TestSchemaResolveDropsUnknownKeys(t *testing.T) {
	cfg := testSchema().Resolve(map[string]any{"nope": 1})
	_, ok := cfg["nope"]
	assert.False(t, ok)
	assert.Len(t, cfg, len(testSchema().Fields))
}

func TestSchemaField(t *testing.T) {
	f, ok := testSchema().Field("interval")
	require.True(t, ok)
	assert.Equal(t, TypeFloat, f.Type)
	require.NotNil(t, f.Step)
	assert.InDelta(t, 0.5, *f.Step, 1e-9)

	_, ok = testSchema().Field("missing")
	assert.False(t, ok)
}
