package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockModule struct {
	installed int
	order     *[]string
	name      string
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
}

func TestAppBuilder_Stateless(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.False(t, app.stateful)
	assert.Equal(t, State(0), app.initialState)
	assert.Equal(t, State(0), app.finalState)
	assert.False(t, app.Done(), "a stateless app never finishes on its own")
}

func TestAppBuilder_UseStates(t *testing.T) {
	app := NewAppBuilder().UseStates(1, 10).Build()

	assert.True(t, app.stateful)
	assert.Equal(t, State(1), app.initialState)
	assert.Equal(t, State(10), app.finalState)
	assert.Len(t, app.systems[Update.Name], 10, "every state between initial and final gets a slot")
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	app := NewAppBuilder().Build()

	require.Len(t, app.stages, len(defaultStages))
	assert.Equal(t, Prelude, app.stages[0])
	assert.Equal(t, Finale, app.stages[len(app.stages)-1])
}

func TestAppBuilder_Build_WithModules(t *testing.T) {
	var order []string
	first := &MockModule{name: "first", order: &order}
	second := &MockModule{name: "second", order: &order}

	builder := NewAppBuilder().UseModule(first).UseModule(second)
	require.Len(t, builder.modules, 2)

	builder.Build()
	assert.Equal(t, 1, first.installed)
	assert.Equal(t, 1, second.installed)
	assert.Equal(t, []string{"first", "second"}, order)
}

type spawningModule struct{}

type spawnedMarker struct{}

func (spawningModule) Install(app *App, cmd *Commands) {
	cmd.AddEntity(&spawnedMarker{})
}

func TestAppBuilder_BuildFlushesModuleCommands(t *testing.T) {
	app := NewAppBuilder().UseModule(spawningModule{}).Build()

	assert.Equal(t, 1, MakeQuery1[spawnedMarker](app.Commands()).Count())
}

func TestAppBuilder_StatefulSystemInStatelessAppPanics(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InState(OnExecute(StateRunning)))
	})
}
