package connectors

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (c *recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

type otherCloser struct{ recordingCloser }

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.state)
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem())

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := &MockResource2{name: "Resource2"}
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem())

	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)

	assert.Panics(t, func() { app.addResources(MockResource1{}) }, "resources must be pointers")
}

func TestApp_StepEntersInitialStateOnce(t *testing.T) {
	var log []string
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	app.UseSystem(System(func() { log = append(log, "enter") }).InStage(Update).InState(OnEnter(StateRunning))).
		UseSystem(System(func() { log = append(log, "exec") }).InStage(Update).InState(OnExecute(StateRunning)))

	app.Step()
	app.Step()

	assert.Equal(t, []string{"enter", "exec", "exec"}, log)
	assert.False(t, app.Done())
}

func TestApp_QuitFinishesFrameThenStops(t *testing.T) {
	frames := 0
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 3 {
			cmd.Quit()
		}
	}).InStage(Update).InState(OnExecute(StateRunning)))

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 3, frames)
	assert.True(t, app.Done())

	app.Step()
	assert.Equal(t, 3, frames, "a finished app does not execute frames")
}

func TestApp_RunStopsOnCancelledContext(t *testing.T) {
	frames := 0
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	app.UseSystem(System(func() { frames++ }).InStage(Update).RunAlways())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, app.Run(ctx))
	assert.Zero(t, frames)
}

func TestApp_CloseReverseOrder(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	app := NewAppBuilder().Build()
	app.addResources(&recordingCloser{name: "first", order: &order, err: boom})
	app.addResources(&otherCloser{recordingCloser{name: "second", order: &order}})

	err := app.Close()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"second", "first"}, order)

	assert.NoError(t, app.Close(), "closers run once")
}

func TestApp_StatelessBeforeStateful(t *testing.T) {
	var log []string
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	app.UseSystem(System(func() { log = append(log, "stateful") }).InStage(Update).InState(OnExecute(StateRunning))).
		UseSystem(System(func() { log = append(log, "always") }).InStage(Update).RunAlways()).
		UseSystem(System(func() { log = append(log, "pre") }).InStage(PreUpdate).RunAlways())

	app.Step()
	assert.Equal(t, []string{"pre", "always", "stateful"}, log)
}

func TestApp_CommandsFlushBetweenStages(t *testing.T) {
	type Marker struct{}

	seen := -1
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(cmd *Commands) {
		cmd.AddEntity(&Marker{})
		assert.Zero(t, MakeQuery1[Marker](cmd).Count(), "additions are buffered")
	}).InStage(PreUpdate)).
		UseSystem(System(func(cmd *Commands) {
			seen = MakeQuery1[Marker](cmd).Count()
		}).InStage(Update))

	app.Step()
	assert.Equal(t, 1, seen)
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(r *MockResource1) {}).InStage(Update))

	assert.Panics(t, app.Step)
}
