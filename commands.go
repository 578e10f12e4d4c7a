package connectors

// Commands is the handle systems use to mutate the world. Entity and component
// changes are buffered and applied when the current stage finishes.
type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// State returns the state the app is currently executing.
func (cmd *Commands) State() State {
	return cmd.app.state
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEntity reserves an id immediately; the entity becomes visible to
// queries after the next flush.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingComponents{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingComponents{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// HasEntity reports whether the entity exists in the world (already flushed).
func (cmd *Commands) HasEntity(entityId EntityId) bool {
	return cmd.app.ecs.hasEntity(entityId)
}

func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]
	r := arch.entities[entityId]

	var res []any
	for _, compId := range arch.key {
		res = append(res, reflectSliceGet(arch.componentData[compId], int(r)).Interface())
	}
	return res
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// Quit moves a stateful app to its final state at the end of the frame.
func (cmd *Commands) Quit() {
	cmd.app.changeState(cmd.app.finalState)
}
