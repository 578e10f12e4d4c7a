package connectors

import (
	"reflect"
	"slices"
)

// Queries visit matching entities in creation order. Components passed as
// optionals may be missing, in which case the callback receives nil for them.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }
type Query4[A, B, C, D any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}

type queryRow struct {
	eid  EntityId
	arch *archetype
	r    row
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, qr := range q.ecs.matchRows(opt, id1) {
		if !m(qr.eid, componentPtr[A](qr, id1)) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, qr := range q.ecs.matchRows(opt, id1, id2) {
		if !m(qr.eid, componentPtr[A](qr, id1), componentPtr[B](qr, id2)) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	id3 := identifyComponent[C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, qr := range q.ecs.matchRows(opt, id1, id2, id3) {
		if !m(qr.eid, componentPtr[A](qr, id1), componentPtr[B](qr, id2), componentPtr[C](qr, id3)) {
			return
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	id3 := identifyComponent[C](q.ecs)
	id4 := identifyComponent[D](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, qr := range q.ecs.matchRows(opt, id1, id2, id3, id4) {
		if !m(qr.eid, componentPtr[A](qr, id1), componentPtr[B](qr, id2), componentPtr[C](qr, id3), componentPtr[D](qr, id4)) {
			return
		}
	}
}

// Count returns the number of entities the query would visit.
func (q Query1[A]) Count() int {
	return len(q.ecs.matchRows(nil, identifyComponent[A](q.ecs)))
}

// matchRows collects every entity whose archetype holds all ids that are not
// optional, sorted by entity id.
func (ecs *Ecs) matchRows(opt set[componentId], ids ...componentId) []queryRow {
	var rows []queryRow
	for _, arch := range ecs.archetypes {
		matches := true
		for _, id := range ids {
			if _, ok := arch.componentData[id]; ok {
				continue
			}
			if _, ok := opt[id]; ok {
				continue
			}
			matches = false
			break
		}
		if !matches {
			continue
		}
		for eid, r := range arch.entities {
			rows = append(rows, queryRow{eid: eid, arch: arch, r: r})
		}
	}
	slices.SortFunc(rows, func(a, b queryRow) int {
		switch {
		case a.eid < b.eid:
			return -1
		case a.eid > b.eid:
			return 1
		}
		return 0
	})
	return rows
}

func componentPtr[T any](qr queryRow, id componentId) *T {
	data, ok := qr.arch.componentData[id]
	if !ok {
		return nil
	}
	return &data.([]T)[qr.r]
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}

func identifyComponent[A any](ecs *Ecs) componentId {
	var a A
	return ecs.getComponentId(reflect.TypeOf(a))
}
