package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Map(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	ecs := MakeEcs()
	ecs.addEntity(Comp1{a: 1})                                 // comp1 only                       -- shouldn't match
	id2 := ecs.addEntity(Comp1{a: 2}, Comp2{b: 1.37})          // comp1 & comp2                    -- should match
	id3 := ecs.addEntity(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // comp1 & comp2 + something extra  -- should match
	ecs.addEntity(Comp1{a: 4}, Comp3{})                        // comp1 + something extra          -- shouldn't match
	ecs.addEntity(Comp2{b: 3.14})                              // comp2 only                       -- shouldn't match

	query := Query2[Comp1, Comp2]{ecs: &ecs}

	var ids []EntityId
	var as []Comp1
	var bs []Comp2
	query.Map(func(eid EntityId, comp1 *Comp1, comp2 *Comp2) bool {
		ids = append(ids, eid)
		as = append(as, *comp1)
		bs = append(bs, *comp2)
		return true
	})

	assert.Equal(t, []EntityId{id2, id3}, ids)
	assert.Equal(t, []Comp1{{a: 2}, {a: 3}}, as)
	assert.Equal(t, []Comp2{{b: 1.37}, {b: 4.20}}, bs)
}

func TestQuery_CreationOrderAcrossArchetypes(t *testing.T) {
	type Tag struct{ n int }
	type Extra struct{}

	ecs := MakeEcs()
	var want []int
	for i := range 6 {
		if i%2 == 0 {
			ecs.addEntity(Tag{i}, Extra{})
		} else {
			ecs.addEntity(Tag{i})
		}
		want = append(want, i)
	}

	var got []int
	Query1[Tag]{ecs: &ecs}.Map(func(eid EntityId, tag *Tag) bool {
		got = append(got, tag.n)
		return true
	})
	assert.Equal(t, want, got)
}

func TestQuery_Optional(t *testing.T) {
	type Body struct{ n int }
	type Mesh struct{ name string }

	ecs := MakeEcs()
	ecs.addEntity(Body{1})
	ecs.addEntity(Body{2}, Mesh{"logo"})

	var meshes []*Mesh
	Query2[Body, Mesh]{ecs: &ecs}.Map(func(eid EntityId, b *Body, m *Mesh) bool {
		meshes = append(meshes, m)
		return true
	}, Mesh{})

	if assert.Len(t, meshes, 2) {
		assert.Nil(t, meshes[0])
		assert.Equal(t, "logo", meshes[1].name)
	}
}

func TestQuery_StopsWhenCallbackReturnsFalse(t *testing.T) {
	type Comp struct{}

	ecs := MakeEcs()
	for range 5 {
		ecs.addEntity(Comp{})
	}

	visited := 0
	Query1[Comp]{ecs: &ecs}.Map(func(eid EntityId, c *Comp) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
	assert.Equal(t, 5, Query1[Comp]{ecs: &ecs}.Count())
}

func TestQuery_WritesThroughPointer(t *testing.T) {
	type Counter struct{ n int }

	ecs := MakeEcs()
	eid := ecs.addEntity(Counter{})
	query := Query1[Counter]{ecs: &ecs}
	query.Map(func(_ EntityId, c *Counter) bool {
		c.n = 7
		return true
	})

	query.Map(func(id EntityId, c *Counter) bool {
		assert.Equal(t, eid, id)
		assert.Equal(t, 7, c.n)
		return true
	})
}
