package connectors

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type PhysicsModule struct {
	World *PhysicsWorld
}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	world := m.World
	if world == nil {
		world = NewPhysicsWorld()
	}
	cmd.AddResources(world)

	app.UseSystem(
		System(PhysicsSystem).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
}

type bodyInfo struct {
	eid        EntityId
	tr         *TransformComponent
	rb         *RigidBodyComponent
	col        *ColliderComponent
	invMass    float32
	invInertia float32
}

type contact struct {
	a, b   int
	normal mgl32.Vec3
	depth  float32
}

// PhysicsSystem advances every body by the clamped frame delta.
func PhysicsSystem(cmd *Commands, t *Time, world *PhysicsWorld, grid *SpatialHashGrid) {
	if world.Paused {
		return
	}
	dt := ClampDelta(t.DeltaSeconds(), world.MaxStep)
	if dt <= 0 {
		return
	}

	var bodies []bodyInfo
	MakeQuery3[TransformComponent, RigidBodyComponent, ColliderComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, rb *RigidBodyComponent, col *ColliderComponent) bool {
		if rb.IsDynamic() && rb.Mass <= 0 {
			rb.Mass = SphereMass(col.Radius, col.Density)
		}
		info := bodyInfo{eid: eid, tr: tr, rb: rb, col: col, invMass: rb.InvMass()}
		if info.invMass > 0 {
			info.invInertia = sphereInvInertia(rb.Mass, col.Radius)
		}
		bodies = append(bodies, info)
		return true
	})

	stepBodies(world, grid, bodies, dt)
}

// stepBodies runs one simulation step over an already collected body set.
func stepBodies(world *PhysicsWorld, grid *SpatialHashGrid, bodies []bodyInfo, dt float32) {
	integrateVelocities(world, bodies, dt)

	contacts := findContacts(grid, bodies)
	iterations := max(world.SolverIterations, 1)
	for range iterations {
		for i := range contacts {
			solveContactVelocity(bodies, &contacts[i])
		}
	}

	integratePositions(bodies, dt)
	correctPositions(world, grid, bodies)
}

func integrateVelocities(world *PhysicsWorld, bodies []bodyInfo, dt float32) {
	for i := range bodies {
		b := &bodies[i]
		switch b.rb.Type {
		case BodyKinematicPosition:
			if next, ok := b.rb.NextKinematicTranslation(); ok {
				b.rb.Velocity = next.Sub(b.tr.Position).Mul(1 / dt)
			} else {
				b.rb.Velocity = mgl32.Vec3{}
			}
			b.rb.AngularVelocity = mgl32.Vec3{}
		case BodyDynamic:
			if b.rb.GravityScale != 0 {
				b.rb.Velocity = b.rb.Velocity.Add(world.Gravity.Mul(b.rb.GravityScale * dt))
			}
			b.rb.Velocity = b.rb.Velocity.Mul(1 / (1 + dt*b.rb.LinearDamping))
			b.rb.AngularVelocity = b.rb.AngularVelocity.Mul(1 / (1 + dt*b.rb.AngularDamping))
		default:
			b.rb.Velocity = mgl32.Vec3{}
			b.rb.AngularVelocity = mgl32.Vec3{}
		}
	}
}

// findContacts uses the spatial grid as broad phase and keeps every
// overlapping pair that involves at least one dynamic body.
func findContacts(grid *SpatialHashGrid, bodies []bodyInfo) []contact {
	index := make(map[EntityId]int, len(bodies))
	grid.Clear()
	for i := range bodies {
		b := &bodies[i]
		index[b.eid] = i
		grid.Insert(b.eid, sphereAABB(b.tr.Position, b.col.Radius))
	}

	var contacts []contact
	for i := range bodies {
		a := &bodies[i]
		for _, other := range grid.QueryRadius(a.tr.Position, a.col.Radius) {
			j, ok := index[other]
			if !ok || j <= i {
				continue
			}
			b := &bodies[j]
			if a.invMass == 0 && b.invMass == 0 {
				continue
			}
			if c, ok := sphereContact(bodies, i, j); ok {
				contacts = append(contacts, c)
			}
		}
	}
	return contacts
}

func sphereContact(bodies []bodyInfo, i, j int) (contact, bool) {
	a, b := &bodies[i], &bodies[j]
	delta := b.tr.Position.Sub(a.tr.Position)
	dist := delta.Len()
	radii := a.col.Radius + b.col.Radius
	if dist >= radii {
		return contact{}, false
	}
	normal := mgl32.Vec3{0, 1, 0}
	if dist > 1e-6 {
		normal = delta.Mul(1 / dist)
	}
	return contact{a: i, b: j, normal: normal, depth: radii - dist}, true
}

func solveContactVelocity(bodies []bodyInfo, c *contact) {
	a, b := &bodies[c.a], &bodies[c.b]
	n := c.normal
	ra := n.Mul(a.col.Radius)
	rb := n.Mul(-b.col.Radius)

	relVel := func() mgl32.Vec3 {
		va := a.rb.Velocity.Add(a.rb.AngularVelocity.Cross(ra))
		vb := b.rb.Velocity.Add(b.rb.AngularVelocity.Cross(rb))
		return vb.Sub(va)
	}

	vn := relVel().Dot(n)
	if vn >= 0 {
		return
	}
	invMassSum := a.invMass + b.invMass
	if invMassSum == 0 {
		return
	}

	restitution := (a.col.Restitution + b.col.Restitution) / 2
	jn := -(1 + restitution) * vn / invMassSum
	impulse := n.Mul(jn)
	applyBodyImpulse(a, b, impulse, ra, rb)

	vr := relVel()
	tangent := vr.Sub(n.Mul(vr.Dot(n)))
	if tangent.Len() < 1e-6 {
		return
	}
	tangent = tangent.Normalize()

	k := invMassSum + a.invInertia*a.col.Radius*a.col.Radius + b.invInertia*b.col.Radius*b.col.Radius
	jt := -vr.Dot(tangent) / k
	mu := (a.col.Friction + b.col.Friction) / 2
	limit := mu * jn
	jt = mgl32.Clamp(jt, -limit, limit)
	applyBodyImpulse(a, b, tangent.Mul(jt), ra, rb)
}

// applyBodyImpulse applies p to b and -p to a at the given contact arms.
func applyBodyImpulse(a, b *bodyInfo, p, ra, rb mgl32.Vec3) {
	if a.invMass > 0 {
		a.rb.Velocity = a.rb.Velocity.Sub(p.Mul(a.invMass))
		a.rb.AngularVelocity = a.rb.AngularVelocity.Sub(ra.Cross(p).Mul(a.invInertia))
	}
	if b.invMass > 0 {
		b.rb.Velocity = b.rb.Velocity.Add(p.Mul(b.invMass))
		b.rb.AngularVelocity = b.rb.AngularVelocity.Add(rb.Cross(p).Mul(b.invInertia))
	}
}

func integratePositions(bodies []bodyInfo, dt float32) {
	for i := range bodies {
		b := &bodies[i]
		switch b.rb.Type {
		case BodyKinematicPosition:
			if next, ok := b.rb.NextKinematicTranslation(); ok {
				b.tr.Position = next
				b.rb.hasNext = false
			}
		case BodyDynamic:
			displacement := b.rb.Velocity.Mul(dt)
			if l := float64(displacement.Len()); math.IsNaN(l) || math.IsInf(l, 0) {
				b.rb.Velocity = mgl32.Vec3{}
				b.rb.AngularVelocity = mgl32.Vec3{}
				continue
			}
			b.tr.Position = b.tr.Position.Add(displacement)
			b.tr.Rotation = integrateRotation(b.tr.Rotation, b.rb.AngularVelocity, dt)
		}
	}
}

func integrateRotation(q mgl32.Quat, w mgl32.Vec3, dt float32) mgl32.Quat {
	if q.Len() == 0 {
		q = mgl32.QuatIdent()
	}
	if w.Len() == 0 {
		return q
	}
	spin := mgl32.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * dt)
	return q.Add(spin).Normalize()
}

func correctPositions(world *PhysicsWorld, grid *SpatialHashGrid, bodies []bodyInfo) {
	for _, c := range findContacts(grid, bodies) {
		a, b := &bodies[c.a], &bodies[c.b]
		invMassSum := a.invMass + b.invMass
		penetration := c.depth - world.Slop
		if penetration <= 0 || invMassSum == 0 {
			continue
		}
		correction := c.normal.Mul(penetration * world.Correction / invMassSum)
		a.tr.Position = a.tr.Position.Sub(correction.Mul(a.invMass))
		b.tr.Position = b.tr.Position.Add(correction.Mul(b.invMass))
	}
}

func sphereAABB(center mgl32.Vec3, radius float32) AABBComponent {
	r := mgl32.Vec3{radius, radius, radius}
	return AABBComponent{Min: center.Sub(r), Max: center.Add(r)}
}
