/*
Package ecs provides an archetype-based Entity-Component-System runtime for
simulations that iterate, mutate, and query over many heterogeneous records
per frame with predictable cost.

Core Concepts:

  - Entity: a packed 48-bit handle (slot + generation) identifying a record.
  - Component: a plain Go value attached to an entity, stored column-wise
    alongside every other entity sharing its exact component set.
  - Archetype: the set of entities sharing one exact component signature,
    storing each component type in its own dense column.
  - Query: a composable, cached plan over archetypes, with optional change
    filtering, tag filtering, chunked iteration, and delta subscriptions.
  - CommandBuffer: deferred structural mutation, flushed in a fixed phase
    order so systems never observe a half-applied change mid-iteration.
  - Scheduler: a fixed-timestep accumulator driving user-registered systems
    across four ordered stages per simulation step.

Basic Usage:

	world := ecs.NewWorld()

	position := ecs.RegisterComponent[Position](world)
	velocity := ecs.RegisterComponent[Velocity](world)

	e := world.CreateEntity(true)
	position.Set(world, e, Position{X: 0, Y: 0})
	velocity.Set(world, e, Velocity{X: 1, Y: 0})

	q := ecs.Q2[Position, Velocity](world, position, velocity)
	q.ForEach(func(e ecs.Entity, pos *Position, vel *Velocity) bool {
		pos.X += vel.X
		pos.Y += vel.Y
		return true
	})

Systems are registered on the world's scheduler and run in fixed-timestep
sub-steps:

	world.Scheduler().Add(ecs.SystemFunc(func(ctx *ecs.StepContext) {
		q.ForEach(func(e ecs.Entity, pos *Position, vel *Velocity) bool {
			pos.X += vel.X * ctx.Dt
			return true
		})
	}), ecs.Update)

	world.Scheduler().Tick(frameDt, nil)
*/
package ecs
