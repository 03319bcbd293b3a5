package ecs_test

import (
	"fmt"

	"github.com/novaecs/novaecs"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }

func Example() {
	world := ecs.NewWorld()

	position := ecs.RegisterComponent[Position](world)
	velocity := ecs.RegisterComponent[Velocity](world)

	e := world.CreateEntity(true)
	position.Set(world, e, Position{X: 0, Y: 0})
	velocity.Set(world, e, Velocity{X: 3, Y: 4})

	q := ecs.Q2[Position, Velocity](world, position, velocity)
	q.ForEach(func(e ecs.Entity, pos *Position, vel *Velocity) bool {
		pos.X += vel.X
		pos.Y += vel.Y
		return true
	})

	result := position.Get(world, e)
	fmt.Println(result.X, result.Y)
	// Output: 3 4
}
