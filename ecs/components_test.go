package ecs_test

import "github.com/plus3/forge/ecs"

// Shared test component types.
type Transform struct {
	X, Y, Z float32
}

type Velocity struct {
	DX, DY, DZ float32
}

type Health struct {
	HP int
}

type Label struct {
	Value string
}

type Inventory struct {
	Items []string
}

type Marker struct{}

// Ref is pointer-shaped: a single pointer word, which the runtime stores
// directly in an interface's data word instead of boxing it.
type Ref struct {
	Target *int
}

// unregistered is deliberately never registered.
type unregistered struct {
	N int
}

func registerTestComponents() {
	ecs.Register[Transform]()
	ecs.Register[Velocity]()
	ecs.Register[Health]()
	ecs.Register[Label]()
	ecs.Register[Inventory]()
	ecs.Register[Marker]()
	ecs.Register[Ref]()
}
