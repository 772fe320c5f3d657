package ecs_test

import (
	"fmt"

	"github.com/plus3/forge/ecs"
)

type Position struct{ X, Y float32 }
type Motion struct{ DX, DY float32 }
type Frozen struct{}

// ExampleWorld_Query demonstrates the core loop: spawn entities, query a
// tuple shape, and write through the iterator.
func ExampleWorld_Query() {
	ecs.Register[Position]()
	ecs.Register[Motion]()

	w := ecs.NewWorld()
	w1, _ := ecs.SpawnWith(w, Position{X: 0, Y: 0}, Motion{DX: 1, DY: 0})
	w2, _ := ecs.SpawnWith(w, Position{X: 10, Y: 10}, Motion{DX: 0, DY: 1})
	_, _ = ecs.SpawnWith(w, Position{X: 99, Y: 99}) // no Motion, not visited

	it, _ := w.Query(ecs.Write[Position](), ecs.Read[Motion]())
	for it.Next() {
		p := ecs.Mut[Position](it)
		m := ecs.Value[Motion](it)
		p.X += m.DX
		p.Y += m.DY
	}

	for _, e := range []ecs.Entity{w1, w2} {
		p, _ := ecs.Get[Position](w, e)
		fmt.Printf("(%.0f, %.0f)\n", p.X, p.Y)
	}

	// Output:
	// (1, 0)
	// (10, 11)
}

// ExampleWorld_Query_filters demonstrates narrowing a query with tag and
// change-detection terms.
func ExampleWorld_Query_filters() {
	ecs.Register[Position]()
	ecs.Register[Motion]()
	ecs.Register[Frozen]()

	w := ecs.NewWorld()
	_, _ = ecs.SpawnWith(w, Position{X: 1}, Motion{DX: 1})
	_, _ = ecs.SpawnWith(w, Position{X: 2}, Motion{DX: 1}, Frozen{})

	it, _ := w.Query(ecs.Read[Position](), ecs.With[Motion](), ecs.Without[Frozen]())
	for it.Next() {
		fmt.Printf("movable at x=%.0f\n", ecs.Value[Position](it).X)
	}

	// Output:
	// movable at x=1
}

// ExampleCommands demonstrates deferring structural changes recorded while
// a query holds the world locked.
func ExampleCommands() {
	ecs.Register[Position]()

	w := ecs.NewWorld()
	_, _ = ecs.SpawnWith(w, Position{X: -5})
	_, _ = ecs.SpawnWith(w, Position{X: 5})

	cmd := ecs.NewCommands()
	it, _ := w.Query(ecs.Read[Position]())
	for it.Next() {
		if ecs.Value[Position](it).X < 0 {
			cmd.Despawn(it.Entity())
		}
	}
	_ = cmd.Flush(w)

	fmt.Println("entities:", w.Stats().Entities)

	// Output:
	// entities: 1
}

// ExampleEntity_Generation demonstrates stale-handle detection after a
// slot is reused.
func ExampleEntity_Generation() {
	ecs.Register[Position]()

	w := ecs.NewWorld()
	old, _ := ecs.SpawnWith(w, Position{X: 1})
	_ = w.Despawn(old)
	fresh, _ := ecs.SpawnWith(w, Position{X: 2})

	fmt.Println("same index:", old.Index() == fresh.Index())
	fmt.Println("old handle live:", w.Contains(old))
	fmt.Println("new handle live:", w.Contains(fresh))

	// Output:
	// same index: true
	// old handle live: false
	// new handle live: true
}
