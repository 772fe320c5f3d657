package ecs_test

import (
	"testing"

	"github.com/plus3/forge/ecs"
)

func BenchmarkSpawn(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.SpawnWith(w, Transform{X: 1, Y: 2}, Velocity{DX: 0.5})
	}
}

func BenchmarkSpawnWideBundle(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.SpawnWith(w,
			Transform{X: 1, Y: 2},
			Velocity{DX: 0.5},
			Health{HP: 100},
			Label{Value: "entity"},
		)
	}
}

func BenchmarkDespawn(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	entities := make([]ecs.Entity, b.N)
	for i := 0; i < b.N; i++ {
		entities[i], _ = ecs.SpawnWith(w, Transform{X: 1}, Velocity{DX: 1})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.Despawn(entities[i])
	}
}

func BenchmarkGet(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	e, _ := ecs.SpawnWith(w, Transform{X: 1}, Velocity{DX: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.Get[Transform](w, e)
	}
}

func BenchmarkAddRemoveTransition(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	e, _ := ecs.SpawnWith(w, Transform{X: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Add(w, e, Health{HP: 1})
		_, _, _ = ecs.Remove[Health](w, e)
	}
}

func BenchmarkQueryIteration(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	for i := 0; i < 10000; i++ {
		_, _ = ecs.SpawnWith(w, Transform{X: float32(i)}, Velocity{DX: 1})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it, _ := w.Query(ecs.Write[Transform](), ecs.Read[Velocity]())
		for it.Next() {
			ecs.Mut[Transform](it).X += ecs.Value[Velocity](it).DX
		}
	}
}

func BenchmarkQueryChangedFilter(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	for i := 0; i < 10000; i++ {
		_, _ = ecs.SpawnWith(w, Health{HP: i})
	}
	_ = w.AdvanceTick()
	anchor := w.CurrentTick()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it, _ := w.Query(ecs.Changed[Health](anchor))
		for it.Next() {
		}
	}
}

func BenchmarkSnapshot(b *testing.B) {
	registerTestComponents()
	w := ecs.NewWorld()

	for i := 0; i < 1000; i++ {
		_, _ = ecs.SpawnWith(w, Transform{X: float32(i)}, Health{HP: i})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = w.Snapshot()
	}
}
