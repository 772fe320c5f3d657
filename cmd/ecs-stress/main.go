package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"

	"github.com/plus3/forge/ecs"
)

const (
	componentCount = 5
	systemCount    = 3
)

type Position struct{ X, Y, Z float32 }
type Velocity struct{ DX, DY, DZ float32 }
type Health struct{ Current, Max int }
type Lifetime struct{ Remaining float64 }
type Spin struct{ Rate float32 }

func registerComponents() {
	ecs.Register[Position]()
	ecs.Register[Velocity]()
	ecs.Register[Health]()
	ecs.Register[Lifetime]()
	ecs.Register[Spin]()
}

// spawnRandomEntity creates an entity with 1 to 5 random components, so the
// population spreads across many archetypes.
func spawnRandomEntity(w *ecs.World, rng *rand.Rand) error {
	pool := []any{
		Position{X: rng.Float32() * 100, Y: rng.Float32() * 100},
		Velocity{DX: rng.Float32() - 0.5, DY: rng.Float32() - 0.5},
		Health{Current: 100, Max: 100},
		Lifetime{Remaining: rng.Float64() * 30},
		Spin{Rate: rng.Float32()},
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	_, err := ecs.SpawnWith(w, pool[:rng.Intn(len(pool))+1]...)
	return err
}

// movementSystem integrates positions; the hot read/write path.
type movementSystem struct{}

func (movementSystem) Update(f *ecs.Frame) error {
	it, err := f.World.Query(ecs.Write[Position](), ecs.Read[Velocity]())
	if err != nil {
		return err
	}
	dt := float32(f.Dt)
	for it.Next() {
		p := ecs.Mut[Position](it)
		v := ecs.Value[Velocity](it)
		p.X += v.DX * dt
		p.Y += v.DY * dt
	}
	return nil
}

// lifetimeSystem despawns expired entities through the command buffer,
// keeping structural churn on the archetypes constant.
type lifetimeSystem struct{}

func (lifetimeSystem) Update(f *ecs.Frame) error {
	it, err := f.World.Query(ecs.Write[Lifetime]())
	if err != nil {
		return err
	}
	for it.Next() {
		l := ecs.Mut[Lifetime](it)
		l.Remaining -= f.Dt
		if l.Remaining <= 0 {
			f.Commands.Despawn(it.Entity())
		}
	}
	return nil
}

// churnSystem replaces despawned entities so the population stays level.
type churnSystem struct {
	target int
	rng    *rand.Rand
}

func (s *churnSystem) Update(f *ecs.Frame) error {
	deficit := s.target - f.World.Stats().Entities
	for i := 0; i < deficit; i++ {
		if err := spawnRandomEntity(f.World, s.rng); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The entity population to create and maintain.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a profile: cpu or mem.")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		log.Fatalf("unknown profile mode %q", *profileMode)
	}

	log.Println("Starting ECS stress test...")

	rng := rand.New(rand.NewSource(1))
	registerComponents()
	world := ecs.NewWorld()
	scheduler := ecs.NewScheduler(world)
	scheduler.Register(movementSystem{})
	scheduler.Register(lifetimeSystem{})
	scheduler.Register(&churnSystem{target: *entityCount, rng: rng})

	log.Printf("Populating world with %d entities...\n", *entityCount)
	for i := 0; i < *entityCount; i++ {
		if err := spawnRandomEntity(world, rng); err != nil {
			log.Fatalf("Failed to populate world: %v", err)
		}
	}
	log.Println("Population complete.")

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     componentCount,
		Systems:        systemCount,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := scheduler.Once(deltaTime.Seconds()); err != nil {
				log.Fatalf("Update failed: %v", err)
			}
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.Archetypes = world.Stats().Archetypes
	report.SystemStats = scheduler.Stats()
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
