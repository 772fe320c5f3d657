package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Frame is the per-update context handed to each system: the world, a
// command buffer for deferred structural changes, and the delta time the
// driver measured.
type Frame struct {
	Dt       float64
	World    *World
	Commands *Commands
}

// System is one unit of behavior run by the Scheduler. Systems read and
// write the world through queries and direct access, and queue structural
// changes on the frame's Commands. Errors surface to the driver; the
// scheduler never retries or swallows them.
type System interface {
	Update(f *Frame) error
}

// SystemStats holds execution timing for one registered system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemEntry struct {
	system System
	stats  SystemStats
}

// Scheduler runs systems strictly in registration order, one at a time.
// After each system it flushes that system's commands and advances the
// world tick, so change detection sees exactly one tick per system run.
// Parallel execution is a layer above this core, not provided here.
type Scheduler struct {
	world   *World
	systems []systemEntry
}

// NewScheduler creates a scheduler driving the given world.
func NewScheduler(w *World) *Scheduler {
	return &Scheduler{world: w}
}

// Register appends a system to the run order.
func (s *Scheduler) Register(system System) {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.systems = append(s.systems, systemEntry{
		system: system,
		stats: SystemStats{
			Name:        t.Name(),
			MinDuration: time.Duration(1<<63 - 1),
		},
	})
}

// Once runs every system once with the given delta time.
func (s *Scheduler) Once(dt float64) error {
	for i := range s.systems {
		entry := &s.systems[i]
		frame := &Frame{
			Dt:       dt,
			World:    s.world,
			Commands: NewCommands(),
		}

		start := time.Now()
		err := entry.system.Update(frame)
		d := time.Since(start)

		entry.stats.ExecutionCount++
		entry.stats.LastDuration = d
		entry.stats.TotalDuration += d
		if d < entry.stats.MinDuration {
			entry.stats.MinDuration = d
		}
		if d > entry.stats.MaxDuration {
			entry.stats.MaxDuration = d
		}

		if err != nil {
			return fmt.Errorf("system %s: %w", entry.stats.Name, err)
		}
		if err := frame.Commands.Flush(s.world); err != nil {
			return fmt.Errorf("system %s: %w", entry.stats.Name, err)
		}
		if err := s.world.AdvanceTick(); err != nil {
			return fmt.Errorf("system %s left a query open: %w", entry.stats.Name, err)
		}
	}
	return nil
}

// Run executes all systems repeatedly at the given interval until the
// context is cancelled or a system fails.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// Stats returns a copy of the per-system execution statistics, in
// registration order.
func (s *Scheduler) Stats() []SystemStats {
	out := make([]SystemStats, len(s.systems))
	for i := range s.systems {
		st := s.systems[i].stats
		if st.ExecutionCount > 0 {
			st.AvgDuration = st.TotalDuration / time.Duration(st.ExecutionCount)
		}
		out[i] = st
	}
	return out
}
