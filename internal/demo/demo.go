// Package demo is a small physics sandbox: balls drop into an arena,
// space spawns another ball and backspace removes the oldest one.
package demo

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/prom"
	"github.com/oliverbestmann/prom/physics"
	"github.com/oliverbestmann/prom/world"
	"go.uber.org/zap"
)

type Arena struct {
	Width, Height float64
}

type Ball struct {
	world.Component[Ball]
	Radius float64
	Color  color.RGBA
}

type Wall struct {
	world.Component[Wall]
	A, B cp.Vector
}

// Bounces counts the contacts reported by the simulation.
type Bounces struct {
	Count int
}

// Balls keeps track of the labels of all balls, oldest first.
type Balls struct {
	next  int
	alive []string
}

func (b *Balls) Len() int {
	return len(b.alive)
}

type Plugin struct {
	Title string
	Arena Arena

	// Balls to spawn at start
	Balls int

	// SpawnInterval spawns another ball periodically if positive.
	// It requires the prom.ClockPlugin.
	SpawnInterval time.Duration

	// Seed of the random placement, zero picks a random seed
	Seed uint64
}

func (p Plugin) ApplyTo(app *prom.App) {
	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	app.InsertResource(p.Arena)
	app.InsertResource(Bounces{})
	app.InsertResource(Balls{})
	app.InsertResource(*rand.New(rand.NewPCG(seed, seed)))

	app.InsertSystem(prom.PhaseStart, func(host *prom.Host) {
		if p.Title != "" {
			host.EventLoop().SetTitle(p.Title)
		}
	})

	app.InsertSystem(prom.PhaseStart.Offset(0.1), spawnArenaSystem)

	app.InsertSystem(prom.PhaseStart.Offset(0.2), func(ww prom.WriteWorld, arena prom.Res[Arena], balls prom.ResMut[Balls], rng prom.ResMut[rand.Rand]) {
		for range p.Balls {
			spawnBall(ww, arena.Get(), balls.Get(), rng.Get())
		}
	})

	app.InsertSystem(prom.PhaseTick.Offset(0.1), inputSystem)

	if p.SpawnInterval > 0 {
		app.InsertSystem(prom.PhaseTick.Offset(0.15), autoSpawnSystem(p.SpawnInterval))
	}

	app.InsertSystem(prom.PhaseTick.Offset(0.2), logResizeSystem)
	app.InsertSystem(physics.WriteBackPhase.Offset(0.1), countBouncesSystem)
	app.InsertSystem(physics.WriteBackPhase.Offset(0.2), cullBallsSystem)
	app.InsertSystem(prom.PhaseEnd, summarySystem)
}

func spawnArenaSystem(ww prom.WriteWorld, arena prom.Res[Arena]) {
	w, h := arena.Get().Width, arena.Get().Height

	walls := map[string]Wall{
		"floor":      {A: cp.Vector{X: 0, Y: h}, B: cp.Vector{X: w, Y: h}},
		"wall-left":  {A: cp.Vector{X: 0, Y: 0}, B: cp.Vector{X: 0, Y: h}},
		"wall-right": {A: cp.Vector{X: w, Y: 0}, B: cp.Vector{X: w, Y: h}},
	}

	for label, wall := range walls {
		body := physics.StaticBody(physics.Segment{A: wall.A, B: wall.B, Radius: 2})
		body.Elasticity = 0.8

		ww.SpawnLabeled(label, wall, body, physics.Position{})
	}
}

func spawnBall(ww prom.WriteWorld, arena *Arena, balls *Balls, rng *rand.Rand) world.Entity {
	radius := 8 + rng.Float64()*12

	ball := Ball{
		Radius: radius,
		Color: color.RGBA{
			R: uint8(64 + rng.IntN(192)),
			G: uint8(64 + rng.IntN(192)),
			B: uint8(64 + rng.IntN(192)),
			A: 255,
		},
	}

	position := cp.Vector{
		X: radius + rng.Float64()*(arena.Width-2*radius),
		Y: radius + rng.Float64()*arena.Height/4,
	}

	body := physics.DynamicBody(physics.Circle{Radius: radius}, radius*radius)
	body.Elasticity = 0.8

	label := fmt.Sprintf("ball-%d", balls.next)
	balls.next += 1
	balls.alive = append(balls.alive, label)

	return ww.SpawnLabeled(label, ball, body,
		physics.Position{Vector: position},
		physics.Velocity{Vector: cp.Vector{X: (rng.Float64() - 0.5) * 200}},
	)
}

func inputSystem(
	keys prom.EventReader[prom.KeyEvent],
	ww prom.WriteWorld,
	arena prom.Res[Arena],
	balls prom.ResMut[Balls],
	rng prom.ResMut[rand.Rand],
	log prom.Log,
) {
	for key := range keys.Read() {
		if !key.Pressed {
			continue
		}

		switch key.Key {
		case "Space":
			entity := spawnBall(ww, arena.Get(), balls.Get(), rng.Get())
			log.Debug("Ball spawned", zap.Object("entity", entity))

		case "Backspace", "Backspace2", "Delete":
			removeOldestBall(ww, balls.Get(), log)
		}
	}
}

func autoSpawnSystem(interval time.Duration) prom.AnySystem {
	return func(
		clock prom.Res[prom.Clock],
		timer *prom.Local[prom.Timer],
		ww prom.WriteWorld,
		arena prom.Res[Arena],
		balls prom.ResMut[Balls],
		rng prom.ResMut[rand.Rand],
	) {
		if timer.Value.Duration() == 0 {
			timer.Value = prom.NewTimer(interval, prom.TimerRepeating)
		}

		for range timer.Value.Tick(clock.Get().Delta).TimesFinished() {
			spawnBall(ww, arena.Get(), balls.Get(), rng.Get())
		}
	}
}

func removeOldestBall(ww prom.WriteWorld, balls *Balls, log prom.Log) {
	for len(balls.alive) > 0 {
		label := balls.alive[0]
		balls.alive = balls.alive[1:]

		entity, ok := ww.Lookup(label)
		if !ok {
			// culled already
			continue
		}

		log.Debug("Removing ball", zap.String("label", label))
		ww.DeferDespawn(entity)

		return
	}
}

func logResizeSystem(events prom.EventReader[prom.ResizeEvent], log prom.Log) {
	for ev := range events.Read() {
		log.Debug("Screen resized", zap.Int("width", ev.Width), zap.Int("height", ev.Height))
	}
}

func countBouncesSystem(contacts prom.EventReader[physics.Contact], bounces prom.ResMut[Bounces]) {
	bounces.Get().Count += contacts.Len()
}

// cullBallsSystem removes balls that escaped the arena.
func cullBallsSystem(ww prom.WriteWorld, arena prom.Res[Arena], balls prom.ResMut[Balls]) {
	limit := arena.Get().Height * 2

	for item := range world.Query2[Ball, physics.Position](ww.World()) {
		if item.Second.Y < limit {
			continue
		}

		ww.DeferDespawn(item.Entity)

		if label, ok := ww.LabelOf(item.Entity); ok {
			balls.Get().alive = slices.DeleteFunc(balls.Get().alive, func(l string) bool {
				return l == label
			})
		}
	}
}

func summarySystem(bounces prom.Res[Bounces], balls prom.Res[Balls], fps prom.ResOption[prom.FPS], log prom.Log) {
	fields := []zap.Field{
		zap.Int("bounces", bounces.Get().Count),
		zap.Int("balls", balls.Get().Len()),
	}

	if fps.Value != nil {
		fields = append(fields, zap.Float64("fps", fps.Value.Value))
	}

	log.Info("Demo finished", fields...)
}
