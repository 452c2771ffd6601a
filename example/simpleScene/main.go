package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/akmonengine/kinema"
	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a ground slab, a tilted cube and a column of balls
func SetupScene(world *kinema.World) (ground, cube int) {
	ground = world.AddBody(actor.NewBox(mgl64.Vec3{0, -0.5, 0}, mgl64.Vec3{20, 0.5, 20}), 0, 0, actor.BodyData{})

	cubeShape := actor.NewOrientedBox(
		mgl64.Vec3{-5, 5, -5},
		mgl64.Vec3{1.5, 1.5, 1.5},
		mgl64.QuatRotate(mgl64.DegToRad(70), mgl64.Vec3{0, 0, 1}),
	)
	cube = world.AddBody(cubeShape, 1, 1, actor.BodyData{})

	for i := 0; i < 5; i++ {
		ball := actor.NewSphere(mgl64.Vec3{2, 2 + float64(i)*2.5, 0}, 1)
		world.AddBody(ball, 1, 10+i, actor.IntData(int32(i)))
	}

	return ground, cube
}

func main() {
	configPath := flag.String("config", "", "YAML world config, defaults when empty")
	steps := flag.Int("steps", 200, "number of steps")
	flag.Parse()

	cfg := kinema.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = kinema.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	world, err := kinema.NewWorld(cfg)
	if err != nil {
		logger.Error("creating world", "error", err)
		os.Exit(1)
	}
	world.Logger = logger

	_, cube := SetupScene(world)

	world.Events.Subscribe(kinema.COLLISION_ENTER, func(event kinema.Event) {
		e := event.(kinema.CollisionEnterEvent)
		logger.Debug("collision enter", "a", e.IndexA, "b", e.IndexB)
	})
	world.RegisterCallback(cube, func(self, other *actor.RigidBody) {
		logger.Debug("cube hit", "other", other.ID, "velocity", self.Velocity)
	})

	logger.Info("scene ready", "bodies", world.Len(), "index", cfg.Index, "energy", world.TotalEnergy())

	const dt = 1.0 / 60.0
	for step := 0; step < *steps; step++ {
		if err := world.Solve(dt, 0); err != nil {
			logger.Error("step failed", "step", step, "error", err)
			os.Exit(1)
		}

		if step%20 == 0 {
			body := world.Body(cube)
			logger.Info("step",
				"step", step,
				"cube_position", body.Position,
				"cube_velocity", body.Velocity,
				"energy", world.TotalEnergy(),
			)
		}
	}

	// what is right below the cube
	body := world.Body(cube)
	for _, hit := range world.RayCast(actor.NewRay(body.Position, mgl64.Vec3{0, -1, 0})) {
		logger.Info("below cube", "slot", hit.Index, "distance", hit.Distance)
	}
}
