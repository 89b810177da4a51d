// Command particles runs the feedback-loop particle simulation in a window, or
// headless on the CPU with PNG snapshots of the final state.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gekko3d/particles"
	"github.com/gekko3d/particles/shaders"
)

func main() {
	var (
		configPath   = flag.String("config", "", "JSON config file")
		numParticles = flag.Int("particles", 0, "particles per grid side (N×N particles)")
		limit        = flag.Float64("limit", 0, "bounce box size; particles reverse at ±limit/2")
		seed         = flag.Int64("seed", 0, "random seed for the initial velocities")
		width        = flag.Int("width", 0, "window / render width")
		height       = flag.Int("height", 0, "window / render height")
		debug        = flag.Bool("debug", false, "debug logging and profiler output")
		headless     = flag.Bool("headless", false, "run on the CPU without a window")
		frames       = flag.Int("frames", 0, "frames to simulate in headless mode")
		out          = flag.String("out", "", "snapshot output directory")
		metricsAddr  = flag.String("metrics", "", "serve prometheus metrics on this address")
		checkShaders = flag.Bool("check-shaders", false, "validate the embedded WGSL and exit")
		velocityInit = flag.String("velocity-init", "", "initial velocity distribution: x or spread")
	)
	flag.Parse()

	if *checkShaders {
		if err := shaders.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("shaders ok")
		return
	}

	cfg := particles.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = particles.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "particles":
			cfg.NumParticles = *numParticles
		case "limit":
			cfg.LimitToBounce = float32(*limit)
		case "seed":
			cfg.Seed = *seed
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "debug":
			cfg.Debug = *debug
		case "headless":
			cfg.Headless = *headless
		case "frames":
			cfg.Frames = *frames
		case "out":
			cfg.OutDir = *out
		case "metrics":
			cfg.MetricsAddr = *metricsAddr
		case "velocity-init":
			cfg.VelocityInit = *velocityInit
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.Headless {
		os.Exit(runHeadless(cfg))
	}
	runWindowed(cfg)
}

func runHeadless(cfg particles.Config) int {
	log := particles.NewDefaultLogger("particles", cfg.Debug)

	var (
		res particles.HeadlessResult
		err error
	)
	if cfg.MetricsAddr == "" {
		res, err = particles.RunHeadless(cfg, log, nil)
	} else {
		ln, lerr := net.Listen("tcp", cfg.MetricsAddr)
		if lerr != nil {
			log.Errorf("metrics listen: %v", lerr)
			return 1
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		res, err = particles.ServeHeadless(ctx, cfg, log, ln)
	}
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	log.Infof("done: %d frames, %d particles on screen", res.Frames, res.Drawn)
	return 0
}

func runWindowed(cfg particles.Config) {
	builder := particles.NewAppBuilder().
		UseStates(particles.StateRunning, particles.StateExiting).
		UseModule(
			particles.LoggingModule{Prefix: "particles", Debug: cfg.Debug},
			particles.TimeModule{},
			particles.NewPlatformWindow(cfg.Width, cfg.Height, cfg.Title),
			particles.InputModule{},
			particles.ParticlesModule{Config: cfg},
		)
	if cfg.MetricsAddr != "" {
		builder.UseModule(particles.MetricsModule{Addr: cfg.MetricsAddr, NumParticles: cfg.NumParticles})
	}
	builder.Build().Run()
}
