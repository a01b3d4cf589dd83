// Command procedural_demo spawns random meshes into one procedural batch.
//
// Controls: Space spawns a mesh, R spawns a burst of 1000, P toggles play mode (which resets the batch),
// C logs the batch counters and Esc quits.
package main

import (
	"flag"
	"log"
	"math/rand/v2"
	"time"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine"
	"github.com/Carmen-Shannon/oxy-procedural/engine/camera"
	"github.com/Carmen-Shannon/oxy-procedural/engine/config"
	"github.com/Carmen-Shannon/oxy-procedural/engine/loader"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-procedural/engine/window"
)

const burstSize = 1000

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	meshPath := flag.String("mesh", "", "optional .gltf or .glb file whose meshes join the spawn pool")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for spawned transforms")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("[Demo] %v", err)
		}
		cfg = loaded
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		log.Fatalf("[Demo] %v", err)
	}

	presentMode, err := renderer.ParsePresentMode(cfg.PresentMode)
	if err != nil {
		log.Fatalf("[Demo] %v", err)
	}
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win, renderer.WithPresentMode(presentMode))
	if err := r.RegisterPipelines(renderer.NewProceduralPipeline()); err != nil {
		log.Fatalf("[Demo] %v", err)
	}

	cam := camera.NewCamera(
		camera.WithAspect(float32(win.Width())/float32(win.Height())),
		camera.WithOrbit(cfg.SpawnVolume*4, 0.3, 0.5),
		camera.WithRadiusBounds(1, cfg.SpawnVolume*20),
	)

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCamera(cam),
		engine.WithProfiling(cfg.Profiling),
	)

	batch := procedural.NewPass(
		procedural.WithName("procedural batch"),
		procedural.WithMaterial(material.NewMaterial(
			material.WithName("Procedural Batch"),
			material.WithPipelineKey(renderer.ProceduralPipelineKey),
			material.WithBaseColor([4]float32{0.8, 0.55, 0.3, 1}),
		)),
		procedural.WithLifecycle(eng.Lifecycle()),
		procedural.WithAccumulatorOptions(append(cfg.AccumulatorOptions(),
			accumulator.WithStorageFactory(r.StorageFactory()),
		)...),
	)
	eng.AddPass(0, batch)

	spawn := newSpawner(rand.New(rand.NewPCG(*seed, *seed>>1)), cfg.SpawnVolume)
	if *meshPath != "" {
		imported, err := loader.NewLoader(loader.WithUnitScale(true)).Load(*meshPath)
		if err != nil {
			log.Fatalf("[Demo] %v", err)
		}
		for _, m := range imported {
			spawn.meshes = append(spawn.meshes, m)
		}
		log.Printf("[Demo] loaded %d mesh(es) from %s", len(imported), *meshPath)
	}

	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeySpace:
			spawn.spawn(batch, 1)
		case common.KeyR:
			n := spawn.spawn(batch, burstSize)
			log.Printf("[Demo] queued %d mesh(es)", n)
		case common.KeyP:
			eng.SetPlaying(!eng.Playing())
			log.Printf("[Demo] play mode: %t", eng.Playing())
		case common.KeyC:
			acc := batch.Accumulator()
			stats := acc.Stats()
			log.Printf("[Demo] instances: %d, max index count: %d, packed: %d, discarded: %d, overflows: %d",
				acc.InstanceCount(), acc.MaxIndexCount(), stats.Packed, stats.Discarded, stats.Overflows)
		case common.KeyEsc:
			eng.Quit()
		}
	})

	eng.SetUpdateCallback(func(dt float32) {
		if eng.Playing() {
			cam.Orbit(dt*30, 0)
		}
	})

	log.Printf("[Demo] Space: spawn, R: spawn %d, P: toggle play mode, C: counters, Esc: quit", burstSize)
	eng.Run()
}
