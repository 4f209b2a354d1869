package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/guidoenr/pulsar/internal/app"
	"github.com/guidoenr/pulsar/internal/audio"
	"github.com/guidoenr/pulsar/internal/preset"
	"github.com/guidoenr/pulsar/internal/render"
)

// SDL must be driven from the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		deviceName = flag.String("audio-device", "", "Optional PortAudio device name (substring match)")
		inputFile  = flag.String("input", "", "Replay a WAV file instead of capturing audio")
		loop       = flag.Bool("loop", false, "Loop the -input file")
		width      = flag.Int("width", 80, "Frame width in terminal cells")
		height     = flag.Int("height", 24, "Frame height in terminal cells")
		tickRate   = flag.Float64("tick-rate", 25, "Engine ticks per second")
		bufferSize = flag.Int("buffer-size", 1024, "Capture buffer size in samples")
		noAudio    = flag.Bool("no-audio", false, "Run with synthetic audio (for testing)")
		debug      = flag.Bool("debug", false, "Enable verbose logging")
		showStatus = flag.Bool("status", true, "Display status bar")
		palette    = flag.String("palette", "default", "Glyph palette ("+strings.Join(render.PaletteNames(), "|")+")")
		presetName = flag.String("preset", "bars", "Initial preset name or index 0-9")
		words      = flag.String("words", strings.Join(preset.DefaultWords, ","), "Comma separated words for center-name")
		backend    = flag.String("backend", app.BackendTerminal, "Output backend (terminal|sdl)")
		webAddr    = flag.String("web", "", "Serve the read-only web viewer on this address, e.g. :8080")
		profile    = flag.String("profile", "", "Append per-tick timings to this CSV file")
		seed       = flag.Int64("seed", 0, "Random seed for layouts (0 = time based)")
		listDevs   = flag.Bool("list-audio-devices", false, "List available audio input devices and exit")
		listPres   = flag.Bool("list-presets", false, "List presets and exit")
		noColor    = flag.Bool("no-color", false, "Disable ANSI color output")
	)

	flag.Parse()

	if *width <= 0 || *height <= 0 {
		log.Fatalf("invalid dimensions: width=%d height=%d", *width, *height)
	}
	if *tickRate <= 0 {
		log.Fatalf("tick-rate must be positive (got %.2f)", *tickRate)
	}
	if *bufferSize <= 0 {
		log.Fatalf("buffer-size must be positive (got %d)", *bufferSize)
	}

	registry := preset.NewRegistry(preset.Options{})
	if *listPres {
		for i, name := range registry.Names() {
			fmt.Printf("%d  %s\n", i, name)
		}
		return
	}
	presetIndex, ok := registry.Lookup(*presetName)
	if !ok {
		log.Fatalf("unknown preset %q (try -list-presets)", *presetName)
	}

	if *backend == app.BackendTerminal {
		if fd := int(os.Stdout.Fd()); fd >= 0 {
			if w, h, err := term.GetSize(fd); err == nil {
				if w > 0 {
					*width = w
				}
				if h > 0 {
					*height = h
				}
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stdout, "[pulsar] ", log.LstdFlags)
	if !*debug {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(0)
	}

	needAudio := (!*noAudio && *inputFile == "") || *listDevs
	if needAudio {
		if err := audio.Initialize(); err != nil {
			logger.Fatalf("failed to initialize PortAudio: %v", err)
		}
		defer audio.Terminate()
	}

	if *listDevs {
		devices, err := audio.ListInputs()
		if err != nil {
			logger.Fatalf("list devices: %v", err)
		}
		fmt.Printf("\n=== Audio Input Devices ===\n\n")
		for i, dev := range devices {
			markers := ""
			if dev.IsDefaultInput {
				markers += " (default)"
			}
			if i == 0 {
				markers += " (auto)"
			}
			fmt.Printf("- %s [%s]%s\n    inputs:%d sample:%.0f Hz score:%d\n",
				dev.Name, dev.HostAPI, markers, dev.MaxInput, dev.DefaultSampleHz, dev.Score)
		}
		return
	}

	a, err := app.New(app.Config{
		DeviceName:    *deviceName,
		InputFile:     *inputFile,
		Loop:          *loop,
		Width:         *width,
		Height:        *height,
		TickRate:      *tickRate,
		BufferSize:    *bufferSize,
		DisableAudio:  *noAudio,
		ShowStatusBar: *showStatus,
		Palette:       *palette,
		Preset:        presetIndex,
		Words:         strings.Split(*words, ","),
		UseANSI:       !*noColor,
		Backend:       *backend,
		WebAddr:       *webAddr,
		ProfilePath:   *profile,
		Seed:          *seed,
		Log:           logger,
	})
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
}
