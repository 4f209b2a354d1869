package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/guidoenr/pulsar/internal/audio"
	"github.com/guidoenr/pulsar/internal/engine"
	"github.com/guidoenr/pulsar/internal/entity"
	"github.com/guidoenr/pulsar/internal/loudness"
	"github.com/guidoenr/pulsar/internal/render"
	"github.com/guidoenr/pulsar/internal/web"
)

// Backends selectable through Config.Backend.
const (
	BackendTerminal = "terminal"
	BackendSDL      = "sdl"
)

// Config configures the application runtime.
type Config struct {
	DeviceName string
	// InputFile replays a WAV file instead of capturing from a device.
	InputFile     string
	Loop          bool
	Width         int
	Height        int
	TickRate      float64
	BufferSize    int
	DisableAudio  bool
	ShowStatusBar bool
	Palette       string
	Preset        int
	Words         []string
	UseANSI       bool
	Backend       string
	// WebAddr enables the read-only web viewer when set, e.g. ":8080".
	WebAddr     string
	ProfilePath string
	Seed        int64
	Log         *log.Logger
}

// App ties together the amplitude source, the engine and its presenters.
type App struct {
	cfg         Config
	log         *log.Logger
	engine      *engine.Engine
	renderer    *render.Renderer
	terminal    *render.Terminal
	window      *render.Window
	web         *web.Server
	profiler    *profiler
	capture     *audio.Capture
	replay      *loudness.Replay
	fake        *fakeGenerator
	control     *controller
	deviceLabel string
	width       int
	height      int
	inputEvents chan rune
}

// New constructs the application using the provided configuration.
func New(cfg Config) (*App, error) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = float64(time.Second / engine.DefaultPeriod)
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "", log.LstdFlags)
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	cfg.Backend = strings.ToLower(cfg.Backend)
	if cfg.Backend == "" {
		cfg.Backend = BackendTerminal
	}

	a := &App{
		cfg:    cfg,
		log:    cfg.Log,
		width:  cfg.Width,
		height: cfg.Height,
	}

	var (
		presenters engine.Presenters
		canvas     entity.Size
	)
	switch cfg.Backend {
	case BackendTerminal:
		renderer, err := render.New(render.Config{
			Cols:    cfg.Width,
			Rows:    a.renderRows(cfg.Height),
			Palette: cfg.Palette,
			UseANSI: cfg.UseANSI,
		})
		if err != nil {
			return nil, err
		}
		a.renderer = renderer
		a.terminal = render.NewTerminal(renderer, render.TerminalConfig{
			ShowStatus: cfg.ShowStatusBar,
		})
		presenters = append(presenters, a.terminal)
		canvas = renderer.Canvas()
	case BackendSDL:
		canvas = entity.Size{
			W: float64(cfg.Width) * render.DefaultCellWidth,
			H: float64(cfg.Height) * render.DefaultCellHeight,
		}
		window, err := render.OpenWindow("pulsar", int(canvas.W), int(canvas.H))
		if err != nil {
			return nil, fmt.Errorf("sdl backend: %w", err)
		}
		a.window = window
		presenters = append(presenters, window)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.WebAddr != "" {
		a.web = web.NewServer(web.Config{
			Addr: cfg.WebAddr,
			Log:  log.New(cfg.Log.Writer(), "[web] ", cfg.Log.Flags()),
		})
		presenters = append(presenters, a.web)
	}

	var presenter engine.Presenter = presenters
	if p := newProfiler(cfg.ProfilePath, presenters, cfg.Log); p != nil {
		a.profiler = p
		presenter = p
	}

	a.engine = engine.New(engine.Config{
		Period:        time.Duration(float64(time.Second) / cfg.TickRate),
		Canvas:        canvas,
		Preset:        cfg.Preset,
		Seed:          cfg.Seed,
		Words:         cfg.Words,
		ExternalClock: cfg.Backend == BackendSDL,
		Presenter:     presenter,
		Log:           log.New(cfg.Log.Writer(), "[engine] ", cfg.Log.Flags()),
	})
	if a.web != nil {
		a.web.SetSource(a.engine)
	}

	a.control = &controller{
		engine:   a.engine,
		renderer: a.renderer,
		rng:      rand.New(rand.NewSource(cfg.Seed + 1)),
		log:      cfg.Log,
	}

	if err := a.openSource(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openSource() error {
	switch {
	case a.cfg.InputFile != "":
		replay, err := loudness.NewReplay(loudness.ReplayConfig{
			Path: a.cfg.InputFile,
			Loop: a.cfg.Loop,
			Log:  a.log,
		}, a.engine)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		a.replay = replay
		a.deviceLabel = "file=" + a.cfg.InputFile
		a.log.Printf("replaying %s @ %d Hz", a.cfg.InputFile, replay.Format().SampleRate)
	case a.cfg.DisableAudio:
		a.fake = newFakeGenerator(a.cfg.Seed)
		a.deviceLabel = "synthetic"
		a.log.Println("audio disabled, using synthetic generator")
	default:
		capture, err := audio.NewCapture(audio.Config{
			DeviceName: a.cfg.DeviceName,
			BufferSize: a.cfg.BufferSize,
			Channels:   2,
		}, a.engine)
		if err != nil {
			return fmt.Errorf("audio capture: %w", err)
		}
		a.capture = capture
		if info := capture.Device(); info != nil {
			a.deviceLabel = "mic=" + info.Name
			a.log.Printf("audio capture started on %q @ %.0f Hz", info.Name, capture.SampleRate())
		}
	}
	return nil
}

func (a *App) renderRows(height int) int {
	rows := height
	if a.cfg.ShowStatusBar && rows > 1 {
		rows--
	}
	if rows <= 0 {
		rows = 1
	}
	return rows
}

// Run starts the engine and blocks until ctx is cancelled or the user quits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	a.startSource(ctx, &wg)
	if a.web != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.web.ListenAndServe(ctx); err != nil {
				a.log.Printf("web server stopped: %v", err)
			}
		}()
	}

	if a.window != nil {
		return a.runWindow(ctx)
	}
	return a.runTerminal(ctx)
}

func (a *App) startSource(ctx context.Context, wg *sync.WaitGroup) {
	switch {
	case a.replay != nil:
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := a.replay.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Printf("replay stopped: %v", err)
			}
		}()
	case a.fake != nil:
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.fake.Run(ctx, a.engine, 20*time.Millisecond)
		}()
	}
}

func (a *App) runTerminal(ctx context.Context) error {
	a.terminal.SetLabel(a.deviceLabel)
	a.terminal.Enter()
	defer a.terminal.Leave()

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	a.startInputListener(inputCtx)
	a.ensureDimensions()

	a.engine.Start()
	defer a.engine.Stop()

	resize := time.NewTicker(250 * time.Millisecond)
	defer resize.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			if a.control.handleKey(ch) {
				return nil
			}
		case <-resize.C:
			a.ensureDimensions()
		}
	}
}

// runWindow drives ticks from the SDL event loop so drawing stays on the
// goroutine that owns the window.
func (a *App) runWindow(ctx context.Context) error {
	a.engine.Start()
	defer a.engine.Stop()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / a.cfg.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		events := a.window.Poll()
		if events.Quit {
			return nil
		}
		for _, ch := range events.Keys {
			if a.control.handleKey(ch) {
				return nil
			}
		}
		if events.Resized {
			a.engine.SetCanvas(entity.Size{W: float64(events.Width), H: float64(events.Height)})
		}
		a.engine.Step()
		a.window.SetTitle("pulsar | " + a.engine.PresetName() + " | " + a.deviceLabel)
	}
}

// Close releases held resources.
func (a *App) Close() error {
	var errs []error
	if a.capture != nil {
		errs = append(errs, a.capture.Close())
	}
	if a.profiler != nil {
		errs = append(errs, a.profiler.Close())
	}
	if a.window != nil {
		errs = append(errs, a.window.Close())
	}
	return errors.Join(errs...)
}

// Engine exposes the engine for status readers.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

func (a *App) ensureDimensions() {
	fd := int(os.Stdout.Fd())
	if fd < 0 {
		return
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return
	}
	if w == a.width && h == a.height {
		return
	}

	a.width = w
	a.height = h
	a.renderer.Resize(w, a.renderRows(h))
	a.engine.SetCanvas(a.renderer.Canvas())
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan rune, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			switch key {
			case keyboard.KeyEsc, keyboard.KeyCtrlC:
				char = 'q'
			case keyboard.KeySpace:
				char = ' '
			}
			if char == 0 {
				continue
			}
			select {
			case events <- char:
			case <-ctx.Done():
				return
			default:
			}
			if char == 'q' || char == 'Q' {
				return
			}
		}
	}()
}
