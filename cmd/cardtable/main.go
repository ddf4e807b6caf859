package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/tabletop/audio"
	"github.com/lixenwraith/tabletop/clock"
	"github.com/lixenwraith/tabletop/config"
	"go.uber.org/zap"
)

var (
	configFlag = flag.String("config", "", "Path to a TOML config file")
	debugFlag  = flag.Bool("debug", false, "Write debug logs to "+logDir+"/"+logFileName)
	seedFlag   = flag.Uint64("seed", 0, "Shuffle seed (0 picks one from the clock)")
	muteFlag   = flag.Bool("mute", false, "Start with sound off")
	dumpFlag   = flag.Bool("dump-config", false, "Print the effective config as TOML and exit")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *dumpFlag {
		data, err := config.Encode(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode config: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	logger, err := setupLogger(cfg.Log, *debugFlag, logDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	seed := *seedFlag
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	screen.HideCursor()
	// Normal exit terminal cleanup
	defer screen.Fini()

	// Panic Recovery: Ensure terminal is reset even if the table crashes
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mCARDTABLE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	// Audio is optional; the table runs silently without a device
	sounds := audio.NewSoundManager(audio.Config{
		Enabled:    cfg.Audio.Enabled,
		Volume:     cfg.Audio.Volume,
		SampleRate: cfg.Audio.SampleRate,
	})
	if err := sounds.Initialize(); err != nil {
		logger.Warn("audio unavailable, continuing without sound", zap.Error(err))
	} else {
		defer sounds.Cleanup()
	}
	sounds.SetMuted(*muteFlag)

	a := newApp(cfg, screen, sounds, clock.NewMonotonic(), seed, logger)
	defer a.close()
	logger.Info("table ready", zap.Uint64("seed", seed), zap.String("config", *configFlag))

	eventChan := make(chan tcell.Event, 256)
	// Input polling uses raw goroutine as it interacts directly with terminal
	go func() {
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()

		for {
			ev := screen.PollEvent()
			// Screen finalized
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	interval := cfg.FrameInterval()
	frameTicker := time.NewTicker(interval)
	defer frameTicker.Stop()

	a.render()
	var lastTick time.Time
	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !a.handleEvent(ev) {
				logger.Info("quit")
				return
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				screen.Sync()
			}

		case now := <-frameTicker.C:
			a.frame(frameDelta(lastTick, now, interval))
			lastTick = now
		}
	}
}
