package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/tvid/tvid/internal/audio"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/config"
	"github.com/tvid/tvid/internal/decode"
	"github.com/tvid/tvid/internal/errlog"
	"github.com/tvid/tvid/internal/framestore"
	"github.com/tvid/tvid/internal/geometry"
	"github.com/tvid/tvid/internal/input"
	"github.com/tvid/tvid/internal/lifecycle"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/outqueue"
	"github.com/tvid/tvid/internal/playlist"
	"github.com/tvid/tvid/internal/render"
	"github.com/tvid/tvid/internal/stats"
	"github.com/tvid/tvid/internal/subtitle"
	"github.com/tvid/tvid/internal/taskpool"
	"github.com/tvid/tvid/internal/term"
	"github.com/tvid/tvid/internal/ui"
	"github.com/tvid/tvid/internal/video"
)

const repoURL = "https://github.com/tvid/tvid"

func printUsage() {
	fmt.Fprintf(os.Stderr, "%s %s - terminal video player\n", ui.Name, ui.Version)
	fmt.Fprintf(os.Stderr, "%s\n\n", repoURL)
	fmt.Fprintln(os.Stderr, "Usage: tvid [input ...]")
	pflag.PrintDefaults()
}

func main() {
	pflag.Usage = printUsage
	help := pflag.BoolP("help", "h", false, "Show usage and exit")
	pflag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	os.Exit(run(pflag.Args()))
}

// run wires the full pipeline (spec §5) and blocks until shutdown,
// returning the process exit code.
func run(args []string) int {
	ring := errlog.New()
	logger := log.New(errlog.Writer{Ring: ring})
	logger.SetLevel(log.InfoLevel)
	ctrl := lifecycle.New(ring)

	cfgPath, err := config.Path()
	if err != nil {
		logger.Warn("could not resolve config dir", "err", err)
	}
	cfg, err := config.Load(cfgPath, logger)
	if err != nil {
		logger.Warn("failed loading tvid.cfg", "err", err)
	}

	pl, exitCode, ok := loadPlaylist(args, logger)
	if !ok {
		return exitCode
	}

	tty := term.NewTTY()
	restore, err := tty.MakeRaw()
	if err != nil {
		logger.Error("failed to set raw mode", "err", err)
		return 1
	}
	defer func() {
		restore()
		ring.Flush()
	}()

	geo := geometry.New()
	if cells, pixels, err := tty.Size(); err == nil {
		geo.SetTermSize(cells, pixels)
	}

	store := framestore.New(taskpool.New())
	outq := outqueue.New()
	clk := clock.New()
	st := stats.New()

	for {
		uri, ok := pl.Current()
		if !ok {
			break
		}
		advance := playURI(uri, geo, clk, st, ring, logger, ctrl, cfg, store, outq, pl, tty)
		if ctrl.Quitting() || !advance {
			break
		}
		if _, ok := pl.Next(); !ok {
			break
		}
	}

	if err := pl.Save(mustPlaylistPath(logger)); err != nil {
		logger.Warn("failed to persist playlist", "err", err)
	}
	return 0
}

func loadPlaylist(args []string, logger *log.Logger) (*playlist.Playlist, int, bool) {
	if len(args) > 0 {
		return playlist.NewFromArgs(args), 0, true
	}
	path, err := playlist.Path()
	if err != nil {
		printUsage()
		return nil, 1, false
	}
	pl, err := playlist.Load(path)
	if err != nil {
		logger.Warn("failed to load playlist.txt", "err", err)
	}
	if pl.Empty() {
		printUsage()
		return nil, 1, false
	}
	return pl, 0, true
}

func mustPlaylistPath(logger *log.Logger) string {
	path, err := playlist.Path()
	if err != nil {
		logger.Warn("could not resolve playlist path", "err", err)
		return ""
	}
	return path
}

// playURI runs one playlist entry end to end: open the source, start
// every stage, pump input, and block until quit or skip (spec §5).
// Returns true if the playlist should advance to the next entry.
func playURI(uri string, geo *geometry.State, clk *clock.Clock, st *stats.Counters, ring *errlog.Ring, logger *log.Logger, ctrl *lifecycle.Controller, cfg config.Config, store *framestore.Store, outq *outqueue.Queue, pl *playlist.Playlist, tty *term.TTY) bool {
	src := decode.NewFFmpegSource()
	if err := src.Open(uri); err != nil {
		logger.Error("failed to open input", "uri", uri, "err", err)
		return true
	}
	defer src.Close()

	clk.Reset(src.Duration(), src.HasAudio(), src.HasVideo())
	if cfg.StartPaused {
		clk.Pause()
	}
	if w, h := src.VideoSize(); w > 0 && h > 0 {
		geo.SetOriginSize(w, h)
	}

	videoMailbox := mailbox.New[*video.Frame]()
	videoOutMailbox := mailbox.New[*video.Rescaled]()
	audioMailbox := mailbox.New[*audio.Frame]()
	subs := subtitle.New()

	driver := decode.NewDriver(src, videoMailbox, audioMailbox, subs, clk, ring, logger)

	videoStage := video.NewStage(videoMailbox, videoOutMailbox, geo, clk, st, logger)

	var audioStage *audio.Stage
	var device *audio.PortAudioDevice
	if src.HasAudio() {
		channels := src.AudioChannels()
		rate := src.AudioSampleRate()
		var err error
		device, err = audio.OpenDefaultOutput(channels, rate)
		if err != nil {
			logger.Warn("audio device unavailable, continuing video-only", "err", err)
		} else {
			audioStage = audio.NewStage(audioMailbox, device, clk, st, logger)
			if err := device.Start(audioStage.Callback); err != nil {
				logger.Warn("audio device failed to start, continuing video-only", "err", err)
				audioStage = nil
				device = nil
			}
		}
	}

	loop := render.NewLoop(store, geo, clk, outq, st, logger)
	loop.VideoIn = videoOutMailbox
	loop.VideoRequest = videoStage
	loop.Subs = subs
	overlay := ui.New()
	overlay.URI = uri
	loop.UI = overlay
	loop.VideoPlane = &render.VideoPlane{ChromaEnabled: cfg.ChromaKeyEnabled}
	loop.Visualizer = &render.Visualizer{}
	loop.HasVideo = src.HasVideo()
	loop.HasAudio = audioStage != nil
	if audioStage != nil {
		loop.AudioSamples = func() []float32 { return audioStage.RecentSamples(2048) }
	}

	regs := input.NewRegistries()
	skip := make(chan struct{}, 1)
	wireKeyBindings(regs, clk, ctrl, pl, overlay, skip)
	decoder := input.NewDecoder(regs)

	decodeDone := make(chan struct{})
	go ctrl.Supervise("decode", func() { driver.Run(); close(decodeDone) })
	go ctrl.Supervise("video", func() { videoStage.Run(driver.NotifyConsumed) })
	if audioStage != nil {
		go ctrl.Supervise("audio", func() { audioStage.Run(driver.NotifyConsumed) })
	}
	go ctrl.Supervise("render", loop.Run)
	go ctrl.Supervise("output", func() { outq.Run(tty, func(err error) {
		logger.Error("tty write failed", "err", err)
		ctrl.RequestQuit()
	}) })
	go ctrl.Supervise("input", func() { pumpInput(tty, decoder, ctrl) })

	advance := true
	select {
	case <-ctrl.Done():
		advance = false
	case <-skip:
	case <-decodeDone:
	}

	videoStage.Quit()
	if audioStage != nil {
		audioStage.Quit()
		device.Stop()
	}
	loop.Quit()
	outq.Quit()
	driver.Quit()
	time.Sleep(50 * time.Millisecond) // let stage goroutines observe quit and exit
	return advance
}

// pumpInput reads raw bytes from tty and feeds the decoder until quit.
func pumpInput(tty *term.TTY, decoder *input.Decoder, ctrl *lifecycle.Controller) {
	buf := make([]byte, 256)
	for !ctrl.Quitting() {
		n, err := tty.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			decoder.Feed(buf[:n])
		}
	}
}

// wireKeyBindings implements spec §6's minimum key bindings: space
// pause, q quit, n skip, l playlist view, f file-select, arrows/wasd
// navigate the playlist view's highlighted entry, enter/space select.
func wireKeyBindings(regs *input.Registries, clk *clock.Clock, ctrl *lifecycle.Controller, pl *playlist.Playlist, overlay *ui.Overlay, skip chan<- struct{}) {
	playlistOpen := false
	cursor := pl.CurrentIndex()

	signalSkip := func() {
		select {
		case skip <- struct{}{}:
		default:
		}
	}
	moveCursor := func(delta int) {
		n := pl.Len()
		if n == 0 {
			return
		}
		cursor = ((cursor+delta)%n + n) % n
	}
	selectCursor := func() {
		if _, ok := pl.JumpTo(cursor); ok {
			signalSkip()
		}
	}

	regs.Keypress.Register(func(k input.Key) bool {
		if playlistOpen {
			switch {
			case k.Kind == input.KindNamed && k.Code == input.NamedUp, k.Kind == input.KindChar && k.Letter == 'w':
				moveCursor(-1)
				return true
			case k.Kind == input.KindNamed && k.Code == input.NamedDown, k.Kind == input.KindChar && k.Letter == 's':
				moveCursor(1)
				return true
			case k.Kind == input.KindChar && k.Letter == ' ':
				selectCursor()
				return true
			case k.Kind == input.KindChar && k.Letter == 'm' && k.Mod&input.ModCtrl != 0:
				// Enter arrives as Ctrl+M (0x0D) in raw mode.
				selectCursor()
				return true
			}
		}
		if k.Kind != input.KindChar {
			return false
		}
		switch k.Letter {
		case ' ':
			clk.Toggle()
			return true
		case 'q':
			ctrl.RequestQuit()
			return true
		case 'n':
			signalSkip()
			return true
		case 'l':
			playlistOpen = !playlistOpen
			cursor = pl.CurrentIndex()
			overlay.StatsLine = togglePlaylistHint(overlay.StatsLine)
			return true
		case 'f':
			return true
		}
		return false
	})
}

func togglePlaylistHint(current string) string {
	if current == "" {
		return "playlist"
	}
	return ""
}
