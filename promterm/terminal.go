// Package promterm runs a prom.App inside a terminal using tcell.
package promterm

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/oliverbestmann/prom"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DrawPhase is where systems draw into the Screen.
var DrawPhase = prom.PhaseTick.Offset(0.9)

// Screen is available as a resource to all systems of an App run by a Terminal.
// Systems draw into it, the terminal shows it after each tick.
type Screen struct {
	tcell.Screen
}

// Terminal is the host driver for terminals. It implements prom.EventLoop.
type Terminal struct {
	app      *prom.App
	screen   tcell.Screen
	tickRate time.Duration
	logger   *zap.Logger

	title string
	exit  bool
}

func New(app *prom.App, screen tcell.Screen, tickRate time.Duration) *Terminal {
	if tickRate <= 0 {
		tickRate = time.Second / 30
	}

	return &Terminal{
		app:      app,
		screen:   screen,
		tickRate: tickRate,
		logger:   app.Logger().Named("terminal"),
	}
}

func (t *Terminal) SetTitle(title string) {
	t.title = title
}

func (t *Terminal) RequestExit() {
	t.exit = true
}

// Run ticks the app at the configured rate until escape is pressed,
// an exit is requested or the context is cancelled. The end phases of
// the app run before Run returns.
func (t *Terminal) Run(ctx context.Context) error {
	if err := t.start(); err != nil {
		return err
	}

	defer t.screen.Fini()

	ticker := time.NewTicker(t.tickRate)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			// returns nil once the screen is finalized
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}

			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for !t.exit {
		select {
		case <-ctx.Done():
			t.exit = true

		case ev := <-events:
			if !t.handle(ev) {
				t.exit = true
			}

		case <-ticker.C:
			t.frame()
		}
	}

	t.app.Exit()

	return nil
}

func (t *Terminal) start() error {
	if err := t.screen.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}

	t.app.InsertResource(Screen{Screen: t.screen})

	width, height := t.screen.Size()
	t.logger.Info("Terminal initialized", zap.Int("width", width), zap.Int("height", height))

	t.app.Resume(t)
	prom.Forward(t.app, prom.ResizeEvent{Width: width, Height: height})

	return nil
}

func (t *Terminal) frame() {
	t.screen.Clear()

	t.app.Tick()

	style := tcell.StyleDefault.Reverse(true)
	for x, ch := range []rune(t.title) {
		t.screen.SetContent(x, 0, ch, nil, style)
	}

	t.screen.Show()
}

// handle forwards the event to the app. It returns false if the
// event asks the terminal to quit.
func (t *Terminal) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}

		prom.Forward(t.app, keyEvent(ev))

	case *tcell.EventResize:
		width, height := ev.Size()
		t.screen.Sync()

		prom.Forward(t.app, prom.ResizeEvent{Width: width, Height: height})
	}

	return true
}

// keyEvent converts a key press. Terminals do not report releases.
func keyEvent(ev *tcell.EventKey) prom.KeyEvent {
	if ev.Key() != tcell.KeyRune {
		return prom.KeyEvent{Key: tcell.KeyNames[ev.Key()], Pressed: true}
	}

	key := string(ev.Rune())
	if ev.Rune() == ' ' {
		key = "Space"
	}

	return prom.KeyEvent{Key: key, Rune: ev.Rune(), Pressed: true}
}
