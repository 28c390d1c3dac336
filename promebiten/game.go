// Package promebiten runs a prom.App inside an ebiten window.
package promebiten

import (
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/oliverbestmann/prom"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DrawPhase is where systems draw into the Screen.
var DrawPhase = prom.PhaseTick.Offset(0.9)

// Screen is the render target of the current frame.
type Screen struct {
	*ebiten.Image
}

type WindowConfig struct {
	Title         string
	Width         int
	Height        int
	DisableResize bool
}

// Run opens the window and blocks until the app exits.
func Run(app *prom.App, win WindowConfig) error {
	app.AddPlugin(prom.PluginFunc(timingsPlugin))

	ebiten.SetWindowTitle(win.Title)
	ebiten.SetWindowSize(win.Width, win.Height)
	ebiten.SetWindowClosingHandled(true)

	if !win.DisableResize {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	var options ebiten.RunGameOptions
	options.SingleThread = true

	if err := ebiten.RunGameWithOptions(newGame(app), &options); err != nil {
		return errors.Wrap(err, "run game")
	}

	return nil
}

// game implements ebiten.Game and prom.EventLoop.
type game struct {
	app    *prom.App
	logger *zap.Logger

	resumed bool
	exit    bool

	width, height int

	keys []ebiten.Key
}

func newGame(app *prom.App) *game {
	return &game{
		app:    app,
		logger: app.Logger().Named("ebiten"),
	}
}

func (g *game) SetTitle(title string) {
	ebiten.SetWindowTitle(title)
}

func (g *game) RequestExit() {
	g.exit = true
}

func (g *game) Update() error {
	if g.exit || ebiten.IsWindowBeingClosed() {
		g.app.Exit()
		return ebiten.Termination
	}

	// nothing to forward to before the first frame was drawn
	if !g.resumed {
		return nil
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, key := range g.keys {
		prom.Forward(g.app, prom.KeyEvent{Key: key.String(), Pressed: true})
	}

	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, key := range g.keys {
		prom.Forward(g.app, prom.KeyEvent{Key: key.String()})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.toggleTimings()
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if current, ok := prom.ResourceOf[Screen](g.app.Scheduler()); ok {
		current.Image = screen
	} else {
		g.app.InsertResource(Screen{Image: screen})
	}

	if !g.resumed {
		g.resumed = true
		g.app.Resume(g)
		return
	}

	g.app.Tick()
}

func (g *game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	if g.resumed && (outsideWidth != g.width || outsideHeight != g.height) {
		prom.Forward(g.app, prom.ResizeEvent{Width: outsideWidth, Height: outsideHeight})
	}

	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *game) toggleTimings() {
	scheduler := g.app.Scheduler()

	if scheduler.RemoveResource(reflect.TypeFor[prom.TimingStats]()) {
		g.logger.Info("Timings disabled")
		return
	}

	scheduler.InsertResource(prom.NewTimingStats())
	g.logger.Info("Timings enabled")
}
