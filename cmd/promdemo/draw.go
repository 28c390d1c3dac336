package main

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/oliverbestmann/prom"
	"github.com/oliverbestmann/prom/internal/demo"
	"github.com/oliverbestmann/prom/physics"
	"github.com/oliverbestmann/prom/promebiten"
	"github.com/oliverbestmann/prom/promterm"
	"github.com/oliverbestmann/prom/world"
)

var background = color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xff}

func drawEbitenSystem(
	screen prom.Res[promebiten.Screen],
	w prom.RefWorld,
	arena prom.Res[demo.Arena],
	fps prom.Res[prom.FPS],
) {
	target := screen.Get().Image
	target.Fill(background)

	b := target.Bounds()
	scale := min(float64(b.Dx())/arena.Get().Width, float64(b.Dy())/arena.Get().Height)

	for _, wall := range world.Query[demo.Wall](w.World()) {
		vector.StrokeLine(target,
			float32(wall.A.X*scale), float32(wall.A.Y*scale),
			float32(wall.B.X*scale), float32(wall.B.Y*scale),
			4, color.White, true,
		)
	}

	for item := range world.Query2[demo.Ball, physics.Position](w.World()) {
		vector.DrawFilledCircle(target,
			float32(item.Second.X*scale), float32(item.Second.Y*scale),
			float32(item.First.Radius*scale),
			item.First.Color, true,
		)
	}

	ebitenutil.DebugPrint(target, fmt.Sprintf("fps: %.1f  [space] spawn  [backspace] remove  [F3] timings", fps.Get().Value))
}

func drawTerminalSystem(
	screen prom.Res[promterm.Screen],
	w prom.RefWorld,
	arena prom.Res[demo.Arena],
	fps prom.Res[prom.FPS],
) {
	cols, rows := screen.Get().Size()
	if cols == 0 || rows < 3 {
		return
	}

	// leave the first row for the title and the last for the status line
	cellOf := func(x, y float64) (int, int) {
		return int(x / arena.Get().Width * float64(cols-1)),
			1 + int(y/arena.Get().Height*float64(rows-3))
	}

	wallStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	for _, wall := range world.Query[demo.Wall](w.World()) {
		x0, y0 := cellOf(wall.A.X, wall.A.Y)
		x1, y1 := cellOf(wall.B.X, wall.B.Y)

		switch {
		case y0 == y1:
			for x := min(x0, x1); x <= max(x0, x1); x++ {
				screen.Get().SetContent(x, y0, '─', nil, wallStyle)
			}

		case x0 == x1:
			for y := min(y0, y1); y <= max(y0, y1); y++ {
				screen.Get().SetContent(x0, y, '│', nil, wallStyle)
			}
		}
	}

	for item := range world.Query2[demo.Ball, physics.Position](w.World()) {
		x, y := cellOf(item.Second.X, item.Second.Y)

		c := item.First.Color
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))

		screen.Get().SetContent(x, y, '●', nil, style)
	}

	status := fmt.Sprintf("fps: %.1f  [space] spawn  [backspace] remove  [esc] quit", fps.Get().Value)
	for x, ch := range []rune(status) {
		screen.Get().SetContent(x, rows-1, ch, nil, tcell.StyleDefault)
	}
}
