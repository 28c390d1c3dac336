package promebiten

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/oliverbestmann/prom"
)

func timingsPlugin(app *prom.App) {
	app.InsertSystem(DrawPhase.Offset(0.05), renderTimingsSystem)
}

type timingsCache struct {
	frames int
	image  *ebiten.Image
}

// renderTimingsSystem draws the TimingStats overlay, toggled with F3. The text
// is only re-rendered every 30 frames.
func renderTimingsSystem(
	timings prom.ResOption[prom.TimingStats],
	screen prom.Res[Screen],
	cache *prom.Local[timingsCache],
) {
	if timings.Value == nil {
		return
	}

	target := screen.Get().Image

	cache.Value.frames += 1
	if cache.Value.frames%30 != 0 && cache.Value.image != nil {
		target.DrawImage(cache.Value.image, nil)
		return
	}

	if cache.Value.image == nil || cache.Value.image.Bounds() != target.Bounds() {
		b := target.Bounds()
		cache.Value.image = ebiten.NewImage(b.Dx(), b.Dy())
	}

	image := cache.Value.image
	image.Clear()

	var row int

	for _, phase := range timings.Value.PhaseOrder {
		t := timings.Value.ByPhase[phase]
		ebitenutil.DebugPrintAt(image, formatTimings(phase.String(), 8, t), 16, 16+16*row)
		row += 1
	}

	type system struct {
		Name    string
		Timings prom.Timings
	}

	var systems []system
	var maxNameLength int

	for name, t := range timings.Value.BySystem {
		if t.MovingAverage < 250*time.Microsecond {
			continue
		}

		systems = append(systems, system{name, t})
		maxNameLength = max(maxNameLength, len(name))
	}

	slices.SortFunc(systems, func(a, b system) int {
		return cmp.Compare(b.Timings.MovingAverage, a.Timings.MovingAverage)
	})

	row += 1

	for _, sys := range systems {
		ebitenutil.DebugPrintAt(image, formatTimings(sys.Name, maxNameLength, sys.Timings), 16, 16+16*row)
		row += 1
	}

	target.DrawImage(image, nil)
}

func formatTimings(name string, width int, t prom.Timings) string {
	return fmt.Sprintf("%-[1]*s runs=%5d, latest=%6.2fms, min=%6.2fms, max=%6.2fms, avg=%6.2fms",
		width,
		name,
		t.Count,
		t.Latest.Seconds()*1000,
		t.Min.Seconds()*1000,
		t.Max.Seconds()*1000,
		t.MovingAverage.Seconds()*1000,
	)
}
