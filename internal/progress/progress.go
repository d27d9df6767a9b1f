// Package progress renders a run's event stream on the console.
package progress

import (
	"io"
	"os"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"

	"github.com/vbauerster/mpb/v6"
	"github.com/vbauerster/mpb/v6/decor"
)

const (
	// barScale is the per-item bar resolution, progress fractions map onto it.
	barScale = 1000

	nameWidth = 34
)

// Console consumes a run's event stream and renders it according to the
// configured progress mode. Bars draw on stdout, log lines go through the
// regular logger on stderr.
type Console struct {
	mode string
	out  io.Writer
}

// NewConsole returns a renderer for the given progress mode.
func NewConsole(mode string) *Console {
	return &Console{mode: mode, out: os.Stdout}
}

// Run consumes events until the channel closes. It blocks and should be
// called from the goroutine that owns the terminal.
func (c *Console) Run(items []*models.PlaylistItem, events <-chan models.StatusUpdate) {
	switch c.mode {
	case consts.ProgressBars:
		c.renderBars(items, events)
	case consts.ProgressLog:
		c.renderLog(items, events)
	default:
		for range events {
		}
	}
}

// renderBars draws one bar per downloading item plus an aggregate bar
// counting terminal items. Bars for failed or still-running items are
// aborted in place once the stream ends.
func (c *Console) renderBars(items []*models.PlaylistItem, events <-chan models.StatusUpdate) {
	if len(items) == 0 {
		for range events {
		}
		return
	}

	p := mpb.New(mpb.WithOutput(c.out), mpb.WithWidth(64))
	names := displayNames(items)
	bars := make(map[string]*mpb.Bar, len(items))

	agg := p.AddBar(int64(len(items)),
		mpb.BarPriority(len(items)+1),
		mpb.PrependDecorators(
			decor.Name("Total", decor.WC{W: nameWidth, C: decor.DidentRight}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage(decor.WC{W: 5})),
	)

	itemBar := func(id string) *mpb.Bar {
		if bar, ok := bars[id]; ok {
			return bar
		}
		name := names[id]
		if name == "" {
			name = id
		}
		bar := p.AddBar(barScale,
			mpb.BarPriority(len(bars)),
			mpb.PrependDecorators(decor.Name(name, decor.WC{W: nameWidth, C: decor.DidentRight})),
			mpb.AppendDecorators(decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done")),
		)
		bars[id] = bar
		return bar
	}

	for update := range events {
		switch update.Status {
		case consts.DLStatusDownloading:
			itemBar(update.ItemID).SetCurrent(int64(update.Progress * barScale))
		case consts.DLStatusCompleted:
			itemBar(update.ItemID).SetCurrent(barScale)
			agg.Increment()
		case consts.DLStatusFailed:
			if bar, ok := bars[update.ItemID]; ok {
				bar.Abort(false)
			}
			agg.Increment()
		case consts.DLStatusSkipped:
			agg.Increment()
		}
	}

	for _, bar := range bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	if !agg.Completed() {
		agg.SetTotal(-1, true)
	}
	p.Wait()
}

// renderLog emits one log line per quarter of progress per item. Status
// transitions already log from the download pipeline and are not repeated.
func (c *Console) renderLog(items []*models.PlaylistItem, events <-chan models.StatusUpdate) {
	names := displayNames(items)
	steps := make(map[string]int, len(items))

	for update := range events {
		if update.Status != consts.DLStatusDownloading {
			continue
		}
		step, crossed := milestone(steps[update.ItemID], update.Progress)
		if !crossed {
			continue
		}
		steps[update.ItemID] = step

		name := names[update.ItemID]
		if name == "" {
			name = update.ItemID
		}
		logging.I("%s: %d%%", name, step*25)
	}
}

// milestone reports whether frac crossed into a new quarter step.
func milestone(prev int, frac float64) (int, bool) {
	step := int(frac * 4)
	if step > 4 {
		step = 4
	}
	if step > prev {
		return step, true
	}
	return prev, false
}

// displayNames maps item IDs to their console labels.
func displayNames(items []*models.PlaylistItem) map[string]string {
	names := make(map[string]string, len(items))
	for _, item := range items {
		name := item.Title
		if name == "" {
			name = item.ID
		}
		names[item.ID] = truncate(name, nameWidth-4)
	}
	return names
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
