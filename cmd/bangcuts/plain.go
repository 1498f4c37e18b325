package main

import (
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/linuxmatters/bangingcuts/internal/processor"
)

// plainProgress draws one mpb bar per stage, for terminals without a full-screen UI
type plainProgress struct {
	p    *mpb.Progress
	bars map[processor.Stage]*mpb.Bar
	last map[processor.Stage]time.Time
}

func newPlainProgress() *plainProgress {
	return &plainProgress{
		p:    mpb.New(mpb.WithWidth(64)),
		bars: make(map[processor.Stage]*mpb.Bar),
		last: make(map[processor.Stage]time.Time),
	}
}

func (pp *plainProgress) callback(stage processor.Stage, percent int) {
	bar, ok := pp.bars[stage]
	if !ok {
		bar = pp.p.AddBar(100,
			mpb.PrependDecorators(
				decor.Name(stage.String()+": "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
		)
		pp.bars[stage] = bar
		pp.last[stage] = time.Now()
	}

	now := time.Now()
	bar.EwmaSetCurrent(int64(min(percent, 100)), now.Sub(pp.last[stage]))
	pp.last[stage] = now
}

// wait stops any bar a failed run left behind and flushes the output
func (pp *plainProgress) wait() {
	for _, bar := range pp.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	pp.p.Wait()
}

// runPlain runs the job with plain progress bars
func runPlain(j *job) error {
	pp := newPlainProgress()
	result, err := j.execute(pp.callback)
	pp.wait()
	return report(result, j.outputPath, err)
}
