// Package chime plays short tones when the node reports a motion crossing
// or a button press.
package chime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/danielliyk/Embedded-System-Labs/button"
	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/detector"
	"github.com/danielliyk/Embedded-System-Labs/node"
)

const (
	sampleRate = beep.SampleRate(44100)
	queueLen   = 8
)

// Tone is a sine burst.
type Tone struct {
	Freq     int
	Duration time.Duration
}

var (
	toneUp    = Tone{Freq: 880, Duration: 120 * time.Millisecond}
	toneDown  = Tone{Freq: 440, Duration: 120 * time.Millisecond}
	toneShort = Tone{Freq: 660, Duration: 60 * time.Millisecond}
	toneLong  = Tone{Freq: 660, Duration: 300 * time.Millisecond}
)

// ToneFor picks the tone for a report. Idle ticks are silent.
func ToneFor(r node.Report) (Tone, bool) {
	switch r.Source {
	case node.SourceMotion:
		switch r.Motion {
		case detector.CodeUp:
			return toneUp, true
		case detector.CodeDown:
			return toneDown, true
		}
	case node.SourceButton:
		switch r.Kind {
		case button.Short:
			return toneShort, true
		case button.Long:
			return toneLong, true
		}
	}
	return Tone{}, false
}

// PlayFunc plays one tone to completion.
type PlayFunc func(Tone) error

// Chime queues tones from the polling task and plays them on its own
// goroutine. Tones arriving while the queue is full are dropped.
type Chime struct {
	play  PlayFunc
	queue chan Tone
	log   *slog.Logger
}

// New returns a Chime. A nil play uses the system speaker.
func New(play PlayFunc, log *slog.Logger) *Chime {
	if play == nil {
		play = Speaker
	}
	return &Chime{
		play:  play,
		queue: make(chan Tone, queueLen),
		log:   config.Discard(log),
	}
}

// Observe is a node.Observer.
func (c *Chime) Observe(r node.Report) {
	tone, ok := ToneFor(r)
	if !ok {
		return
	}
	select {
	case c.queue <- tone:
	default:
		c.log.Debug("chime queue full, dropping tone", "freq", tone.Freq)
	}
}

// Run plays queued tones until ctx is cancelled.
func (c *Chime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case tone := <-c.queue:
			if err := c.play(tone); err != nil {
				c.log.Warn("could not play tone", "err", err)
			}
		}
	}
}

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Speaker plays a tone on the default audio device.
func Speaker(t Tone) error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("chime: could not init speaker: %w", speakerErr)
	}

	sine, err := generators.SineTone(sampleRate, float64(t.Freq))
	if err != nil {
		return fmt.Errorf("chime: %w", err)
	}
	tone := &effects.Gain{Streamer: beep.Take(sampleRate.N(t.Duration), sine), Gain: -0.7}

	done := make(chan struct{})
	speaker.Play(beep.Seq(tone, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
