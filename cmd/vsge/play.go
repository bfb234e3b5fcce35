package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/cbegin/vsge-go"
	"github.com/cbegin/vsge-go/internal/config"
	"github.com/cbegin/vsge-go/internal/effects"
	"github.com/cbegin/vsge-go/internal/humanize"
	"github.com/cbegin/vsge-go/internal/rhythm"
	"github.com/cbegin/vsge-go/internal/sink"
	"github.com/cbegin/vsge-go/internal/tempo"
)

// output is an opened sink plus how to release it.
type output struct {
	sink     sink.Sink
	close    func() error
	recorder *sink.Recorder // set for the log sink
	ringOut  bool           // wait for the last notes to decay before closing
}

func (a *app) openOutput() (*output, error) {
	switch a.cfg.Sink {
	case config.SinkSynth:
		s, err := sink.OpenSynth(a.cfg.SampleRate, time.Duration(a.cfg.LatencyMS)*time.Millisecond)
		if err != nil {
			return nil, fmt.Errorf("open synth: %w", err)
		}
		s.SetEffects(effects.Room(s.SampleRate(), a.reverb))
		return &output{sink: s, close: s.Close, ringOut: true}, nil
	case config.SinkMIDI:
		m, err := sink.OpenMIDIPort(a.cfg.MIDIPort)
		if err != nil {
			return nil, err
		}
		closeMIDI := func() error {
			if err := m.Err(); err != nil {
				a.logger.Warn("MIDI note-off failed during playback", "err", err)
			}
			return m.Close()
		}
		return &output{sink: m, close: closeMIDI, ringOut: true}, nil
	default:
		rec := sink.NewRecorder(a.logger)
		return &output{sink: rec, close: func() error { return nil }, recorder: rec}, nil
	}
}

func (a *app) newEngine(s sink.Sink) (*vsge.Engine, error) {
	return vsge.New(append(a.engineOptions(), vsge.WithSink(s))...)
}

func (a *app) engineOptions() []vsge.EngineOption {
	opts := []vsge.EngineOption{
		vsge.WithLogger(a.logger),
		vsge.WithBeatsPerMeasure(a.cfg.BeatsPerMeasure),
		vsge.WithHumanization(a.humanization()),
	}
	if a.cfg.Seed != 0 {
		opts = append(opts, vsge.WithSeed(a.cfg.Seed))
	}
	return opts
}

// humanization picks the style's preset, the defaults for unknown styles, or
// nothing at all when humanizing is off.
func (a *app) humanization() humanize.Settings {
	if !a.cfg.Humanize {
		return humanize.Off()
	}
	if s, err := humanize.Preset(a.cfg.Style); err == nil {
		return s
	}
	return humanize.Default()
}

// perform runs play against a fresh engine and blocks until every dispatch
// has fired or ctx is cancelled. With --out it renders length of audio to a
// WAV file instead.
func (a *app) perform(ctx context.Context, w io.Writer, length time.Duration, play func(e *vsge.Engine) error) error {
	if a.outFile != "" {
		return a.render(ctx, length, play)
	}
	logger := log.FromContext(ctx)
	out, err := a.openOutput()
	if err != nil {
		return err
	}
	e, err := a.newEngine(out.sink)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Warn("engine close", "err", err)
		}
		if err := out.close(); err != nil {
			logger.Warn("sink close", "err", err)
		}
	}()

	if err := play(e); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Info("interrupted")
		if err := e.Stop(); err != nil {
			logger.Warn("stop", "err", err)
		}
		<-done
		return nil
	}

	if out.ringOut {
		select {
		case <-time.After(e.MeasureDuration() / time.Duration(e.BeatsPerMeasure())):
		case <-ctx.Done():
		}
	}
	if out.recorder != nil {
		printCalls(w, out.recorder.Calls())
	}
	logger.Info("performance finished")
	return nil
}

func (a *app) render(ctx context.Context, length time.Duration, play func(e *vsge.Engine) error) error {
	s := vsge.NewOfflineSynth(a.cfg.SampleRate)
	s.SetEffects(effects.Room(s.SampleRate(), a.reverb))
	f, err := os.Create(a.outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := vsge.RenderWAV(f, s, length, play, a.engineOptions()...); err != nil {
		return err
	}
	log.FromContext(ctx).Info("rendered", "file", a.outFile, "length", length)
	return f.Close()
}

// span is the wall-clock length of beats at the configured tempo, plus one
// beat for the last notes to ring.
func (a *app) span(beats float64) time.Duration {
	return tempo.MsToDuration((beats + 1) * 60000 / float64(a.cfg.Tempo))
}

func printCalls(w io.Writer, calls []sink.Call) {
	for _, c := range calls {
		switch c.Kind {
		case sink.CallPlayNote, sink.CallNoteOn:
			fmt.Fprintf(w, "%-14s pitch=%d velocity=%d duration=%s\n", c.Kind, c.Pitches[0], c.Velocity, c.Duration)
		case sink.CallSetInstrument:
			fmt.Fprintf(w, "%-14s channel=%d program=%d\n", c.Kind, c.Channel, c.Program)
		default:
			fmt.Fprintf(w, "%s\n", c.Kind)
		}
	}
}

// printTimeline writes dispatches shifted by offset, one per line.
func printTimeline(w io.Writer, offset time.Duration, dispatches []vsge.Dispatch) {
	for _, d := range dispatches {
		at := offset + d.At
		switch d.Kind {
		case vsge.NoteOnDispatch:
			fmt.Fprintf(w, "%9.1fms  %-8s %-4s pitch=%d velocity=%d duration=%.1fms technique=%s\n",
				ms(at), d.Kind, d.Event.Note, d.Pitch, d.Velocity, ms(d.Duration), d.Event.Technique)
		default:
			fmt.Fprintf(w, "%9.1fms  %-8s %-4s pitch=%d\n", ms(at), d.Kind, d.Event.Note, d.Pitch)
		}
	}
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// dryRunEngine builds an engine that is only used for Timeline.
func (a *app) dryRunEngine() (*vsge.Engine, error) {
	return a.newEngine(sink.NewRecorder(nil))
}

func (a *app) pattern() rhythm.Pattern {
	p, err := rhythm.Lookup(a.cfg.Style)
	if err != nil {
		a.logger.Warn("unsupported style, using default", "style", a.cfg.Style, "default", rhythm.DefaultStyle)
		p, _ = rhythm.Lookup(rhythm.DefaultStyle)
	}
	return p
}
