package audio

import (
	"errors"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Device is the audio output the graph plays through.
type Device interface {
	// Open acquires the output. An error means audio is unsupported.
	Open(rate beep.SampleRate, bufferSize int) error
	// Play attaches the graph. It is called once, after Open.
	Play(s beep.Streamer)
	// Lock and Unlock guard state shared with the output goroutine.
	Lock()
	Unlock()
	// Suspend releases the output; the graph keeps its state.
	Suspend() error
	// Resume reacquires the output and re-attaches the graph.
	Resume() error
}

// SpeakerDevice plays through the beep speaker. Suspending closes the
// speaker; resuming initialises it again and replays the same graph.
type SpeakerDevice struct {
	rate       beep.SampleRate
	bufferSize int
	graph      beep.Streamer
	open       bool
}

func (d *SpeakerDevice) Open(rate beep.SampleRate, bufferSize int) error {
	if err := speaker.Init(rate, bufferSize); err != nil {
		return err
	}
	d.rate = rate
	d.bufferSize = bufferSize
	d.open = true
	return nil
}

func (d *SpeakerDevice) Play(s beep.Streamer) {
	d.graph = s
	speaker.Play(s)
}

func (d *SpeakerDevice) Lock()   { speaker.Lock() }
func (d *SpeakerDevice) Unlock() { speaker.Unlock() }

func (d *SpeakerDevice) Suspend() error {
	if !d.open {
		return nil
	}
	speaker.Close()
	d.open = false
	return nil
}

func (d *SpeakerDevice) Resume() error {
	if d.open {
		return nil
	}
	if d.rate == 0 {
		return errors.New("audio: speaker never opened")
	}
	if err := speaker.Init(d.rate, d.bufferSize); err != nil {
		return err
	}
	d.open = true
	if d.graph != nil {
		speaker.Play(d.graph)
	}
	return nil
}
