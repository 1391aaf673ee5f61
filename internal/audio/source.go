package audio

import (
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/iburimskiy/ambient-garden/internal/config"
)

// SourceFunc builds the looping source at the engine's format. It is called
// once, when the graph is first built.
type SourceFunc func(format beep.Format) (beep.Streamer, error)

// NoiseBuffer fills a buffer with seconds of independent random samples in
// [-amplitude, amplitude], the same value on both channels.
func NoiseBuffer(rng *rand.Rand, format beep.Format, seconds, amplitude float64) *beep.Buffer {
	n := int(float64(format.SampleRate) * seconds)
	noise := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := (rng.Float64()*2 - 1) * amplitude
			samples[i][0] = v
			samples[i][1] = v
		}
		return len(samples), true
	})

	buf := beep.NewBuffer(format)
	buf.Append(beep.Take(n, noise))
	return buf
}

// NoiseSource loops a 2.5 second noise buffer forever.
func NoiseSource(rng *rand.Rand) SourceFunc {
	return func(format beep.Format) (beep.Streamer, error) {
		buf := NoiseBuffer(rng, format, config.NoiseSeconds, config.NoiseAmplitude)
		if buf.Len() == 0 {
			return nil, errors.New("audio: empty noise buffer")
		}
		return beep.Loop(-1, buf.Streamer(0, buf.Len())), nil
	}
}

// FileSource decodes a wav, mp3 or flac file into memory, resamples it to
// the engine rate and loops it in place of the noise.
func FileSource(path string) SourceFunc {
	return func(format beep.Format) (beep.Streamer, error) {
		buf, err := decodeFile(path, format)
		if err != nil {
			return nil, err
		}
		if buf.Len() == 0 {
			return nil, errors.New("audio: " + path + " has no samples")
		}
		return beep.Loop(-1, buf.Streamer(0, buf.Len())), nil
	}
}

var openFile = func(path string) (io.ReadCloser, error) { return os.Open(path) }

// decodeFile reads the whole file into a buffer at target's format. The
// file is closed on every return.
func decodeFile(path string, target beep.Format) (*beep.Buffer, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, errors.New("unsupported file type: " + filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != target.SampleRate {
		s = beep.Resample(4, format.SampleRate, target.SampleRate, streamer)
	}

	buf := beep.NewBuffer(target)
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}
