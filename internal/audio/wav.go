package audio

import (
	"encoding/binary"
	"io"
	"math"
)

const wavHeaderSize = 44

// EncodeWAV wraps interleaved float32 samples in a 32-bit IEEE float WAV
// container.
func EncodeWAV(samples []float32, sampleRate, channels int) []byte {
	dataSize := len(samples) * 4
	blockAlign := channels * 4
	out := make([]byte, wavHeaderSize+dataSize)
	le := binary.LittleEndian

	copy(out[0:], "RIFF")
	le.PutUint32(out[4:], uint32(wavHeaderSize-8+dataSize))
	copy(out[8:], "WAVE")

	copy(out[12:], "fmt ")
	le.PutUint32(out[16:], 16)
	le.PutUint16(out[20:], 3) // WAVE_FORMAT_IEEE_FLOAT
	le.PutUint16(out[22:], uint16(channels))
	le.PutUint32(out[24:], uint32(sampleRate))
	le.PutUint32(out[28:], uint32(sampleRate*blockAlign))
	le.PutUint16(out[32:], uint16(blockAlign))
	le.PutUint16(out[34:], 32)

	copy(out[36:], "data")
	le.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		le.PutUint32(out[wavHeaderSize+i*4:], math.Float32bits(s))
	}
	return out
}

// WriteWAV writes interleaved stereo samples to w as a float WAV file.
func WriteWAV(w io.Writer, samples []float32, sampleRate int) error {
	_, err := w.Write(EncodeWAV(samples, sampleRate, 2))
	return err
}
