// ABOUTME: Linear16 PCM decoder
// ABOUTME: Decodes 16-bit little-endian mono PCM to normalized samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio"
)

// PCM16 decodes little-endian signed 16-bit mono PCM. Decoding is pure:
// the same payload always yields bit-identical samples.
func PCM16(data []byte, sampleRate int) (audio.Buffer, error) {
	if sampleRate <= 0 {
		return audio.Buffer{}, &DecodeError{Codec: "pcm16", Err: fmt.Errorf("invalid sample rate %d", sampleRate)}
	}

	if len(data)%2 != 0 {
		return audio.Buffer{}, &DecodeError{Codec: "pcm16", Err: ErrMisaligned}
	}

	samples := make([]float64, len(data)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleToFloat(s)
	}

	return audio.Buffer{Samples: samples, SampleRate: sampleRate}, nil
}
