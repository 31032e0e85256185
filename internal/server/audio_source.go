// ABOUTME: Audio source abstraction producing mono Linear16 samples
// ABOUTME: Supports MP3 and FLAC files, HTTP MP3 streams, and a test tone
package server

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// AudioSource provides mono 16-bit PCM samples
type AudioSource interface {
	// Read fills samples with mono int16 PCM. Returns the number of
	// samples written.
	Read(samples []int16) (int, error)
	// SampleRate returns the sample rate of the produced samples
	SampleRate() int
	// Metadata returns title, artist, album
	Metadata() (title, artist, album string)
	// Close releases the source
	Close() error
}

// NewAudioSource opens a source from a file path or HTTP URL.
// An empty path yields the test tone generator. The source is wrapped
// in a resampler when its native rate differs from targetRate.
func NewAudioSource(pathOrURL string, targetRate int) (AudioSource, error) {
	var source AudioSource
	var err error

	switch {
	case pathOrURL == "":
		source = NewTestToneSource(targetRate)

	case strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://"):
		source, err = NewHTTPMP3Source(pathOrURL)
		if err != nil {
			return nil, err
		}

	default:
		if _, err := os.Stat(pathOrURL); os.IsNotExist(err) {
			return nil, fmt.Errorf("audio file not found: %s", pathOrURL)
		}

		ext := strings.ToLower(filepath.Ext(pathOrURL))
		switch ext {
		case ".mp3":
			source, err = NewMP3Source(pathOrURL)
		case ".flac":
			source, err = NewFLACSource(pathOrURL)
		default:
			return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac)", ext)
		}
		if err != nil {
			return nil, err
		}
	}

	if source.SampleRate() != targetRate {
		log.Info("resampling source", "from", source.SampleRate(), "to", targetRate)
		source = NewResampledSource(source, targetRate)
	}

	return source, nil
}

// MP3Source reads from an MP3 file, looping at EOF
type MP3Source struct {
	file       *os.File
	decoder    *mp3.Decoder
	sampleRate int
	title      string
}

// NewMP3Source opens an MP3 file
func NewMP3Source(filePath string) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	filename := filepath.Base(filePath)
	title := strings.TrimSuffix(filename, filepath.Ext(filename))

	log.Info("loaded MP3", "title", title, "rate", decoder.SampleRate())

	return &MP3Source{
		file:       f,
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
		title:      title,
	}, nil
}

func (s *MP3Source) Read(samples []int16) (int, error) {
	// Decoder outputs interleaved stereo int16, so 4 bytes per mono
	// output sample.
	buf := make([]byte, len(samples)*4)

	n, err := s.decoder.Read(buf)
	if err != nil && err != io.EOF {
		return 0, err
	}

	numSamples := downmixStereo(buf[:n], samples)

	if err == io.EOF {
		if _, seekErr := s.file.Seek(0, 0); seekErr != nil {
			return numSamples, fmt.Errorf("failed to seek to start: %w", seekErr)
		}
		newDecoder, decErr := mp3.NewDecoder(s.file)
		if decErr != nil {
			return numSamples, fmt.Errorf("failed to create new decoder: %w", decErr)
		}
		s.decoder = newDecoder
	}

	return numSamples, nil
}

func (s *MP3Source) SampleRate() int { return s.sampleRate }
func (s *MP3Source) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *MP3Source) Close() error {
	return s.file.Close()
}

// FLACSource reads from a FLAC file, looping at EOF
type FLACSource struct {
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int
	title      string

	// Leftover mono samples from the last parsed frame
	pending []int16
}

// NewFLACSource opens a FLAC file
func NewFLACSource(filePath string) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	filename := filepath.Base(filePath)
	title := strings.TrimSuffix(filename, filepath.Ext(filename))

	log.Info("loaded FLAC", "title", title,
		"rate", info.SampleRate, "channels", info.NChannels, "bits", info.BitsPerSample)

	return &FLACSource{
		file:       f,
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   int(info.BitsPerSample),
		title:      title,
	}, nil
}

func (s *FLACSource) Read(samples []int16) (int, error) {
	written := 0

	for written < len(samples) {
		if len(s.pending) > 0 {
			n := copy(samples[written:], s.pending)
			s.pending = s.pending[n:]
			written += n
			continue
		}

		frame, err := s.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				if _, seekErr := s.file.Seek(0, 0); seekErr != nil {
					return written, fmt.Errorf("failed to seek to start: %w", seekErr)
				}
				newStream, decErr := flac.New(s.file)
				if decErr != nil {
					return written, fmt.Errorf("failed to create new stream: %w", decErr)
				}
				s.stream = newStream
				continue
			}
			return written, err
		}

		// Downmix the frame to mono at 16 bits
		for i := 0; i < int(frame.BlockSize); i++ {
			var sum int64
			for ch := 0; ch < s.channels; ch++ {
				sum += int64(frame.Subframes[ch].Samples[i])
			}
			mono := sum / int64(s.channels)

			// Scale to the 16-bit range
			switch {
			case s.bitDepth > 16:
				mono >>= uint(s.bitDepth - 16)
			case s.bitDepth < 16:
				mono <<= uint(16 - s.bitDepth)
			}
			s.pending = append(s.pending, int16(mono))
		}
	}

	return written, nil
}

func (s *FLACSource) SampleRate() int { return s.sampleRate }
func (s *FLACSource) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *FLACSource) Close() error {
	return s.file.Close()
}

// HTTPMP3Source streams MP3 from an HTTP URL. It does not loop.
type HTTPMP3Source struct {
	url        string
	response   *http.Response
	decoder    *mp3.Decoder
	sampleRate int
}

// NewHTTPMP3Source opens an HTTP MP3 stream
func NewHTTPMP3Source(url string) (*HTTPMP3Source, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTTP stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	decoder, err := mp3.NewDecoder(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	log.Info("streaming MP3 over HTTP", "url", url, "rate", decoder.SampleRate())

	return &HTTPMP3Source{
		url:        url,
		response:   resp,
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
	}, nil
}

func (s *HTTPMP3Source) Read(samples []int16) (int, error) {
	buf := make([]byte, len(samples)*4)

	n, err := s.decoder.Read(buf)
	if err != nil {
		return 0, err
	}

	return downmixStereo(buf[:n], samples), nil
}

func (s *HTTPMP3Source) SampleRate() int { return s.sampleRate }
func (s *HTTPMP3Source) Metadata() (string, string, string) {
	return "HTTP Stream", "HTTP Stream", ""
}
func (s *HTTPMP3Source) Close() error {
	if s.response != nil {
		return s.response.Body.Close()
	}
	return nil
}

// downmixStereo averages interleaved stereo little-endian int16 bytes
// into mono samples. Returns the number of mono samples produced.
func downmixStereo(data []byte, out []int16) int {
	frames := len(data) / 4
	if frames > len(out) {
		frames = len(out)
	}
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(data[i*4 : i*4+2]))
		right := int16(binary.LittleEndian.Uint16(data[i*4+2 : i*4+4]))
		out[i] = int16((int32(left) + int32(right)) / 2)
	}
	return frames
}

// EncodePCM16 encodes mono int16 samples as little-endian bytes
func EncodePCM16(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}
	return buf
}
