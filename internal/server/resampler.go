// ABOUTME: Linear interpolation resampler for mono int16 audio
// ABOUTME: Adapts source sample rates to the configured stream rate
package server

import "io"

// Resampler converts mono samples between rates by linear interpolation
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64
	position   float64
}

// NewResampler creates a resampler
func NewResampler(inputRate, outputRate int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to the output rate. Returns the
// number of output samples produced.
func (r *Resampler) Resample(input []int16, output []int16) int {
	if len(input) == 0 {
		return 0
	}

	outIdx := 0
	for outIdx < len(output) {
		inputPos := r.position
		inputIdx := int(inputPos)

		if inputIdx >= len(input)-1 {
			break
		}

		frac := inputPos - float64(inputIdx)
		interpolated := float64(input[inputIdx])*(1.0-frac) + float64(input[inputIdx+1])*frac
		output[outIdx] = int16(interpolated)

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx
}

// InputSamplesNeeded returns how many input samples produce the
// requested number of output samples.
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	return int(float64(outputSamples) * r.ratio)
}

// ResampledSource wraps an AudioSource at a different target rate
type ResampledSource struct {
	source      AudioSource
	resampler   *Resampler
	targetRate  int
	inputBuffer []int16
}

// NewResampledSource wraps source so Read produces targetRate samples
func NewResampledSource(source AudioSource, targetRate int) *ResampledSource {
	// Buffer sized for 100ms of input audio
	inputSamples := (source.SampleRate() * 100) / 1000

	return &ResampledSource{
		source:      source,
		resampler:   NewResampler(source.SampleRate(), targetRate),
		targetRate:  targetRate,
		inputBuffer: make([]int16, inputSamples),
	}
}

func (r *ResampledSource) Read(samples []int16) (int, error) {
	needed := r.resampler.InputSamplesNeeded(len(samples)) + 1
	if needed > len(r.inputBuffer) {
		needed = len(r.inputBuffer)
	}

	n, err := r.source.Read(r.inputBuffer[:needed])
	if err != nil && err != io.EOF {
		return 0, err
	}

	return r.resampler.Resample(r.inputBuffer[:n], samples), nil
}

func (r *ResampledSource) SampleRate() int { return r.targetRate }
func (r *ResampledSource) Metadata() (string, string, string) {
	return r.source.Metadata()
}
func (r *ResampledSource) Close() error {
	return r.source.Close()
}
