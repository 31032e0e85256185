// ABOUTME: Package documentation for output devices
// ABOUTME: Describes the device clock contract and available backends
// Package device defines the output device contract the player schedules
// against, plus two backends: Oto (real audio via ebitengine/oto) and
// Mock (manual clock for tests).
//
// Example:
//
//	dev, err := device.NewOto(48000)
//	src, err := dev.SubmitAt(buf, dev.Now(), func() { ... })
package device
