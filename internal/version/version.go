// ABOUTME: Version and product identity constants
// ABOUTME: Reported during the protocol handshake and in logs
package version

const (
	// Version is the software version
	Version = "0.2.0"

	// Product is the product name
	Product = "Chunkcast Player"

	// Manufacturer identifies the project
	Manufacturer = "Chunkcast Protocol"
)
