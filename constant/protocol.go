package constant

// Wire protocol defaults shared by the listener, the sender and the reconciler.
const (
	// DefaultPort is the UDP port control datagrams are broadcast on.
	DefaultPort = 11111

	// DefaultAddress is the wildcard address the listener binds to.
	DefaultAddress = "0.0.0.0"

	// DefaultBroadcastAddress is where "vrsync send" delivers datagrams unless told otherwise.
	DefaultBroadcastAddress = "255.255.255.255"

	// MaxDatagramSize is the receive buffer size. Payloads longer than this are truncated by the kernel.
	MaxDatagramSize = 15000

	// DriftToleranceMs is the largest playback position discrepancy tolerated without seeking.
	DriftToleranceMs = 100

	// SmoothingFactor is the fraction of the remaining orientation distance covered per rendered frame.
	SmoothingFactor = 0.1

	// FrameRate is the headless render loop cadence in frames per second.
	FrameRate = 60
)
