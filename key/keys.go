// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Listener - these keys configure the broadcast socket.
const (
	ListenPort       = "listen.port"
	ListenAddress    = "listen.address"
	ListenBufferSize = "listen.buffer_size"
	ListenQueueSize  = "listen.queue_size"
)

// Synchronization - these keys tune how incoming control messages are reconciled.
const (
	SyncDriftToleranceMs = "sync.drift_tolerance_ms"
	SyncSmoothingFactor  = "sync.smoothing_factor"
	SyncLiveReload       = "sync.live_reload"
)

// Rendering
const (
	RenderFPS = "render.fps"
)

// Media Playback - these keys select and configure the playback engine.
const (
	Player          = "player.default"
	PlayerMPVBinary = "player.mpv_binary"
)

// Metrics
const (
	MetricsAddress = "metrics.address"
)

// History
const (
	HistorySave = "history.save"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment
const (
	CliColored = "cli.colored"
)
