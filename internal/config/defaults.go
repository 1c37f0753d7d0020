package config

import "time"

// Default configuration constants for sampling, dispatch and telemetry
const (
	DefaultName              = "sysinfo"
	DefaultWANURL            = "https://api.ipify.org?format=text"
	DefaultWANTimeoutMs      = 5000
	DefaultWANMaxRetries     = 2
	DefaultSendTimeoutMs     = 1000
	DefaultChannelBufferSize = 64
	DefaultLogLevel          = "info"
	DefaultLogOutput         = "stderr"
	DefaultExporter          = "none"
	DefaultSampleRate        = 1.0
	MaxWANBodyBytes          = 256
	DefaultWatchInterval     = 30 * time.Second
)

// EnvConfigPath names the YAML file read by the plugin entry point.
const EnvConfigPath = "SYSINFO_CONFIG"
