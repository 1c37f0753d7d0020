// Command sysinfo-plugin is the loadable form of the sysinfo plugin:
//
//	go build -buildmode=plugin -o sysinfo.so ./cmd/sysinfo-plugin
//
// The host looks up CreatePlugin and UnloadPlugin by name. Configuration is
// read from the file named by $SYSINFO_CONFIG, if set.
package main

import (
	"os"

	"github.com/bc-dunia/sysinfo/internal/abi"
	"github.com/bc-dunia/sysinfo/internal/config"
)

// CreatePlugin loads one plugin instance that reports on outbound.
func CreatePlugin(outbound chan<- string) *abi.Handle {
	return abi.Create(outbound,
		abi.WithConfigPath(os.Getenv(config.EnvConfigPath)),
		abi.WithGlobalTelemetry())
}

// UnloadPlugin releases h. Nil and already-unloaded handles are ignored.
func UnloadPlugin(h *abi.Handle) {
	abi.Unload(h)
}

// main is not called when built with -buildmode=plugin.
func main() {}
