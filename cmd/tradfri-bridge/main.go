// Tradfri-bridge republishes an IKEA Trådfri gateway's CoAP resource
// tree onto an MQTT broker.
//
// It discovers the gateway's resources at .well-known/core, observes
// every resource that advertises observability, and republishes each
// notification retained under "<topic-prefix>/<resource-path>"
// (e.g. "tradfri-raw/15001/65537"). Liveness of the CoAP session is
// maintained with periodic pings; sustained failure triggers a full
// session reset.
//
// Usage:
//
//	tradfri-bridge bridge [flags]
//
// See 'tradfri-bridge bridge --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tradfri-bridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tradfri-bridge",
	Short: "Trådfri CoAP to MQTT bridge",
	Long: `A bridge between an IKEA Trådfri gateway and an MQTT broker.

The bridge observes every observable CoAP resource the gateway exposes and
republishes raw payloads retained on MQTT, one topic per resource path.
Device, group and mood collections (15001, 15004, 15005) are walked
recursively so individual entries are observed as they appear.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tradfri-bridge %s (commit: %s)\n", version.Version, version.Commit)
	},
}
