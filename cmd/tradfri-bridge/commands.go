package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/coap"
	"github.com/muurk/tradfri-bridge/internal/config"
	"github.com/muurk/tradfri-bridge/internal/gatewayfind"
	"github.com/muurk/tradfri-bridge/internal/linkformat"
	"github.com/muurk/tradfri-bridge/internal/logging"
	"github.com/muurk/tradfri-bridge/internal/mqtt"
	"github.com/muurk/tradfri-bridge/internal/observer"
)

// Bridge command and flags
var (
	configPath  string
	gatewayAddr string
	pskIdentity string
	psk         string
	brokerURL   string
	clientID    string
	topicPrefix string
	logLevel    string
	scanTimeout time.Duration
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the bridge",
	Long: `Connect to the Trådfri gateway and the MQTT broker and run until
interrupted.

When no gateway address is configured, the local network is scanned via
mDNS and the first gateway found is used. Settings come from the config
file (see 'tradfri-bridge bridge --help' for the default location), with
flags taking precedence.`,
	Example: `  # Bridge a known gateway to a local broker
  tradfri-bridge bridge --gateway 192.168.1.63:5684 --psk-identity bridge --psk SECRET

  # Discover the gateway via mDNS, verbose logging
  tradfri-bridge bridge --psk-identity bridge --psk SECRET --log-level debug

  # Use a config file
  tradfri-bridge bridge --config ./bridge.yaml`,
	RunE: runBridge,
}

func init() {
	bridgeCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: platform config dir)")
	bridgeCmd.Flags().StringVar(&gatewayAddr, "gateway", "", "Gateway address host:port (empty = discover via mDNS)")
	bridgeCmd.Flags().StringVar(&pskIdentity, "psk-identity", "", "DTLS pre-shared key identity")
	bridgeCmd.Flags().StringVar(&psk, "psk", "", "DTLS pre-shared key")
	bridgeCmd.Flags().StringVar(&brokerURL, "broker", "", "MQTT broker URL (default tcp://localhost:1883)")
	bridgeCmd.Flags().StringVar(&clientID, "client-id", "", "MQTT client identifier")
	bridgeCmd.Flags().StringVar(&topicPrefix, "topic-prefix", "", "Topic prefix for republished resources (default tradfri-raw)")
	bridgeCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runBridge(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	addr := cfg.Gateway.Addr
	if addr == "" {
		logging.Info("No gateway configured, scanning via mDNS")
		scanner := gatewayfind.NewScanner()
		gw, err := scanner.First(context.Background())
		if err != nil {
			return fmt.Errorf("gateway discovery failed: %w", err)
		}
		logging.Info("Gateway discovered",
			zap.String("hostname", gw.Hostname),
			zap.String("addr", gw.Addr()),
		)
		addr = gw.Addr()
	}

	transport, err := coap.NewClient(coap.Config{
		Addr:        addr,
		PSKIdentity: cfg.Gateway.PSKIdentity,
		PSK:         []byte(cfg.Gateway.PSK),
	})
	if err != nil {
		return fmt.Errorf("failed to create CoAP client: %w", err)
	}
	defer transport.Close()

	bus, err := mqtt.Connect(mqtt.Config{
		BrokerURL:   cfg.Broker.URL,
		ClientID:    cfg.Broker.ClientID,
		TopicPrefix: cfg.Bridge.TopicPrefix,
		Username:    cfg.Broker.Username,
		Password:    cfg.Broker.Password,
	})
	if err != nil {
		return err
	}
	defer bus.Close()

	scheme := "coap"
	if cfg.Gateway.PSKIdentity != "" {
		scheme = "coaps"
	}
	obs, err := observer.New(observer.Config{
		BaseURL:          fmt.Sprintf("%s://%s", scheme, addr),
		PingInterval:     time.Duration(cfg.Bridge.PingInterval),
		PingTimeout:      time.Duration(cfg.Bridge.PingTimeout),
		DequeueInterval:  time.Duration(cfg.Bridge.DequeueInterval),
		DiscoverInterval: time.Duration(cfg.Bridge.DiscoverInterval),
		TopicPrefix:      cfg.Bridge.TopicPrefix,
	}, transport, parseLinks, bus)
	if err != nil {
		return err
	}

	logging.Info("Starting bridge",
		zap.String("gateway", obs.URL()),
		zap.String("broker", cfg.Broker.URL),
	)
	obs.Start()
	defer obs.Close()

	// Run until interrupted
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logging.Info("Shutdown signal received, stopping bridge...")

	return nil
}

// parseLinks adapts the link-format parser to the observer's boundary.
func parseLinks(doc string) (map[string]observer.Link, error) {
	attrs, err := linkformat.Parse(doc)
	if err != nil {
		return nil, err
	}
	links := make(map[string]observer.Link, len(attrs))
	for path, a := range attrs {
		links[path] = observer.Link{Observable: a.Observable}
	}
	return links, nil
}

func applyFlagOverrides(cfg *config.File) {
	if gatewayAddr != "" {
		cfg.Gateway.Addr = gatewayAddr
	}
	if pskIdentity != "" {
		cfg.Gateway.PSKIdentity = pskIdentity
	}
	if psk != "" {
		cfg.Gateway.PSK = psk
	}
	if brokerURL != "" {
		cfg.Broker.URL = brokerURL
	}
	if clientID != "" {
		cfg.Broker.ClientID = clientID
	}
	if topicPrefix != "" {
		cfg.Bridge.TopicPrefix = topicPrefix
	}
}

// Scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the local network for Trådfri gateways",
	Long: `Browse mDNS for Trådfri gateways and list what was found.

Useful to find the gateway address before configuring the bridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitializeFromEnv(); err != nil {
			return err
		}
		scanner := gatewayfind.NewScanner()
		scanner.Timeout = scanTimeout

		fmt.Printf("Scanning for Trådfri gateways (%s)...\n", scanTimeout)
		gateways, err := scanner.Scan()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if len(gateways) == 0 {
			fmt.Println("No gateways found.")
			return nil
		}
		for _, gw := range gateways {
			fmt.Printf("  %s\n", gw)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", gatewayfind.DefaultScanTimeout, "How long to scan")
}
