// Command meshnode is an interactive mesh node test client.
//
// The node registers an application with two elements against a simulated
// mesh daemon: element 0 hosts a Generic OnOff server and client, element 1
// a second OnOff server. The interactive menu drives the node lifecycle
// (join, attach, remove) and the OnOff models.
//
// Usage:
//
//	meshnode [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-token string      Attach with this token instead of joining (16 hex digits)
//	-state string      Node state file path (default "meshnode-state.json")
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-log-file string   Protocol event log path (CBOR, appended)
//
// Examples:
//
//	# Join a fresh node against the simulated daemon
//	meshnode
//
//	# Attach an existing node
//	meshnode -token 76bd4f2372477007
//
//	# Record protocol events for later inspection
//	meshnode -log-file events.cbor -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/btmesh-tools/meshnode-go/cmd/meshnode/interactive"
	"github.com/btmesh-tools/meshnode-go/internal/testharness/mock"
	"github.com/btmesh-tools/meshnode-go/pkg/log"
	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/onoff"
	"github.com/btmesh-tools/meshnode-go/pkg/persistence"
	"github.com/btmesh-tools/meshnode-go/pkg/service"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Config holds the node configuration. File values are overridden by flags.
type Config struct {
	CompanyID uint16 `yaml:"company_id"`
	ProductID uint16 `yaml:"product_id"`
	VersionID uint16 `yaml:"version_id"`

	StateFile string `yaml:"state_file"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`

	// Remotes seeds the simulated daemon with standalone OnOff servers
	// the client can talk to.
	Remotes []RemoteConfig `yaml:"remotes"`
}

// RemoteConfig describes one simulated remote OnOff server.
type RemoteConfig struct {
	Addr  string `yaml:"addr"`
	State byte   `yaml:"state"`
}

var (
	configFile string
	token      string
	stateFile  string
	logLevel   string
	logFile    string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&token, "token", "", "Attach with this token instead of joining (16 hex digits)")
	flag.StringVar(&stateFile, "state", "meshnode-state.json", "Node state file path")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Protocol event log path (CBOR, appended)")
}

func main() {
	flag.Parse()

	config, err := loadConfig(configFile)
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}
	applyFlagOverrides(config)

	logger := newLogger(config.LogLevel)

	protoLog, closeLog, err := newProtocolLogger(config.LogFile, logger)
	if err != nil {
		stdlog.Fatalf("Failed to open protocol log: %v", err)
	}
	defer closeLog()

	// Simulated daemon with a couple of remote OnOff servers to talk to.
	daemon := mock.NewDaemon()
	for _, remote := range config.Remotes {
		addr, err := wire.ParseAddress(remote.Addr)
		if err != nil {
			stdlog.Fatalf("Invalid remote address %q: %v", remote.Addr, err)
		}
		daemon.AddRemoteServer(addr, remote.State)
	}

	var store *persistence.NodeStateStore
	if config.StateFile != "" {
		store = persistence.NewNodeStateStore(config.StateFile)
	}

	app := model.NewApplication(config.CompanyID, config.ProductID, config.VersionID)
	svc := service.NewNodeService(service.Config{
		App:            app,
		Daemon:         daemon,
		Agent:          mock.NewAgent(),
		Logger:         logger,
		ProtocolLogger: protoLog,
		StateStore:     store,
	})

	client, server := buildElements(app, svc, logger)

	if token != "" {
		if !svc.Manager().SetToken(token) {
			stdlog.Fatalf("Invalid token %q: need exactly 16 hex digits", token)
		}
	}

	daemon.SetHandler(svc)
	svc.Start()
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, err := interactive.New(svc, client, server)
	if err != nil {
		stdlog.Fatalf("Failed to start interactive mode: %v", err)
	}
	svc.OnShutdown(func() {
		fmt.Fprintln(node.Stdout(), "Daemon removed this node; shutting down")
		cancel()
	})

	go node.Run(ctx, cancel)

	// Wait for the menu to exit or a shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}
}

// buildElements populates app with the node's elements: element 0 hosts an
// OnOff server plus client, element 1 a second server for multi-element
// dispatch. Returns the element 0 client and server for the menu.
func buildElements(app *model.Application, svc *service.NodeService, logger *slog.Logger) (*onoff.Client, *onoff.Server) {
	sender0 := svc.SenderFor(0)
	element0 := model.NewElement(0)
	server := onoff.NewServer(sender0, logger)
	client := onoff.NewClient(sender0, func(source wire.Address, state byte) {
		fmt.Printf("status from %s: %s\n", source, onoff.StateLabel(state))
	}, logger)
	mustAddModel(element0, server)
	mustAddModel(element0, client)
	mustAddElement(app, element0)

	element1 := model.NewElement(1)
	mustAddModel(element1, onoff.NewServer(svc.SenderFor(1), logger))
	mustAddElement(app, element1)

	return client, server
}

func mustAddModel(e *model.Element, m model.Model) {
	if err := e.AddModel(m); err != nil {
		stdlog.Fatalf("Failed to add model: %v", err)
	}
}

func mustAddElement(app *model.Application, e *model.Element) {
	if err := app.AddElement(e); err != nil {
		stdlog.Fatalf("Failed to add element: %v", err)
	}
}

func loadConfig(path string) (*Config, error) {
	config := &Config{
		CompanyID: 0x05f1,
		ProductID: 0x0001,
		VersionID: 0x0001,
		LogLevel:  "info",
		Remotes: []RemoteConfig{
			{Addr: "0c00", State: onoff.StateOff},
			{Addr: "0c10", State: onoff.StateOn},
		},
	}
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return config, nil
}

// applyFlagOverrides lets command-line flags win over file settings.
func applyFlagOverrides(config *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "state":
			config.StateFile = stateFile
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		}
	})
	if config.StateFile == "" && stateFile != "" {
		config.StateFile = stateFile
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newProtocolLogger builds the structured event logger: debug-level slog
// output always, plus a CBOR file log when configured.
func newProtocolLogger(path string, logger *slog.Logger) (log.Logger, func(), error) {
	adapter := log.NewSlogAdapter(logger)
	if path == "" {
		return adapter, func() {}, nil
	}

	fileLog, err := log.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}
	return log.NewMultiLogger(adapter, fileLog), func() { _ = fileLog.Close() }, nil
}
