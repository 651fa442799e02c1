// Package routertest boots a local WAMP router (crossbar by default) for
// integration tests. The router is owned by an explicit Router value with a
// Start/Stop lifecycle; readiness is probed with a real transport handshake
// rather than a health endpoint, because "the port is open" and "the router
// speaks WAMP" are not the same thing.
package routertest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gowamp/codec"
	"gowamp/peer"
	"gowamp/transport"
)

// Listener ports, overridable per environment so parallel CI jobs do not
// collide.
const (
	DefaultWebSocketPort     = 8080
	DefaultRawSocketPort     = 8081
	DefaultRawSocketAuthPort = 8082

	envWebSocketPort     = "GOWAMP_WS_PORT"
	envRawSocketPort     = "GOWAMP_RAWSOCKET_PORT"
	envRawSocketAuthPort = "GOWAMP_RAWSOCKET_AUTH_PORT"
)

func portFromEnv(name string, def int) int {
	if raw := os.Getenv(name); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			return p
		}
	}
	return def
}

// WebSocketPort is the router's websocket listener port.
func WebSocketPort() int { return portFromEnv(envWebSocketPort, DefaultWebSocketPort) }

// RawSocketPort is the router's raw-socket listener port.
func RawSocketPort() int { return portFromEnv(envRawSocketPort, DefaultRawSocketPort) }

// RawSocketAuthPort is the router's authenticating raw-socket listener port.
func RawSocketAuthPort() int { return portFromEnv(envRawSocketAuthPort, DefaultRawSocketAuthPort) }

// Config describes the router process to launch.
type Config struct {
	Host         string   // default 127.0.0.1
	Port         int      // websocket port, default WebSocketPort()
	Path         string   // websocket path, default "ws"
	Realm        string   // default "realm1"
	Executable   string   // default "crossbar"
	Arguments    []string // default ["start"]
	CrossbarPath string   // --cbdir value, default ".crossbar"

	// Readiness probing
	Attempts int           // default 30
	Interval time.Duration // default 1s

	Logger *zap.Logger
}

func (c *Config) withDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = WebSocketPort()
	}
	if c.Path == "" {
		c.Path = "ws"
	}
	if c.Realm == "" {
		c.Realm = "realm1"
	}
	if c.Executable == "" {
		c.Executable = "crossbar"
	}
	if c.Arguments == nil {
		c.Arguments = []string{"start"}
	}
	if c.CrossbarPath == "" {
		c.CrossbarPath = ".crossbar"
	}
	if c.Attempts == 0 {
		c.Attempts = 30
	}
	if c.Interval == 0 {
		c.Interval = peer.DefaultProbeInterval
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Router is one launched router process.
type Router struct {
	cfg Config
	cmd *exec.Cmd
	log *zap.Logger
}

// URL is the router's websocket endpoint.
func (r *Router) URL() string {
	return fmt.Sprintf("ws://%s:%d/%s", r.cfg.Host, r.cfg.Port, r.cfg.Path)
}

// Realm the router serves.
func (r *Router) Realm() string { return r.cfg.Realm }

// Start launches the router process and blocks until it accepts a WAMP
// handshake or the probe budget runs out.
func Start(cfg Config) (*Router, error) {
	cfg.withDefaults()
	r := &Router{cfg: cfg, log: cfg.Logger}

	args := append([]string{}, cfg.Arguments...)
	args = append(args, "--cbdir", cfg.CrossbarPath)
	r.cmd = exec.Command(cfg.Executable, args...)
	if err := r.cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "launch %s", cfg.Executable)
	}
	r.log.Info("router launched",
		zap.String("executable", cfg.Executable), zap.Int("pid", r.cmd.Process.Pid))

	// Ready means: a websocket connection upgrades and the raw connection is
	// accepted. Connection refused retries; anything else is a real failure.
	err := peer.Probe(context.Background(), func() error {
		tr, err := transport.DialWebSocket(r.URL(), codec.CodecTypeJSON, 2*time.Second)
		if err != nil {
			return err
		}
		return tr.Close()
	}, cfg.Attempts, cfg.Interval)
	if err != nil {
		r.Stop()
		return nil, errors.Wrap(err, "router never became reachable")
	}

	r.log.Info("router ready", zap.String("url", r.URL()))
	return r, nil
}

// Stop terminates the router process and reaps it.
func (r *Router) Stop() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	if err := r.cmd.Process.Signal(os.Interrupt); err != nil {
		r.cmd.Process.Kill()
	}

	done := make(chan error, 1)
	go func() { done <- r.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		r.cmd.Process.Kill()
		<-done
	}
	r.log.Info("router stopped")
	return nil
}
