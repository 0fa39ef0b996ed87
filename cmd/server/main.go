// Main entry point for the example web server
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"webserver/internal/httpserver"
	"webserver/internal/obs"
	"webserver/internal/socks"
)

// Configuration options
type Config struct {
	Address     string
	Port        int
	Threads     int
	PublicRoot  string
	IdleTimeout time.Duration
	MaxConns    int
	Multiplex   bool
	XorKey      string
	EnableSocks bool
	SocksAddr   string
	Verbose     bool
}

func (c *Config) listenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

func main() {
	config, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Usage: server [flags] [<address> <port> <threads>]")
		os.Exit(2)
	}

	runtime.GOMAXPROCS(config.Threads)
	logger := newLogger(config.Verbose)

	server, err := newHTTPServer(config, logger)
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	// Set up signal handling for graceful shutdown
	setupSignalHandling(server)

	if config.EnableSocks {
		startSocksServer(config, server, logger)
	}

	logger.Logf(obs.Info, "starting HTTP server on %s with %d threads", config.listenAddr(), config.Threads)
	if err := server.ListenAndServe(config.listenAddr()); err != nil && !errors.Is(err, httpserver.ErrServerClosed) {
		log.Fatalf("HTTP server error: %v", err)
	}
}

// parseFlags parses command line flags. Exactly three positional arguments
// are read as <address> <port> <threads> and override the flags.
func parseFlags(args []string) (*Config, error) {
	config := &Config{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&config.Address, "address", "0.0.0.0", "Address to listen on")
	fs.IntVar(&config.Port, "port", 8080, "Port to listen on")
	fs.IntVar(&config.Threads, "threads", runtime.NumCPU(), "Number of threads serving connections")
	fs.StringVar(&config.PublicRoot, "public", "public", "Directory static files are served from")
	fs.DurationVar(&config.IdleTimeout, "idle-timeout", 30*time.Second, "Close connections idle for this long")
	fs.IntVar(&config.MaxConns, "max-conns", 0, "Maximum concurrent connections (0 for no limit)")
	fs.BoolVar(&config.Multiplex, "multiplex", false, "Serve every connection as a yamux session")
	fs.StringVar(&config.XorKey, "xor-key", "", "XOR key for encoding/decoding")
	fs.BoolVar(&config.EnableSocks, "enable-socks", false, "Enable SOCKS5 proxy")
	fs.StringVar(&config.SocksAddr, "socks", "127.0.0.1:1080", "SOCKS5 proxy address")
	fs.BoolVar(&config.Verbose, "v", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 3:
		config.Address = fs.Arg(0)
		port, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return nil, fmt.Errorf("invalid port %q", fs.Arg(1))
		}
		config.Port = port
		// Unparsable thread counts fall back to one, like any value below one.
		config.Threads, _ = strconv.Atoi(fs.Arg(2))
	default:
		return nil, fmt.Errorf("expected 0 or 3 positional arguments, got %d", fs.NArg())
	}

	if net.ParseIP(config.Address) == nil {
		return nil, fmt.Errorf("invalid address %q", config.Address)
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", config.Port)
	}
	config.Threads = max(1, config.Threads)

	return config, nil
}

func newLogger(verbose bool) obs.Logger {
	level := obs.Info
	if verbose {
		level = obs.Debug
	}
	return obs.StdLogger{L: log.New(os.Stderr, "", log.LstdFlags), Min: level}
}

// newHTTPServer builds the server and its demo routes
func newHTTPServer(config *Config, logger obs.Logger) (*httpserver.Server, error) {
	cfg := httpserver.DefaultConfig()
	cfg.PublicRoot = config.PublicRoot
	cfg.IdleTimeout = config.IdleTimeout
	cfg.MaxConns = config.MaxConns
	cfg.Multiplex = config.Multiplex
	cfg.XorKey = config.XorKey
	cfg.Logger = logger

	var server *httpserver.Server
	mux := httpserver.NewMux()
	registerRoutes(mux, config.PublicRoot, func() statsSource { return server })

	server, err := httpserver.NewServer(mux, cfg)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// setupSignalHandling sets up signal handling for graceful shutdown
func setupSignalHandling(server *httpserver.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received signal, shutting down...")
		server.Close()
		os.Exit(0)
	}()
}

// startSocksServer starts the SOCKS5 proxy server. Requests for the web
// server's own address are answered in-process.
func startSocksServer(config *Config, server *httpserver.Server, logger obs.Logger) {
	proxy, err := socks.NewServer(socks.Config{
		Addr:      config.SocksAddr,
		XorKey:    config.XorKey,
		LocalAddr: config.listenAddr(),
		Local:     server,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create SOCKS5 server: %v", err)
	}

	// Start the server in a goroutine
	proxy.StartAsync()
}
