package main

import (
	"flag"
	"os"
)

// Options holds the standard CLI flags for this example server, mirroring
// the flag.FlagSet convention cmd/matter-light-device uses for its own
// device options.
type Options struct {
	// ListenAddr is the TCP address to accept connections on.
	ListenAddr string

	// EndpointPath is the path component of this server's single
	// endpoint URL, e.g. "/example/server".
	EndpointPath string

	// ServerName is the mDNS instance name this server advertises under.
	ServerName string

	// Advertise enables mDNS/DNS-SD advertisement of the endpoint.
	Advertise bool

	// WorkerPoolSize bounds concurrent per-block RSA operations.
	WorkerPoolSize int

	// RelaxedSingleServer allows the demultiplexer to route any Hello
	// to this server when it is the only one registered.
	RelaxedSingleServer bool
}

// DefaultOptions returns Options with sensible defaults for local testing.
func DefaultOptions() Options {
	return Options{
		ListenAddr:          "0.0.0.0:4840",
		EndpointPath:        "/example/server",
		ServerName:          "uachannel-example",
		Advertise:           false,
		WorkerPoolSize:      4,
		RelaxedSingleServer: true,
	}
}

// ParseFlags parses os.Args into Options, starting from DefaultOptions.
func ParseFlags() Options {
	opts := DefaultOptions()

	fs := flag.NewFlagSet("uachannel-server", flag.ExitOnError)
	fs.StringVar(&opts.ListenAddr, "listen", opts.ListenAddr, "TCP address to accept connections on")
	fs.StringVar(&opts.EndpointPath, "path", opts.EndpointPath, "endpoint URL path this server answers to")
	fs.StringVar(&opts.ServerName, "name", opts.ServerName, "mDNS instance name")
	fs.BoolVar(&opts.Advertise, "advertise", opts.Advertise, "advertise the endpoint over mDNS")
	fs.IntVar(&opts.WorkerPoolSize, "workers", opts.WorkerPoolSize, "bounded worker pool size for asymmetric cipher operations")
	fs.BoolVar(&opts.RelaxedSingleServer, "relaxed-single-server", opts.RelaxedSingleServer, "route any Hello to this server when it is the only one registered")
	fs.Parse(os.Args[1:])

	return opts
}
