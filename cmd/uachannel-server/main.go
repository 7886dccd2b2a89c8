// uachannel-server is an example composition root demonstrating how
// EndpointDemultiplexer, SocketAcceptor, and ChunkEncoder wire together
// into a running server. It registers a single example server under
// one endpoint URL, optionally advertises it over mDNS, and echoes a
// symmetric-security greeting chunk on every matched connection.
//
// Usage:
//
//	uachannel-server [options]
//
// Options:
//
//	-listen                  TCP address to accept connections on (default: 0.0.0.0:4840)
//	-path                    endpoint URL path this server answers to (default: /example/server)
//	-name                    mDNS instance name (default: uachannel-example)
//	-advertise               advertise the endpoint over mDNS (default: false)
//	-workers                 bounded worker pool size (default: 4)
//	-relaxed-single-server   route any Hello to this server when it is the only one registered
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/logging"

	"github.com/opcuax/uachannel/pkg/discovery"
	"github.com/opcuax/uachannel/pkg/uatransport"
	"github.com/opcuax/uachannel/pkg/workerpool"
)

func main() {
	opts := ParseFlags()

	loggerFactory := logging.NewDefaultLoggerFactory()

	_, portStr, err := net.SplitHostPort(opts.ListenAddr)
	if err != nil {
		log.Fatalf("invalid -listen address %q: %v", opts.ListenAddr, err)
	}
	port := 4840
	fmt.Sscanf(portStr, "%d", &port)

	endpointURL := fmt.Sprintf("opc.tcp://%s%s", hostPart(opts.ListenAddr), opts.EndpointPath)

	pool := workerpool.NewPool(workerpool.Config{
		Size:          opts.WorkerPoolSize,
		LoggerFactory: loggerFactory,
	})
	defer pool.Close()

	demux := uatransport.NewEndpointDemultiplexer(uatransport.DemultiplexerConfig{
		RelaxedSingleServer: opts.RelaxedSingleServer,
		LoggerFactory:       loggerFactory,
	})

	srv := newEchoServer(opts.ServerName, endpointURL, pool)
	if ok, err := demux.Register(srv); err != nil {
		log.Fatalf("register endpoint: %v", err)
	} else if !ok {
		log.Fatalf("endpoint %s already registered", endpointURL)
	}

	acceptor, err := uatransport.NewSocketAcceptor(uatransport.AcceptorConfig{
		ListenAddr:    opts.ListenAddr,
		HelloReader:   demoHelloReader{},
		Demultiplexer: demux,
		OnMatch: func(conn net.Conn, matched uatransport.Server) {
			es, ok := matched.(*echoServer)
			if !ok {
				conn.Close()
				return
			}
			es.handleConnection(conn)
		},
		OnMismatch: func(conn net.Conn, endpointURL string, err error) {
			log.Printf("rejecting connection for unknown endpoint %q: %v", endpointURL, err)
			conn.Close()
		},
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		log.Fatalf("create acceptor: %v", err)
	}

	if err := acceptor.Start(); err != nil {
		log.Fatalf("start acceptor: %v", err)
	}
	defer acceptor.Stop()

	log.Printf("listening on %s, endpoint %s", acceptor.LocalAddr(), endpointURL)

	var advertiser *discovery.Advertiser
	if opts.Advertise {
		advertiser, err = discovery.NewAdvertiser(discovery.AdvertiserConfig{
			Port:          port,
			LoggerFactory: loggerFactory,
		})
		if err != nil {
			log.Fatalf("create advertiser: %v", err)
		}
		if err := advertiser.Advertise(opts.ServerName, srv.EndpointURLs(), ""); err != nil {
			log.Fatalf("advertise endpoint: %v", err)
		}
		defer advertiser.Close()
		log.Printf("advertising %s over mDNS as %s", endpointURL, opts.ServerName)
	}

	waitForSignal()
	log.Println("shutting down...")
}

// hostPart returns the host component of a "host:port" listen address,
// substituting "localhost" for an empty/wildcard host so the generated
// endpoint URL is dialable by a local client.
func hostPart(listenAddr string) string {
	host, _, err := net.SplitHostPort(listenAddr)
	if err != nil || host == "" || host == "0.0.0.0" || host == "::" {
		return "localhost"
	}
	return host
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
