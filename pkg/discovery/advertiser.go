package discovery

import (
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/pion/logging"
)

// MDNSServer is the interface for an active mDNS service registration.
// Allows dependency injection in tests, exactly as the teacher's
// discovery.MDNSServer does.
type MDNSServer interface {
	Shutdown()
}

// MDNSServerFactory creates MDNSServer instances.
type MDNSServerFactory interface {
	Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error)
}

type zeroconfServerFactory struct{}

func (zeroconfServerFactory) Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error) {
	return zeroconf.Register(instance, service, domain, port, txt, ifaces)
}

type activeService struct {
	server       MDNSServer
	instanceName string
}

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// Port is the TCP port the advertised endpoints are reachable on.
	Port int

	// Interfaces restricts advertisement to specific network
	// interfaces. Nil means all interfaces.
	Interfaces []net.Interface

	// ServerFactory creates mDNS servers. Nil uses the real zeroconf factory.
	ServerFactory MDNSServerFactory

	// LoggerFactory creates the advertiser's logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

// Advertiser publishes mDNS DNS-SD records for registered OPC-UA
// servers, one service instance per server name. It is independent of
// the encode/demux hot path (Section 6): a server can be registered
// with EndpointDemultiplexer without ever being advertised, and vice
// versa.
type Advertiser struct {
	config  AdvertiserConfig
	factory MDNSServerFactory
	log     logging.LeveledLogger

	mu       sync.RWMutex
	services map[string]*activeService
	closed   bool
}

// NewAdvertiser creates an Advertiser from config.
func NewAdvertiser(config AdvertiserConfig) (*Advertiser, error) {
	if config.Port <= 0 || config.Port > 65535 {
		return nil, ErrInvalidPort
	}

	factory := config.ServerFactory
	if factory == nil {
		factory = zeroconfServerFactory{}
	}

	a := &Advertiser{
		config:   config,
		factory:  factory,
		services: make(map[string]*activeService),
	}
	if config.LoggerFactory != nil {
		a.log = config.LoggerFactory.NewLogger("discovery")
	}
	return a, nil
}

// Advertise registers an mDNS service instance named serverName for the
// given endpoint URLs. Every endpoint path is published as a "path" TXT
// record; caps, if non-empty, is published as the "caps" TXT record.
func (a *Advertiser) Advertise(serverName string, endpointURLs []string, caps string) error {
	if len(endpointURLs) == 0 {
		return ErrNoEndpointURLs
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if _, exists := a.services[serverName]; exists {
		return ErrAlreadyStarted
	}

	txt := make([]string, 0, len(endpointURLs)+1)
	for _, endpointURL := range endpointURLs {
		path := "/"
		if u, err := url.Parse(endpointURL); err == nil && u.Path != "" {
			path = u.Path
		}
		txt = append(txt, fmt.Sprintf("%s=%s", TXTKeyPath, path))
	}
	if caps != "" {
		txt = append(txt, fmt.Sprintf("%s=%s", TXTKeyCaps, caps))
	}

	if a.log != nil {
		a.log.Infof("advertising mDNS service %s for server %s on port %d", ServiceType, serverName, a.config.Port)
	}

	server, err := a.factory.Register(serverName, ServiceType, DefaultDomain, a.config.Port, txt, a.config.Interfaces)
	if err != nil {
		return fmt.Errorf("discovery: mDNS registration failed for %s: %w", serverName, err)
	}

	a.services[serverName] = &activeService{server: server, instanceName: serverName}
	return nil
}

// Withdraw stops advertising serverName.
func (a *Advertiser) Withdraw(serverName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	svc, exists := a.services[serverName]
	if !exists {
		return ErrNotStarted
	}

	svc.server.Shutdown()
	delete(a.services, serverName)
	return nil
}

// IsAdvertising reports whether serverName currently has an active registration.
func (a *Advertiser) IsAdvertising(serverName string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, exists := a.services[serverName]
	return exists
}

// Close withdraws every active advertisement and closes the Advertiser.
func (a *Advertiser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	for _, svc := range a.services {
		svc.server.Shutdown()
	}
	a.services = nil
	a.closed = true
	return nil
}
