// Package uatransport implements the connection-accepting half of this
// repository: the TCP socket acceptor and the endpoint demultiplexer
// that routes an incoming Hello's endpoint URL to a registered server
// instance. It is grounded on the teacher's pkg/transport (Manager's
// config-struct-plus-mutex-map lifecycle, TCP's listener/connection
// bookkeeping), re-targeted from Matter's UDP/TCP dual-stack messaging
// to OPC-UA TCP-only connection routing.
package uatransport

import (
	"net/url"
	"strings"
	"sync"

	"github.com/pion/logging"

	"github.com/opcuax/uachannel/pkg/uaerrors"
)

// EndpointDemultiplexer routes a connection's Hello-frame endpoint URL
// to the Server registered for it (Section 4.6). Registration is
// first-writer-wins: a second Register call for a path already taken is
// a no-op, reported back to the caller via its bool return so it can
// log the conflict.
type EndpointDemultiplexer struct {
	mu      sync.RWMutex
	servers map[string]Server // keyed by normalized URL path
	log     logging.LeveledLogger

	// RelaxedSingleServer, when true, makes Lookup fall back to the
	// sole registered server if exactly one is registered, even when
	// its path does not match the requested endpoint URL (Section 4.6's
	// single-server deployment convenience).
	relaxedSingleServer bool
}

// DemultiplexerConfig configures an EndpointDemultiplexer.
type DemultiplexerConfig struct {
	// RelaxedSingleServer enables the single-registered-server fallback.
	RelaxedSingleServer bool

	// LoggerFactory creates the demultiplexer's logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

// NewEndpointDemultiplexer creates an empty demultiplexer.
func NewEndpointDemultiplexer(config DemultiplexerConfig) *EndpointDemultiplexer {
	d := &EndpointDemultiplexer{
		servers:             make(map[string]Server),
		relaxedSingleServer: config.RelaxedSingleServer,
	}
	if config.LoggerFactory != nil {
		d.log = config.LoggerFactory.NewLogger("uatransport-demux")
	}
	return d
}

// Register associates srv with every one of its endpoint and discovery
// URLs (Section 4.6). Returns true if every path was unregistered and
// is now claimed by srv; false if any path was already held by another
// server (first-writer-wins per path — the paths srv did win remain
// registered, since a partial registration still routes correctly for
// the ones that succeeded).
func (d *EndpointDemultiplexer) Register(srv Server) (bool, error) {
	urls := append(append([]string{}, srv.EndpointURLs()...), srv.DiscoveryURLs()...)

	d.mu.Lock()
	defer d.mu.Unlock()

	allOK := true
	for _, endpointURL := range urls {
		path, err := normalizeEndpointPath(endpointURL)
		if err != nil {
			return false, uaerrors.EndpointURLInvalid("malformed endpoint URL: " + err.Error())
		}

		if holder, taken := d.servers[path]; taken {
			if holder == srv {
				continue
			}
			if d.log != nil {
				d.log.Warnf("endpoint path %q already registered, ignoring duplicate registration by %s", path, srv.ID())
			}
			allOK = false
			continue
		}

		d.servers[path] = srv
		if d.log != nil {
			d.log.Infof("registered endpoint path %q for server %s", path, srv.ID())
		}
	}
	return allOK, nil
}

// Unregister removes each of srv's endpoint and discovery URL paths
// that is currently registered to srv; a path held by another server is
// left in place. Idempotent.
func (d *EndpointDemultiplexer) Unregister(srv Server) {
	urls := append(append([]string{}, srv.EndpointURLs()...), srv.DiscoveryURLs()...)

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, endpointURL := range urls {
		path, err := normalizeEndpointPath(endpointURL)
		if err != nil {
			continue
		}
		if holder, ok := d.servers[path]; ok && holder == srv {
			delete(d.servers, path)
		}
	}
}

// Lookup resolves endpointURL to a registered server. Falls back to the
// sole registered server when RelaxedSingleServer is enabled and
// exactly one server is registered, regardless of path match.
func (d *EndpointDemultiplexer) Lookup(endpointURL string) (Server, error) {
	path, err := normalizeEndpointPath(endpointURL)
	if err != nil {
		return nil, uaerrors.EndpointURLInvalid("malformed endpoint URL: " + err.Error())
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if srv, ok := d.servers[path]; ok {
		return srv, nil
	}

	if d.relaxedSingleServer {
		var sole Server
		unique := true
		for _, srv := range d.servers {
			if sole == nil {
				sole = srv
			} else if srv != sole {
				unique = false
				break
			}
		}
		if sole != nil && unique {
			return sole, nil
		}
	}

	return nil, uaerrors.EndpointURLInvalid("no server registered for endpoint path " + path)
}

// normalizeEndpointPath extracts and normalizes the URL path component
// used as the demultiplexer's lookup key, so "opc.tcp://host:4840/foo"
// and "opc.tcp://host:4840/foo/" match the same registration. On parse
// failure, endpointURL itself is used as the fallback key (Section
// 4.6), so a malformed URL can still be registered and looked up
// consistently as long as the caller spells it the same way each time.
func normalizeEndpointPath(endpointURL string) (string, error) {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return endpointURL, nil
	}

	path := u.Path
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path, nil
}
