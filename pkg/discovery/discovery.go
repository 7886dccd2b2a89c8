// Package discovery advertises registered OPC-UA servers over mDNS
// (DNS-SD), so LAN clients without a Local Discovery Server can still
// find `opc.tcp` endpoints. It is grounded on the teacher's
// pkg/discovery (the MDNSServer/MDNSServerFactory dependency-injection
// seam around grandcat/zeroconf, the mutex-guarded active-service map,
// the *Config+LoggerFactory convention), re-targeted from Matter's
// three commissioning-lifecycle service types to OPC-UA's single
// `_opcua-tcp._tcp` server-discovery service type (OPC 10000-12).
package discovery

import "errors"

// ServiceType is the DNS-SD service type this package advertises.
const ServiceType = "_opcua-tcp._tcp"

// DefaultDomain is the default mDNS domain.
const DefaultDomain = "local."

// TXT record keys, loosely modeled on OPC 10000-12's discovery TXT
// attributes — only what a LAN browser needs to decide whether to
// connect, not a full capability advertisement.
const (
	// TXTKeyPath is the endpoint's URL path component.
	TXTKeyPath = "path"

	// TXTKeyCaps is a comma-separated capability hint (e.g. "LDS,NA").
	TXTKeyCaps = "caps"
)

// Sentinel errors, grounded on the teacher's discovery.Err* set.
var (
	ErrClosed         = errors.New("discovery: closed")
	ErrAlreadyStarted = errors.New("discovery: server already advertised")
	ErrNotStarted     = errors.New("discovery: server not advertised")
	ErrInvalidPort    = errors.New("discovery: invalid port (must be 1-65535)")
	ErrNoEndpointURLs = errors.New("discovery: no endpoint URLs to advertise")
)
