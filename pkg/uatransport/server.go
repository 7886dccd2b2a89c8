package uatransport

// Server is the minimal shape EndpointDemultiplexer stores and hands
// back to a matched connection. Request dispatch, session state, and
// the decode path are a different server's concern entirely (Section 1
// Non-goals); this repository only needs enough to route and to log.
type Server interface {
	// ID returns an opaque identifier for this server instance, used in
	// logging only.
	ID() string

	// EndpointURLs returns every endpoint URL this server answers to
	// (e.g. "opc.tcp://0.0.0.0:4840/my/server"). EndpointDemultiplexer.Register
	// registers all of them, together with DiscoveryURLs, in one call.
	EndpointURLs() []string

	// DiscoveryURLs returns the URLs advertised to LDS/mDNS clients,
	// which may differ from EndpointURLs (Section 3).
	DiscoveryURLs() []string
}
