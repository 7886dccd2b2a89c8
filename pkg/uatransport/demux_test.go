package uatransport

import "testing"

type fakeServer struct {
	id   string
	urls []string
}

func (s *fakeServer) ID() string              { return s.id }
func (s *fakeServer) EndpointURLs() []string  { return s.urls }
func (s *fakeServer) DiscoveryURLs() []string { return s.urls }

func TestDemultiplexerRegisterAndLookup(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{})
	srv := &fakeServer{id: "srv-1", urls: []string{"opc.tcp://localhost:4840/my/server"}}

	ok, err := d.Register(srv)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !ok {
		t.Fatal("Register returned false for a fresh path")
	}

	got, err := d.Lookup("opc.tcp://localhost:4840/my/server")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.ID() != "srv-1" {
		t.Errorf("Lookup returned server %q, want srv-1", got.ID())
	}
}

func TestDemultiplexerFirstWriterWins(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{})
	first := &fakeServer{id: "first", urls: []string{"opc.tcp://localhost:4840/shared"}}
	second := &fakeServer{id: "second", urls: []string{"opc.tcp://localhost:4840/shared"}}

	if ok, err := d.Register(first); err != nil || !ok {
		t.Fatalf("first Register: ok=%v err=%v", ok, err)
	}
	ok, err := d.Register(second)
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if ok {
		t.Error("second Register returned true, want false (first-writer-wins)")
	}

	got, err := d.Lookup("opc.tcp://localhost:4840/shared")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.ID() != "first" {
		t.Errorf("Lookup returned %q, want first (original registration must stick)", got.ID())
	}
}

func TestDemultiplexerLookupMissNoFallback(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{})
	if _, err := d.Register(&fakeServer{id: "a", urls: []string{"opc.tcp://localhost:4840/a"}}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := d.Lookup("opc.tcp://localhost:4840/b"); err == nil {
		t.Error("expected a lookup miss to error when relaxed single-server mode is disabled")
	}
}

func TestDemultiplexerRelaxedSingleServerFallback(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{RelaxedSingleServer: true})
	srv := &fakeServer{id: "only", urls: []string{"opc.tcp://localhost:4840/registered-path"}}
	if _, err := d.Register(srv); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := d.Lookup("opc.tcp://localhost:4840/totally-different-path")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.ID() != "only" {
		t.Errorf("Lookup returned %q, want only (single-server fallback)", got.ID())
	}
}

func TestDemultiplexerRelaxedSingleServerDoesNotFallbackWithMultiple(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{RelaxedSingleServer: true})
	if _, err := d.Register(&fakeServer{id: "a", urls: []string{"opc.tcp://localhost:4840/a"}}); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if _, err := d.Register(&fakeServer{id: "b", urls: []string{"opc.tcp://localhost:4840/b"}}); err != nil {
		t.Fatalf("Register b: %v", err)
	}

	if _, err := d.Lookup("opc.tcp://localhost:4840/c"); err == nil {
		t.Error("expected a lookup miss when more than one server is registered")
	}
}

func TestDemultiplexerUnregisterIsIdempotent(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{})
	d.Unregister(&fakeServer{id: "never-registered", urls: []string{"opc.tcp://localhost:4840/never-registered"}})

	srv := &fakeServer{id: "a", urls: []string{"opc.tcp://localhost:4840/a"}}
	if _, err := d.Register(srv); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d.Unregister(srv)
	d.Unregister(srv)

	if _, err := d.Lookup("opc.tcp://localhost:4840/a"); err == nil {
		t.Error("expected lookup to fail after Unregister")
	}
}

func TestDemultiplexerTrailingSlashNormalized(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{})
	if _, err := d.Register(&fakeServer{id: "a", urls: []string{"opc.tcp://localhost:4840/server/"}}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := d.Lookup("opc.tcp://localhost:4840/server"); err != nil {
		t.Errorf("Lookup without trailing slash failed: %v", err)
	}
}

func TestDemultiplexerRegistersEndpointAndDiscoveryURLs(t *testing.T) {
	d := NewEndpointDemultiplexer(DemultiplexerConfig{})
	srv := &multiURLServer{
		id:            "srv-1",
		endpointURLs:  []string{"opc.tcp://localhost:4840/my/server"},
		discoveryURLs: []string{"opc.tcp://localhost:4840/discovery"},
	}

	ok, err := d.Register(srv)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !ok {
		t.Fatal("Register returned false for fresh paths")
	}

	if got, err := d.Lookup("opc.tcp://localhost:4840/my/server"); err != nil || got.ID() != "srv-1" {
		t.Errorf("Lookup(endpoint) = %v, %v; want srv-1", got, err)
	}
	if got, err := d.Lookup("opc.tcp://localhost:4840/discovery"); err != nil || got.ID() != "srv-1" {
		t.Errorf("Lookup(discovery) = %v, %v; want srv-1", got, err)
	}

	d.Unregister(srv)
	if _, err := d.Lookup("opc.tcp://localhost:4840/my/server"); err == nil {
		t.Error("expected endpoint path to be gone after Unregister")
	}
	if _, err := d.Lookup("opc.tcp://localhost:4840/discovery"); err == nil {
		t.Error("expected discovery path to be gone after Unregister")
	}
}

type multiURLServer struct {
	id            string
	endpointURLs  []string
	discoveryURLs []string
}

func (s *multiURLServer) ID() string              { return s.id }
func (s *multiURLServer) EndpointURLs() []string  { return s.endpointURLs }
func (s *multiURLServer) DiscoveryURLs() []string { return s.discoveryURLs }
