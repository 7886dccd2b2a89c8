package discovery

import (
	"net"
	"testing"
)

type fakeMDNSServer struct {
	shutdownCalled bool
}

func (f *fakeMDNSServer) Shutdown() { f.shutdownCalled = true }

type fakeFactory struct {
	lastInstance string
	lastService  string
	lastPort     int
	lastTXT      []string
	server       *fakeMDNSServer
	err          error
}

func (f *fakeFactory) Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastInstance = instance
	f.lastService = service
	f.lastPort = port
	f.lastTXT = txt
	f.server = &fakeMDNSServer{}
	return f.server, nil
}

func TestAdvertiserAdvertiseRegistersService(t *testing.T) {
	factory := &fakeFactory{}
	adv, err := NewAdvertiser(AdvertiserConfig{Port: 4840, ServerFactory: factory})
	if err != nil {
		t.Fatalf("NewAdvertiser: %v", err)
	}

	err = adv.Advertise("my-server", []string{"opc.tcp://host:4840/my/server"}, "LDS,NA")
	if err != nil {
		t.Fatalf("Advertise: %v", err)
	}

	if factory.lastInstance != "my-server" {
		t.Errorf("instance = %q, want my-server", factory.lastInstance)
	}
	if factory.lastService != ServiceType {
		t.Errorf("service = %q, want %q", factory.lastService, ServiceType)
	}
	if factory.lastPort != 4840 {
		t.Errorf("port = %d, want 4840", factory.lastPort)
	}

	wantTXT := map[string]bool{"path=/my/server": false, "caps=LDS,NA": false}
	for _, rec := range factory.lastTXT {
		if _, ok := wantTXT[rec]; ok {
			wantTXT[rec] = true
		}
	}
	for rec, seen := range wantTXT {
		if !seen {
			t.Errorf("TXT records %v missing expected record %q", factory.lastTXT, rec)
		}
	}

	if !adv.IsAdvertising("my-server") {
		t.Error("IsAdvertising = false, want true")
	}
}

func TestAdvertiserAdvertiseDuplicateNameRejected(t *testing.T) {
	factory := &fakeFactory{}
	adv, err := NewAdvertiser(AdvertiserConfig{Port: 4840, ServerFactory: factory})
	if err != nil {
		t.Fatalf("NewAdvertiser: %v", err)
	}

	if err := adv.Advertise("my-server", []string{"opc.tcp://host:4840/a"}, ""); err != nil {
		t.Fatalf("first Advertise: %v", err)
	}
	if err := adv.Advertise("my-server", []string{"opc.tcp://host:4840/b"}, ""); err != ErrAlreadyStarted {
		t.Errorf("second Advertise error = %v, want ErrAlreadyStarted", err)
	}
}

func TestAdvertiserAdvertiseRequiresEndpointURLs(t *testing.T) {
	adv, err := NewAdvertiser(AdvertiserConfig{Port: 4840, ServerFactory: &fakeFactory{}})
	if err != nil {
		t.Fatalf("NewAdvertiser: %v", err)
	}
	if err := adv.Advertise("my-server", nil, ""); err != ErrNoEndpointURLs {
		t.Errorf("err = %v, want ErrNoEndpointURLs", err)
	}
}

func TestAdvertiserWithdrawShutsDownServer(t *testing.T) {
	factory := &fakeFactory{}
	adv, err := NewAdvertiser(AdvertiserConfig{Port: 4840, ServerFactory: factory})
	if err != nil {
		t.Fatalf("NewAdvertiser: %v", err)
	}
	if err := adv.Advertise("my-server", []string{"opc.tcp://host:4840/a"}, ""); err != nil {
		t.Fatalf("Advertise: %v", err)
	}

	if err := adv.Withdraw("my-server"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if !factory.server.shutdownCalled {
		t.Error("Withdraw did not call Shutdown on the registered server")
	}
	if adv.IsAdvertising("my-server") {
		t.Error("IsAdvertising = true after Withdraw, want false")
	}

	if err := adv.Withdraw("my-server"); err != ErrNotStarted {
		t.Errorf("second Withdraw error = %v, want ErrNotStarted", err)
	}
}

func TestAdvertiserCloseShutsDownAllAndRejectsFurtherUse(t *testing.T) {
	factory := &fakeFactory{}
	adv, err := NewAdvertiser(AdvertiserConfig{Port: 4840, ServerFactory: factory})
	if err != nil {
		t.Fatalf("NewAdvertiser: %v", err)
	}
	if err := adv.Advertise("my-server", []string{"opc.tcp://host:4840/a"}, ""); err != nil {
		t.Fatalf("Advertise: %v", err)
	}

	if err := adv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !factory.server.shutdownCalled {
		t.Error("Close did not shut down the active service")
	}

	if err := adv.Advertise("another-server", []string{"opc.tcp://host:4840/b"}, ""); err != ErrClosed {
		t.Errorf("Advertise after Close error = %v, want ErrClosed", err)
	}
	if err := adv.Close(); err != ErrClosed {
		t.Errorf("second Close error = %v, want ErrClosed", err)
	}
}

func TestNewAdvertiserRejectsInvalidPort(t *testing.T) {
	if _, err := NewAdvertiser(AdvertiserConfig{Port: 0}); err != ErrInvalidPort {
		t.Errorf("err = %v, want ErrInvalidPort", err)
	}
	if _, err := NewAdvertiser(AdvertiserConfig{Port: 70000}); err != ErrInvalidPort {
		t.Errorf("err = %v, want ErrInvalidPort", err)
	}
}
