package registry

import (
	"os"
	"strings"
	"testing"
	"time"
)

// Needs a reachable etcd; set GOWAMP_ETCD_ENDPOINTS (comma-separated) to run.
func etcdEndpoints(t *testing.T) []string {
	t.Helper()
	raw := os.Getenv("GOWAMP_ETCD_ENDPOINTS")
	if raw == "" {
		t.Skip("GOWAMP_ETCD_ENDPOINTS not set")
	}
	return strings.Split(raw, ",")
}

func TestRegisterAndDiscover(t *testing.T) {
	reg, err := NewEtcdRegistry(etcdEndpoints(t))
	if err != nil {
		t.Fatal(err)
	}

	ep1 := Endpoint{URL: "ws://127.0.0.1:8080/ws", Transport: "websocket", Serializer: "json"}
	ep2 := Endpoint{URL: "tcp://127.0.0.1:8081", Transport: "rawsocket", Serializer: "msgpack"}

	if err := reg.Register("realm1", ep1, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("realm1", ep2, 10); err != nil {
		t.Fatal(err)
	}

	eps, err := reg.Discover("realm1")
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 2 {
		t.Fatalf("expect 2 endpoints, got %d", len(eps))
	}

	if err := reg.Deregister("realm1", ep1.URL); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	eps, err = reg.Discover("realm1")
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 {
		t.Fatalf("expect 1 endpoint after deregister, got %d", len(eps))
	}
	if eps[0].Transport != "rawsocket" {
		t.Errorf("remaining endpoint = %+v", eps[0])
	}
}

func TestPick(t *testing.T) {
	if _, ok := Pick(nil); ok {
		t.Error("Pick on an empty list should report no endpoint")
	}

	eps := []Endpoint{{URL: "ws://a"}, {URL: "ws://b"}}
	for i := 0; i < 20; i++ {
		ep, ok := Pick(eps)
		if !ok {
			t.Fatal("Pick failed on a non-empty list")
		}
		if ep.URL != "ws://a" && ep.URL != "ws://b" {
			t.Fatalf("Pick returned an endpoint not in the list: %+v", ep)
		}
	}
}
