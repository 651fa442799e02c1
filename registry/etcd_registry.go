// etcd-backed implementation of the Registry interface.
//
// Routers register under:
//
//	Key:   /gowamp/{realm}/{url}
//	Value: JSON-encoded Endpoint
//
// Registration uses TTL leases: when a router dies, its lease expires and the
// endpoint disappears on its own, so clients never discover a ghost router.
package registry

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdRegistry implements Registry on etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // thread-safe, shared across goroutines
}

// NewEtcdRegistry connects to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

func key(realm, url string) string {
	return "/gowamp/" + realm + "/" + url
}

// Register advertises a router endpoint for a realm with a TTL lease and
// keeps the lease alive in the background.
func (r *EtcdRegistry) Register(realm string, ep Endpoint, ttlSeconds int64) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, ttlSeconds)
	if err != nil {
		return err
	}

	val, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	_, err = r.client.Put(ctx, key(realm, ep.URL), string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}

	// Drain KeepAlive responses so the channel never fills up
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes a router endpoint, typically during graceful shutdown.
func (r *EtcdRegistry) Deregister(realm string, url string) error {
	_, err := r.client.Delete(context.TODO(), key(realm, url))
	return err
}

// Discover returns the endpoints currently advertised for a realm.
func (r *EtcdRegistry) Discover(realm string) ([]Endpoint, error) {
	prefix := "/gowamp/" + realm + "/"

	resp, err := r.client.Get(context.TODO(), prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	eps := make([]Endpoint, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var ep Endpoint
		if err := json.Unmarshal(kv.Value, &ep); err != nil {
			continue // skip malformed entries
		}
		eps = append(eps, ep)
	}
	return eps, nil
}

// Watch emits the full endpoint list for a realm whenever it changes.
func (r *EtcdRegistry) Watch(realm string) <-chan []Endpoint {
	ch := make(chan []Endpoint, 1)
	prefix := "/gowamp/" + realm + "/"

	go func() {
		watchChan := r.client.Watch(context.TODO(), prefix, clientv3.WithPrefix())
		for range watchChan {
			// Re-fetch the full list on any change; simpler than replaying
			// individual watch events
			eps, _ := r.Discover(realm)
			ch <- eps
		}
	}()

	return ch
}
