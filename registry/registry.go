// Package registry lets WAMP routers advertise their endpoints and clients
// discover them, instead of hard-wiring router URLs into every deployment.
package registry

import "math/rand"

// Endpoint is one reachable router listener for a realm.
type Endpoint struct {
	URL        string // e.g. "ws://10.0.0.5:8080/ws" or "tcp://10.0.0.5:8081"
	Transport  string // "websocket" or "rawsocket"
	Serializer string // preferred serializer, e.g. "msgpack"
}

// Registry tracks which router endpoints serve which realm.
type Registry interface {
	Register(realm string, ep Endpoint, ttlSeconds int64) error
	Deregister(realm string, url string) error
	Discover(realm string) ([]Endpoint, error)
	Watch(realm string) <-chan []Endpoint
}

// Pick selects one endpoint from a discovery result. Random selection is
// enough to spread clients across routers serving the same realm.
func Pick(eps []Endpoint) (Endpoint, bool) {
	if len(eps) == 0 {
		return Endpoint{}, false
	}
	return eps[rand.Intn(len(eps))], true
}
