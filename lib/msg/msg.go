// Package msg defines the interface for different message brokers.
//
// The supply service publishes every committed snapshot so that other services (price feeds, explorers, ...) learn
// about new supply figures without polling the API.
package msg

import (
	"github.com/tarancss/supply/lib/store"
)

// Exchange where snapshot events are published.
const Exchange = "supply"

// RoutingKey returns the routing key of the snapshot events of the token symbol.
func RoutingKey(symbol string) string {
	return symbol + ".snapshot"
}

// Publisher sends snapshot events to a message broker.
type Publisher interface {
	Setup() error
	Close() error
	SendSnapshot(s store.Snapshot) error
}
