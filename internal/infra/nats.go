// README: NATS connection for dispatch events.
package infra

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

func NewNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("fleetdispatch"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}
