// File: relay/connection.go
// Author: momentics <momentics@gmail.com>
//
// Per-client connection state.

package relay

import (
	"net"

	"github.com/google/uuid"
	"github.com/momentics/hioload-relay/api"
	"github.com/momentics/hioload-relay/protocol"
	"go.uber.org/zap"
)

// Connection is one live client. Token is reused after disconnect; Session
// is unique per accepted socket and only serves log correlation.
type Connection struct {
	Token   api.Token
	Peer    net.Addr
	Session uuid.UUID

	stream     api.Stream
	recv       protocol.Buffer
	readErrors int
}

func newConnection(token api.Token, stream api.Stream, peer net.Addr) *Connection {
	return &Connection{
		Token:   token,
		Peer:    peer,
		Session: uuid.New(),
		stream:  stream,
	}
}

// Buffered returns the number of received bytes not yet framed.
func (c *Connection) Buffered() int { return c.recv.Len() }

func (c *Connection) fields() []zap.Field {
	peer := "unknown"
	if c.Peer != nil {
		peer = c.Peer.String()
	}
	return []zap.Field{
		zap.Uint32("token", uint32(c.Token)),
		zap.String("peer", peer),
		zap.Stringer("session", c.Session),
	}
}
