package listener

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/message"
)

// Broadcaster sends control messages from one socket. It is the producer side of the protocol.
type Broadcaster struct {
	conn net.PacketConn
	dst  *net.UDPAddr
}

// NewBroadcaster opens a socket allowed to send to host:port, typically the subnet broadcast address.
func NewBroadcaster(ctx context.Context, host string, port int) (*Broadcaster, error) {
	dst, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}

	lc := net.ListenConfig{Control: control}
	conn, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindFailed, err)
	}

	return &Broadcaster{conn: conn, dst: dst}, nil
}

// Send encodes m and writes it as a single datagram.
func (b *Broadcaster) Send(m message.Message) error {
	payload, err := message.Encode(m)
	if err != nil {
		return err
	}

	if _, err := b.conn.WriteTo(payload, b.dst); err != nil {
		return fmt.Errorf("send to %s: %w", b.dst, err)
	}

	log.Debugf("sent %q to %s", payload, b.dst)
	return nil
}

// Destination returns the address datagrams are sent to.
func (b *Broadcaster) Destination() net.Addr {
	return b.dst
}

// Close releases the socket.
func (b *Broadcaster) Close() error {
	return b.conn.Close()
}
