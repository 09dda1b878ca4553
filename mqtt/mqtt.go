// Package mqtt publishes node codes to an MQTT broker.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"

	"github.com/danielliyk/Embedded-System-Labs/config"
)

// DefaultTopic carries one code byte per message.
const DefaultTopic = "gesture/code"

// ErrClosed is returned by Notify after Close.
var ErrClosed = errors.New("mqtt: sink closed")

// Options configures Dial.
type Options struct {
	Addr     string // host:port
	Topic    string
	ClientID string // random when empty
	QoS      byte
	Username string
	Password string
	Logger   *slog.Logger
}

// Sink publishes each code as a one-byte payload.
type Sink struct {
	client *paho.Client
	topic  string
	qos    byte
	log    *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Dial connects to the broker.
func Dial(ctx context.Context, opt Options) (*Sink, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", opt.Addr)
	if err != nil {
		return nil, fmt.Errorf("mqtt: could not dial %s: %w", opt.Addr, err)
	}
	return connect(ctx, conn, opt)
}

func connect(ctx context.Context, conn net.Conn, opt Options) (*Sink, error) {
	log := config.Discard(opt.Logger)
	if opt.Topic == "" {
		opt.Topic = DefaultTopic
	}
	if opt.ClientID == "" {
		opt.ClientID = "gestured-" + uuid.NewString()
	}

	client := paho.NewClient(paho.ClientConfig{
		Conn:     conn,
		ClientID: opt.ClientID,
		OnClientError: func(err error) {
			log.Warn("mqtt client error", "err", err)
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			log.Warn("mqtt server disconnect", "reason", d.ReasonCode)
		},
	})

	ack, err := client.Connect(ctx, &paho.Connect{
		ClientID:     opt.ClientID,
		CleanStart:   true,
		KeepAlive:    30,
		Username:     opt.Username,
		UsernameFlag: opt.Username != "",
		Password:     []byte(opt.Password),
		PasswordFlag: opt.Password != "",
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mqtt: could not connect: %w", err)
	}
	if ack.ReasonCode != 0 {
		conn.Close()
		return nil, fmt.Errorf("mqtt: connect refused: reason %d", ack.ReasonCode)
	}
	log.Info("mqtt connected", "addr", conn.RemoteAddr().String(), "client", opt.ClientID, "topic", opt.Topic)

	return &Sink{client: client, topic: opt.Topic, qos: opt.QoS, log: log}, nil
}

// Notify publishes code as a one-byte payload. It holds the lock across
// the publish so a concurrent Close waits for it.
func (s *Sink) Notify(ctx context.Context, code byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.client.Publish(ctx, &paho.Publish{
		QoS:     s.qos,
		Topic:   s.topic,
		Payload: []byte{code},
	})
	if err != nil {
		return fmt.Errorf("mqtt: could not publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
}
