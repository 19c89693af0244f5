// Package port owns the serial connection to the G3-PLC modem: a single
// reader/writer goroutine that decodes inbound USI frames and fans them out
// to subscriber channels, and accepts outbound frames over a queue.
package port

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"

	"github.com/g3plc/neg3ctl/internal/usi"
)

// receiveTimeout bounds how long a single read blocks before the port task
// checks its outbound queue; it mirrors the original's 10ms half-duplex poll.
const receiveTimeout = 10 * time.Millisecond

// Frame is a decoded inbound USI message delivered to subscribers.
type Frame struct {
	Protocol usi.Protocol
	Payload  []byte
}

// Port owns a serial (or any io.ReadWriteCloser) connection and runs the
// read/decode/dispatch loop on its own goroutine, mirroring the original's
// Port<T> task.
type Port struct {
	conn      io.ReadWriteCloser
	out       chan usi.OutMessage
	listeners []chan Frame
	log       *log.Logger
}

/*-------------------------------------------------------------
 *
 * Name:	Open
 *
 * Purpose:	Open the serial device and wrap it in a Port, ready to Start.
 *
 * Inputs:	devicename	- e.g. /dev/ttyUSB0.
 *		baud		- e.g. 115200. 0 leaves the current speed alone.
 *
 * Returns:	*Port, or an error if the device could not be opened.
 *
 *--------------------------------------------------------------*/

func Open(devicename string, baud int, logger *log.Logger) (*Port, error) {
	t, err := term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("port: opening %s: %w", devicename, err)
	}
	if baud != 0 {
		if err := t.SetSpeed(baud); err != nil {
			t.Close()
			return nil, fmt.Errorf("port: setting speed %d on %s: %w", baud, devicename, err)
		}
	}
	return NewWithConn(t, logger), nil
}

// NewWithConn wraps an already-open connection (used by tests with an
// in-memory pipe, and by Open above for the real serial device).
func NewWithConn(conn io.ReadWriteCloser, logger *log.Logger) *Port {
	if logger == nil {
		logger = log.Default()
	}
	return &Port{conn: conn, out: make(chan usi.OutMessage, 64), log: logger}
}

// Subscribe registers a channel that receives every decoded inbound frame.
// It must be called before Start.
func (p *Port) Subscribe(ch chan Frame) {
	p.listeners = append(p.listeners, ch)
}

// Send enqueues an outbound primitive for transmission.
func (p *Port) Send(msg usi.OutMessage) {
	p.out <- msg
}

// Start launches the read/dispatch goroutine. It returns when ctx is
// cancelled, after closing the underlying connection.
func (p *Port) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Port) run(ctx context.Context) {
	defer p.conn.Close()
	decoder := usi.NewInMessage()
	buf := make([]byte, 2048)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.out:
			if err := p.write(msg); err != nil {
				p.log.Error("usi write failed", "err", err)
			}
		default:
		}

		n, err := p.conn.Read(buf)
		if err != nil {
			if !isTimeout(err) {
				p.log.Warn("usi read error", "err", err)
				time.Sleep(receiveTimeout)
			}
			continue
		}
		if n == 0 {
			continue
		}
		consumed := decoder.Feed(buf[:n])
		for consumed < n {
			consumed += decoder.Feed(buf[consumed:n])
		}
		switch {
		case decoder.Done():
			payload, err := decoder.Payload()
			if err != nil {
				p.log.Warn("usi payload decode failed", "err", err)
			} else {
				frame := Frame{Protocol: decoder.Protocol(), Payload: payload}
				for _, l := range p.listeners {
					select {
					case l <- frame:
					case <-ctx.Done():
						return
					}
				}
			}
			decoder = usi.NewInMessage()
		case decoder.Failed():
			p.log.Warn("usi frame failed crc/framing check")
			decoder = usi.NewInMessage()
		}
	}
}

func (p *Port) write(msg usi.OutMessage) error {
	encoded, err := msg.Encode()
	if err != nil {
		return err
	}
	p.log.Debug("usi tx", "bytes", len(encoded))
	_, err = p.conn.Write(encoded)
	return err
}

// isTimeout reports whether err represents a read timeout rather than a
// real I/O failure; the pkg/term raw-mode reader returns a plain timeout
// error after VTIME expires rather than a typed net.Error.
func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	if t, ok := err.(timeout); ok {
		return t.Timeout()
	}
	return false
}
