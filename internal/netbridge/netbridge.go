// Package netbridge runs the network task: it bridges ADP data-plane NSDUs
// to and from a TUN device, fragmenting oversize outbound IPv6 datagrams to
// fit the PLC link's NSDU limit and reassembling fragmented inbound ones,
// grounded on network_manager.rs's process_adp_message/start_tun dispatch
// and ipv6_frag_manager.rs's fragmentation helpers. Unlike the original,
// this bridges real ULA/link-local IPv6 addresses over a Linux TUN device
// rather than the IPv4 10.0.hi.lo test bridge network_manager.rs falls back
// to; that fallback is original-only scaffolding and is not carried forward.
package netbridge

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/charmbracelet/log"

	"github.com/g3plc/neg3ctl/internal/g3"
)

// Device is the minimal packet-oriented interface netbridge needs from a
// TUN device; internal/tun.Device satisfies it.
type Device interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
}

// Config carries the bridge's tuning parameters.
type Config struct {
	// MaxNsduSize bounds how large one ADP_DATA_REQUEST's NSDU may be
	// before Bridge fragments the outbound IPv6 datagram to fit.
	MaxNsduSize int
	// ReassemblyTTL bounds how long an incomplete inbound fragment set is
	// held before being discarded.
	ReassemblyTTL time.Duration
	Logger        *log.Logger
}

// Bridge owns the TUN read loop and the ADP data-plane handoff in both
// directions.
type Bridge struct {
	cfg     Config
	tun     Device
	reasm   *Reassembler
	handle  byte
	log     *log.Logger
	sendADP func(g3.Request)
}

// New builds a Bridge. sendADP is called with each outbound ADP_DATA_REQUEST
// built from a (possibly fragmented) TUN packet; the caller wires it to the
// port task's Send.
func New(cfg Config, dev Device, sendADP func(g3.Request)) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MaxNsduSize <= 0 {
		cfg.MaxNsduSize = 400
	}
	if cfg.ReassemblyTTL <= 0 {
		cfg.ReassemblyTTL = 30 * time.Second
	}
	return &Bridge{
		cfg:     cfg,
		tun:     dev,
		reasm:   NewReassembler(cfg.ReassemblyTTL),
		log:     cfg.Logger,
		sendADP: sendADP,
	}
}

// HandleDataIndication processes one inbound ADP_DATA_INDICATION, writing
// the datagram to the TUN device once it is (or already was) a complete
// IPv6 packet.
func (b *Bridge) HandleDataIndication(ind g3.DataIndication, now time.Time) {
	full := b.reasm.Feed(ind.Nsdu, now)
	if full == nil {
		return
	}
	if _, err := b.tun.Write(full); err != nil {
		b.log.Warn("netbridge: tun write failed", "err", err)
	}
}

// Start launches the TUN-read goroutine, which fragments and forwards
// outbound packets until ctx is cancelled.
func (b *Bridge) Start(ctx context.Context) {
	go b.run(ctx)
}

func (b *Bridge) run(ctx context.Context) {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := b.tun.Read(buf)
		if err != nil {
			b.log.Warn("netbridge: tun read failed", "err", err)
			continue
		}
		if n == 0 {
			continue
		}
		packet := make([]byte, n)
		copy(packet, buf[:n])

		fragments, err := Fragment(packet, b.cfg.MaxNsduSize, nextFragmentID())
		if err != nil {
			b.log.Warn("netbridge: fragmentation failed", "err", err)
			continue
		}
		for _, f := range fragments {
			b.handle++
			b.sendADP(g3.NewDataRequest(b.handle, f, true, 0))
		}
	}
}

func nextFragmentID() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(buf[:])
}
