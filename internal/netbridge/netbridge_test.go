package netbridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g3plc/neg3ctl/internal/g3"
)

// fakeDevice is an in-memory Device: reads drain an inbound queue, writes
// append to an outbound log.
type fakeDevice struct {
	mu       sync.Mutex
	inbound  [][]byte
	outbound [][]byte
}

func (d *fakeDevice) Read(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.inbound) == 0 {
		return 0, nil
	}
	pkt := d.inbound[0]
	d.inbound = d.inbound[1:]
	n := copy(buf, pkt)
	return n, nil
}

func (d *fakeDevice) Write(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := append([]byte(nil), buf...)
	d.outbound = append(d.outbound, cp)
	return len(buf), nil
}

func (d *fakeDevice) written() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.outbound...)
}

func (d *fakeDevice) push(pkt []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inbound = append(d.inbound, pkt)
}

func TestHandleDataIndicationWritesCompletePacket(t *testing.T) {
	dev := &fakeDevice{}
	b := New(Config{}, dev, func(g3.Request) {})

	pkt := buildIPv6([]byte("hello there"))
	b.HandleDataIndication(g3.DataIndication{Nsdu: pkt}, time.Unix(0, 0))

	written := dev.written()
	require.Len(t, written, 1)
	assert.Equal(t, pkt, written[0])
}

func TestHandleDataIndicationWithholdsIncompleteFragment(t *testing.T) {
	dev := &fakeDevice{}
	b := New(Config{}, dev, func(g3.Request) {})

	payload := make([]byte, 300)
	pkt := buildIPv6(payload)
	frags, err := Fragment(pkt, 120, 99)
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)

	b.HandleDataIndication(g3.DataIndication{Nsdu: frags[0]}, time.Unix(0, 0))
	assert.Empty(t, dev.written())
}

func TestStartFragmentsAndSendsOutboundPackets(t *testing.T) {
	dev := &fakeDevice{}
	var mu sync.Mutex
	var sent []g3.Request
	sendADP := func(r g3.Request) {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, r)
	}

	b := New(Config{MaxNsduSize: 120}, dev, sendADP)

	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	pkt := buildIPv6(payload)
	dev.push(pkt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(sent)
		mu.Unlock()
		if n > 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Greater(t, len(sent), 1, "an oversize packet must be split into multiple ADP_DATA_REQUESTs")
}

func TestNextFragmentIDProducesVaryingValues(t *testing.T) {
	seen := map[uint32]bool{}
	for i := 0; i < 8; i++ {
		seen[nextFragmentID()] = true
	}
	assert.Greater(t, len(seen), 1, "fragment IDs should not collide across calls")
}
