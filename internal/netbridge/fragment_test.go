package netbridge

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIPv6(payload []byte) []byte {
	pkt := make([]byte, 40+len(payload))
	pkt[0] = 0x60
	binary.BigEndian.PutUint16(pkt[4:6], uint16(len(payload)))
	pkt[6] = 59 // no next header, arbitrary upper layer
	pkt[7] = 64
	copy(pkt[40:], payload)
	return pkt
}

func TestFragmentPassesSmallPacketsThrough(t *testing.T) {
	pkt := buildIPv6([]byte("hello"))
	out, err := Fragment(pkt, 1500, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{pkt}, out)
}

func TestFragmentSplitsOversizePacket(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	pkt := buildIPv6(payload)

	frags, err := Fragment(pkt, 120, 0xdeadbeef)
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)

	for i, f := range frags {
		require.LessOrEqual(t, len(f), 120)
		off, ok := fragmentOffset(f)
		require.True(t, ok)
		fh := f[off : off+8]
		id := binary.BigEndian.Uint32(fh[4:8])
		assert.Equal(t, uint32(0xdeadbeef), id)
		more := binary.BigEndian.Uint16(fh[2:4])&1 == 1
		if i == len(frags)-1 {
			assert.False(t, more, "last fragment must not set more-fragments")
		} else {
			assert.True(t, more)
		}
	}
}

func TestFragmentRejectsAlreadyFragmented(t *testing.T) {
	payload := make([]byte, 300)
	pkt := buildIPv6(payload)
	frags, err := Fragment(pkt, 120, 1)
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)

	_, err = Fragment(frags[0], 16, 2)
	assert.Error(t, err)
}

func TestReassemblerRebuildsOriginalPayload(t *testing.T) {
	payload := make([]byte, 613)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	pkt := buildIPv6(payload)

	frags, err := Fragment(pkt, 140, 42)
	require.NoError(t, err)
	require.Greater(t, len(frags), 2)

	r := NewReassembler(time.Second)
	now := time.Unix(0, 0)

	// Feed out of order to exercise the offset-sort path.
	var got []byte
	order := append([]int(nil), rangeInts(len(frags))...)
	order[0], order[len(order)-1] = order[len(order)-1], order[0]
	for _, idx := range order {
		if out := r.Feed(frags[idx], now); out != nil {
			got = out
		}
	}

	require.NotNil(t, got)
	assert.Equal(t, pkt[6], got[6])
	assert.Equal(t, pkt[40:], got[40:])
}

func TestReassemblerExpiresIncompleteSets(t *testing.T) {
	payload := make([]byte, 300)
	pkt := buildIPv6(payload)
	frags, err := Fragment(pkt, 120, 7)
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)

	r := NewReassembler(time.Second)
	start := time.Unix(0, 0)
	out := r.Feed(frags[0], start)
	assert.Nil(t, out)
	assert.Len(t, r.pending, 1)

	r.expire(start.Add(2 * time.Second))
	assert.Len(t, r.pending, 0)
}

func rangeInts(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
