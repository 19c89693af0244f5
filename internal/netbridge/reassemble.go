package netbridge

import (
	"encoding/binary"
	"sort"
	"time"
)

// Reassembler collects Fragment-header IPv6 datagrams received off the ADP
// data plane back into whole packets before they are written to the TUN
// device. ipv6_frag_manager.rs only ever builds fragments for the outbound
// direction (fragment_packet); it has no inbound counterpart, since the
// original never actually wired a TUN reader capable of receiving them back
// together. This reassembler supplies that missing half so fragmented
// traffic survives the round trip through the PLC link's small MTU.
type Reassembler struct {
	ttl     time.Duration
	pending map[fragmentKey]*reassembly
}

type fragmentKey struct {
	src  [16]byte
	dst  [16]byte
	id   uint32
}

type reassembly struct {
	// prefix holds every byte of the datagram that precedes its Fragment
	// header: the fixed 40-byte header plus any extension headers that sit
	// ahead of the fragment point. Reassembly assumes the first fragment
	// received carries the full, identical prefix, true for every fragment
	// set Fragment produces.
	prefix     []byte
	nextHeader byte
	parts      map[int][]byte
	gotLast    bool
	lastOffset int
	deadline   time.Time
}

// NewReassembler builds a reassembler that discards incomplete datagrams
// older than ttl.
func NewReassembler(ttl time.Duration) *Reassembler {
	return &Reassembler{ttl: ttl, pending: make(map[fragmentKey]*reassembly)}
}

// Feed processes one inbound IPv6 datagram. If it carries no Fragment
// header it is returned unchanged. If it completes a fragmented datagram,
// the reassembled packet is returned. Otherwise nil is returned while more
// fragments are awaited.
func (r *Reassembler) Feed(packet []byte, now time.Time) []byte {
	r.expire(now)

	offset, ok := fragmentOffset(packet)
	if !ok {
		return packet
	}
	if offset+fragmentHeaderLen > len(packet) {
		return nil
	}
	fh := packet[offset : offset+fragmentHeaderLen]
	fragNextHeader := fh[0]
	offsetAndFlags := binary.BigEndian.Uint16(fh[2:4])
	fragOffset := int(offsetAndFlags>>3) * 8
	last := offsetAndFlags&1 == 0
	id := binary.BigEndian.Uint32(fh[4:8])

	var key fragmentKey
	copy(key.src[:], packet[8:24])
	copy(key.dst[:], packet[24:40])
	key.id = id

	asm, ok := r.pending[key]
	if !ok {
		asm = &reassembly{
			prefix:     append([]byte(nil), packet[:offset]...),
			nextHeader: fragNextHeader,
			parts:      make(map[int][]byte),
			deadline:   now.Add(r.ttl),
		}
		r.pending[key] = asm
	}
	payload := append([]byte(nil), packet[offset+fragmentHeaderLen:]...)
	asm.parts[fragOffset] = payload
	if last {
		asm.gotLast = true
		asm.lastOffset = fragOffset
	}

	if !asm.gotLast {
		return nil
	}
	total := asm.lastOffset + len(asm.parts[asm.lastOffset])
	full := make([]byte, total)
	offsets := make([]int, 0, len(asm.parts))
	for o := range asm.parts {
		offsets = append(offsets, o)
	}
	sort.Ints(offsets)
	received := 0
	for _, o := range offsets {
		part := asm.parts[o]
		if o+len(part) > total || o != received {
			return nil
		}
		copy(full[o:], part)
		received = o + len(part)
	}
	if received != total {
		return nil
	}

	delete(r.pending, key)
	prefixLen := len(asm.prefix)
	out := make([]byte, prefixLen+total)
	copy(out, asm.prefix)
	if prefixLen == fixedHeaderLen {
		out[6] = asm.nextHeader
	}
	binary.BigEndian.PutUint16(out[4:6], uint16(prefixLen-fixedHeaderLen+total))
	copy(out[prefixLen:], full)
	return out
}

func (r *Reassembler) expire(now time.Time) {
	for k, asm := range r.pending {
		if now.After(asm.deadline) {
			delete(r.pending, k)
		}
	}
}
