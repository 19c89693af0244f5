package netbridge

import (
	"encoding/binary"
	"fmt"
)

// IPv6 next-header values that introduce an extension header, per
// ipv6_frag_manager.rs's is_extension/get_true_payload_offset table.
const (
	nextHeaderHopByHop  = 0
	nextHeaderRouting   = 43
	nextHeaderFragment  = 44
	nextHeaderESP       = 50
	nextHeaderAH        = 51
	nextHeaderMobility  = 135
	nextHeaderHIP       = 139
	nextHeaderShim6     = 140
	nextHeaderTest1     = 253
	nextHeaderTest2     = 254
	fixedHeaderLen      = 40
	fragmentHeaderLen   = 8
)

var extensionHeaders = map[byte]bool{
	nextHeaderHopByHop: true,
	nextHeaderRouting:  true,
	nextHeaderFragment: true,
	nextHeaderESP:      true,
	nextHeaderAH:       true,
	nextHeaderMobility: true,
	nextHeaderHIP:      true,
	nextHeaderShim6:    true,
	nextHeaderTest1:    true,
	nextHeaderTest2:    true,
}

// truePayloadOffset walks the extension header chain starting right after
// the fixed IPv6 header and returns the byte offset of the actual upper
// layer payload, mirroring get_true_payload_offset. Every extension header
// here uses the generic 8-octet-unit TLV layout (2nd byte holds the length
// in 8-byte units, excluding the first 8 bytes) except the fragment header,
// which is a fixed 8 bytes.
func truePayloadOffset(packet []byte) (int, error) {
	if len(packet) < fixedHeaderLen {
		return 0, fmt.Errorf("netbridge: packet shorter than fixed ipv6 header: %d bytes", len(packet))
	}
	headerType := packet[6]
	offset := fixedHeaderLen
	for extensionHeaders[headerType] {
		if offset+2 > len(packet) {
			return 0, fmt.Errorf("netbridge: truncated extension header at offset %d", offset)
		}
		var extLen int
		if headerType == nextHeaderFragment {
			extLen = fragmentHeaderLen
		} else {
			extLen = (int(packet[offset+1]) + 1) * 8
		}
		headerType = packet[offset]
		offset += extLen
		if offset > len(packet) {
			return 0, fmt.Errorf("netbridge: extension header overruns packet at offset %d", offset)
		}
	}
	return offset, nil
}

// fragmentOffset reports the byte offset within packet where a Fragment
// extension header sits, if the chain contains one, mirroring
// get_fragment_offset.
func fragmentOffset(packet []byte) (int, bool) {
	if len(packet) < fixedHeaderLen {
		return 0, false
	}
	headerType := packet[6]
	offset := fixedHeaderLen
	for extensionHeaders[headerType] {
		if headerType == nextHeaderFragment {
			return offset, true
		}
		if offset+2 > len(packet) {
			return 0, false
		}
		extLen := (int(packet[offset+1]) + 1) * 8
		headerType = packet[offset]
		offset += extLen
		if offset > len(packet) {
			return 0, false
		}
	}
	return 0, false
}

// Fragment splits an IPv6 packet into 8-byte-aligned fragments no larger
// than maxSize, each a self-contained IPv6 datagram carrying a Fragment
// extension header, per ipv6_frag_manager.rs's fragment_packet. A packet
// already at or under maxSize is returned unfragmented; a packet that
// already carries a Fragment header is rejected, matching the original's
// "cannot fragment an already-fragmented packet" limitation.
func Fragment(packet []byte, maxSize int, id uint32) ([][]byte, error) {
	if len(packet) <= maxSize {
		return [][]byte{packet}, nil
	}
	if _, already := fragmentOffset(packet); already {
		return nil, fmt.Errorf("netbridge: cannot fragment an already-fragmented packet")
	}

	fixedSize, err := truePayloadOffset(packet)
	if err != nil {
		return nil, err
	}
	payloadSize := len(packet) - fixedSize
	available := ((maxSize - (fixedSize + fragmentHeaderLen)) / 8) * 8
	if available <= 0 {
		return nil, fmt.Errorf("netbridge: maxSize %d too small for header %d", maxSize, fixedSize)
	}
	// origNextHeader assumes fixedSize == 40, i.e. no extension header sits
	// ahead of the fragment point; G3 bridge traffic never carries one.
	origNextHeader := packet[6]

	var fragments [][]byte
	fragOffset := 0
	for payloadSize > 0 {
		n := available
		last := false
		if payloadSize <= available {
			n = payloadSize
			last = true
		}

		out := make([]byte, fixedSize+fragmentHeaderLen+n)
		copy(out[:fixedHeaderLen], packet[:fixedHeaderLen])
		copy(out[fixedHeaderLen:fixedSize], packet[fixedHeaderLen:fixedSize])

		fh := out[fixedSize : fixedSize+fragmentHeaderLen]
		fh[0] = origNextHeader
		fh[1] = 0
		offsetAndFlags := uint16(fragOffset/8) << 3
		if !last {
			offsetAndFlags |= 1
		}
		binary.BigEndian.PutUint16(fh[2:4], offsetAndFlags)
		binary.BigEndian.PutUint32(fh[4:8], id)

		copy(out[fixedSize+fragmentHeaderLen:], packet[fixedSize+fragOffset:fixedSize+fragOffset+n])

		out[6] = nextHeaderFragment
		binary.BigEndian.PutUint16(out[4:6], uint16(fragmentHeaderLen+n))

		fragments = append(fragments, out)
		fragOffset += n
		payloadSize -= n
	}
	return fragments, nil
}
