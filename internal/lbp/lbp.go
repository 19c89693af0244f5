// Package lbp encodes and decodes LoWPAN Bootstrapping Protocol (LBP)
// messages: the NSDU payload carried inside ADP data frames during network
// join, wrapping an EAP-PSK exchange with PAN-specific framing.
package lbp

import "fmt"

// MessageType identifies which of the six LBP frame kinds a message carries,
// packed into the top nibble of the first octet.
type MessageType byte

const (
	Joining    MessageType = 0x01
	Accepted   MessageType = 0x09
	Challenge  MessageType = 0x0A
	Decline    MessageType = 0x0B
	KickFromLBD MessageType = 0x04
	KickToLBD   MessageType = 0x0C
)

func (t MessageType) String() string {
	switch t {
	case Joining:
		return "JOINING"
	case Accepted:
		return "ACCEPTED"
	case Challenge:
		return "CHALLENGE"
	case Decline:
		return "DECLINE"
	case KickFromLBD:
		return "KICK_FROM_LBD"
	case KickToLBD:
		return "KICK_TO_LBD"
	default:
		return fmt.Sprintf("LBP(0x%02X)", byte(t))
	}
}

// CONF_PARAM tags used in the TLV-encoded bootstrapping data carried by
// Joining/Accepted/Challenge messages.
const (
	ParamShortAddr    byte = 0x1D
	ParamGMK          byte = 0x27
	ParamGMKActivation byte = 0x2B
	ParamGMKRemoval   byte = 0x2F
	ParamResult       byte = 0x31
)

// ExtAddrLen is the width of the EUI-64 extended address (A_LBD) carried in
// every LBP message.
const ExtAddrLen = 8

// MinLen is the minimum length of a well-formed LBP message: the message
// type/transaction-id octets plus the extended address.
const MinLen = ExtAddrLen + 2

// Message is a decoded LBP frame.
type Message struct {
	Type             MessageType
	ExtAddr          [ExtAddrLen]byte
	BootstrappingData []byte // empty for Decline/Kick messages
}

// Decode parses an NSDU payload into an LBP message.
func Decode(nsdu []byte) (Message, error) {
	if len(nsdu) < MinLen {
		return Message{}, fmt.Errorf("lbp: message too short (%d bytes)", len(nsdu))
	}
	mt := MessageType((nsdu[0] & 0xF0) >> 4)
	var m Message
	m.Type = mt
	copy(m.ExtAddr[:], nsdu[2:MinLen])

	switch mt {
	case Joining, Accepted, Challenge:
		m.BootstrappingData = append([]byte(nil), nsdu[MinLen:]...)
	case Decline, KickFromLBD, KickToLBD:
		// no payload beyond the address
	default:
		return Message{}, fmt.Errorf("lbp: unknown message type 0x%02X", byte(mt))
	}
	return m, nil
}

// Encode serializes a message back into NSDU form. The transaction-id field
// is always zero: the reference firmware reserves it and ignores it on
// receipt.
func Encode(m Message) []byte {
	out := make([]byte, 0, MinLen+len(m.BootstrappingData))
	out = append(out, byte(m.Type)<<4, 0x00)
	out = append(out, m.ExtAddr[:]...)
	out = append(out, m.BootstrappingData...)
	return out
}

// TLV is one CONF_PARAM entry within a message's bootstrapping data.
type TLV struct {
	Tag   byte
	Value []byte
}

// ParseTLVs walks a bootstrapping-data blob as a sequence of
// tag/length/value triples. The Joining message's first byte ("0x02" in the
// reference configuration result octet) is not itself a TLV and must be
// stripped by the caller when present.
func ParseTLVs(data []byte) ([]TLV, error) {
	var out []TLV
	for i := 0; i < len(data); {
		if i+2 > len(data) {
			return nil, fmt.Errorf("lbp: truncated TLV header at offset %d", i)
		}
		tag := data[i]
		length := int(data[i+1])
		start := i + 2
		if start+length > len(data) {
			return nil, fmt.Errorf("lbp: TLV value overruns buffer (tag 0x%02X)", tag)
		}
		out = append(out, TLV{Tag: tag, Value: append([]byte(nil), data[start:start+length]...)})
		i = start + length
	}
	return out, nil
}

// AppendTLV appends one CONF_PARAM tag/length/value triple to buf.
func AppendTLV(buf []byte, tag byte, value []byte) []byte {
	buf = append(buf, tag, byte(len(value)))
	return append(buf, value...)
}

// ShortAddrParam builds the CONF_PARAM_SHORT_ADDR TLV payload assigning a
// device its 16-bit short address.
func ShortAddrParam(shortAddr uint16) []byte {
	return []byte{byte(shortAddr >> 8), byte(shortAddr)}
}

// GMKParam builds the CONF_PARAM_GMK TLV payload: a key index octet
// followed by the 16-byte group master key.
func GMKParam(keyIndex byte, gmk [16]byte) []byte {
	v := make([]byte, 0, 17)
	v = append(v, keyIndex)
	return append(v, gmk[:]...)
}

// GMKActivationParam builds the CONF_PARAM_GMK_ACTIVATION TLV payload
// naming which key index the device should activate.
func GMKActivationParam(keyIndex byte) []byte {
	return []byte{keyIndex}
}
