package usi

import (
	"fmt"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Encode outbound primitive payloads into byte-stuffed USI
 *		frames, and decode inbound bytes back into primitive
 *		payloads via an explicit receive state machine.
 *
 *--------------------------------------------------------------*/

const maxPayloadLen = 2048

// OutMessage is a primitive payload awaiting USI framing.
type OutMessage struct {
	Protocol Protocol
	Data     []byte
}

// NewOutMessage wraps a primitive payload for the given protocol tag.
func NewOutMessage(protocol Protocol, data []byte) OutMessage {
	return OutMessage{Protocol: protocol, Data: data}
}

// Encode frames the message for transmission: 2-byte header (3 for
// PROTOCOL_PRIME_API), CRC trailer selected by protocol, byte-stuffing of
// 0x7e/0x7d, and a leading/trailing 0x7e delimiter.
func (m OutMessage) Encode() ([]byte, error) {
	if len(m.Data) > maxPayloadLen {
		return nil, fmt.Errorf("usi: payload too large: %d bytes", len(m.Data))
	}

	v := make([]byte, 0, len(m.Data)+8)
	v = append(v, lenHiProtocol(uint16(len(m.Data))))
	v = append(v, lenLoProtocol(uint16(len(m.Data)))|byte(typeProtocol(byte(m.Protocol))))

	if len(m.Data) > 0 {
		cmd := m.Data[0]
		if m.Protocol == ProtocolPrimeAPI {
			v = append(v, lenExProtocol(uint16(len(m.Data)))+cmdProtocol(cmd))
		} else {
			v = append(v, cmd)
		}
		v = append(v, m.Data[1:]...)
	}

	v = appendCRC(m.Protocol, v)

	r := make([]byte, 0, len(v)+4)
	r = append(r, msgMark)
	for _, ch := range v {
		if ch == msgMark || ch == escMark {
			r = append(r, escMark, ch^0x20)
		} else {
			r = append(r, ch)
		}
	}
	r = append(r, msgMark)
	return r, nil
}

// rxState is the state of the inbound frame decoder.
type rxState int

const (
	rxIdle rxState = iota
	rxMsg
	rxEsc
	rxDone
	rxError
)

// InMessage accumulates and decodes one inbound USI frame, byte at a time.
type InMessage struct {
	buf         []byte
	state       rxState
	protocol    Protocol
	haveProto   bool
	payloadLen  int
}

// NewInMessage returns a fresh decoder ready to receive a frame.
func NewInMessage() *InMessage {
	return &InMessage{state: rxIdle}
}

// State reports the decoder's current receive state.
func (m *InMessage) State() string {
	switch m.state {
	case rxIdle:
		return "idle"
	case rxMsg:
		return "msg"
	case rxEsc:
		return "esc"
	case rxDone:
		return "done"
	case rxError:
		return "error"
	default:
		return "unknown"
	}
}

// Done reports whether a complete, CRC-valid frame is ready.
func (m *InMessage) Done() bool { return m.state == rxDone }

// Failed reports whether the decoder hit a framing or CRC error.
func (m *InMessage) Failed() bool { return m.state == rxError }

// Feed processes a slice of raw serial bytes, stopping as soon as a frame
// completes or errors, and returns the number of bytes consumed.
func (m *InMessage) Feed(data []byte) int {
	for i, ch := range data {
		m.processByte(ch)
		if m.state == rxDone || m.state == rxError {
			return i + 1
		}
	}
	return len(data)
}

func (m *InMessage) processByte(ch byte) {
	switch m.state {
	case rxIdle:
		if ch == msgMark {
			m.state = rxMsg
		}
	case rxMsg:
		switch {
		case ch == escMark:
			m.state = rxEsc
		case ch == msgMark:
			if len(m.buf) == 0 {
				// Two consecutive delimiters: end of an unprocessed
				// frame immediately followed by the next frame's start.
				return
			}
			if m.checkCRC() {
				m.state = rxDone
			} else {
				m.state = rxError
			}
		default:
			m.buf = append(m.buf, ch)
			if !m.haveProto {
				m.processHeader()
			}
		}
	case rxEsc:
		if ch == escMark {
			m.state = rxError
			return
		}
		m.buf = append(m.buf, ch^0x20)
		m.processHeader()
		m.state = rxMsg
	}
}

func (m *InMessage) processHeader() {
	if len(m.buf) < protocolMinLen {
		return
	}
	proto := typeProtocol(m.buf[typeProtocolOffset])
	m.protocol = proto
	m.haveProto = true
	if proto == ProtocolPrimeAPI {
		m.payloadLen = int(getProtocolXLen(m.buf[lenProtocolHiOffset], m.buf[lenProtocolLoOffset], m.buf[xlenProtocolOffset]))
	} else {
		m.payloadLen = int(getProtocolLen(uint16(m.buf[lenProtocolHiOffset]), uint16(m.buf[lenProtocolLoOffset])))
	}
}

func (m *InMessage) checkCRC() bool {
	if !m.haveProto {
		return false
	}
	return checkCRC(m.protocol, m.buf, m.payloadLen)
}

// Protocol returns the decoded protocol tag, valid once the header bytes
// have arrived.
func (m *InMessage) Protocol() Protocol { return m.protocol }

// Payload strips the 2-byte header and CRC trailer from a completed frame,
// returning the bare primitive payload (for PROTOCOL_PRIME_API, the leading
// command byte has its extended-length bits masked off).
func (m *InMessage) Payload() ([]byte, error) {
	if m.state != rxDone {
		return nil, fmt.Errorf("usi: message not complete")
	}
	if len(m.buf) < int(headerLen) {
		return nil, fmt.Errorf("usi: frame shorter than header")
	}
	body := m.buf[headerLen:]
	if len(body) < m.payloadLen {
		return nil, fmt.Errorf("usi: truncated payload: want %d, have %d", m.payloadLen, len(body))
	}
	payload := append([]byte(nil), body[:m.payloadLen]...)
	if m.protocol == ProtocolPrimeAPI && len(payload) > 0 {
		payload[0] = cmdProtocol(payload[0])
	}
	return payload, nil
}
