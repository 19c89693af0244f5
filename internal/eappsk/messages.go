package eappsk

import (
	"encoding/binary"
	"fmt"
)

/*-------------------------------------------------------------
 *
 * Purpose:	EAP-PSK message codec: the generic EAP header, and the four
 *		PSK message bodies exchanged during bootstrap authentication.
 *
 *--------------------------------------------------------------*/

const IANAType = 0x2F

// EAP code field values.
const (
	CodeRequest  = 0x04
	CodeResponse = 0x08
	CodeSuccess  = 0x0C
	CodeFailure  = 0x10
)

// T-subfield values identifying which of the 4 PSK messages is carried.
const (
	T0 = 0x00 << 6
	T1 = 0x01 << 6
	T2 = 0x02 << 6
	T3 = 0x03 << 6
)

// P-Channel result codes.
const (
	PChannelContinue     = 0x01
	PChannelDoneSuccess  = 0x02
	PChannelDoneFailure  = 0x03
)

// Header is the decoded generic EAP header common to all 4 messages.
type Header struct {
	Code       byte
	Identifier byte
	Length     uint16
	TSubfield  byte
	Data       []byte
}

// DecodeHeader parses the generic EAP/EAP-PSK header: Code, Identifier,
// Length, a fixed IANA type octet, and the T-subfield, validating the IANA
// type and the embedded length against the actual message size.
func DecodeHeader(msg []byte) (Header, error) {
	if len(msg) < 4 {
		return Header{}, fmt.Errorf("eappsk: header too short")
	}
	h := Header{Code: msg[0], Identifier: msg[1]}
	h.Length = binary.BigEndian.Uint16(msg[2:4])
	if int(h.Length) > len(msg) {
		return Header{}, fmt.Errorf("eappsk: declared length %d exceeds message size %d", h.Length, len(msg))
	}
	if h.Length < 6 {
		return Header{}, fmt.Errorf("eappsk: message too short for PSK type")
	}
	if msg[4] != IANAType {
		return Header{}, fmt.Errorf("eappsk: unexpected EAP type 0x%02X", msg[4])
	}
	h.TSubfield = msg[5]
	h.Data = msg[6:]
	return h, nil
}

// EncodeMessage1 builds the first EAP-PSK message (server identity request),
// sent from the coordinator to the joining device.
func EncodeMessage1(identifier byte, randS Rand, idS []byte) []byte {
	v := []byte{CodeRequest, identifier, 0, 0, IANAType, T0}
	v = append(v, randS[:]...)
	v = append(v, idS...)
	binary.BigEndian.PutUint16(v[2:4], uint16(len(v)))
	return v
}

// Message1 is the decoded body of the first EAP-PSK message.
type Message1 struct {
	RandS Rand
	IdS   []byte
}

// DecodeMessage1 decodes the body of the first EAP-PSK message (everything
// after the T-subfield byte).
func DecodeMessage1(body []byte) (Message1, error) {
	if len(body) < KeyLen {
		return Message1{}, fmt.Errorf("eappsk: message1 too short")
	}
	var m Message1
	copy(m.RandS[:], body[:KeyLen])
	m.IdS = append([]byte(nil), body[KeyLen:]...)
	return m, nil
}

// EncodeMessage2 builds the second EAP-PSK message: MacP over
// IdP||IdS||RandS||RandP, followed by RandS, RandP, MacP, IdP.
func EncodeMessage2(ctx *Context, identifier byte, randS, randP Rand, idS, idP []byte) ([]byte, error) {
	seed := append(append([]byte{}, idP...), idS...)
	seed = append(seed, randS[:]...)
	seed = append(seed, randP[:]...)
	macP, err := cmacAES128(ctx.Ak[:], seed)
	if err != nil {
		return nil, err
	}

	v := []byte{CodeResponse, identifier, 0, 0, IANAType, T1}
	v = append(v, randS[:]...)
	v = append(v, randP[:]...)
	v = append(v, macP[:]...)
	v = append(v, idP...)
	binary.BigEndian.PutUint16(v[2:4], uint16(len(v)))
	return v, nil
}

// Message2 is the decoded and MAC-verified body of the second EAP-PSK message.
type Message2 struct {
	RandS Rand
	RandP Rand
	IdP   []byte
}

// DecodeMessage2 decodes and verifies MacP in the body of the second EAP-PSK
// message. idPLen is the expected length of IdP (8 bytes for CENELEC/FCC).
func DecodeMessage2(ctx *Context, body []byte, idS []byte, idPLen int) (Message2, error) {
	const fixed = KeyLen + KeyLen + KeyLen // RandS || RandP || MacP
	if len(body) < fixed+idPLen {
		return Message2{}, fmt.Errorf("eappsk: message2 too short")
	}
	var m Message2
	copy(m.RandS[:], body[0:16])
	copy(m.RandP[:], body[16:32])
	macP := body[32:48]
	m.IdP = append([]byte(nil), body[48:48+idPLen]...)

	seed := append(append([]byte{}, m.IdP...), idS...)
	seed = append(seed, m.RandS[:]...)
	seed = append(seed, m.RandP[:]...)
	expected, err := cmacAES128(ctx.Ak[:], seed)
	if err != nil {
		return Message2{}, err
	}
	if !constantTimeEqual(expected[:], macP) {
		return Message2{}, fmt.Errorf("eappsk: message2 MacP verification failed")
	}
	return m, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

func nonceFromCounter(counter uint32) [blockSize]byte {
	var nonce [blockSize]byte
	binary.BigEndian.PutUint32(nonce[12:], counter)
	return nonce
}

func pChannelPayload(result byte, data []byte) []byte {
	if len(data) > 0 {
		out := make([]byte, 1+len(data))
		out[0] = (result << 6) | 0x20 // extension bit set: P-Channel data follows
		copy(out[1:], data)
		return out
	}
	return []byte{result << 6}
}

// EncodeMessage3 builds the third EAP-PSK message: MacS over IdS||RandP in
// the clear header, plus an EAX-protected P-Channel payload carrying the
// handshake result and any piggybacked data (e.g. the network's GMK).
// The EAX AAD is the EAP header with its Code field right-shifted 2 bits,
// per the (non-standard) header munging the reference firmware performs.
func EncodeMessage3(ctx *Context, identifier byte, randS, randP Rand, idS []byte, nonce uint32, pChannelResult byte, pChannelData []byte) ([]byte, error) {
	seed := append(append([]byte{}, idS...), randP[:]...)
	macS, err := cmacAES128(ctx.Ak[:], seed)
	if err != nil {
		return nil, err
	}

	header := []byte{CodeRequest, identifier, 0, 0, IANAType, T2}
	header = append(header, randS[:]...)
	header = append(header, macS[:]...)

	plaintext := pChannelPayload(pChannelResult, pChannelData)
	aeadNonce := nonceFromCounter(nonce)

	length := len(header) + 4 + len(plaintext) + eaxTagSize
	binary.BigEndian.PutUint16(header[2:4], uint16(length))

	aad := append([]byte(nil), header...)
	aad[0] >>= 2

	sealed, err := eaxEncrypt(ctx.Tek[:], aeadNonce[:], aad, plaintext)
	if err != nil {
		return nil, err
	}
	ciphertext, tag := sealed[:len(plaintext)], sealed[len(plaintext):]

	out := append([]byte{}, header...)
	out = append(out, aeadNonce[12:]...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return out, nil
}

// Message3 is the decoded and authenticated body of the third EAP-PSK message.
type Message3 struct {
	RandS          Rand
	Nonce          uint32
	PChannelResult byte
	PChannelData   []byte
}

// DecodeMessage3 decodes and verifies the third EAP-PSK message: MacS over
// IdS||RandP, then opens the EAX-protected P-Channel payload.
func DecodeMessage3(ctx *Context, body []byte, header []byte) (Message3, error) {
	const minMessage3Len = KeyLen + KeyLen + 4 + 1 + eaxTagSize // RandS||MacS||nonce||min P-Channel plaintext||tag
	if len(body) < minMessage3Len {
		return Message3{}, fmt.Errorf("eappsk: message3 too short")
	}
	var m Message3
	copy(m.RandS[:], body[0:16])
	macS := body[16:32]

	seed := append(append([]byte{}, ctx.IdS...), ctx.RandP[:]...)
	expected, err := cmacAES128(ctx.Ak[:], seed)
	if err != nil {
		return Message3{}, err
	}
	if !constantTimeEqual(expected[:], macS) {
		return Message3{}, fmt.Errorf("eappsk: message3 MacS verification failed")
	}

	nonceBytes := body[32:36]
	tag := body[36:52]
	ciphertext := body[52:]
	protected := append(append([]byte(nil), ciphertext...), tag...)
	aeadNonce := [blockSize]byte{}
	copy(aeadNonce[12:], nonceBytes)

	munged := append([]byte(nil), header...)
	munged[0] >>= 2

	plaintext, err := eaxDecrypt(ctx.Tek[:], aeadNonce[:], munged, protected)
	if err != nil {
		return Message3{}, fmt.Errorf("eappsk: message3 p-channel: %w", err)
	}
	if len(plaintext) == 0 {
		return Message3{}, fmt.Errorf("eappsk: message3 p-channel empty")
	}
	m.PChannelResult = (plaintext[0] & 0xC0) >> 6
	m.PChannelData = append([]byte(nil), plaintext[1:]...)
	m.Nonce = binary.BigEndian.Uint32(nonceBytes)
	return m, nil
}

// EncodeMessage4 builds the fourth EAP-PSK message: an EAX-protected
// P-Channel payload carrying the final handshake result, echoing RandS.
func EncodeMessage4(ctx *Context, identifier byte, randS Rand, nonce uint32, pChannelResult byte, pChannelData []byte) ([]byte, error) {
	header := []byte{CodeResponse, identifier, 0, 0, IANAType, T3}
	header = append(header, randS[:]...)

	plaintext := pChannelPayload(pChannelResult, pChannelData)
	aeadNonce := nonceFromCounter(nonce)

	length := len(header) + 4 + len(plaintext) + eaxTagSize
	binary.BigEndian.PutUint16(header[2:4], uint16(length))

	aad := append([]byte(nil), header...)
	aad[0] >>= 2

	sealed, err := eaxEncrypt(ctx.Tek[:], aeadNonce[:], aad, plaintext)
	if err != nil {
		return nil, err
	}
	ciphertext, tag := sealed[:len(plaintext)], sealed[len(plaintext):]

	out := append([]byte{}, header...)
	out = append(out, aeadNonce[12:]...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return out, nil
}

// Message4 is the decoded and authenticated body of the fourth EAP-PSK message.
type Message4 struct {
	RandS          Rand
	Nonce          uint32
	PChannelResult byte
	PChannelData   []byte
}

// DecodeMessage4 decodes and opens the fourth EAP-PSK message's P-Channel
// payload, using the fixed 22-byte header (up to and including RandS) as AAD.
func DecodeMessage4(ctx *Context, body []byte, header []byte) (Message4, error) {
	const minMessage4Len = KeyLen + 4 + 1 + eaxTagSize // RandS||nonce||min P-Channel plaintext||tag
	if len(body) < minMessage4Len {
		return Message4{}, fmt.Errorf("eappsk: message4 too short")
	}
	var m Message4
	copy(m.RandS[:], body[0:16])

	nonceBytes := body[16:20]
	tag := body[20:36]
	ciphertext := body[36:]
	protected := append(append([]byte(nil), ciphertext...), tag...)
	aeadNonce := [blockSize]byte{}
	copy(aeadNonce[12:], nonceBytes)

	if len(header) < 22 {
		return Message4{}, fmt.Errorf("eappsk: message4 header too short")
	}
	munged := append([]byte(nil), header[:22]...)
	munged[0] >>= 2

	plaintext, err := eaxDecrypt(ctx.Tek[:], aeadNonce[:], munged, protected)
	if err != nil {
		return Message4{}, fmt.Errorf("eappsk: message4 p-channel: %w", err)
	}
	if len(plaintext) == 0 {
		return Message4{}, fmt.Errorf("eappsk: message4 p-channel empty")
	}
	m.PChannelResult = (plaintext[0] & 0xC0) >> 6
	m.PChannelData = append([]byte(nil), plaintext[1:]...)
	m.Nonce = binary.BigEndian.Uint32(nonceBytes)
	return m, nil
}

// EncodeSuccess builds the minimal 4-byte EAP-Success message.
func EncodeSuccess(identifier byte) []byte {
	return []byte{CodeSuccess, identifier, 0, 4}
}

// EncodeGMKActivation builds the 3-byte GMK-activation P-Channel extension
// (key index plus the 2-byte activation delay used by the device).
func EncodeGMKActivation(pChannelData []byte) []byte {
	out := make([]byte, 3)
	copy(out, pChannelData[:3])
	return out
}
