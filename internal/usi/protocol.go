// Package usi implements the USI serial framing protocol used to exchange
// ADP/MAC/COORD primitives with a G3-PLC modem: byte-stuffed delimiter
// framing, a multi-width CRC trailer selected by protocol tag, and a
// single-owner serial port task that fans decoded frames out to subscribers.
package usi

/*-------------------------------------------------------------
 *
 * Purpose:	Protocol tag constants and header bit-field helpers for the
 *		USI framing layer, shared by the encoder and decoder.
 *
 *--------------------------------------------------------------*/

// Protocol identifies the serialized sub-protocol carried inside a USI frame.
type Protocol uint8

const (
	ProtocolMngpPrime         Protocol = 0x00
	ProtocolMngpPrimeGetQry   Protocol = 0x00
	ProtocolMngpPrimeGetRsp   Protocol = 0x01
	ProtocolMngpPrimeSet      Protocol = 0x02
	ProtocolMngpPrimeReset    Protocol = 0x03
	ProtocolMngpPrimeReboot   Protocol = 0x04
	ProtocolMngpPrimeFU       Protocol = 0x05
	ProtocolMngpPrimeEnPibQry Protocol = 0x06
	ProtocolMngpPrimeEnPibRsp Protocol = 0x07

	ProtocolSnifPrime   Protocol = 0x13
	ProtocolMacPrime    Protocol = 0x17
	ProtocolMlmePrime   Protocol = 0x18
	ProtocolPlmePrime   Protocol = 0x19
	Protocol432Prime    Protocol = 0x1A
	ProtocolBasemngPrime Protocol = 0x1D
	ProtocolPrimeOverUDP Protocol = 0x1F
	ProtocolPhyAtpl2x0  Protocol = 0x22

	ProtocolAtpl230 Protocol = ProtocolPhyAtpl2x0
	ProtocolAtpl250 Protocol = ProtocolPhyAtpl2x0

	ProtocolSnifG3   Protocol = 0x23
	ProtocolMacG3    Protocol = 0x24
	ProtocolAdpG3    Protocol = 0x25
	ProtocolCoordG3  Protocol = 0x26
	ProtocolPrimeAPI Protocol = 0x30

	ProtocolUserDefined  Protocol = 0x3E
	ProtocolUserDefined2 Protocol = 0xFE
	ProtocolInvalid      Protocol = 0xFF
)

const (
	msgMark byte = 0x7e
	escMark byte = 0x7d

	headerLen uint8 = 2

	typeProtocolOffset uint8 = 1
	typeProtocolMsk    byte  = 0x3F

	lenProtocolHiOffset uint8 = 0
	lenProtocolHiShift  uint8 = 2

	lenProtocolLoOffset uint8 = 1
	lenProtocolLoMsk    byte  = 0xC0
	lenProtocolLoShift  uint8 = 6

	xlenProtocolOffset  uint8 = 2
	xlenProtocolMsk     byte  = 0x80
	xlenProtocolShiftL  uint8 = 3
	xlenProtocolShiftR  uint8 = 10

	cmdProtocolMsk byte = 0x7F

	protocolMinLen = 4
)

// getProtocolLen reconstructs the 10-bit payload length from the two
// standard header bytes.
func getProtocolLen(a, b uint16) uint16 {
	return (a << lenProtocolHiShift) + (b >> lenProtocolLoShift)
}

// getProtocolXLen reconstructs the extended payload length used by
// PROTOCOL_PRIME_API frames, which add a third header byte.
func getProtocolXLen(a, b, c byte) uint16 {
	return (uint16(a) << lenProtocolHiShift) +
		(uint16(b) >> lenProtocolLoShift) +
		(uint16(c&xlenProtocolMsk) << xlenProtocolShiftL)
}

func lenHiProtocol(length uint16) byte {
	return byte((length >> lenProtocolHiShift) & 0xFF)
}

func lenLoProtocol(length uint16) byte {
	return byte((length << lenProtocolLoShift) & uint16(lenProtocolLoMsk))
}

func lenExProtocol(length uint16) byte {
	return byte((length & 0x0c00) >> 4)
}

func cmdProtocol(cmd byte) byte {
	return cmd & cmdProtocolMsk
}

func typeProtocol(a byte) Protocol {
	return Protocol(a & typeProtocolMsk)
}
