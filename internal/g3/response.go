package g3

import (
	"encoding/binary"
	"fmt"
)

// PanDescriptor describes a discovered PAN beacon.
type PanDescriptor struct {
	PanID       uint16
	LinkQuality byte
	LbaAddress  uint16
	RcCoord     uint16
}

// MsgStatusResponse is the generic one-byte-status / one-byte-echoed-command
// response carried by MsgStatus (primitive 0).
type MsgStatusResponse struct {
	Status Status
	Cmd    byte
}

// DataResponse confirms an AdpDataRequest.
type DataResponse struct {
	Status     Status
	NsduHandle byte
}

// DiscoveryEvent is a PAN descriptor reported during an ADP_DISCOVERY scan.
type DiscoveryEvent struct {
	Pan PanDescriptor
}

// DiscoveryResponse confirms completion of an AdpDiscoveryRequest scan.
type DiscoveryResponse struct {
	Status Status
}

// NetworkStartResponse confirms an AdpNetworkStartRequest.
type NetworkStartResponse struct {
	Status Status
}

// GetResponse confirms an AdpGetRequest for an ADP-IB attribute.
type GetResponse struct {
	Status        Status
	Attribute     AdpAttribute
	AttributeIdx  uint16
	AttributeVal  []byte
}

// GetMacResponse confirms an AdpMacGetRequest for a MAC-IB attribute.
type GetMacResponse struct {
	Status       Status
	Attribute    MacAttribute
	AttributeIdx uint16
	AttributeVal []byte
}

// SetResponse confirms an AdpSetRequest for an ADP-IB attribute.
type SetResponse struct {
	Status       Status
	Attribute    AdpAttribute
	AttributeIdx uint16
}

// SetMacResponse confirms an AdpMacSetRequest for a MAC-IB attribute.
type SetMacResponse struct {
	Status       Status
	Attribute    MacAttribute
	AttributeIdx uint16
}

// LbpConfirm confirms an AdpLbpRequest transmission, identically shaped to
// DataResponse: the bootstrap authenticator and join client use it to clear
// pending_confirms for the handle they sent.
type LbpConfirm struct {
	Status     Status
	NsduHandle byte
}

// LbpIndication carries an inbound LBP NSDU (wrapping an EAP-PSK message)
// received over the ADP data plane, addressed to the bootstrap authenticator
// or join client.
type LbpIndication struct {
	SrcAddr              Address
	Nsdu                 []byte
	LinkQualityIndicator byte
	SecurityEnabled      bool
}

// NetworkJoinResponse confirms an AdpNetworkJoinRequest: on success it
// carries the short address the coordinator assigned to this device and the
// PAN it joined.
type NetworkJoinResponse struct {
	Status        Status
	NetworkAddr   uint16
	PanID         uint16
}

// NetworkLeaveResponse confirms an AdpNetworkLeaveRequest.
type NetworkLeaveResponse struct {
	Status Status
}

// NetworkLeaveIndication notifies that this device has been evicted from
// the PAN (e.g. by a coordinator KICK).
type NetworkLeaveIndication struct{}

// DataIndication carries an inbound NSDU delivered over the ADP data plane,
// destined for the network bridge.
type DataIndication struct {
	Nsdu                 []byte
	LinkQualityIndicator byte
}

// ParseMsgStatusResponse decodes a MsgStatus payload (cmd byte already stripped).
func ParseMsgStatusResponse(buf []byte) (MsgStatusResponse, error) {
	if len(buf) < 2 {
		return MsgStatusResponse{}, fmt.Errorf("g3: status response too short: %d bytes", len(buf))
	}
	return MsgStatusResponse{Status: Status(buf[0]), Cmd: buf[1]}, nil
}

// ParseDataResponse decodes an AdpDataConfirm payload (cmd byte already stripped).
func ParseDataResponse(buf []byte) (DataResponse, error) {
	if len(buf) < 2 {
		return DataResponse{}, fmt.Errorf("g3: data response too short: %d bytes", len(buf))
	}
	return DataResponse{Status: Status(buf[0]), NsduHandle: buf[1]}, nil
}

const discoveryEventLen = 7

// ParseDiscoveryEvent decodes an AdpDiscoveryIndication payload (cmd byte already stripped).
func ParseDiscoveryEvent(buf []byte) (DiscoveryEvent, error) {
	if len(buf) != discoveryEventLen {
		return DiscoveryEvent{}, fmt.Errorf("g3: discovery event wants %d bytes, got %d", discoveryEventLen, len(buf))
	}
	return DiscoveryEvent{Pan: PanDescriptor{
		PanID:       binary.BigEndian.Uint16(buf[0:2]),
		LinkQuality: buf[2],
		LbaAddress:  binary.BigEndian.Uint16(buf[3:5]),
		RcCoord:     binary.BigEndian.Uint16(buf[5:7]),
	}}, nil
}

// ParseDiscoveryResponse decodes an AdpDiscoveryConfirm payload (cmd byte already stripped).
func ParseDiscoveryResponse(buf []byte) (DiscoveryResponse, error) {
	if len(buf) < 1 {
		return DiscoveryResponse{}, fmt.Errorf("g3: discovery response empty")
	}
	return DiscoveryResponse{Status: Status(buf[0])}, nil
}

// ParseNetworkStartResponse decodes an AdpNetworkStartConfirm payload (cmd byte already stripped).
func ParseNetworkStartResponse(buf []byte) (NetworkStartResponse, error) {
	if len(buf) < 1 {
		return NetworkStartResponse{}, fmt.Errorf("g3: network start response empty")
	}
	return NetworkStartResponse{Status: Status(buf[0])}, nil
}

const minGetResponseLen = 8

// ParseGetResponse decodes an AdpGetConfirm payload (cmd byte already stripped).
func ParseGetResponse(buf []byte) (GetResponse, error) {
	if len(buf) < minGetResponseLen {
		return GetResponse{}, fmt.Errorf("g3: get response too short: %d bytes", len(buf))
	}
	r := GetResponse{
		Status:       Status(buf[0]),
		Attribute:    AdpAttribute(binary.BigEndian.Uint32(buf[1:5])),
		AttributeIdx: binary.BigEndian.Uint16(buf[5:7]),
	}
	attrLen := int(buf[7])
	if attrLen > 0 && len(buf) >= minGetResponseLen+attrLen {
		r.AttributeVal = append([]byte(nil), buf[8:8+attrLen]...)
	}
	return r, nil
}

// ParseGetMacResponse decodes an AdpMacGetConfirm payload (cmd byte already stripped).
func ParseGetMacResponse(buf []byte) (GetMacResponse, error) {
	if len(buf) < minGetResponseLen {
		return GetMacResponse{}, fmt.Errorf("g3: mac get response too short: %d bytes", len(buf))
	}
	r := GetMacResponse{
		Status:       Status(buf[0]),
		Attribute:    MacAttribute(binary.BigEndian.Uint32(buf[1:5])),
		AttributeIdx: binary.BigEndian.Uint16(buf[5:7]),
	}
	attrLen := int(buf[7])
	if attrLen > 0 && len(buf) >= minGetResponseLen+attrLen {
		r.AttributeVal = append([]byte(nil), buf[8:8+attrLen]...)
	}
	return r, nil
}

const setResponseLen = 7

// ParseSetResponse decodes an AdpSetConfirm payload (cmd byte already stripped).
func ParseSetResponse(buf []byte) (SetResponse, error) {
	if len(buf) != setResponseLen {
		return SetResponse{}, fmt.Errorf("g3: set response wants %d bytes, got %d", setResponseLen, len(buf))
	}
	return SetResponse{
		Status:       Status(buf[0]),
		Attribute:    AdpAttribute(binary.BigEndian.Uint32(buf[1:5])),
		AttributeIdx: binary.BigEndian.Uint16(buf[5:7]),
	}, nil
}

// ParseSetMacResponse decodes an AdpMacSetConfirm payload (cmd byte already stripped).
func ParseSetMacResponse(buf []byte) (SetMacResponse, error) {
	if len(buf) != setResponseLen {
		return SetMacResponse{}, fmt.Errorf("g3: mac set response wants %d bytes, got %d", setResponseLen, len(buf))
	}
	return SetMacResponse{
		Status:       Status(buf[0]),
		Attribute:    MacAttribute(binary.BigEndian.Uint32(buf[1:5])),
		AttributeIdx: binary.BigEndian.Uint16(buf[5:7]),
	}, nil
}

// ParseAddress decodes an address field of the given wire length (2 for a
// short address, 8 for an extended address), as used by LbpIndication and
// AdpDataRequest/Confirm addressing.
func ParseAddress(buf []byte) (Address, error) {
	switch len(buf) {
	case AddressShort:
		return ShortAddress(binary.BigEndian.Uint16(buf)), nil
	case AddressExtended:
		var ext [8]byte
		copy(ext[:], buf)
		return ExtendedAddress(ext), nil
	default:
		return Address{}, fmt.Errorf("g3: invalid address length %d", len(buf))
	}
}

// ParseLbpConfirm decodes an AdpLbpConfirm payload (cmd byte already stripped).
func ParseLbpConfirm(buf []byte) (LbpConfirm, error) {
	if len(buf) < 2 {
		return LbpConfirm{}, fmt.Errorf("g3: lbp confirm too short: %d bytes", len(buf))
	}
	return LbpConfirm{Status: Status(buf[0]), NsduHandle: buf[1]}, nil
}

// ParseLbpIndication decodes an AdpLbpIndication payload (cmd byte already
// stripped): a length-prefixed source address, a 16-bit-length-prefixed
// NSDU, a link quality byte, and a security-enabled flag.
func ParseLbpIndication(buf []byte) (LbpIndication, error) {
	if len(buf) < 1 {
		return LbpIndication{}, fmt.Errorf("g3: lbp indication empty")
	}
	addrLen := int(buf[0])
	if len(buf) < 1+addrLen+2 {
		return LbpIndication{}, fmt.Errorf("g3: lbp indication truncated address")
	}
	addr, err := ParseAddress(buf[1 : 1+addrLen])
	if err != nil {
		return LbpIndication{}, err
	}
	rest := buf[1+addrLen:]
	nsduLen := int(binary.BigEndian.Uint16(rest[0:2]))
	if len(rest) < 2+nsduLen+2 {
		return LbpIndication{}, fmt.Errorf("g3: lbp indication truncated nsdu")
	}
	nsdu := append([]byte(nil), rest[2:2+nsduLen]...)
	tail := rest[2+nsduLen:]
	return LbpIndication{
		SrcAddr:              addr,
		Nsdu:                 nsdu,
		LinkQualityIndicator: tail[0],
		SecurityEnabled:      tail[1] != 0,
	}, nil
}

const networkJoinResponseLen = 5

// ParseNetworkJoinResponse decodes an AdpNetworkJoinConfirm payload (cmd
// byte already stripped).
func ParseNetworkJoinResponse(buf []byte) (NetworkJoinResponse, error) {
	if len(buf) != networkJoinResponseLen {
		return NetworkJoinResponse{}, fmt.Errorf("g3: network join response wants %d bytes, got %d", networkJoinResponseLen, len(buf))
	}
	return NetworkJoinResponse{
		Status:      Status(buf[0]),
		NetworkAddr: binary.BigEndian.Uint16(buf[1:3]),
		PanID:       binary.BigEndian.Uint16(buf[3:5]),
	}, nil
}

// ParseNetworkLeaveResponse decodes an AdpNetworkLeaveConfirm payload (cmd
// byte already stripped).
func ParseNetworkLeaveResponse(buf []byte) (NetworkLeaveResponse, error) {
	if len(buf) < 1 {
		return NetworkLeaveResponse{}, fmt.Errorf("g3: network leave response empty")
	}
	return NetworkLeaveResponse{Status: Status(buf[0])}, nil
}

// ParseDataIndication decodes an AdpDataIndication payload (cmd byte already
// stripped): a 16-bit-length-prefixed NSDU followed by a link quality byte.
func ParseDataIndication(buf []byte) (DataIndication, error) {
	if len(buf) < 2 {
		return DataIndication{}, fmt.Errorf("g3: data indication too short")
	}
	nsduLen := int(binary.BigEndian.Uint16(buf[0:2]))
	if len(buf) < 2+nsduLen+1 {
		return DataIndication{}, fmt.Errorf("g3: data indication truncated")
	}
	return DataIndication{
		Nsdu:                 append([]byte(nil), buf[2:2+nsduLen]...),
		LinkQualityIndicator: buf[2+nsduLen],
	}, nil
}

// Indication is a decoded confirm/indication payload dispatched from a
// received USI ADP-G3 frame.
type Indication struct {
	Primitive         Primitive
	MsgStatus         *MsgStatusResponse
	DataResponse      *DataResponse
	DiscoveryEvent    *DiscoveryEvent
	DiscoveryResponse *DiscoveryResponse
	NetworkStart      *NetworkStartResponse
	Get               *GetResponse
	GetMac            *GetMacResponse
	Set               *SetResponse
	SetMac            *SetMacResponse
	LbpConfirm        *LbpConfirm
	LbpIndication     *LbpIndication
	NetworkJoin       *NetworkJoinResponse
	NetworkLeave      *NetworkLeaveResponse
	NetworkLeaveInd   *NetworkLeaveIndication
	Data              *DataIndication
}

// Decode dispatches a raw USI ADP-G3 payload (including its leading primitive
// byte) to the matching response/indication parser.
func Decode(buf []byte) (Indication, error) {
	if len(buf) == 0 {
		return Indication{}, fmt.Errorf("g3: empty payload")
	}
	prim := Primitive(buf[0])
	body := buf[1:]
	ind := Indication{Primitive: prim}
	var err error
	switch prim {
	case MsgStatus:
		var v MsgStatusResponse
		v, err = ParseMsgStatusResponse(body)
		ind.MsgStatus = &v
	case AdpDataConfirm:
		var v DataResponse
		v, err = ParseDataResponse(body)
		ind.DataResponse = &v
	case AdpDiscoveryIndication:
		var v DiscoveryEvent
		v, err = ParseDiscoveryEvent(body)
		ind.DiscoveryEvent = &v
	case AdpDiscoveryConfirm:
		var v DiscoveryResponse
		v, err = ParseDiscoveryResponse(body)
		ind.DiscoveryResponse = &v
	case AdpNetworkStartConfirm:
		var v NetworkStartResponse
		v, err = ParseNetworkStartResponse(body)
		ind.NetworkStart = &v
	case AdpGetConfirm:
		var v GetResponse
		v, err = ParseGetResponse(body)
		ind.Get = &v
	case AdpMacGetConfirm:
		var v GetMacResponse
		v, err = ParseGetMacResponse(body)
		ind.GetMac = &v
	case AdpSetConfirm:
		var v SetResponse
		v, err = ParseSetResponse(body)
		ind.Set = &v
	case AdpMacSetConfirm:
		var v SetMacResponse
		v, err = ParseSetMacResponse(body)
		ind.SetMac = &v
	case AdpLbpConfirm:
		var v LbpConfirm
		v, err = ParseLbpConfirm(body)
		ind.LbpConfirm = &v
	case AdpLbpIndication:
		var v LbpIndication
		v, err = ParseLbpIndication(body)
		ind.LbpIndication = &v
	case AdpNetworkJoinConfirm:
		var v NetworkJoinResponse
		v, err = ParseNetworkJoinResponse(body)
		ind.NetworkJoin = &v
	case AdpNetworkLeaveConfirm:
		var v NetworkLeaveResponse
		v, err = ParseNetworkLeaveResponse(body)
		ind.NetworkLeave = &v
	case AdpNetworkLeaveIndication:
		ind.NetworkLeaveInd = &NetworkLeaveIndication{}
	case AdpDataIndication:
		var v DataIndication
		v, err = ParseDataIndication(body)
		ind.Data = &v
	default:
		return Indication{}, fmt.Errorf("g3: unhandled primitive 0x%02X", byte(prim))
	}
	return ind, err
}
