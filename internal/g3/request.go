package g3

import "encoding/binary"

// Address is a G3 MAC/ADP address, either a 16-bit short address or a
// 64-bit extended (EUI-64) address.
type Address struct {
	Short    uint16
	Extended [8]byte
	IsShort  bool
}

// ShortAddress builds a short-form Address.
func ShortAddress(addr uint16) Address {
	return Address{Short: addr, IsShort: true}
}

// ExtendedAddress builds an extended-form Address.
func ExtendedAddress(addr [8]byte) Address {
	return Address{Extended: addr, IsShort: false}
}

// bytes serializes the address payload (without length prefix) as carried
// inside an AdpLbpRequest: short addresses are big-endian 2 bytes, extended
// addresses are the raw 8 bytes.
func (a Address) bytes() []byte {
	if a.IsShort {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], a.Short)
		return b[:]
	}
	out := make([]byte, 8)
	copy(out, a.Extended[:])
	return out
}

// Request is anything that serializes to a USI ADP-G3 payload.
type Request interface {
	Payload() []byte
}

type initializeRequest struct{ band Band }

// NewInitializeRequest builds an ADP_INITIALIZE request selecting a PHY band.
func NewInitializeRequest(band Band) Request { return initializeRequest{band} }
func (r initializeRequest) Payload() []byte   { return []byte{byte(AdpInitialize), byte(r.band)} }

type discoveryRequest struct{ durationSecs uint8 }

// NewDiscoveryRequest builds an ADP_DISCOVERY request for the given scan duration.
func NewDiscoveryRequest(durationSecs uint8) Request { return discoveryRequest{durationSecs} }
func (r discoveryRequest) Payload() []byte {
	return []byte{byte(AdpDiscoveryRequest), r.durationSecs}
}

type networkStartRequest struct{ panID uint16 }

// NewNetworkStartRequest builds an ADP_NETWORK_START request for a coordinator.
func NewNetworkStartRequest(panID uint16) Request { return networkStartRequest{panID} }
func (r networkStartRequest) Payload() []byte {
	b := make([]byte, 3)
	b[0] = byte(AdpNetworkStartRequest)
	binary.BigEndian.PutUint16(b[1:], r.panID)
	return b
}

type networkJoinRequest struct {
	panID      uint16
	lbaAddress uint16
}

// NewNetworkJoinRequest builds an ADP_NETWORK_JOIN request for a joining device.
func NewNetworkJoinRequest(panID, lbaAddress uint16) Request {
	return networkJoinRequest{panID, lbaAddress}
}
func (r networkJoinRequest) Payload() []byte {
	b := make([]byte, 5)
	b[0] = byte(AdpNetworkJoinRequest)
	binary.BigEndian.PutUint16(b[1:3], r.panID)
	binary.BigEndian.PutUint16(b[3:5], r.lbaAddress)
	return b
}

type getRequest struct {
	attribute AdpAttribute
	index     uint16
}

// NewGetRequest builds an ADP_GET request for an ADP-IB attribute.
func NewGetRequest(attribute AdpAttribute, index uint16) Request {
	return getRequest{attribute, index}
}
func (r getRequest) Payload() []byte {
	b := make([]byte, 7)
	b[0] = byte(AdpGetRequest)
	binary.BigEndian.PutUint32(b[1:5], uint32(r.attribute))
	binary.BigEndian.PutUint16(b[5:7], r.index)
	return b
}

type setRequest struct {
	attribute AdpAttribute
	index     uint16
	value     []byte
}

// NewSetRequest builds an ADP_SET request for an ADP-IB attribute.
func NewSetRequest(attribute AdpAttribute, index uint16, value []byte) Request {
	return setRequest{attribute, index, value}
}
func (r setRequest) Payload() []byte {
	b := make([]byte, 8, 8+len(r.value))
	b[0] = byte(AdpSetRequest)
	binary.BigEndian.PutUint32(b[1:5], uint32(r.attribute))
	binary.BigEndian.PutUint16(b[5:7], r.index)
	b[7] = byte(len(r.value))
	return append(b, r.value...)
}

type macGetRequest struct {
	attribute MacAttribute
	index     uint16
}

// NewMacGetRequest builds an ADP_MAC_GET request for a MAC-IB attribute.
func NewMacGetRequest(attribute MacAttribute, index uint16) Request {
	return macGetRequest{attribute, index}
}
func (r macGetRequest) Payload() []byte {
	b := make([]byte, 7)
	b[0] = byte(AdpMacGetRequest)
	binary.BigEndian.PutUint32(b[1:5], uint32(r.attribute))
	binary.BigEndian.PutUint16(b[5:7], r.index)
	return b
}

type macSetRequest struct {
	attribute MacAttribute
	index     uint16
	value     []byte
}

// NewMacSetRequest builds an ADP_MAC_SET request for a MAC-IB attribute.
func NewMacSetRequest(attribute MacAttribute, index uint16, value []byte) Request {
	return macSetRequest{attribute, index, value}
}
func (r macSetRequest) Payload() []byte {
	b := make([]byte, 8, 8+len(r.value))
	b[0] = byte(AdpMacSetRequest)
	binary.BigEndian.PutUint32(b[1:5], uint32(r.attribute))
	binary.BigEndian.PutUint16(b[5:7], r.index)
	b[7] = byte(len(r.value))
	return append(b, r.value...)
}

type dataRequest struct {
	handle        byte
	data          []byte
	discoverRoute bool
	qualityOfService byte
}

// NewDataRequest builds an ADP_DATA request carrying an upper-layer datagram.
func NewDataRequest(handle byte, data []byte, discoverRoute bool, qualityOfService byte) Request {
	return dataRequest{handle, data, discoverRoute, qualityOfService}
}
func (r dataRequest) Payload() []byte {
	b := make([]byte, 6, 6+len(r.data))
	b[0] = byte(AdpDataRequest)
	b[1] = r.handle
	b[2] = boolByte(r.discoverRoute)
	b[3] = r.qualityOfService
	binary.BigEndian.PutUint16(b[4:6], uint16(len(r.data)))
	return append(b, r.data...)
}

type lbpRequest struct {
	dstAddr          Address
	data             []byte
	handle           byte
	maxHops          byte
	discoverRoute    bool
	qualityOfService byte
	securityEnable   bool
}

// NewLbpRequest builds an ADP_LBP request carrying an LBP message between the
// bootstrap authenticator and the LoWPAN bootstrapping device.
func NewLbpRequest(dstAddr Address, data []byte, handle, maxHops byte, discoverRoute bool, qualityOfService byte, securityEnable bool) Request {
	return lbpRequest{dstAddr, data, handle, maxHops, discoverRoute, qualityOfService, securityEnable}
}
func (r lbpRequest) Payload() []byte {
	addr := r.dstAddr.bytes()
	b := make([]byte, 0, 9+len(addr)+len(r.data))
	b = append(b, byte(AdpLbpRequest), r.handle, r.maxHops, boolByte(r.discoverRoute), r.qualityOfService, boolByte(r.securityEnable))
	b = append(b, byte(len(addr)))
	var dl [2]byte
	binary.BigEndian.PutUint16(dl[:], uint16(len(r.data)))
	b = append(b, dl[:]...)
	b = append(b, addr...)
	b = append(b, r.data...)
	return b
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
