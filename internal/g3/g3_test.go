package g3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func decode(t *testing.T, prim Primitive, body []byte) Indication {
	t.Helper()
	buf := append([]byte{byte(prim)}, body...)
	ind, err := Decode(buf)
	require.NoError(t, err)
	return ind
}

// TestPrimitiveRoundTrip checks that every Request this package builds
// decodes, byte-for-byte, back into the fields it was constructed from,
// wherever a matching Parse/Decode path exists.
func TestPrimitiveRoundTrip(t *testing.T) {
	t.Run("data request/confirm", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			handle := byte(rapid.IntRange(0, 255).Draw(rt, "handle"))
			status := Status(rapid.IntRange(0, 255).Draw(rt, "status"))
			ind := decode(t, AdpDataConfirm, []byte{byte(status), handle})
			require.NotNil(rt, ind.DataResponse)
			assert.Equal(rt, status, ind.DataResponse.Status)
			assert.Equal(rt, handle, ind.DataResponse.NsduHandle)
		})
	})

	rapid.Check(t, func(rt *rapid.T) {
		handle := byte(rapid.IntRange(0, 255).Draw(rt, "handle"))
		data := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "data")
		discoverRoute := rapid.Bool().Draw(rt, "discoverRoute")
		qos := byte(rapid.IntRange(0, 255).Draw(rt, "qos"))

		req := NewDataRequest(handle, data, discoverRoute, qos)
		payload := req.Payload()

		require.Equal(rt, byte(AdpDataRequest), payload[0])
		assert.Equal(rt, handle, payload[1])
		if discoverRoute {
			assert.Equal(rt, byte(1), payload[2])
		} else {
			assert.Equal(rt, byte(0), payload[2])
		}
		assert.Equal(rt, qos, payload[3])
		assert.Equal(rt, data, payload[6:])
	})

	rapid.Check(t, func(rt *rapid.T) {
		attr := AdpAttribute(rapid.Uint32().Draw(rt, "attr"))
		idx := uint16(rapid.IntRange(0, 65535).Draw(rt, "idx"))

		payload := NewGetRequest(attr, idx).Payload()
		require.Equal(rt, byte(AdpGetRequest), payload[0])

		ind := decode(t, AdpGetConfirm, append(append([]byte{0x00}, payload[1:]...), 0x00))
		require.NotNil(rt, ind.Get)
		assert.Equal(rt, attr, ind.Get.Attribute)
		assert.Equal(rt, idx, ind.Get.AttributeIdx)
	})
}

func TestLbpRequestIndicationRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		useShort := rapid.Bool().Draw(rt, "useShort")
		var addr Address
		if useShort {
			addr = ShortAddress(uint16(rapid.IntRange(0, 65535).Draw(rt, "short")))
		} else {
			var ext [8]byte
			b := rapid.SliceOfN(rapid.Byte(), 8, 8).Draw(rt, "ext")
			copy(ext[:], b)
			addr = ExtendedAddress(ext)
		}
		nsdu := rapid.SliceOfN(rapid.Byte(), 0, 48).Draw(rt, "nsdu")

		req := NewLbpRequest(addr, nsdu, 7, 8, true, 0, false)
		payload := req.Payload()
		require.Equal(rt, byte(AdpLbpRequest), payload[0])

		// An AdpLbpIndication orders its fields differently from the
		// request: length-prefixed source address, 16-bit NSDU length, NSDU,
		// then link quality and security flag.
		addrLen := len(addr.bytes())
		indBody := append([]byte{byte(addrLen)}, addr.bytes()...)
		var lenBuf [2]byte
		lenBuf[0] = byte(len(nsdu) >> 8)
		lenBuf[1] = byte(len(nsdu))
		indBody = append(indBody, lenBuf[:]...)
		indBody = append(indBody, nsdu...)
		indBody = append(indBody, 0x63, 0x01) // link quality, security enabled

		ind := decode(t, AdpLbpIndication, indBody)
		require.NotNil(rt, ind.LbpIndication)
		assert.Equal(rt, addr, ind.LbpIndication.SrcAddr)
		assert.Equal(rt, nsdu, ind.LbpIndication.Nsdu)
		assert.Equal(rt, byte(0x63), ind.LbpIndication.LinkQualityIndicator)
		assert.True(rt, ind.LbpIndication.SecurityEnabled)
	})
}

// TestDiscoveryConfirmDecode pins the ADP_DISCOVERY_CONFIRM decode path: a
// scan completion carrying zero or more prior ADP_DISCOVERY_INDICATION
// beacon events, each independently decodable.
func TestDiscoveryConfirmDecode(t *testing.T) {
	ind := decode(t, AdpDiscoveryConfirm, []byte{byte(StatusSuccess)})
	require.NotNil(t, ind.DiscoveryResponse)
	assert.True(t, ind.DiscoveryResponse.Status.OK())

	beacon := decode(t, AdpDiscoveryIndication, []byte{
		0x12, 0x34, // PAN ID
		0x50,       // link quality
		0x00, 0x01, // LBA address
		0x00, 0x00, // RC coord
	})
	require.NotNil(t, beacon.DiscoveryEvent)
	assert.Equal(t, uint16(0x1234), beacon.DiscoveryEvent.Pan.PanID)
	assert.Equal(t, byte(0x50), beacon.DiscoveryEvent.Pan.LinkQuality)
	assert.Equal(t, uint16(1), beacon.DiscoveryEvent.Pan.LbaAddress)
}

func TestMsgStatusDecode(t *testing.T) {
	ind := decode(t, MsgStatus, []byte{byte(StatusInvalidRequest), byte(AdpSetRequest)})
	require.NotNil(t, ind.MsgStatus)
	assert.Equal(t, StatusInvalidRequest, ind.MsgStatus.Status)
	assert.Equal(t, byte(AdpSetRequest), ind.MsgStatus.Cmd)
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownPrimitive(t *testing.T) {
	_, err := Decode([]byte{0xEE})
	assert.Error(t, err)
}
