package lbp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMessageRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mt := rapid.SampledFrom([]MessageType{Joining, Accepted, Challenge, Decline, KickFromLBD, KickToLBD}).Draw(rt, "type")
		var ext [ExtAddrLen]byte
		copy(ext[:], rapid.SliceOfN(rapid.Byte(), ExtAddrLen, ExtAddrLen).Draw(rt, "ext"))

		var data []byte
		switch mt {
		case Joining, Accepted, Challenge:
			data = rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "data")
		}

		msg := Message{Type: mt, ExtAddr: ext, BootstrappingData: data}
		nsdu := Encode(msg)

		got, err := Decode(nsdu)
		require.NoError(rt, err)
		assert.Equal(rt, mt, got.Type)
		assert.Equal(rt, ext, got.ExtAddr)
		if len(data) == 0 {
			assert.Empty(rt, got.BootstrappingData)
		} else {
			assert.Equal(rt, data, got.BootstrappingData)
		}
	})
}

func TestDecodeRejectsShort(t *testing.T) {
	_, err := Decode(make([]byte, MinLen-1))
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	nsdu := make([]byte, MinLen)
	nsdu[0] = 0xF0 // top nibble 0xF is not a known MessageType
	_, err := Decode(nsdu)
	assert.Error(t, err)
}

func TestParseTLVsRoundTrip(t *testing.T) {
	var buf []byte
	buf = AppendTLV(buf, ParamShortAddr, ShortAddrParam(0x1234))
	buf = AppendTLV(buf, ParamGMK, GMKParam(2, [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}))

	tlvs, err := ParseTLVs(buf)
	require.NoError(t, err)
	require.Len(t, tlvs, 2)

	assert.Equal(t, ParamShortAddr, tlvs[0].Tag)
	assert.Equal(t, []byte{0x12, 0x34}, tlvs[0].Value)

	assert.Equal(t, ParamGMK, tlvs[1].Tag)
	assert.Equal(t, byte(2), tlvs[1].Value[0])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, tlvs[1].Value[1:])
}

func TestParseTLVsRejectsTruncatedHeader(t *testing.T) {
	_, err := ParseTLVs([]byte{ParamShortAddr})
	assert.Error(t, err)
}

func TestParseTLVsRejectsOverrunValue(t *testing.T) {
	_, err := ParseTLVs([]byte{ParamShortAddr, 10, 0x00})
	assert.Error(t, err)
}

func TestGMKActivationParam(t *testing.T) {
	assert.Equal(t, []byte{0x05}, GMKActivationParam(5))
}
