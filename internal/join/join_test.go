package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g3plc/neg3ctl/internal/eappsk"
	"github.com/g3plc/neg3ctl/internal/g3"
	"github.com/g3plc/neg3ctl/internal/lbp"
)

func fixedRand(b byte) func() (eappsk.Rand, error) {
	return func() (eappsk.Rand, error) {
		var r eappsk.Rand
		for i := range r {
			r[i] = b
		}
		return r, nil
	}
}

func testClient(ext [8]byte) *Client {
	var psk eappsk.Key
	for i := range psk {
		psk[i] = 0x11
	}
	return New(Config{
		PSK:          psk,
		ExtAddr:      ext,
		CoordAddr:    g3.ShortAddress(0),
		MaxHops:      8,
		RandomSource: fixedRand(0xAB),
	})
}

func TestStartSendsEmptyJoining(t *testing.T) {
	ext := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	c := testClient(ext)

	req := c.Start()
	require.NotNil(t, req)
	assert.Equal(t, StateWaitingChallenge1, c.State())

	nsdu := nsduFromPayload(t, req.Payload())
	msg, err := lbp.Decode(nsdu)
	require.NoError(t, err)
	assert.Equal(t, lbp.Joining, msg.Type)
	assert.Equal(t, ext, msg.ExtAddr)
	assert.Empty(t, msg.BootstrappingData)
}

func TestHandleIndicationUnknownTypeIgnored(t *testing.T) {
	c := testClient([8]byte{1})
	_, ok := c.HandleIndication(lbp.Message{Type: lbp.KickToLBD})
	assert.False(t, ok)
	assert.Equal(t, StateIdle, c.State())
}

func TestHandleIndicationDeclineSetsState(t *testing.T) {
	c := testClient([8]byte{1})
	_, ok := c.HandleIndication(lbp.Message{Type: lbp.Decline})
	assert.False(t, ok)
	assert.Equal(t, StateDeclined, c.State())
}

func TestProcessChallengeRejectsGarbageHeader(t *testing.T) {
	c := testClient([8]byte{1})
	c.Start()
	_, ok := c.HandleIndication(lbp.Message{Type: lbp.Challenge, BootstrappingData: []byte{1, 2}})
	assert.False(t, ok)
}

func TestProcessChallengeRejectsUnexpectedTSubfield(t *testing.T) {
	ext := [8]byte{1}
	c := testClient(ext)
	c.Start()

	// T2 (Message3's subfield) arriving while waiting for T0 (Message1).
	m3ish := eappsk.EncodeMessage1(1, eappsk.Rand{}, nil)
	m3ish[5] = eappsk.T2
	_, ok := c.HandleIndication(lbp.Message{Type: lbp.Challenge, BootstrappingData: m3ish})
	assert.False(t, ok)
	assert.Equal(t, StateWaitingChallenge1, c.State())
}

func TestProcessMessage1ProducesMessage2(t *testing.T) {
	ext := [8]byte{9, 9, 9, 9, 9, 9, 9, 9}
	c := testClient(ext)
	c.Start()

	idS := []byte("COORD01")
	var randS eappsk.Rand
	for i := range randS {
		randS[i] = byte(i)
	}
	m1 := eappsk.EncodeMessage1(5, randS, idS)

	req, ok := c.HandleIndication(lbp.Message{Type: lbp.Challenge, BootstrappingData: m1})
	require.True(t, ok)
	require.NotNil(t, req)
	assert.Equal(t, StateWaitingChallenge3, c.State())

	nsdu := nsduFromPayload(t, req.Payload())
	msg, err := lbp.Decode(nsdu)
	require.NoError(t, err)
	assert.Equal(t, lbp.Joining, msg.Type)
	assert.Equal(t, ext, msg.ExtAddr)

	h, err := eappsk.DecodeHeader(msg.BootstrappingData)
	require.NoError(t, err)
	assert.Equal(t, byte(eappsk.T1), h.TSubfield)
}

func TestApplyConfParamsRejectsBadShortAddrLength(t *testing.T) {
	c := testClient([8]byte{1})
	var buf []byte
	buf = lbp.AppendTLV(buf, lbp.ParamShortAddr, []byte{0x01})
	err := c.applyConfParams(buf)
	assert.Error(t, err)
}

func TestApplyConfParamsRejectsBadGMKLength(t *testing.T) {
	c := testClient([8]byte{1})
	var buf []byte
	buf = lbp.AppendTLV(buf, lbp.ParamGMK, []byte{0x01, 0x02})
	err := c.applyConfParams(buf)
	assert.Error(t, err)
}

func TestApplyConfParamsPopulatesResult(t *testing.T) {
	c := testClient([8]byte{1})
	var buf []byte
	buf = lbp.AppendTLV(buf, lbp.ParamShortAddr, lbp.ShortAddrParam(0x0102))
	gmk := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	buf = lbp.AppendTLV(buf, lbp.ParamGMK, lbp.GMKParam(3, gmk))

	require.NoError(t, c.applyConfParams(buf))
	assert.Equal(t, uint16(0x0102), c.result.ShortAddr)
	assert.Equal(t, byte(3), c.result.GMKKeyIndex)
	assert.Equal(t, gmk, c.result.GMK)
	assert.Equal(t, byte(3), c.result.GMKActivationIndex, "defaults to the GMK TLV's own index absent a separate activation TLV")
}

func TestApplyConfParamsAppliesExplicitActivationIndex(t *testing.T) {
	c := testClient([8]byte{1})
	var buf []byte
	gmk := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	buf = lbp.AppendTLV(buf, lbp.ParamGMK, lbp.GMKParam(3, gmk))
	buf = lbp.AppendTLV(buf, lbp.ParamGMKActivation, lbp.GMKActivationParam(5))

	require.NoError(t, c.applyConfParams(buf))
	assert.Equal(t, byte(3), c.result.GMKKeyIndex)
	assert.Equal(t, byte(5), c.result.GMKActivationIndex, "a later CONF_PARAM_GMK_ACTIVATION TLV overrides the GMK TLV's own index")
}

func TestApplyConfParamsRejectsBadActivationLength(t *testing.T) {
	c := testClient([8]byte{1})
	var buf []byte
	buf = lbp.AppendTLV(buf, lbp.ParamGMKActivation, []byte{0x01, 0x02})
	err := c.applyConfParams(buf)
	assert.Error(t, err)
}

func TestProcessAcceptedRequiresWaitingState(t *testing.T) {
	c := testClient([8]byte{1})
	_, ok := c.processAccepted(nil)
	assert.False(t, ok)
	assert.Equal(t, StateIdle, c.State())

	c.state = StateWaitingAccepted
	_, ok = c.processAccepted(nil)
	assert.False(t, ok)
	assert.Equal(t, StateAccepted, c.State())
}

// nsduFromPayload extracts the raw LBP NSDU from an ADP_LBP request payload,
// mirroring lbpRequest.Payload()'s wire layout.
func nsduFromPayload(t *testing.T, p []byte) []byte {
	t.Helper()
	require.Equal(t, byte(g3.AdpLbpRequest), p[0])
	addrLen := int(p[6])
	dataLen := int(p[7])<<8 | int(p[8])
	start := 9 + addrLen
	require.LessOrEqual(t, start+dataLen, len(p))
	return p[start : start+dataLen]
}
