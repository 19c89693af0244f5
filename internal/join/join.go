// Package join implements the modem-side LBP bootstrap join client: it
// sends LBP_JOINING, drives the device side of the EAP-PSK exchange
// (decode Message1, encode Message2, decode Message3, encode Message4) and
// applies the short address and GMK the coordinator hands back in the final
// CONF_PARAM TLVs. Grounded on lbp_functions.rs's device-side
// eap_psk_decode_message1/encode_message2/decode_message3/encode_message4
// quartet and lbp.rs's JoiningMessage/ChallengeMessage/AcceptedMessage wire
// shapes; the coordinator counterpart is internal/authenticator.
package join

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/g3plc/neg3ctl/internal/eappsk"
	"github.com/g3plc/neg3ctl/internal/g3"
	"github.com/g3plc/neg3ctl/internal/lbp"
)

// State is the client's position in the bootstrap handshake.
type State int

const (
	StateIdle State = iota
	StateWaitingChallenge1
	StateWaitingChallenge3
	StateWaitingAccepted
	StateAccepted
	StateDeclined
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateWaitingChallenge1:
		return "WAITING_CHALLENGE_1"
	case StateWaitingChallenge3:
		return "WAITING_CHALLENGE_3"
	case StateWaitingAccepted:
		return "WAITING_ACCEPTED"
	case StateAccepted:
		return "ACCEPTED"
	case StateDeclined:
		return "DECLINED"
	default:
		return "UNKNOWN"
	}
}

// Result carries the network parameters the coordinator assigned this
// device once the handshake completes.
type Result struct {
	ShortAddr          uint16
	GMK                [16]byte
	GMKKeyIndex        byte
	GMKActivationIndex byte
}

// Config carries the material the join client needs: this device's own PSK
// and identity, and the coordinator address to direct LBP frames at.
type Config struct {
	PSK          eappsk.Key
	ExtAddr      [8]byte
	CoordAddr    g3.Address
	MaxHops      byte
	RandomSource func() (eappsk.Rand, error)
	Logger       *log.Logger
}

// Client drives one device's bootstrap handshake from the first JOINING to
// ACCEPTED or DECLINE.
type Client struct {
	cfg        Config
	state      State
	ctx        *eappsk.Context
	nsduHandle byte
	result     Result
	log        *log.Logger
}

// New builds a join client in the Idle state.
func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.RandomSource == nil {
		cfg.RandomSource = eappsk.NewRandom
	}
	return &Client{cfg: cfg, state: StateIdle, log: cfg.Logger}
}

// State reports the client's current state.
func (c *Client) State() State { return c.state }

// Result reports the parameters assigned by the coordinator, valid once
// State returns StateAccepted.
func (c *Client) Result() Result { return c.result }

// Start sends the initial LBP_JOINING frame with no bootstrapping data,
// announcing this device to the coordinator.
func (c *Client) Start() g3.Request {
	c.state = StateWaitingChallenge1
	return c.enqueue(lbp.Joining, nil)
}

func (c *Client) enqueue(mt lbp.MessageType, eapPayload []byte) g3.Request {
	c.nsduHandle++
	nsdu := lbp.Encode(lbp.Message{Type: mt, ExtAddr: c.cfg.ExtAddr, BootstrappingData: eapPayload})
	return g3.NewLbpRequest(c.cfg.CoordAddr, nsdu, c.nsduHandle, c.cfg.MaxHops, true, 0, false)
}

// HandleIndication processes one inbound LBP message addressed to this
// device and returns the next request to transmit, if any.
func (c *Client) HandleIndication(msg lbp.Message) (g3.Request, bool) {
	switch msg.Type {
	case lbp.Challenge:
		return c.processChallenge(msg.BootstrappingData)
	case lbp.Accepted:
		return c.processAccepted(msg.BootstrappingData)
	case lbp.Decline:
		c.log.Warn("join: coordinator declined bootstrap")
		c.state = StateDeclined
		return nil, false
	default:
		return nil, false
	}
}

func (c *Client) processChallenge(raw []byte) (g3.Request, bool) {
	header, err := eappsk.DecodeHeader(raw)
	if err != nil {
		c.log.Warn("join: eap header decode failed", "err", err)
		return nil, false
	}
	switch {
	case header.TSubfield == eappsk.T0 && c.state == StateWaitingChallenge1:
		return c.processMessage1(header)
	case header.TSubfield == eappsk.T2 && c.state == StateWaitingChallenge3:
		return c.processMessage3(raw, header)
	default:
		c.log.Warn("join: unexpected t-subfield", "state", c.state.String(), "t", header.TSubfield)
		return nil, false
	}
}

func (c *Client) processMessage1(header eappsk.Header) (g3.Request, bool) {
	m1, err := eappsk.DecodeMessage1(header.Data)
	if err != nil {
		c.log.Warn("join: message1 decode failed", "err", err)
		return nil, false
	}
	ctx, err := eappsk.Initialize(c.cfg.PSK)
	if err != nil {
		c.log.Error("join: eappsk initialize failed", "err", err)
		return nil, false
	}
	ctx.IdS = m1.IdS

	randP, err := c.cfg.RandomSource()
	if err != nil {
		c.log.Error("join: random source failed", "err", err)
		return nil, false
	}
	if err := ctx.InitializeTEK(randP); err != nil {
		c.log.Error("join: tek derivation failed", "err", err)
		return nil, false
	}
	c.ctx = ctx

	out, err := eappsk.EncodeMessage2(ctx, header.Identifier, m1.RandS, randP, m1.IdS, c.cfg.ExtAddr[:])
	if err != nil {
		c.log.Error("join: message2 encode failed", "err", err)
		return nil, false
	}
	c.state = StateWaitingChallenge3
	return c.enqueue(lbp.Joining, out), true
}

func (c *Client) processMessage3(raw []byte, header eappsk.Header) (g3.Request, bool) {
	m3, err := eappsk.DecodeMessage3(c.ctx, header.Data, raw)
	if err != nil {
		c.log.Warn("join: message3 decode failed", "err", err)
		return nil, false
	}
	if m3.PChannelResult != eappsk.PChannelDoneSuccess {
		c.log.Warn("join: message3 reports failure result")
		c.state = StateDeclined
		return nil, false
	}
	if err := c.applyConfParams(m3.PChannelData); err != nil {
		c.log.Warn("join: conf_param decode failed", "err", err)
		return nil, false
	}

	out, err := eappsk.EncodeMessage4(c.ctx, header.Identifier, m3.RandS, m3.Nonce, eappsk.PChannelDoneSuccess, nil)
	if err != nil {
		c.log.Error("join: message4 encode failed", "err", err)
		return nil, false
	}
	c.state = StateWaitingAccepted
	return c.enqueue(lbp.Joining, out), true
}

// applyConfParams reads the CONF_PARAM_SHORT_ADDR, CONF_PARAM_GMK and
// CONF_PARAM_GMK_ACTIVATION TLVs the coordinator piggybacked on Message-3's
// P-Channel, per confParams in
// the coordinator's own authenticator.
func (c *Client) applyConfParams(data []byte) error {
	tlvs, err := lbp.ParseTLVs(data)
	if err != nil {
		return err
	}
	for _, t := range tlvs {
		switch t.Tag {
		case lbp.ParamShortAddr:
			if len(t.Value) != 2 {
				return fmt.Errorf("join: short addr TLV wants 2 bytes, got %d", len(t.Value))
			}
			c.result.ShortAddr = uint16(t.Value[0])<<8 | uint16(t.Value[1])
		case lbp.ParamGMK:
			if len(t.Value) != 17 {
				return fmt.Errorf("join: gmk TLV wants 17 bytes, got %d", len(t.Value))
			}
			c.result.GMKKeyIndex = t.Value[0]
			copy(c.result.GMK[:], t.Value[1:])
			c.result.GMKActivationIndex = t.Value[0] // default until a CONF_PARAM_GMK_ACTIVATION TLV says otherwise
		case lbp.ParamGMKActivation:
			if len(t.Value) != 1 {
				return fmt.Errorf("join: gmk activation TLV wants 1 byte, got %d", len(t.Value))
			}
			c.result.GMKActivationIndex = t.Value[0]
		}
	}
	return nil
}

func (c *Client) processAccepted(raw []byte) (g3.Request, bool) {
	if c.state != StateWaitingAccepted {
		return nil, false
	}
	// raw carries the minimal 4-byte EAP-Success; no further TLVs are
	// expected here since CONF_PARAM delivery already happened on Message-3.
	c.state = StateAccepted
	return nil, false
}
