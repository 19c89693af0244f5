// Package authenticator implements the coordinator-side bootstrap
// authenticator: a device-table-keyed state machine that runs the four-pass
// EAP-PSK exchange over LBP and admits joining devices into the PAN.
// Grounded on lbp_manager.rs's LbpManager/DeviceSlot/Process_Joining*
// functions, generalized into the explicit event/step shape the rest of
// this repository uses (§9 "coroutine/async control flow").
package authenticator

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/g3plc/neg3ctl/internal/eappsk"
	"github.com/g3plc/neg3ctl/internal/g3"
	"github.com/g3plc/neg3ctl/internal/lbp"
)

// messageTimeout is the per-slot deadline from the last outbound CHALLENGE,
// mirroring lbp_manager.rs's UC_MESSAGE_TIMEOUT_MS.
const messageTimeout = 40 * time.Second

// State is a device slot's position in the bootstrap handshake.
//
// SentMsg1/WaitingMsg2 and SentMsg3/WaitingMsg4 are kept as distinct values
// to mirror the teacher's DeviceState enum exactly, even though only the
// "Sent" half is ever assigned in this authenticator (the same duplication
// is present, and apparently unreachable, in the original source).
type State int

const (
	StateWaitingJoining State = iota
	StateSentMsg1
	StateWaitingMsg2
	StateSentMsg3
	StateWaitingMsg4
	StateAccepted
	StateDeclined
)

func (s State) String() string {
	switch s {
	case StateWaitingJoining:
		return "WAITING_JOINING"
	case StateSentMsg1:
		return "SENT_MSG_1"
	case StateWaitingMsg2:
		return "WAITING_MSG_2"
	case StateSentMsg3:
		return "SENT_MSG_3"
	case StateWaitingMsg4:
		return "WAITING_MSG_4"
	case StateAccepted:
		return "ACCEPTED"
	case StateDeclined:
		return "DECLINED"
	default:
		return "UNKNOWN"
	}
}

// ExtAddr is an 8-byte EUI-64 extended address, the device table's key.
type ExtAddr [8]byte

// Slot is one device's bootstrap record: at most one in-flight LBP
// transaction, monotonic happy-path transitions, reset to WaitingJoining on
// any protocol error or timeout.
type Slot struct {
	State             State
	ExtAddr           ExtAddr
	AssignedShortAddr uint16
	TxHandle          byte
	PendingTxHandler  byte
	TimeoutDeadline   time.Time
	AttemptsRemaining int
	PendingConfirms   int
	Ctx               *eappsk.Context
	RandS             eappsk.Rand
	ExpectedNonce     uint32
}

// Outbound is an LBP frame the authenticator wants transmitted, plus the
// NSDU handle it was assigned.
type Outbound struct {
	DstAddr g3.Address
	Nsdu    []byte
	Handle  byte
}

// Config carries the immutable material the authenticator needs: PSK and
// PAN-wide keys, the coordinator's own identity, and hooks the tests
// override for determinism.
type Config struct {
	PSK           eappsk.Key
	GMK           [16]byte
	RekeyGMK      [16]byte
	IdS           []byte
	MaxHops       byte
	InitialShort  uint16 // first short address handed out to a joining peer
	Now           func() time.Time
	RandomSource  func() (eappsk.Rand, error)
	Logger        *log.Logger
}

// Authenticator is the coordinator-side device table and bootstrap FSM.
type Authenticator struct {
	cfg            Config
	devices        map[ExtAddr]*Slot
	eapIdentifier  byte
	nsduHandle     byte
	currentKeyIdx  byte
	nonce          uint32
	nextShortAddr  uint16
	admitted       map[ExtAddr]uint16
	log            *log.Logger
}

// New builds an authenticator ready to process LBP-JOINING frames.
func New(cfg Config) *Authenticator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RandomSource == nil {
		cfg.RandomSource = eappsk.NewRandom
	}
	if cfg.InitialShort == 0 {
		cfg.InitialShort = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Authenticator{
		cfg:           cfg,
		devices:       make(map[ExtAddr]*Slot),
		nextShortAddr: cfg.InitialShort,
		admitted:      make(map[ExtAddr]uint16),
		log:           cfg.Logger,
	}
}

// AdmittedShortAddr reports the short address assigned to ext, if any.
func (a *Authenticator) AdmittedShortAddr(ext ExtAddr) (uint16, bool) {
	v, ok := a.admitted[ext]
	return v, ok
}

// nextAddr hands out the next short address in the monotonic pool,
// wrapping past the reserved coordinator address 0x0000.
func (a *Authenticator) nextAddr() uint16 {
	addr := a.nextShortAddr
	a.nextShortAddr++
	if a.nextShortAddr == 0 {
		a.nextShortAddr = 1
	}
	return addr
}

func (a *Authenticator) slotFor(ext ExtAddr) *Slot {
	if s, ok := a.devices[ext]; ok {
		return s
	}
	s := &Slot{ExtAddr: ext, State: StateWaitingJoining}
	a.devices[ext] = s
	return s
}

// reset drops a slot back to WaitingJoining on any protocol error, timeout,
// or malformed input, clearing pending confirms so a later JOINING retries
// cleanly.
func (a *Authenticator) reset(s *Slot, why string) {
	a.log.Warn("bootstrap slot reset", "ext_addr", fmt.Sprintf("%x", s.ExtAddr), "reason", why)
	s.State = StateWaitingJoining
	s.PendingConfirms = 0
}

// HandleConfirm clears a slot's pending-confirm counter when the port
// reports the outcome of the frame sent with handle.
func (a *Authenticator) HandleConfirm(handle byte, status g3.Status) {
	for _, s := range a.devices {
		if s.TxHandle == handle && s.PendingConfirms > 0 {
			s.PendingConfirms--
			if !status.OK() {
				a.reset(s, "lbp confirm status "+status.String())
			}
			return
		}
	}
}

// Tick applies the heartbeat's wall-clock sample to every slot, resetting
// any whose deadline has passed.
func (a *Authenticator) Tick(now time.Time) {
	for _, s := range a.devices {
		if s.State == StateWaitingJoining || s.State == StateAccepted {
			continue
		}
		if now.After(s.TimeoutDeadline) {
			a.reset(s, "timeout")
		}
	}
}

// HandleIndication processes one inbound LBP message and returns the LBP
// frame to transmit in response, if any.
func (a *Authenticator) HandleIndication(msg lbp.Message) (Outbound, bool) {
	switch msg.Type {
	case lbp.Joining:
		return a.processJoining(msg, false)
	default:
		return Outbound{}, false
	}
}

// HandleRekey drives the parallel rekey flow for an already-admitted
// device, reusing the Msg1..Msg3 exchange with only a GMK TLV carrying the
// next key index.
func (a *Authenticator) HandleRekey(ext ExtAddr) (Outbound, bool) {
	s := a.slotFor(ext)
	if s.State != StateWaitingJoining && s.State != StateAccepted {
		return Outbound{}, false
	}
	msg := lbp.Message{Type: lbp.Joining, ExtAddr: [8]byte(ext)}
	return a.processJoining(msg, true)
}

func (a *Authenticator) processJoining(msg lbp.Message, rekey bool) (Outbound, bool) {
	ext := ExtAddr(msg.ExtAddr)
	s := a.slotFor(ext)

	if len(msg.BootstrappingData) == 0 {
		if s.State != StateWaitingJoining && !(rekey && s.State == StateAccepted) {
			return Outbound{}, false
		}
		if !rekey {
			if _, already := a.admitted[ext]; already {
				delete(a.admitted, ext)
			}
			s.AssignedShortAddr = a.nextAddr()
		}
		ctx, err := eappsk.Initialize(a.cfg.PSK)
		if err != nil {
			a.log.Error("eappsk initialize failed", "err", err)
			return Outbound{}, false
		}
		randS, err := a.cfg.RandomSource()
		if err != nil {
			a.log.Error("random source failed", "err", err)
			return Outbound{}, false
		}
		ctx.IdS = a.cfg.IdS
		s.Ctx = ctx
		s.RandS = randS

		out := eappsk.EncodeMessage1(a.eapIdentifier, randS, a.cfg.IdS)
		a.eapIdentifier++
		s.State = StateSentMsg1
		return a.enqueue(s, lbp.Challenge, out)
	}

	header, err := eappsk.DecodeHeader(msg.BootstrappingData)
	if err != nil {
		a.reset(s, "eap header decode: "+err.Error())
		return Outbound{}, false
	}

	switch {
	case header.TSubfield == eappsk.T1 && (s.State == StateSentMsg1 || s.State == StateWaitingMsg2):
		// A first join drops the device from a.admitted above, so a slot
		// still admitted here is answering a HandleRekey challenge.
		_, rekeying := a.admitted[s.ExtAddr]
		return a.processT1(s, msg.BootstrappingData, header, rekey || rekeying)
	case header.TSubfield == eappsk.T3 && (s.State == StateSentMsg3 || s.State == StateWaitingMsg4):
		return a.processT3(s, msg.BootstrappingData, header)
	default:
		a.reset(s, "protocol error: unexpected t-subfield in state "+s.State.String())
		return Outbound{}, false
	}
}

func (a *Authenticator) processT1(s *Slot, raw []byte, header eappsk.Header, rekey bool) (Outbound, bool) {
	m2, err := eappsk.DecodeMessage2(s.Ctx, header.Data, a.cfg.IdS, len(s.ExtAddr))
	if err != nil {
		a.reset(s, "message2: "+err.Error())
		return Outbound{}, false
	}
	if m2.RandS != s.RandS {
		a.reset(s, "message2 RandS mismatch")
		return Outbound{}, false
	}
	if err := s.Ctx.InitializeTEK(m2.RandP); err != nil {
		a.reset(s, "tek derivation: "+err.Error())
		return Outbound{}, false
	}

	pData := a.confParams(s, rekey)

	out, err := eappsk.EncodeMessage3(s.Ctx, a.eapIdentifier, s.RandS, m2.RandP, a.cfg.IdS, a.nonce, eappsk.PChannelDoneSuccess, pData)
	if err != nil {
		a.reset(s, "message3 encode: "+err.Error())
		return Outbound{}, false
	}
	s.ExpectedNonce = a.nonce
	a.eapIdentifier++
	a.nonce++
	s.State = StateSentMsg3
	return a.enqueue(s, lbp.Challenge, out)
}

// confParams builds the CONF_PARAM TLV blob delivered in Message-3: a
// short-address + GMK + activation triple on first join, or a single GMK
// TLV naming the next key index (current XOR 1) on rekey.
func (a *Authenticator) confParams(s *Slot, rekey bool) []byte {
	var data []byte
	if !rekey {
		data = lbp.AppendTLV(data, lbp.ParamShortAddr, lbp.ShortAddrParam(s.AssignedShortAddr))
		data = lbp.AppendTLV(data, lbp.ParamGMK, lbp.GMKParam(a.currentKeyIdx, a.cfg.GMK))
		data = lbp.AppendTLV(data, lbp.ParamGMKActivation, lbp.GMKActivationParam(a.currentKeyIdx))
		return data
	}
	nextIdx := a.currentKeyIdx ^ 0x01
	data = lbp.AppendTLV(data, lbp.ParamGMK, lbp.GMKParam(nextIdx, a.cfg.RekeyGMK))
	return data
}

func (a *Authenticator) processT3(s *Slot, raw []byte, header eappsk.Header) (Outbound, bool) {
	m4, err := eappsk.DecodeMessage4(s.Ctx, header.Data, raw)
	if err != nil {
		a.reset(s, "message4: "+err.Error())
		return Outbound{}, false
	}
	if m4.RandS != s.RandS {
		a.reset(s, "message4 RandS mismatch")
		return Outbound{}, false
	}
	if m4.Nonce != s.ExpectedNonce {
		a.reset(s, "message4 p-channel nonce mismatch or reuse")
		return Outbound{}, false
	}
	if m4.PChannelResult != eappsk.PChannelDoneSuccess {
		a.reset(s, "message4 reports failure result")
		return Outbound{}, false
	}

	success := eappsk.EncodeSuccess(a.eapIdentifier)
	a.eapIdentifier++
	s.State = StateAccepted
	a.admitted[s.ExtAddr] = s.AssignedShortAddr
	return a.enqueue(s, lbp.Accepted, success)
}

// enqueue wraps an EAP payload in an LBP frame, assigns a fresh NSDU
// handle, and records the slot's outstanding transaction.
func (a *Authenticator) enqueue(s *Slot, mt lbp.MessageType, eapPayload []byte) (Outbound, bool) {
	if s.PendingConfirms > 0 {
		s.PendingTxHandler = s.TxHandle
	}
	a.nsduHandle++
	s.TxHandle = a.nsduHandle
	s.TimeoutDeadline = a.cfg.Now().Add(messageTimeout)
	s.AttemptsRemaining = 0
	s.PendingConfirms++

	nsdu := lbp.Encode(lbp.Message{Type: mt, ExtAddr: [8]byte(s.ExtAddr), BootstrappingData: eapPayload})
	return Outbound{
		DstAddr: g3.ExtendedAddress([8]byte(s.ExtAddr)),
		Nsdu:    nsdu,
		Handle:  s.TxHandle,
	}, true
}
