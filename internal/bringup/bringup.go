// Package bringup runs the stack initialization sequence shared by both
// roles: ADP_INITIALIZE, pushing a fixed table of MAC/ADP PIB parameters,
// reading back the modem's own extended address, then either starting a PAN
// (coordinator) or discovering and joining one (modem). Grounded on
// app_manager/mod.rs's nefsm state table and app_manager/set_params.rs's
// parameter list, kept table-driven the way the rest of this repository
// prefers over per-state virtual dispatch (§9).
package bringup

import (
	"encoding/binary"

	"github.com/charmbracelet/log"

	"github.com/g3plc/neg3ctl/internal/g3"
	"github.com/g3plc/neg3ctl/internal/usi"
)

// State is the controller's position in the bring-up sequence.
//
// SetCoordShortAddr from the original's State enum is omitted: it is
// declared but never entered by any transition in app_manager/mod.rs, and
// Idle's on_event always routes straight to StackInitialize regardless of
// role (its commented-out coordinator branch was never wired up either).
type State int

const (
	StateIdle State = iota
	StateStackInitialize
	StateSetParams
	StateGetParams
	StateDiscoverNetwork
	StateJoinNetwork
	StateStartNetwork
	StateReady
	StateJoinNetworkFailed
	StateNetworkDiscoverFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStackInitialize:
		return "STACK_INITIALIZE"
	case StateSetParams:
		return "SET_PARAMS"
	case StateGetParams:
		return "GET_PARAMS"
	case StateDiscoverNetwork:
		return "DISCOVER_NETWORK"
	case StateJoinNetwork:
		return "JOIN_NETWORK"
	case StateStartNetwork:
		return "START_NETWORK"
	case StateReady:
		return "READY"
	case StateJoinNetworkFailed:
		return "JOIN_NETWORK_FAILED"
	case StateNetworkDiscoverFailed:
		return "NETWORK_DISCOVER_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Config carries the parameters pushed during SetParams and the role that
// selects which parameter subset and which post-GetParams transition apply.
type Config struct {
	IsCoordinator            bool
	PanID                    uint16
	Band                     g3.Band
	PSK                      []byte
	GMK                      []byte
	MaxHops                  byte
	ContextInformationTable0 []byte
	ContextInformationTable1 []byte
	DiscoveryTimeoutSecs     uint8
	Logger                   *log.Logger
}

// pendingSet is one queued AdpSetRequest/AdpMacSetRequest, popped and sent
// one at a time as SetParams confirms arrive.
type pendingSet struct {
	mac       bool
	attribute uint32
	index     uint16
	value     []byte
}

// Controller runs one device's bring-up sequence from Idle to Ready.
type Controller struct {
	cfg            Config
	state          State
	queue          []pendingSet
	extAddr        [8]byte
	haveExtAddr    bool
	panDescriptors []g3.PanDescriptor
	log            *log.Logger
}

// New builds a controller in the Idle state.
func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.DiscoveryTimeoutSecs == 0 {
		cfg.DiscoveryTimeoutSecs = 10
	}
	return &Controller{cfg: cfg, state: StateIdle, log: cfg.Logger}
}

// State reports the controller's current state.
func (c *Controller) State() State { return c.state }

// ExtendedAddr reports the modem's own extended address, once GetParams has
// completed.
func (c *Controller) ExtendedAddr() ([8]byte, bool) { return c.extAddr, c.haveExtAddr }

// PanDescriptors reports the PAN descriptors collected during the most
// recent discovery scan.
func (c *Controller) PanDescriptors() []g3.PanDescriptor { return c.panDescriptors }

func (c *Controller) transition(next State) {
	c.log.Info("bringup state transition", "from", c.state, "to", next)
	c.state = next
}

func frame(req g3.Request) usi.OutMessage {
	return usi.NewOutMessage(usi.ProtocolAdpG3, req.Payload())
}

// Start transitions out of Idle and returns the ADP_INITIALIZE request that
// begins the bring-up sequence.
func (c *Controller) Start() usi.OutMessage {
	c.transition(StateStackInitialize)
	return frame(g3.NewInitializeRequest(c.cfg.Band))
}

// HandleIndication processes one decoded ADP-G3 indication and returns the
// next request to transmit, if the current state produces one.
func (c *Controller) HandleIndication(ind g3.Indication) (usi.OutMessage, bool) {
	switch c.state {
	case StateStackInitialize:
		if ind.MsgStatus == nil {
			return usi.OutMessage{}, false
		}
		c.queue = buildParamSequence(c.cfg)
		c.transition(StateSetParams)
		return c.sendNextParam()

	case StateSetParams:
		if ind.Set == nil && ind.SetMac == nil {
			return usi.OutMessage{}, false
		}
		if msg, ok := c.sendNextParam(); ok {
			return msg, true
		}
		c.transition(StateGetParams)
		req := g3.NewMacGetRequest(g3.MacWrpPibManufExtendedAddress, 0)
		return frame(req), true

	case StateGetParams:
		if ind.GetMac == nil || ind.GetMac.Attribute != g3.MacWrpPibManufExtendedAddress {
			return usi.OutMessage{}, false
		}
		copy(c.extAddr[:], reverseBytes(ind.GetMac.AttributeVal))
		c.haveExtAddr = true
		if c.cfg.IsCoordinator {
			c.transition(StateStartNetwork)
			return frame(g3.NewNetworkStartRequest(c.cfg.PanID)), true
		}
		c.panDescriptors = nil
		c.transition(StateDiscoverNetwork)
		return frame(g3.NewDiscoveryRequest(c.cfg.DiscoveryTimeoutSecs)), true

	case StateDiscoverNetwork:
		switch {
		case ind.DiscoveryEvent != nil:
			c.panDescriptors = append(c.panDescriptors, ind.DiscoveryEvent.Pan)
		case ind.DiscoveryResponse != nil:
			if !ind.DiscoveryResponse.Status.OK() {
				c.transition(StateNetworkDiscoverFailed)
				break
			}
			c.transition(StateJoinNetwork)
		}
		return usi.OutMessage{}, false

	case StateStartNetwork:
		if ind.NetworkStart != nil && ind.NetworkStart.Status.OK() {
			c.transition(StateReady)
		}
		return usi.OutMessage{}, false
	}
	return usi.OutMessage{}, false
}

// JoinResult reports that internal/join finished driving the LBP handshake
// for a modem sitting in JoinNetwork, transitioning to Ready on success or
// JoinNetworkFailed otherwise.
func (c *Controller) JoinResult(ok bool) {
	if c.state != StateJoinNetwork {
		return
	}
	if ok {
		c.transition(StateReady)
		return
	}
	c.transition(StateJoinNetworkFailed)
}

// Tick applies a heartbeat sample, retrying discovery or join after a prior
// failure the way JoinNetworkFailed/NetworkDiscoverFailed do in the original.
func (c *Controller) Tick() (usi.OutMessage, bool) {
	switch c.state {
	case StateJoinNetworkFailed:
		c.transition(StateJoinNetwork)
	case StateNetworkDiscoverFailed:
		c.panDescriptors = nil
		c.transition(StateDiscoverNetwork)
		return frame(g3.NewDiscoveryRequest(c.cfg.DiscoveryTimeoutSecs)), true
	}
	return usi.OutMessage{}, false
}

func (c *Controller) sendNextParam() (usi.OutMessage, bool) {
	if len(c.queue) == 0 {
		return usi.OutMessage{}, false
	}
	p := c.queue[0]
	c.queue = c.queue[1:]
	if p.mac {
		return frame(g3.NewMacSetRequest(g3.MacAttribute(p.attribute), p.index, p.value)), true
	}
	return frame(g3.NewSetRequest(g3.AdpAttribute(p.attribute), p.index, p.value)), true
}

// buildParamSequence returns the fixed SetParams table for the given role,
// in the exact order app_manager/set_params.rs pushes them: PAN ID and
// (coordinator only) the GMK key table first, then the shared ADP security
// and network parameters, then (coordinator only) the fixed coordinator
// short address assignment.
func buildParamSequence(cfg Config) []pendingSet {
	var panID [2]byte
	binary.BigEndian.PutUint16(panID[:], cfg.PanID)

	seq := []pendingSet{
		{mac: true, attribute: uint32(g3.MacWrpPibPanID), value: panID[:]},
	}
	if cfg.IsCoordinator {
		seq = append(seq, pendingSet{mac: true, attribute: uint32(g3.MacWrpPibKeyTable), value: cfg.GMK})
	}
	seq = append(seq, pendingSet{attribute: uint32(g3.AdpIBSecurityLevel), value: []byte{0x05}})
	if cfg.IsCoordinator {
		seq = append(seq, pendingSet{attribute: uint32(g3.AdpIBActiveKeyIndex), value: []byte{0x00}})
	}
	seq = append(seq,
		pendingSet{attribute: uint32(g3.AdpIBMaxJoinWaitTime), value: []byte{0x10, 0x00}},
		pendingSet{attribute: uint32(g3.AdpIBMaxHops), value: []byte{cfg.MaxHops}},
		pendingSet{attribute: uint32(g3.AdpIBManufEapPreSharedKey), value: cfg.PSK},
		pendingSet{attribute: uint32(g3.AdpIBContextInformationTable), index: 0, value: cfg.ContextInformationTable0},
		pendingSet{attribute: uint32(g3.AdpIBContextInformationTable), index: 1, value: cfg.ContextInformationTable1},
		pendingSet{attribute: uint32(g3.AdpIBRoutingTableEntryTTL), value: []byte{0xB4, 0x00}},
	)
	if cfg.IsCoordinator {
		seq = append(seq,
			pendingSet{attribute: uint32(g3.AdpIBCoordShortAddress), value: []byte{0x00, 0x00}},
			pendingSet{mac: true, attribute: uint32(g3.MacWrpPibShortAddress), value: []byte{0x00, 0x00}},
		)
	}
	return seq
}

// reverseBytes returns a reversed copy of b: the modem reports its extended
// address little-endian-first over MAC_WRP_PIB_MANUF_EXTENDED_ADDRESS, and
// the rest of this codebase (LBP, IPv6 address derivation) expects standard
// EUI-64 big-endian order, matching get_params.rs's own v.reverse() call.
func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
