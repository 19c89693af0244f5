// Package g3 implements the ADP/MAC primitive codec exchanged with the G3-PLC
// modem over the USI serial transport: primitive opcodes, PIB attribute
// identifiers, status codes, and the byte-exact request/response layouts.
package g3

/*-------------------------------------------------------------
 *
 * Purpose:	Primitive opcode space for the coordinator, ADP and MAC
 *		serialized interfaces carried inside USI PROTOCOL_ADP_G3 /
 *		PROTOCOL_COORD_G3 / PROTOCOL_MAC_G3 frames.
 *
 *--------------------------------------------------------------*/

// Primitive identifies the first byte of a USI ADP/COORD/MAC payload.
type Primitive uint8

const (
	MsgStatus Primitive = 0

	// Coordinator-side request block.
	CoordRequestMessagesBegin  Primitive = 1
	CoordInitialize            Primitive = CoordRequestMessagesBegin
	CoordSetRequest            Primitive = CoordRequestMessagesBegin + 1
	CoordGetRequest            Primitive = CoordRequestMessagesBegin + 2
	CoordKickRequest           Primitive = CoordRequestMessagesBegin + 3
	CoordRekeyingRequest       Primitive = CoordRequestMessagesBegin + 4
	CoordConfIndMessagesBegin  Primitive = CoordRequestMessagesBegin + 5
	CoordSetConfirm            Primitive = CoordConfIndMessagesBegin
	CoordGetConfirm            Primitive = CoordConfIndMessagesBegin + 1
	CoordJoinIndication        Primitive = CoordConfIndMessagesBegin + 2
	CoordLeaveIndication       Primitive = CoordConfIndMessagesBegin + 3
	CoordRequestMessagesEnd    Primitive = CoordLeaveIndication

	// ADP request block.
	AdpRequestMessagesBegin     Primitive = 10
	AdpInitialize               Primitive = AdpRequestMessagesBegin
	AdpDataRequest              Primitive = AdpRequestMessagesBegin + 1
	AdpDiscoveryRequest         Primitive = AdpRequestMessagesBegin + 2
	AdpNetworkStartRequest      Primitive = AdpRequestMessagesBegin + 3
	AdpNetworkJoinRequest       Primitive = AdpRequestMessagesBegin + 4
	AdpNetworkLeaveRequest      Primitive = AdpRequestMessagesBegin + 5
	AdpResetRequest             Primitive = AdpRequestMessagesBegin + 6
	AdpSetRequest               Primitive = AdpRequestMessagesBegin + 7
	AdpGetRequest               Primitive = AdpRequestMessagesBegin + 8
	AdpLbpRequest               Primitive = AdpRequestMessagesBegin + 9
	AdpRouteDiscoveryRequest    Primitive = AdpRequestMessagesBegin + 10
	AdpPathDiscoveryRequest     Primitive = AdpRequestMessagesBegin + 11
	AdpMacSetRequest            Primitive = AdpRequestMessagesBegin + 12
	AdpMacGetRequest            Primitive = AdpRequestMessagesBegin + 13
	AdpRequestMessagesEnd       Primitive = AdpMacGetRequest

	// ADP confirm/indication block.
	AdpConfIndMessagesBegin             Primitive = 30
	AdpDataConfirm                      Primitive = AdpConfIndMessagesBegin
	AdpDataIndication                   Primitive = AdpConfIndMessagesBegin + 1
	AdpNetworkStatusIndication          Primitive = AdpConfIndMessagesBegin + 2
	AdpDiscoveryConfirm                 Primitive = AdpConfIndMessagesBegin + 3
	AdpNetworkStartConfirm              Primitive = AdpConfIndMessagesBegin + 4
	AdpNetworkJoinConfirm               Primitive = AdpConfIndMessagesBegin + 5
	AdpNetworkLeaveConfirm              Primitive = AdpConfIndMessagesBegin + 6
	AdpNetworkLeaveIndication           Primitive = AdpConfIndMessagesBegin + 7
	AdpResetConfirm                     Primitive = AdpConfIndMessagesBegin + 8
	AdpSetConfirm                       Primitive = AdpConfIndMessagesBegin + 9
	AdpGetConfirm                       Primitive = AdpConfIndMessagesBegin + 10
	AdpLbpConfirm                       Primitive = AdpConfIndMessagesBegin + 11
	AdpLbpIndication                    Primitive = AdpConfIndMessagesBegin + 12
	AdpRouteDiscoveryConfirm            Primitive = AdpConfIndMessagesBegin + 13
	AdpPathDiscoveryConfirm             Primitive = AdpConfIndMessagesBegin + 14
	AdpMacSetConfirm                    Primitive = AdpConfIndMessagesBegin + 15
	AdpMacGetConfirm                    Primitive = AdpConfIndMessagesBegin + 16
	AdpBufferIndication                 Primitive = AdpConfIndMessagesBegin + 17
	AdpDiscoveryIndication              Primitive = AdpConfIndMessagesBegin + 18
	AdpPreqIndication                   Primitive = AdpConfIndMessagesBegin + 19
	AdpUpdNonVolatileDataIndication     Primitive = AdpConfIndMessagesBegin + 20
	AdpRouteNotFoundIndication          Primitive = AdpConfIndMessagesBegin + 21

	// MAC request block.
	MacRequestMessagesBegin Primitive = 50
	MacInitialize           Primitive = MacRequestMessagesBegin
	MacDataRequest          Primitive = MacRequestMessagesBegin + 1
	MacGetRequest           Primitive = MacRequestMessagesBegin + 2
	MacSetRequest           Primitive = MacRequestMessagesBegin + 3
	MacResetRequest         Primitive = MacRequestMessagesBegin + 4
	MacScanRequest          Primitive = MacRequestMessagesBegin + 5
	MacStartRequest         Primitive = MacRequestMessagesBegin + 6
	MacRequestMessagesEnd   Primitive = MacStartRequest

	// MAC confirm/indication block.
	MacConfIndMessagesBegin   Primitive = 60
	MacDataConfirm            Primitive = MacConfIndMessagesBegin
	MacDataIndication         Primitive = MacConfIndMessagesBegin + 1
	MacGetConfirm             Primitive = MacConfIndMessagesBegin + 2
	MacSetConfirm             Primitive = MacConfIndMessagesBegin + 3
	MacResetConfirm           Primitive = MacConfIndMessagesBegin + 4
	MacScanConfirm            Primitive = MacConfIndMessagesBegin + 5
	MacBeaconNotify           Primitive = MacConfIndMessagesBegin + 6
	MacStartConfirm           Primitive = MacConfIndMessagesBegin + 7
	MacCommStatusIndication   Primitive = MacConfIndMessagesBegin + 8
	MacSnifferIndication      Primitive = MacConfIndMessagesBegin + 9
)

// Address length in bytes, as carried by ADP addressing fields.
const (
	AddressShort    = 2
	AddressExtended = 8
)

// Modulation identifies the PHY modulation scheme reported by the modem.
type Modulation uint8

const (
	ModRobo Modulation = iota
	ModBPSK
	ModDBPSK
	ModQPSK
	ModDQPSK
	Mod8PSK
	ModD8PSK
	Mod16QAM
	ModUnknown Modulation = 255
)

// Band identifies the CENELEC/FCC/ARIB spectrum band the stack operates in.
type Band uint8

const (
	BandCenelecA Band = iota
	BandCenelecB
	BandFCC
	BandARIB
)
