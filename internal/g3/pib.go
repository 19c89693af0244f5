package g3

// AdpAttribute identifies an entry in the ADP information base (ADP-IB),
// addressed via AdpGetRequest/AdpSetRequest.
type AdpAttribute uint32

const (
	AdpIBSecurityLevel               AdpAttribute = 0x00000000
	AdpIBPrefixTable                 AdpAttribute = 0x00000001
	AdpIBBroadcastLogTableEntryTTL   AdpAttribute = 0x00000002
	AdpIBMetricType                  AdpAttribute = 0x00000003
	AdpIBLowLQIValue                 AdpAttribute = 0x00000004
	AdpIBHighLQIValue                AdpAttribute = 0x00000005
	AdpIBRrepWait                    AdpAttribute = 0x00000006
	AdpIBContextInformationTable     AdpAttribute = 0x00000007
	AdpIBCoordShortAddress           AdpAttribute = 0x00000008
	AdpIBRlcEnabled                  AdpAttribute = 0x00000009
	AdpIBAddRevLinkCost              AdpAttribute = 0x0000000A
	AdpIBBroadcastLogTable           AdpAttribute = 0x0000000B
	AdpIBRoutingTable                AdpAttribute = 0x0000000C
	AdpIBUnicastRreqGenEnable        AdpAttribute = 0x0000000D
	AdpIBGroupTable                  AdpAttribute = 0x0000000E
	AdpIBMaxHops                     AdpAttribute = 0x0000000F
	AdpIBDeviceType                  AdpAttribute = 0x00000010
	AdpIBNetTraversalTime            AdpAttribute = 0x00000011
	AdpIBRoutingTableEntryTTL        AdpAttribute = 0x00000012
	AdpIBKr                          AdpAttribute = 0x00000013
	AdpIBKm                          AdpAttribute = 0x00000014
	AdpIBKc                          AdpAttribute = 0x00000015
	AdpIBKq                          AdpAttribute = 0x00000016
	AdpIBKh                          AdpAttribute = 0x00000017
	AdpIBRreqRetries                 AdpAttribute = 0x00000018
	AdpIBRreqWait                    AdpAttribute = 0x00000019
	AdpIBWeakLQIValue                AdpAttribute = 0x0000001A
	AdpIBKrt                         AdpAttribute = 0x0000001B
	AdpIBSoftVersion                 AdpAttribute = 0x0000001C
	AdpIBSnifferMode                 AdpAttribute = 0x0000001D
	AdpIBBlacklistTable              AdpAttribute = 0x0000001E
	AdpIBBlacklistTableEntryTTL      AdpAttribute = 0x0000001F
	AdpIBMaxJoinWaitTime             AdpAttribute = 0x00000020
	AdpIBPathDiscoveryTime           AdpAttribute = 0x00000021
	AdpIBActiveKeyIndex              AdpAttribute = 0x00000022
	AdpIBDestinationAddressSet       AdpAttribute = 0x00000023
	AdpIBDefaultCoordRouteEnabled    AdpAttribute = 0x00000024
	AdpIBDisableDefaultRouting       AdpAttribute = 0x000000F0

	// Manufacturer-specific block.
	AdpIBManufReassemblyTimer                    AdpAttribute = 0x080000C0
	AdpIBManufIPv6HeaderCompression              AdpAttribute = 0x080000C1
	AdpIBManufEapPreSharedKey                    AdpAttribute = 0x080000C2
	AdpIBManufEapNetworkAccessIdentifier         AdpAttribute = 0x080000C3
	AdpIBManufBroadcastSequenceNumber            AdpAttribute = 0x080000C4
	AdpIBManufRegisterDevice                     AdpAttribute = 0x080000C5
	AdpIBManufDatagramTag                        AdpAttribute = 0x080000C6
	AdpIBManufRandP                              AdpAttribute = 0x080000C7
	AdpIBManufRoutingTableCount                  AdpAttribute = 0x080000C8
	AdpIBManufDiscoverSequenceNumber             AdpAttribute = 0x080000C9
	AdpIBManufForcedNoAckRequest                 AdpAttribute = 0x080000CA
	AdpIBManufLQIToCoord                         AdpAttribute = 0x080000CB
	AdpIBManufBroadcastRouteAll                  AdpAttribute = 0x080000CC
	AdpIBManufKeepParamsAfterKickLeave           AdpAttribute = 0x080000CD
	AdpIBManufAdpInternalVersion                 AdpAttribute = 0x080000CE
	AdpIBManufCircularRoutesDetected             AdpAttribute = 0x080000CF
	AdpIBManufLastCircularRouteAddress           AdpAttribute = 0x080000D0
	AdpIBManufIPv6UlaDestShortAddress            AdpAttribute = 0x080000D1
	AdpIBManufMaxRepairResendAttempts            AdpAttribute = 0x080000D2
	AdpIBManufDisableAutoRreq                    AdpAttribute = 0x080000D3
	AdpIBManufAllNeighborsBlacklistedCount        AdpAttribute = 0x080000D5
	AdpIBManufQueuedEntriesRemovedTimeoutCount    AdpAttribute = 0x080000D6
	AdpIBManufQueuedEntriesRemovedRouteErrorCount AdpAttribute = 0x080000D7
	AdpIBManufPendingDataIndShortAddress          AdpAttribute = 0x080000D8
	AdpIBManufGetBandContextTones                 AdpAttribute = 0x080000D9
	AdpIBManufUpdateNonVolatileData               AdpAttribute = 0x080000DA
	AdpIBManufDiscoverRouteGlobalSeqNum            AdpAttribute = 0x080000DB
)

// MacAttribute identifies an entry in the MAC information base (MAC-IB),
// addressed via AdpMacGetRequest/AdpMacSetRequest.
type MacAttribute uint32

const (
	MacWrpPibAckWaitDuration  MacAttribute = 0x00000040
	MacWrpPibMaxBE            MacAttribute = 0x00000047
	MacWrpPibBsn              MacAttribute = 0x00000049
	MacWrpPibDsn              MacAttribute = 0x0000004C
	MacWrpPibMaxCsmaBackoffs  MacAttribute = 0x0000004E
	MacWrpPibMinBE            MacAttribute = 0x0000004F
	MacWrpPibPanID            MacAttribute = 0x00000050
	MacWrpPibPromiscuousMode  MacAttribute = 0x00000051
	MacWrpPibShortAddress     MacAttribute = 0x00000053
	MacWrpPibMaxFrameRetries  MacAttribute = 0x00000059
	MacWrpPibTimestampSupported MacAttribute = 0x0000005C
	MacWrpPibSecurityEnabled  MacAttribute = 0x0000005D
	MacWrpPibKeyTable         MacAttribute = 0x00000071
	MacWrpPibFrameCounter     MacAttribute = 0x00000077

	MacWrpPibHighPriorityWindowSize       MacAttribute = 0x00000100
	MacWrpPibTxDataPacketCount            MacAttribute = 0x00000101
	MacWrpPibRxDataPacketCount            MacAttribute = 0x00000102
	MacWrpPibTxCmdPacketCount             MacAttribute = 0x00000103
	MacWrpPibRxCmdPacketCount             MacAttribute = 0x00000104
	MacWrpPibCsmaFailCount                MacAttribute = 0x00000105
	MacWrpPibCsmaNoAckCount               MacAttribute = 0x00000106
	MacWrpPibRxDataBroadcastCount         MacAttribute = 0x00000107
	MacWrpPibTxDataBroadcastCount         MacAttribute = 0x00000108
	MacWrpPibBadCrcCount                  MacAttribute = 0x00000109
	MacWrpPibNeighbourTable               MacAttribute = 0x0000010A
	MacWrpPibFreqNotching                 MacAttribute = 0x0000010B
	MacWrpPibCsmaFairnessLimit            MacAttribute = 0x0000010C
	MacWrpPibTmrTTL                       MacAttribute = 0x0000010D
	MacWrpPibNeighbourTableEntryTTL       MacAttribute = 0x0000010E
	MacWrpPibRcCoord                      MacAttribute = 0x0000010F
	MacWrpPibToneMask                     MacAttribute = 0x00000110
	MacWrpPibBeaconRandomizationWindowLen MacAttribute = 0x00000111
	MacWrpPibA                            MacAttribute = 0x00000112
	MacWrpPibK                            MacAttribute = 0x00000113
	MacWrpPibMinCwAttempts                MacAttribute = 0x00000114
	MacWrpPibCenelecLegacyMode            MacAttribute = 0x00000115
	MacWrpPibFccLegacyMode                MacAttribute = 0x00000116
	MacWrpPibBroadcastMaxCwEnable         MacAttribute = 0x0000011E
	MacWrpPibTransmitAtten                MacAttribute = 0x0000011F
	MacWrpPibPosTable                     MacAttribute = 0x00000120

	// Manufacturer-specific block.
	MacWrpPibManufDeviceTable                       MacAttribute = 0x08000000
	MacWrpPibManufExtendedAddress                   MacAttribute = 0x08000001
	MacWrpPibManufNeighbourTableElement             MacAttribute = 0x08000002
	MacWrpPibManufBandInformation                   MacAttribute = 0x08000003
	MacWrpPibManufCoordShortAddress                 MacAttribute = 0x08000004
	MacWrpPibManufMaxMacPayloadSize                 MacAttribute = 0x08000005
	MacWrpPibManufSecurityReset                     MacAttribute = 0x08000006
	MacWrpPibManufForcedModScheme                   MacAttribute = 0x08000007
	MacWrpPibManufForcedModType                     MacAttribute = 0x08000008
	MacWrpPibManufForcedTonemap                     MacAttribute = 0x08000009
	MacWrpPibManufForcedModSchemeOnTmResponse       MacAttribute = 0x0800000A
	MacWrpPibManufForcedModTypeOnTmResponse         MacAttribute = 0x0800000B
	MacWrpPibManufForcedTonemapOnTmResponse         MacAttribute = 0x0800000C
	MacWrpPibManufLastRxModScheme                   MacAttribute = 0x0800000D
	MacWrpPibManufLastRxModType                     MacAttribute = 0x0800000E
	MacWrpPibManufLbpFrameReceived                  MacAttribute = 0x0800000F
	MacWrpPibManufLngFrameReceived                  MacAttribute = 0x08000010
	MacWrpPibManufBcnFrameReceived                  MacAttribute = 0x08000011
	MacWrpPibManufNeighbourTableCount                MacAttribute = 0x08000012
	MacWrpPibManufRxOtherDestinationCount            MacAttribute = 0x08000013
	MacWrpPibManufRxInvalidFrameLengthCount          MacAttribute = 0x08000014
	MacWrpPibManufRxMacRepetitionCount               MacAttribute = 0x08000015
	MacWrpPibManufRxWrongAddrModeCount               MacAttribute = 0x08000016
	MacWrpPibManufRxUnsupportedSecurityCount         MacAttribute = 0x08000017
	MacWrpPibManufRxWrongKeyIDCount                  MacAttribute = 0x08000018
	MacWrpPibManufRxInvalidKeyCount                  MacAttribute = 0x08000019
	MacWrpPibManufRxWrongFcCount                     MacAttribute = 0x0800001A
	MacWrpPibManufRxDecryptionErrorCount             MacAttribute = 0x0800001B
	MacWrpPibManufRxSegmentDecodeErrorCount          MacAttribute = 0x0800001C
	MacWrpPibManufEnableMacSniffer                   MacAttribute = 0x0800001D
	MacWrpPibManufPosTableCount                      MacAttribute = 0x0800001E
	MacWrpPibManufRetriesLeftToForceRobo             MacAttribute = 0x0800001F
	MacWrpPibManufPhyParam                           MacAttribute = 0x08000020
	MacWrpPibManufMacInternalVersion                 MacAttribute = 0x08000021
	MacWrpPibManufMacRtInternalVersion               MacAttribute = 0x08000022
)
