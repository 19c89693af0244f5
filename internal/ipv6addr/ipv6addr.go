// Package ipv6addr derives the two IPv6 addresses neg3ctl assigns to a PLC
// node: a ULA built from the device's extended address, and a link-local
// address built from the PAN ID and short address, per the byte layout
// app_config.rs/network_manager.rs in the original implementation use.
package ipv6addr

import "net"

// ULA builds the Unique Local Address for a device: netPrefix (8 bytes)
// concatenated with the device's 8-byte extended (EUI-64) address.
func ULA(netPrefix [8]byte, extAddr [8]byte) net.IP {
	ip := make(net.IP, 16)
	copy(ip[0:8], netPrefix[:])
	copy(ip[8:16], extAddr[:])
	return ip
}

// LinkLocal builds the link-local address for a device: the standard
// fe80::/64 prefix, the PAN ID, a fixed 0x00ff 0xfe00 EUI-64 middle, and the
// device's 16-bit short address.
func LinkLocal(panID uint16, shortAddr uint16) net.IP {
	ip := make(net.IP, 16)
	ip[0], ip[1] = 0xfe, 0x80
	ip[8] = byte(panID >> 8)
	ip[9] = byte(panID)
	ip[10] = 0x00
	ip[11] = 0xff
	ip[12] = 0xfe
	ip[13] = 0x00
	ip[14] = byte(shortAddr >> 8)
	ip[15] = byte(shortAddr)
	return ip
}
