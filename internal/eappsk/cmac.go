package eappsk

import (
	"crypto/aes"
	"crypto/cipher"
)

/*-------------------------------------------------------------
 *
 * Purpose:	AES-CMAC (RFC 4493), used to compute MacP/MacS in the
 *		EAP-PSK handshake. The retrieval pack has no ready-made
 *		CMAC library; this follows the subkey-derivation shape
 *		sketched by a sibling example's CMACSigner (key, k1, k2)
 *		built directly on crypto/aes, the pack's own idiom for
 *		this class of primitive.
 *
 *--------------------------------------------------------------*/

const blockSize = 16

var constRb = [blockSize]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x87,
}

func leftShiftOne(in [blockSize]byte) [blockSize]byte {
	var out [blockSize]byte
	var carry byte
	for i := blockSize - 1; i >= 0; i-- {
		out[i] = (in[i] << 1) | carry
		carry = in[i] >> 7
	}
	return out
}

func xorBlock(a, b [blockSize]byte) [blockSize]byte {
	var out [blockSize]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// cmacSubkeys derives K1/K2 from an AES-128 block cipher, per RFC 4493 §2.3.
func cmacSubkeys(block cipher.Block) (k1, k2 [blockSize]byte) {
	var zero, l [blockSize]byte
	block.Encrypt(l[:], zero[:])

	if l[0]&0x80 == 0 {
		k1 = leftShiftOne(l)
	} else {
		k1 = xorBlock(leftShiftOne(l), constRb)
	}

	if k1[0]&0x80 == 0 {
		k2 = leftShiftOne(k1)
	} else {
		k2 = xorBlock(leftShiftOne(k1), constRb)
	}
	return k1, k2
}

// cmacAES128 computes AES-CMAC(key, msg), used throughout the handshake to
// derive MacP and MacS.
func cmacAES128(key []byte, msg []byte) ([blockSize]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return [blockSize]byte{}, err
	}
	k1, k2 := cmacSubkeys(block)

	n := (len(msg) + blockSize - 1) / blockSize
	complete := len(msg) > 0 && len(msg)%blockSize == 0
	if n == 0 {
		n = 1
		complete = false
	}

	var lastBlock [blockSize]byte
	if complete {
		copy(lastBlock[:], msg[(n-1)*blockSize:n*blockSize])
		lastBlock = xorBlock(lastBlock, k1)
	} else {
		start := (n - 1) * blockSize
		remainder := msg[start:]
		copy(lastBlock[:], remainder)
		lastBlock[len(remainder)] = 0x80
		lastBlock = xorBlock(lastBlock, k2)
	}

	var x [blockSize]byte
	for i := 0; i < n-1; i++ {
		var m [blockSize]byte
		copy(m[:], msg[i*blockSize:(i+1)*blockSize])
		y := xorBlock(x, m)
		block.Encrypt(x[:], y[:])
	}
	y := xorBlock(x, lastBlock)
	var mac [blockSize]byte
	block.Encrypt(mac[:], y[:])
	return mac, nil
}
