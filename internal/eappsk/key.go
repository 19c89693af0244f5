package eappsk

import (
	"crypto/aes"
	"crypto/rand"
	"fmt"
)

/*-------------------------------------------------------------
 *
 * Purpose:	EAP-PSK key schedule: derive the authentication key (Ak) and
 *		key derivation key (Kdk) from the pre-shared key, and the
 *		transient key (Tek) from Kdk and the peer's random nonce.
 *
 *--------------------------------------------------------------*/

const KeyLen = 16

// Key is a 16-byte EAP-PSK key (pre-shared key, Ak, Kdk, or Tek).
type Key [KeyLen]byte

// Rand is a 16-byte EAP-PSK random nonce (RandP or RandS).
type Rand [KeyLen]byte

// NewRandom fills a Rand with cryptographically random bytes.
func NewRandom() (Rand, error) {
	var r Rand
	if _, err := rand.Read(r[:]); err != nil {
		return Rand{}, err
	}
	return r, nil
}

// Context holds the per-session derived key material for one EAP-PSK
// handshake, mirroring TEapPskContext.
type Context struct {
	Kdk   Key // derivation key
	Ak    Key // authentication key
	Tek   Key // transient key
	IdS   []byte
	RandP Rand
	RandS Rand
}

/*-------------------------------------------------------------
 *
 * Name:	Initialize
 *
 * Purpose:	Derive Ak and Kdk from the pre-shared key: encrypt a zero
 *		block twice under the PSK, XOR-ing the last byte with the
 *		EAP-PSK "c1"/"c2" constants between encryptions.
 *
 *--------------------------------------------------------------*/

func Initialize(psk Key) (*Context, error) {
	block, err := aes.NewCipher(psk[:])
	if err != nil {
		return nil, fmt.Errorf("eappsk: psk cipher: %w", err)
	}

	var zero, encZero [KeyLen]byte
	block.Encrypt(encZero[:], zero[:])

	akInput := encZero
	akInput[15] ^= 0x01 // xor with c1 = "1"
	var ak [KeyLen]byte
	block.Encrypt(ak[:], akInput[:])

	kdkInput := akInput
	kdkInput[15] ^= 0x03 // back to original, then xor with c1 = "2"
	var kdk [KeyLen]byte
	block.Encrypt(kdk[:], kdkInput[:])

	ctx := &Context{}
	ctx.Ak = Key(ak)
	ctx.Kdk = Key(kdk)
	return ctx, nil
}

/*-------------------------------------------------------------
 *
 * Name:	InitializeTEK
 *
 * Purpose:	Derive the transient key from Kdk and RandP: encrypt RandP
 *		under Kdk twice, XOR-ing the last byte with c1="1" between
 *		encryptions.
 *
 *--------------------------------------------------------------*/

func (c *Context) InitializeTEK(randP Rand) error {
	block, err := aes.NewCipher(c.Kdk[:])
	if err != nil {
		return fmt.Errorf("eappsk: kdk cipher: %w", err)
	}
	c.RandP = randP

	var v [KeyLen]byte
	block.Encrypt(v[:], randP[:])
	v[15] ^= 0x01
	var tek [KeyLen]byte
	block.Encrypt(tek[:], v[:])
	c.Tek = Key(tek)
	return nil
}
