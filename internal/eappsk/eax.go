package eappsk

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

/*-------------------------------------------------------------
 *
 * Purpose:	AES-EAX authenticated encryption (Bellare/Rogaway/Wagner),
 *		used to protect the P-Channel content of EAP-PSK messages 3
 *		and 4. Built on the CMAC primitive above plus crypto/cipher's
 *		CTR mode, since the retrieval pack has no ready-made EAX
 *		package; this mirrors the hand-rolled-on-stdlib-crypto shape
 *		a sibling example uses for its own AEAD-adjacent signing code.
 *
 *--------------------------------------------------------------*/

const eaxTagSize = blockSize

// omac computes the EAX tweaked OMAC: CMAC(key, block(tweak) || msg).
func omac(key []byte, tweak byte, msg []byte) ([blockSize]byte, error) {
	prefixed := make([]byte, blockSize+len(msg))
	prefixed[blockSize-1] = tweak
	copy(prefixed[blockSize:], msg)
	return cmacAES128(key, prefixed)
}

// eaxEncrypt seals plaintext under key/nonce with aad as associated data,
// returning ciphertext||tag (tag is 16 bytes, matching the reference
// firmware's full-width EAX tag).
func eaxEncrypt(key, nonce, aad, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	nTag, err := omac(key, 0, nonce)
	if err != nil {
		return nil, err
	}
	hTag, err := omac(key, 1, aad)
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(plaintext))
	ctr := cipher.NewCTR(block, nTag[:])
	ctr.XORKeyStream(ciphertext, plaintext)

	cTag, err := omac(key, 2, ciphertext)
	if err != nil {
		return nil, err
	}

	tag := xorBlock(xorBlock(nTag, hTag), cTag)

	out := make([]byte, len(ciphertext)+eaxTagSize)
	copy(out, ciphertext)
	copy(out[len(ciphertext):], tag[:])
	return out, nil
}

// eaxDecrypt opens ciphertext||tag under key/nonce/aad, returning the
// plaintext or an error if the tag does not verify.
func eaxDecrypt(key, nonce, aad, ciphertextAndTag []byte) ([]byte, error) {
	if len(ciphertextAndTag) < eaxTagSize {
		return nil, fmt.Errorf("eappsk: eax ciphertext shorter than tag")
	}
	ciphertext := ciphertextAndTag[:len(ciphertextAndTag)-eaxTagSize]
	wantTag := ciphertextAndTag[len(ciphertextAndTag)-eaxTagSize:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	nTag, err := omac(key, 0, nonce)
	if err != nil {
		return nil, err
	}
	hTag, err := omac(key, 1, aad)
	if err != nil {
		return nil, err
	}
	cTag, err := omac(key, 2, ciphertext)
	if err != nil {
		return nil, err
	}
	tag := xorBlock(xorBlock(nTag, hTag), cTag)

	if subtle.ConstantTimeCompare(tag[:], wantTag) != 1 {
		return nil, fmt.Errorf("eappsk: eax authentication failed")
	}

	plaintext := make([]byte, len(ciphertext))
	ctr := cipher.NewCTR(block, nTag[:])
	ctr.XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}
