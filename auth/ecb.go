package auth

import (
	"crypto/aes"
	"fmt"
)

// ecbEncrypt32 and ecbDecrypt32 apply AES-128 as two independent 16-byte
// blocks over a 32-byte buffer -- the device's handshake payload shape.
// The standard library deliberately omits an ECB cipher.BlockMode (ECB
// leaks block-level patterns across a real plaintext), but the protocol
// here always encrypts a single fixed-size, high-entropy block pair, so
// driving crypto/aes's Block.Encrypt/Decrypt directly per 16-byte chunk is
// the correct, minimal way to reproduce it -- there is no ECB mode to
// import from the ecosystem that crypto/aes doesn't already give us.

func ecbEncrypt32(plaintext [32]byte, key []byte) ([32]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	block.Encrypt(out[0:16], plaintext[0:16])
	block.Encrypt(out[16:32], plaintext[16:32])
	return out, nil
}

func ecbDecrypt32(ciphertext [32]byte, key []byte) ([32]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	block.Decrypt(out[0:16], ciphertext[0:16])
	block.Decrypt(out[16:32], ciphertext[16:32])
	return out, nil
}

// ecbDecryptBlocks decrypts ciphertext (whose length must be a multiple of
// 16) one block at a time. Used for MemoryRead responses, which round the
// requested size up to a 16-byte boundary.
func ecbDecryptBlocks(ciphertext []byte, key []byte) ([]byte, error) {
	if len(ciphertext)%16 != 0 {
		return nil, fmt.Errorf("auth: ciphertext length %d is not a multiple of 16", len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	for off := 0; off+16 <= len(ciphertext); off += 16 {
		block.Decrypt(out[off:off+16], ciphertext[off:off+16])
	}
	return out, nil
}
