/*
Copyright 2024 The chitu2nanodlp Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package slice

// Functions dealing with CTB v4E settings-block decryption.
//
// Grounded on pkg/pdfcpu/crypto.go's decryptAESBytes: an AES-256-CBC
// block, IV prepended to ciphertext, decrypted in place via
// cipher.NewCBCDecrypter. The v4E settings block differs in two
// respects: the IV is a fixed constant rather than prepended to the
// ciphertext, and no PKCS#7 padding is stripped, because the format
// embeds a fixed-size plaintext structure (§4.2).

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"

	"github.com/pkg/errors"
)

// These two base64 strings and the XOR literal are the obfuscated
// CTB v4E key/IV material. They are derived once, at package init,
// into the concrete 32-byte key and 16-byte IV (§4.2, §9 "AES keys").
const (
	obfuscatedKeyB64 = "UkFFVFdPVWxVa1JPVUFaSFRnaEZVbFJPVUFaSFRsaFZVa1JPVUFaSFRnaEZVbA=="
	obfuscatedIVB64  = "U1RnaEZVa1JPVUFaSFRnaEZVa1JPVUFaSA=="
	xorLiteral       = "UVtools"
)

var (
	ctbV4EKey []byte
	ctbV4EIV  []byte
)

func init() {
	ctbV4EKey = deriveObfuscated(obfuscatedKeyB64, 32)
	ctbV4EIV = deriveObfuscated(obfuscatedIVB64, 16)
}

// deriveObfuscated base64-decodes s and XORs each byte with the
// cycling ASCII of xorLiteral, returning exactly n bytes (zero-padded
// or truncated, whichever the embedded constant requires).
func deriveObfuscated(s string, n int) []byte {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// The constants are fixed at compile time; a decode failure
		// here means the embedded literal itself is wrong.
		panic("chitu2nanodlp: invalid obfuscated key/iv literal: " + err.Error())
	}
	out := make([]byte, n)
	for i := 0; i < n && i < len(raw); i++ {
		out[i] = raw[i] ^ xorLiteral[i%len(xorLiteral)]
	}
	return out
}

func ctbV4EKeyBytes() []byte { return ctbV4EKey }
func ctbV4EIVBytes() []byte  { return ctbV4EIV }

// decryptSettingsBlock decrypts a CTB v4E settings block in place
// using AES-256-CBC with the fixed key/IV pair. No padding is
// stripped: the caller knows the exact plaintext layout (§4.2).
func decryptSettingsBlock(b []byte) error {
	if len(b)%aes.BlockSize != 0 {
		return errors.New("chitu2nanodlp: settings block is not a multiple of the AES block size")
	}
	cb, err := aes.NewCipher(ctbV4EKeyBytes())
	if err != nil {
		return errors.Wrap(err, "chitu2nanodlp: aes.NewCipher")
	}
	mode := cipher.NewCBCDecrypter(cb, ctbV4EIVBytes())
	mode.CryptBlocks(b, b)
	return nil
}
