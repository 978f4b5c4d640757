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

// Per-layer XOR keystream decryption (§4.3.1). Distinct from the
// AES-CBC settings-block decryption in crypto.go: each layer is
// protected by a keystream derived from the file's EncryptionKey and
// the layer's own index, advanced in 32-bit steps every four bytes.
// XOR is its own inverse, so the same function both encrypts and
// decrypts.
const (
	keystreamInitMul  = 0x2d83cdac
	keystreamInitAdd  = 0xd8a83423
	keystreamIndexMul = 0x1e1530cd
	keystreamIndexAdd = 0xec3d47cd
)

// decryptLayerXOR applies the per-layer keystream for (key, index) to
// b in place. Calling it twice on the same data with the same key and
// index restores the original bytes.
func decryptLayerXOR(b []byte, key uint32, index int) {
	if key == 0 {
		return
	}

	init := key*keystreamInitMul + keystreamInitAdd
	keyN := (uint32(index)*keystreamIndexMul + keystreamIndexAdd) * init

	for j := range b {
		b[j] ^= byte(keyN >> (8 * uint(j%4)))
		if j%4 == 3 {
			keyN += init
		}
	}
}
