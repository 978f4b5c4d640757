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

// Layer table parsing (§4.2). CBDDLP and CTB v2/v3 store a flat,
// contiguous array of fixed-size layer records. CTB v4 and v4E add a
// level of indirection: a contiguous array of pointer records, each of
// which names the absolute offset of one extended layer record.

const (
	legacyLayerEntrySize = 36

	legacyOffPositionZ   = 0
	legacyOffExposureSec = 4
	legacyOffLightOffSec = 8
	legacyOffDataOffset  = 12
	legacyOffDataLength  = 16

	v4PointerEntrySize = 16
	v4PointerOffOffset = 0

	v4LayerEntrySize = 88
	v4OffPositionZ   = 4
	v4OffExposureSec = 8
	v4OffLightOffSec = 12
	v4OffDataOffset  = 16
	v4OffDataLength  = 24
)

func (p *Parser) parseLayerTableLegacy(layerCount int, tableOffset int64) error {
	if layerCount == 0 {
		return nil
	}
	buf, err := p.r.readAt(tableOffset, layerCount*legacyLayerEntrySize)
	if err != nil {
		return err
	}
	layers := make([]LayerDef, layerCount)
	for i := 0; i < layerCount; i++ {
		e := buf[i*legacyLayerEntrySize : (i+1)*legacyLayerEntrySize]
		layers[i] = LayerDef{
			PositionZ:   readF32At(e, legacyOffPositionZ),
			ExposureSec: readF32At(e, legacyOffExposureSec),
			LightOffSec: readF32At(e, legacyOffLightOffSec),
			DataOffset:  readU32At(e, legacyOffDataOffset),
			DataLength:  readU32At(e, legacyOffDataLength),
		}
	}
	p.Layers = layers
	return nil
}

func (p *Parser) parseLayerTableV4(layerCount int, pointerTableOffset int64) error {
	if layerCount == 0 {
		return nil
	}
	ptrs, err := p.r.readAt(pointerTableOffset, layerCount*v4PointerEntrySize)
	if err != nil {
		return err
	}
	layers := make([]LayerDef, layerCount)
	for i := 0; i < layerCount; i++ {
		entryOffset := int64(readU32At(ptrs[i*v4PointerEntrySize:], v4PointerOffOffset))
		e, err := p.r.readAt(entryOffset, v4LayerEntrySize)
		if err != nil {
			return err
		}
		layers[i] = LayerDef{
			PositionZ:   readF32At(e, v4OffPositionZ),
			ExposureSec: readF32At(e, v4OffExposureSec),
			LightOffSec: readF32At(e, v4OffLightOffSec),
			DataOffset:  readU32At(e, v4OffDataOffset),
			DataLength:  readU32At(e, v4OffDataLength),
		}
	}
	p.Layers = layers
	return nil
}
