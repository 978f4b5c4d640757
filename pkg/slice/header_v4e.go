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

// CTB v4E parsing (§4.2). The 48-byte file header only locates the
// encrypted settings block; everything else the pipeline needs lives
// inside that block, decrypted with decryptSettingsBlock (crypto.go).
const (
	v4eOffSettingsSize   = 12
	v4eOffSettingsOffset = 16
)

// Offsets inside the decrypted 288-byte settings block.
const (
	v4eOffDisplayWidthMM  = 12
	v4eOffDisplayHeightMM = 16
	v4eOffMaxZMM          = 20
	v4eOffLayerHeightMM   = 36
	v4eOffExposureNormal  = 40
	v4eOffExposureBottom  = 44
	v4eOffBottomLayers    = 52
	v4eOffResolutionX     = 56
	v4eOffResolutionY     = 60
	v4eOffLayerCount      = 64
	v4eOffPreviewLarge    = 68
	v4eOffPreviewSmall    = 72
	v4eOffPrintTimeSec    = 76
	v4eOffProjectorType   = 80
	v4eOffLiftHeightMM    = 92
	v4eOffLiftSpeed       = 96
	v4eOffRetractSpeed    = 100
	v4eOffEncryptionKey   = 128
	v4eOffLayerTable      = 132
)

const (
	v4eDefaultLiftHeightMM = 6.0
	v4eDefaultLiftSpeed    = 540.0
	v4eDefaultRetractSpeed = 540.0

	v4eLiftHeightMinMM = 0.5
	v4eLiftHeightMaxMM = 100

	v4eSpeedMin = 1
	v4eSpeedMax = 10000
)

func (p *Parser) parseV4E() error {
	fh, err := p.r.readAt(0, headerSize48)
	if err != nil {
		return err
	}
	settingsSize := int(readU32At(fh, v4eOffSettingsSize))
	settingsOffset := int64(readU32At(fh, v4eOffSettingsOffset))
	if settingsSize < v4ESettingsSize {
		return &FormatError{Path: p.Info.SourcePath, Msg: "v4E settings block smaller than expected"}
	}

	block, err := p.r.readAt(settingsOffset, settingsSize)
	if err != nil {
		return err
	}
	if err := decryptSettingsBlock(block); err != nil {
		return err
	}

	info := &p.Info
	info.DisplayWidthMM = float64(readF32At(block, v4eOffDisplayWidthMM))
	info.DisplayHeightMM = float64(readF32At(block, v4eOffDisplayHeightMM))
	info.MaxZMM = float64(readF32At(block, v4eOffMaxZMM))
	info.LayerHeightMM = float64(readF32At(block, v4eOffLayerHeightMM))
	info.ExposureNormalSec = float64(readF32At(block, v4eOffExposureNormal))
	info.ExposureBottomSec = float64(readF32At(block, v4eOffExposureBottom))
	info.BottomLayerCount = int(readU32At(block, v4eOffBottomLayers))
	info.ResolutionX = int(readU32At(block, v4eOffResolutionX))
	info.ResolutionY = int(readU32At(block, v4eOffResolutionY))
	info.EncryptionKey = readU32At(block, v4eOffEncryptionKey)

	layerCount := int(readU32At(block, v4eOffLayerCount))
	layerTableOffset := int64(readU32At(block, v4eOffLayerTable))
	if err := validateLayerTable(info.SourcePath, layerCount, layerTableOffset); err != nil {
		return err
	}
	info.LayerCount = layerCount

	info.LiftHeightMM = clampRangeOrDefault(float64(readF32At(block, v4eOffLiftHeightMM)), v4eLiftHeightMinMM, v4eLiftHeightMaxMM, v4eDefaultLiftHeightMM)
	info.LiftSpeed = clampRangeOrDefault(float64(readF32At(block, v4eOffLiftSpeed)), v4eSpeedMin, v4eSpeedMax, v4eDefaultLiftSpeed)
	info.RetractSpeed = clampRangeOrDefault(float64(readF32At(block, v4eOffRetractSpeed)), v4eSpeedMin, v4eSpeedMax, v4eDefaultRetractSpeed)

	if largeOff := readU32At(block, v4eOffPreviewLarge); largeOff != 0 {
		png, err := p.decodePreview(int64(largeOff))
		if err == nil {
			info.PreviewPNG = png
		}
	}

	return p.parseLayerTableV4(layerCount, layerTableOffset)
}

// clampRangeOrDefault substitutes def when v falls outside (min, max),
// guarding against garbage read from a misaligned or absent settings
// field. Each v4E lift/speed field has its own documented range (§4.2).
func clampRangeOrDefault(v, min, max, def float64) float64 {
	if v <= min || v >= max {
		return def
	}
	return v
}
