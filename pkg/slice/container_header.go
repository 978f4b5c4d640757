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

// The 96-byte extended header shared by CBDDLP, CTB v2/v3 and CTB v4
// (§4.2). Offsets below match the documented layout; only the fields
// the conversion pipeline actually consumes are extracted.
const (
	offVersion            = 4
	offDisplayWidthMM     = 8
	offDisplayHeightMM    = 12
	offLayerHeightMM      = 16
	offExposureNormalSec  = 20
	offLightOffSec        = 24 // unused header-level default; per-layer value wins
	offBottomExposureSec  = 28
	offBottomLayerCount   = 44
	offResolutionX        = 52
	offResolutionY        = 56
	offPreviewLargeOffset = 60
	offLayerTableOffset   = 64
	offLayerCount         = 68
	offPreviewSmallOffset = 72
	offPrintParamsOffset  = 76
	offPrintParamsSize    = 80
	offEncryptionKey      = 84
	offSlicerInfoOffset   = 88
)

// Print-parameters block (when present) carries bottom-layer count,
// lift height, lift/retract speeds. Defaults apply when the block is
// absent (§4.2).
const (
	ppBottomLayerCount = 0
	ppLiftHeightMM     = 4
	ppLiftSpeed        = 8
	ppRetractSpeed     = 12
	ppBlockSize        = 16
)

const (
	defaultBottomLayerCount = 0
	defaultLiftHeightMM     = 5.0
	defaultLiftSpeed        = 65.0
	defaultRetractSpeed     = 150.0
)

func (p *Parser) parseUnencrypted(format Format) error {
	h, err := p.r.readAt(0, headerSize96)
	if err != nil {
		return err
	}

	info := &p.Info
	info.DisplayWidthMM = float64(readF32At(h, offDisplayWidthMM))
	info.DisplayHeightMM = float64(readF32At(h, offDisplayHeightMM))
	info.LayerHeightMM = float64(readF32At(h, offLayerHeightMM))
	info.ExposureNormalSec = float64(readF32At(h, offExposureNormalSec))
	info.ExposureBottomSec = float64(readF32At(h, offBottomExposureSec))
	info.ResolutionX = int(readU32At(h, offResolutionX))
	info.ResolutionY = int(readU32At(h, offResolutionY))
	info.EncryptionKey = readU32At(h, offEncryptionKey)

	layerCount := int(readU32At(h, offLayerCount))
	layerTableOffset := int64(readU32At(h, offLayerTableOffset))
	if err := validateLayerTable(info.SourcePath, layerCount, layerTableOffset); err != nil {
		return err
	}
	info.LayerCount = layerCount

	info.BottomLayerCount = defaultBottomLayerCount
	info.LiftHeightMM = defaultLiftHeightMM
	info.LiftSpeed = defaultLiftSpeed
	info.RetractSpeed = defaultRetractSpeed

	if ppOff := readU32At(h, offPrintParamsOffset); ppOff != 0 {
		ppSize := int(readU32At(h, offPrintParamsSize))
		if ppSize >= ppBlockSize {
			pp, err := p.r.readAt(int64(ppOff), ppBlockSize)
			if err != nil {
				return err
			}
			info.BottomLayerCount = int(readU32At(pp, ppBottomLayerCount))
			info.LiftHeightMM = float64(readF32At(pp, ppLiftHeightMM))
			info.LiftSpeed = float64(readF32At(pp, ppLiftSpeed))
			info.RetractSpeed = float64(readF32At(pp, ppRetractSpeed))
		}
	}

	if siOff := readU32At(h, offSlicerInfoOffset); siOff != 0 {
		name, err := p.readMachineName(int64(siOff))
		if err == nil {
			info.MachineName = name
		}
	}

	if err := p.parsePreviews(h); err != nil {
		return err
	}

	if format == FormatCTBv4 {
		return p.parseLayerTableV4(layerCount, layerTableOffset)
	}
	return p.parseLayerTableLegacy(layerCount, layerTableOffset)
}

// readMachineName reads the indirect (offset, length) pair the
// slicer-info block points to and returns the machine name string.
func (p *Parser) readMachineName(siOff int64) (string, error) {
	hdr, err := p.r.readAt(siOff, 8)
	if err != nil {
		return "", err
	}
	nameOff := readU32At(hdr, 0)
	nameLen := readU32At(hdr, 4)
	if nameLen == 0 || nameLen > 256 {
		return "", nil
	}
	b, err := p.r.readAt(int64(nameOff), int(nameLen))
	if err != nil {
		return "", err
	}
	return trimNulString(b), nil
}

func trimNulString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
