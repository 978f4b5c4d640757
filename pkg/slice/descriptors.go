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

// NanoDLP plate descriptor generation (§4.6): plate.json, profile.json,
// options.json and info.json, each a flat JSON document encoding a
// subset of PlateMetadata using the field shapes NanoDLP expects.

import (
	"encoding/json"
	"math"
)

type plateDescriptor struct {
	LayersCount       int     `json:"LayersCount"`
	LayerHeight       float64 `json:"LayerHeight"`
	ExposureTime      float64 `json:"ExposureTime"`
	BottomExposure    float64 `json:"BottomLayerExposureTime"`
	BottomLayerCount  int     `json:"BottomLayerCount"`
	LiftHeight        float64 `json:"LiftHeight"`
	LiftSpeed         float64 `json:"LiftSpeed"`
	RetractSpeed      float64 `json:"RetractSpeed"`
	TotalSolidAreaMM2 float64 `json:"TotalSolidArea"`
	XMin              float64 `json:"XMin"`
	XMax              float64 `json:"XMax"`
	YMin              float64 `json:"YMin"`
	YMax              float64 `json:"YMax"`
	ZMax              float64 `json:"ZMax"`
}

type profileDescriptor struct {
	Name            string  `json:"Name"`
	Manufacturer    string  `json:"Manufacturer"`
	ResolutionX     int     `json:"ResolutionX"`
	ResolutionY     int     `json:"ResolutionY"`
	PixelSizeXMM    float64 `json:"PixelSizeX"`
	PixelSizeYMM    float64 `json:"PixelSizeY"`
	ExposureTime    float64 `json:"ExposureTime"`
	BottomExposure  float64 `json:"BottomLayerExposureTime"`
	BottomLayerCount int    `json:"BottomLayerCount"`
	LiftSpeed       float64 `json:"LiftSpeed"`
	RetractSpeed    float64 `json:"RetractSpeed"`
	DepthUM         float64 `json:"DepthUM"`
	ResolutionClass string  `json:"ResolutionClass"`
}

type optionsDescriptor struct {
	ResolutionX   int     `json:"ResolutionX"`
	ResolutionY   int     `json:"ResolutionY"`
	PixelSizeXMM  float64 `json:"PixelSizeX"`
	PixelSizeYMM  float64 `json:"PixelSizeY"`
	XOffset       int     `json:"XOffset"`
	YOffset       int     `json:"YOffset"`
	XRes          int     `json:"XRes"`
}

type infoDescriptor struct {
	SourcePath  string `json:"SourcePath"`
	SourceFmt   string `json:"SourceFormat"`
	MachineName string `json:"MachineName"`
}

// buildPlateJSON materializes plate.json's contents from the
// aggregated metadata, following the formulas NanoDLP's plate.json
// consumer expects (§4.6).
func buildPlateJSON(meta PlateMetadata) ([]byte, error) {
	var totalSum float64
	var nonEmpty int
	minX, minY := math.MaxInt32, math.MaxInt32
	maxX, maxY := -1, -1
	for _, a := range meta.Area {
		if a.IsEmpty() {
			continue
		}
		totalSum += a.TotalSolidAreaMM2
		nonEmpty++
		if a.MinX < minX {
			minX = a.MinX
		}
		if a.MinY < minY {
			minY = a.MinY
		}
		if a.MaxX > maxX {
			maxX = a.MaxX
		}
		if a.MaxY > maxY {
			maxY = a.MaxY
		}
	}
	if maxX < 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	avgTotal := 0.0
	if nonEmpty > 0 {
		avgTotal = totalSum / float64(nonEmpty)
	}
	layerCount := meta.OutputLayers
	layerHeight := meta.Source.LayerHeightMM
	totalSolidArea := avgTotal * layerHeight * float64(layerCount) / 1000

	xPitch := meta.PixelPitchXMM
	yPitch := meta.PixelPitchYMM
	halfW := float64(meta.Target.ResolutionX) * xPitch / 2
	halfH := float64(meta.Target.ResolutionY) * yPitch / 2

	d := plateDescriptor{
		LayersCount:       layerCount,
		LayerHeight:       layerHeight,
		ExposureTime:      meta.Source.ExposureNormalSec,
		BottomExposure:    meta.Source.ExposureBottomSec,
		BottomLayerCount:  meta.Source.BottomLayerCount,
		LiftHeight:        meta.Source.LiftHeightMM,
		LiftSpeed:         meta.Source.LiftSpeed,
		RetractSpeed:      meta.Source.RetractSpeed,
		TotalSolidAreaMM2: round4(totalSolidArea),
		XMin:              round4(float64(minX)*xPitch - halfW),
		XMax:              round4(float64(maxX+1)*xPitch - halfW),
		YMin:              round4(float64(minY)*yPitch - halfH),
		YMax:              round4(float64(maxY+1)*yPitch - halfH),
		ZMax:              round4(float64(layerCount) * layerHeight),
	}
	return json.MarshalIndent(d, "", "  ")
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func buildProfileJSON(meta PlateMetadata) ([]byte, error) {
	target := meta.Target
	source := meta.Source
	d := profileDescriptor{
		Name:             target.Name,
		Manufacturer:     target.Manufacturer,
		ResolutionX:      target.ResolutionX,
		ResolutionY:      target.ResolutionY,
		PixelSizeXMM:     meta.PixelPitchXMM,
		PixelSizeYMM:     meta.PixelPitchYMM,
		ExposureTime:     source.ExposureNormalSec,
		BottomExposure:   source.ExposureBottomSec,
		BottomLayerCount: source.BottomLayerCount,
		LiftSpeed:        source.LiftSpeed,
		RetractSpeed:     source.RetractSpeed,
		DepthUM:          round1(source.LayerHeightMM * 1000),
		ResolutionClass:  target.ResolutionClass,
	}
	return json.MarshalIndent(d, "", "  ")
}

func buildOptionsJSON(meta PlateMetadata) ([]byte, error) {
	target := meta.Target
	d := optionsDescriptor{
		ResolutionX:  target.ResolutionX,
		ResolutionY:  target.ResolutionY,
		PixelSizeXMM: meta.PixelPitchXMM,
		PixelSizeYMM: meta.PixelPitchYMM,
		XOffset:      target.ResolutionX / 2,
		YOffset:      target.ResolutionY / 2,
		XRes:         int(math.Round(meta.PixelPitchXMM * 1000)),
	}
	return json.MarshalIndent(d, "", "  ")
}

func buildInfoJSON(meta PlateMetadata) ([]byte, error) {
	d := infoDescriptor{
		SourcePath:  meta.Source.SourcePath,
		SourceFmt:   meta.Source.Format.String(),
		MachineName: meta.Source.MachineName,
	}
	return json.MarshalIndent(d, "", "  ")
}
