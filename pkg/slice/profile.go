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

import "fmt"

// ResolutionClass groups the handful of horizontal resolutions that
// correspond to the same physical panel family.
type ResolutionClass string

const (
	Class12K ResolutionClass = "12K"
	Class16K ResolutionClass = "16K"
)

// classResolutions maps each resolution class to its member pixel
// widths. The three 16K widths are the same physical panel driven in
// different sub-pixel modes (§4.7).
var classResolutions = map[ResolutionClass][]int{
	Class12K: {11520},
	Class16K: {15120, 15136, 15360},
}

// targetProfiles is the static table of NanoDLP-side target profiles.
var targetProfiles = []Profile{
	{
		Name: "NanoDLP 12K RGB", Manufacturer: "Generic",
		BoardType: BoardRGB8Bit,
		ResolutionX: 11520, ResolutionY: 5120,
		DisplayMMX: 218.88, DisplayMMY: 122.88,
		MaxZMM: 260, PNGOutputWidth: 3840, ResolutionClass: string(Class12K),
	},
	{
		Name: "NanoDLP 16K 3-Subpixel", Manufacturer: "Generic",
		BoardType: BoardRGB8Bit,
		ResolutionX: 15120, ResolutionY: 6230,
		DisplayMMX: 223.72, DisplayMMY: 126.20,
		MaxZMM: 235, PNGOutputWidth: 5040, ResolutionClass: string(Class16K),
	},
	{
		Name: "NanoDLP 16K 2-Subpixel Greyscale", Manufacturer: "Generic",
		BoardType: BoardTwoSubpixelGreyscale,
		ResolutionX: 15136, ResolutionY: 6230,
		DisplayMMX: 223.72, DisplayMMY: 126.20,
		MaxZMM: 235, PNGOutputWidth: 7568, ResolutionClass: string(Class16K),
	},
	{
		Name: "NanoDLP 16K Native", Manufacturer: "Generic",
		BoardType: BoardTwoSubpixelGreyscale,
		ResolutionX: 15360, ResolutionY: 6230,
		DisplayMMX: 223.72, DisplayMMY: 126.20,
		MaxZMM: 235, PNGOutputWidth: 7680, ResolutionClass: string(Class16K),
	},
}

// sourceProfiles is the static table of recognized origin-slicer
// profiles, consulted by DetectSource.
var sourceProfiles = []Profile{
	{Name: "Chitubox 12K", ResolutionX: 11520, ResolutionY: 5120, ResolutionClass: string(Class12K)},
	{Name: "Chitubox 16K", ResolutionX: 15120, ResolutionY: 6230, ResolutionClass: string(Class16K)},
	{Name: "Chitubox 16K Greyscale", ResolutionX: 15136, ResolutionY: 6230, ResolutionClass: string(Class16K)},
	{Name: "Chitubox 16K Native", ResolutionX: 15360, ResolutionY: 6230, ResolutionClass: string(Class16K)},
}

// ClassOf returns the resolution class resolutionX belongs to, if any.
func ClassOf(resolutionX int) (ResolutionClass, bool) {
	for class, widths := range classResolutions {
		for _, w := range widths {
			if w == resolutionX {
				return class, true
			}
		}
	}
	return "", false
}

// DetectTarget returns the best-guess target profile for the given
// source resolution. 16K defaults to the 3-subpixel variant; 12K to
// the 12K RGB variant.
func DetectTarget(resolutionX, resolutionY int) (Profile, bool) {
	class, ok := ClassOf(resolutionX)
	if !ok {
		return Profile{}, false
	}
	switch class {
	case Class12K:
		return findProfile(targetProfiles, "NanoDLP 12K RGB")
	case Class16K:
		return findProfile(targetProfiles, "NanoDLP 16K 3-Subpixel")
	}
	return Profile{}, false
}

// DetectSource returns the best guess at the originating slicer profile.
func DetectSource(resolutionX, resolutionY int) (Profile, bool) {
	for _, p := range sourceProfiles {
		if p.ResolutionX == resolutionX && p.ResolutionY == resolutionY {
			return p, true
		}
	}
	class, ok := ClassOf(resolutionX)
	if !ok {
		return Profile{}, false
	}
	for _, p := range sourceProfiles {
		if p.ResolutionClass == string(class) {
			return p, true
		}
	}
	return Profile{}, false
}

// Validate reports a descriptive error if resolutionX has no known
// resolution class.
func Validate(resolutionX, resolutionY int) error {
	if _, ok := ClassOf(resolutionX); !ok {
		return &ValidationError{Msg: fmt.Sprintf("Unsupported resolution %dx%d", resolutionX, resolutionY)}
	}
	return nil
}

func findProfile(table []Profile, name string) (Profile, bool) {
	for _, p := range table {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
