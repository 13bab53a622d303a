package assettype

import (
	"bytes"

	"assetproxy/internal/domain"
)

type markerSet struct {
	typ     domain.AssetType
	markers [][]byte
}

// Checked in order; the first set with any matching marker wins.
var sniffOrder = []markerSet{
	{typ: domain.AssetTypeAnimation, markers: [][]byte{
		[]byte("KeyframeSequence"),
		[]byte("CurveAnimation"),
		[]byte("KeyframeMarker"),
	}},
	{typ: domain.AssetTypeSound, markers: [][]byte{
		[]byte(`class="Sound"`),
		[]byte("SoundId"),
		[]byte("OggS"),
		[]byte("ID3"),
	}},
	{typ: domain.AssetTypeModel, markers: [][]byte{
		[]byte("<roblox"),
		[]byte(`class="Model"`),
		[]byte(`class="Part"`),
		[]byte(`class="MeshPart"`),
	}},
}

// Sniff classifies raw payload content by case-sensitive marker substrings.
func Sniff(payload []byte) domain.AssetType {
	if len(payload) == 0 {
		return domain.AssetTypeUnknown
	}
	for _, set := range sniffOrder {
		for _, m := range set.markers {
			if bytes.Contains(payload, m) {
				return set.typ
			}
		}
	}
	return domain.AssetTypeUnknown
}
