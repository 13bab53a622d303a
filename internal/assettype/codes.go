// Package assettype maps upstream type codes and payload content to
// domain.AssetType tags. Everything here is pure and safe for concurrent use.
package assettype

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"assetproxy/internal/domain"
)

//go:embed types.yaml
var typesYAML []byte

var (
	byCode map[int]domain.AssetType
	byName map[string]domain.AssetType
)

func init() {
	codes, err := parseTable(typesYAML)
	if err != nil {
		panic(err)
	}
	byCode = codes
	byName = make(map[string]domain.AssetType, len(codes)+1)
	for _, t := range codes {
		byName[normalizeName(string(t))] = t
	}
	// "sound" only comes from sniffing, never from the code table.
	byName[normalizeName("Sound")] = domain.AssetTypeSound
}

func parseTable(raw []byte) (map[int]domain.AssetType, error) {
	var decoded map[int]string
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("assettype: decode table: %w", err)
	}
	out := make(map[int]domain.AssetType, len(decoded))
	for code, name := range decoded {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("assettype: empty tag for code %d", code)
		}
		out[code] = domain.AssetType(name)
	}
	return out, nil
}

// FromCode looks up a numeric upstream type code. Unknown codes yield
// domain.AssetTypeUnknown.
func FromCode(code int) domain.AssetType {
	if t, ok := byCode[code]; ok {
		return t
	}
	return domain.AssetTypeUnknown
}

// FromName classifies a string type code. Numeric strings go through the code
// table; names such as "Animation", "LeftShoeAccessory" or "game_pass" match
// table tags ignoring case and underscores.
func FromName(name string) domain.AssetType {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.AssetTypeUnknown
	}
	if code, err := strconv.Atoi(name); err == nil {
		return FromCode(code)
	}
	if t, ok := byName[normalizeName(name)]; ok {
		return t
	}
	return domain.AssetTypeUnknown
}

// Codes returns a copy of the code table.
func Codes() map[int]domain.AssetType {
	out := make(map[int]domain.AssetType, len(byCode))
	for k, v := range byCode {
		out[k] = v
	}
	return out
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}
