package domain

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AssetType is the semantic tag of an upstream asset.
type AssetType string

const (
	AssetTypeImage     AssetType = "image"
	AssetTypeAudio     AssetType = "audio"
	AssetTypeMesh      AssetType = "mesh"
	AssetTypePlace     AssetType = "place"
	AssetTypeModel     AssetType = "model"
	AssetTypeBadge     AssetType = "badge"
	AssetTypeAnimation AssetType = "animation"
	AssetTypeGamePass  AssetType = "game_pass"
	AssetTypePlugin    AssetType = "plugin"
	AssetTypeSound     AssetType = "sound"
	AssetTypeUnknown   AssetType = "unknown"
)

var titleCaser = cases.Title(language.English)

// Canonical folds synonyms so that content policy can compare tags from
// the catalog table and from payload sniffing.
func (t AssetType) Canonical() AssetType {
	switch t {
	case AssetTypeAudio:
		return AssetTypeSound
	case AssetTypePlace:
		return AssetTypeModel
	case "":
		return AssetTypeUnknown
	}
	return t
}

// Extension returns the file extension used for persisted payloads.
func (t AssetType) Extension() string {
	if t.Canonical() == AssetTypeSound {
		return "mp3"
	}
	return "rbxm"
}

// FilePrefix returns the leading component of generated filenames.
func (t AssetType) FilePrefix() string {
	switch t.Canonical() {
	case AssetTypeSound:
		return "sound"
	case AssetTypeModel:
		return "model"
	case AssetTypeAnimation:
		return "animation"
	case AssetTypeUnknown:
		return "asset"
	}
	return string(t)
}

// DisplayName renders the tag for humans, e.g. "left_shoe_accessory" becomes
// "Left Shoe Accessory".
func (t AssetType) DisplayName() string {
	return titleCaser.String(strings.ReplaceAll(string(t.orUnknown()), "_", " "))
}

func (t AssetType) orUnknown() AssetType {
	if t == "" {
		return AssetTypeUnknown
	}
	return t
}

var numericID = regexp.MustCompile(`^\d+$`)

// IsNumericID reports whether s is a non-empty string of ASCII digits.
func IsNumericID(s string) bool {
	return numericID.MatchString(s)
}

// AssetRequest carries the caller inputs for a single asset.
type AssetRequest struct {
	AssetID    string
	Credential string
	PlaceID    string
}

// AssetMetadata is the best-effort description of an asset. Placeholder is
// set when the record was synthesized from an existence check only.
type AssetMetadata struct {
	Name        string
	Creator     string
	Type        AssetType
	Placeholder bool
}

// PartialMetadata is what payload inspection may contribute. Empty fields
// mean "unknown".
type PartialMetadata struct {
	Name    string
	Creator string
	Class   string
	Type    AssetType
}

// FetchRequest describes one retrieval across the candidate endpoints.
type FetchRequest struct {
	AssetID    string
	Type       AssetType
	Credential string
	PlaceID    string
}

// FetchCandidate is one URL the fetcher will try, in order.
type FetchCandidate struct {
	URL      string
	Endpoint string
}

// FetchOutcome is the structured result of trying the candidates.
type FetchOutcome struct {
	Success     bool
	Payload     []byte
	SourceURL   string
	ContentType string
	Error       string
	Attempts    int
}

// DownloadResult is returned for every successfully assembled asset.
type DownloadResult struct {
	AssetID     string    `json:"assetId"`
	AssetType   AssetType `json:"assetType"`
	AssetName   string    `json:"assetName,omitempty"`
	Creator     string    `json:"creator,omitempty"`
	Filename    string    `json:"filename"`
	DownloadURL string    `json:"downloadUrl"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	Size        int       `json:"size,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	Persisted   bool      `json:"persisted"`
	Message     string    `json:"message"`
}

// BatchRequest is the input of a batch download.
type BatchRequest struct {
	AssetIDs   []string
	Credential string
	PlaceID    string
}

// BatchItem is one entry of a batch result, aligned with the input order.
type BatchItem struct {
	AssetID string          `json:"assetId"`
	Success bool            `json:"success"`
	Result  *DownloadResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// BlobInfo describes one persisted payload.
type BlobInfo struct {
	Key        string
	Size       int64
	ModifiedAt time.Time
}

// DownloadRecord is one row of the download history.
type DownloadRecord struct {
	ID        int64
	AssetID   string
	AssetType AssetType
	Filename  string
	SourceURL string
	Success   bool
	Error     string
	RequestID string
	CreatedAt time.Time
}
