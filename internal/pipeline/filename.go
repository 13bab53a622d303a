package pipeline

import (
	"fmt"
	"time"

	"assetproxy/internal/domain"
)

// FilenameGenerator derives the delivered file name for an asset. With
// Timestamp set the name carries the clock's Unix milliseconds so repeated
// downloads of one asset do not overwrite each other.
type FilenameGenerator struct {
	Timestamp bool
	Now       func() time.Time
}

// Filename returns "{prefix}_{id}.{ext}" or "{prefix}_{id}_{millis}.{ext}".
func (g FilenameGenerator) Filename(t domain.AssetType, assetID string) string {
	if !g.Timestamp {
		return fmt.Sprintf("%s_%s.%s", t.FilePrefix(), assetID, t.Extension())
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return fmt.Sprintf("%s_%s_%d.%s", t.FilePrefix(), assetID, now().UnixMilli(), t.Extension())
}
