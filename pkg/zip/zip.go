// Package zip streams stored payloads into a single zip archive.
package zip

import (
	"context"
	"fmt"
	"io"
	"time"

	kzip "github.com/klauspost/compress/zip"
)

// Entry is one file to include in the archive.
type Entry struct {
	Name     string
	Modified time.Time
}

// Opener returns the content of an entry.
type Opener func(ctx context.Context, name string) (io.ReadCloser, error)

// Write streams entries into w in order. Entries are deflated; the first
// open or copy failure aborts the archive.
func Write(ctx context.Context, w io.Writer, entries []Entry, open Opener) error {
	zw := kzip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addEntry(ctx, zw, e, open); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addEntry(ctx context.Context, zw *kzip.Writer, e Entry, open Opener) error {
	rc, err := open(ctx, e.Name)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.Name, err)
	}
	defer rc.Close()

	hdr := &kzip.FileHeader{Name: e.Name, Method: kzip.Deflate, Modified: e.Modified}
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("add %s: %w", e.Name, err)
	}
	if _, err := io.Copy(dst, rc); err != nil {
		return fmt.Errorf("copy %s: %w", e.Name, err)
	}
	return nil
}
