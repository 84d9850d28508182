package sqlgen

import (
	"context"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"

	"climate/internal/datasource/file"
)

// Fingerprint is the xxh3 hash of a script, printed as 16 hex digits.
func Fingerprint(script string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(script))
}

// Write replaces path with script and logs its size and fingerprint.
func Write(ctx context.Context, path, script string) error {
	if err := file.WriteAll(ctx, path, []byte(script)); err != nil {
		return err
	}
	log.Printf("sqlgen: wrote path=%q size=%s xxh3=%s", path, humanize.Bytes(uint64(len(script))), Fingerprint(script))
	return nil
}
