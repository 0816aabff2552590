// Package mongotool invokes the external mongodump/mongorestore binaries.
package mongotool

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DumpExt is the per-collection dump file extension mongodump writes under
// <outDir>/<dbName>/.
const DumpExt = ".bson"

// Tool runs the dump and restore binaries. A non-zero exit is a failure; no
// retries are attempted and a hung invocation is only bounded by ctx.
type Tool struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Tool {
	return &Tool{logger: logger.With().Str("component", "mongotool").Logger()}
}

// Dump writes one directory tree of per-collection dump files under
// outDir/dbName.
func (t *Tool) Dump(ctx context.Context, uri, dbName, outDir string) error {
	cmd := exec.CommandContext(ctx, "mongodump",
		"--uri="+uri,
		"--db="+dbName,
		"--out="+outDir,
	)
	t.logger.Debug().Str("db", dbName).Str("out", outDir).Msg("running mongodump")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mongodump %s failed: %w: %s", dbName, err, string(out))
	}
	return nil
}

// Restore applies a full dump directory into the target database, replacing
// existing data across the whole namespace.
func (t *Tool) Restore(ctx context.Context, uri, dbName, dumpDir string) error {
	cmd := exec.CommandContext(ctx, "mongorestore",
		"--uri="+uri,
		"--nsFrom="+dbName+".*",
		"--nsTo="+dbName+".*",
		"--drop",
		dumpDir,
	)
	t.logger.Debug().Str("db", dbName).Str("dir", dumpDir).Msg("running mongorestore")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mongorestore %s failed: %w: %s", dbName, err, string(out))
	}
	return nil
}

// RestoreCollection applies a single collection's dump file into the target
// database, scoped to that collection's namespace.
func (t *Tool) RestoreCollection(ctx context.Context, uri, dbName, collection, bsonPath string) error {
	cmd := exec.CommandContext(ctx, "mongorestore",
		"--uri="+uri,
		"--nsFrom="+dbName+"."+collection,
		"--nsTo="+dbName+"."+collection,
		"--collection="+collection,
		bsonPath,
	)
	t.logger.Debug().Str("db", dbName).Str("collection", collection).Msg("running mongorestore")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mongorestore %s.%s failed: %w: %s", dbName, collection, err, string(out))
	}
	return nil
}

// CollectionDumpPath returns the expected dump file for one collection
// under an extracted dump directory.
func CollectionDumpPath(dumpDir, dbName, collection string) string {
	return filepath.Join(dumpDir, dbName, collection+DumpExt)
}
