// Package export serializes a reconstructed file-system forest into one of
// four deterministic formats (JSON, CSV, XML, HTML).
//
// All formats share the same pre-processing: deleted-item filtering and the
// hierarchical/flattened structural modes are applied once, uniformly, before
// format-specific encoding. The forest itself is never mutated; filtering
// works on shallow clones.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkoster/diskview/internal/image"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
)

// ErrUnsupportedFormat is returned for an unknown format tag. It fails only
// the offending export call; it carries no pipeline state.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Options configures one export call. Pure configuration; no lifecycle
// beyond the call.
type Options struct {
	// Format selects the encoder
	Format Format

	// IncludeMetadata adds the low-level metadata fields (parent id,
	// attribute bitmask, deleted flag, locality hints)
	IncludeMetadata bool

	// IncludeDeleted keeps deleted items; otherwise they (and their
	// subtrees' deleted members) are filtered out
	IncludeDeleted bool

	// IncludeHashes adds the fingerprint fields
	IncludeHashes bool

	// Flatten emits a pre-order flat list instead of the nested tree
	Flatten bool

	// Prefix names the artifact file; empty defaults to "diskview-export"
	Prefix string
}

// Artifact is the produced export: payload plus the download envelope the
// consumer needs to hand it off.
type Artifact struct {
	Data     []byte
	Filename string
	MIMEType string
	Size     int
}

// Export serializes the forest according to opts.
//
// Every encoder accepts an empty forest and produces well-formed empty
// output. Item counts are computed by full recursive descent, so a
// hierarchical export's count equals its node count, not its root count.
func Export(roots []*image.FileSystemNode, opts Options) (*Artifact, error) {
	now := time.Now().UTC()

	working := roots
	if !opts.IncludeDeleted {
		working = filterDeleted(working)
	}

	var (
		data []byte
		ext  string
		mime string
		err  error
	)

	switch opts.Format {
	case FormatJSON:
		data, err = encodeJSON(working, opts, now)
		ext, mime = "json", "application/json"
	case FormatCSV:
		data, err = encodeCSV(working, opts)
		ext, mime = "csv", "text/csv"
	case FormatXML:
		data, err = encodeXML(working, opts, now)
		ext, mime = "xml", "application/xml"
	case FormatHTML:
		data, err = encodeHTML(working, opts, now)
		ext, mime = "html", "text/html"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Data:     data,
		Filename: artifactFilename(opts.Prefix, ext, now),
		MIMEType: mime,
		Size:     len(data),
	}, nil
}

// filterDeleted returns a clone of the forest with every deleted node (and
// therefore its subtree) removed. Child slices are re-created; the original
// nodes are shared, not copied, since encoders only read them.
func filterDeleted(roots []*image.FileSystemNode) []*image.FileSystemNode {
	var filter func(nodes []*image.FileSystemNode) []*image.FileSystemNode
	filter = func(nodes []*image.FileSystemNode) []*image.FileSystemNode {
		out := make([]*image.FileSystemNode, 0, len(nodes))
		for _, node := range nodes {
			if node.Meta != nil && node.Meta.Deleted {
				continue
			}
			if node.IsContainer() {
				clone := *node
				clone.Children = filter(node.Children)
				out = append(out, &clone)
				continue
			}
			out = append(out, node)
		}
		return out
	}
	return filter(roots)
}

// artifactFilename builds "<prefix>-<timestamp>.<ext>" with the ISO
// timestamp's colons and dots replaced so the name is filesystem-safe.
func artifactFilename(prefix, ext string, now time.Time) string {
	if prefix == "" {
		prefix = "diskview-export"
	}
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(now.Format(time.RFC3339))
	return fmt.Sprintf("%s-%s.%s", prefix, ts, ext)
}
