package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/mkoster/diskview/internal/image"
)

// encodeCSV produces the flattened CSV export.
//
// CSV is always flat (one row per node, pre-order); the Flatten option is
// implied. The header is fixed, with the optional metadata and hash column
// groups appearing only when enabled, always in this order:
//
//	id,name,kind,size,path,created,modified,accessed
//	[,parent_id,attributes,deleted][,md5,sha1]
//
// encoding/csv handles quoting: values containing comma, quote or newline
// are quoted with internal quotes doubled.
func encodeCSV(roots []*image.FileSystemNode, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "name", "kind", "size", "path", "created", "modified", "accessed"}
	if opts.IncludeMetadata {
		header = append(header, "parent_id", "attributes", "deleted")
	}
	if opts.IncludeHashes {
		header = append(header, "md5", "sha1")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, node := range image.CollectNodes(roots) {
		row := []string{
			strconv.FormatUint(node.ID, 10),
			node.Name,
			string(node.Kind),
			strconv.FormatUint(node.Size, 10),
			node.Path,
			csvTime(node.CreatedAt),
			csvTime(node.ModifiedAt),
			csvTime(node.AccessedAt),
		}
		if opts.IncludeMetadata {
			var parentID uint64
			var attrs uint32
			deleted := false
			if node.Meta != nil {
				parentID = node.Meta.ParentID
				attrs = node.Meta.Attributes
				deleted = node.Meta.Deleted
			}
			row = append(row,
				strconv.FormatUint(parentID, 10),
				strconv.FormatUint(uint64(attrs), 10),
				strconv.FormatBool(deleted),
			)
		}
		if opts.IncludeHashes {
			md5, sha1 := "", ""
			if node.Meta != nil {
				md5, sha1 = node.Meta.MD5, node.Meta.SHA1
			}
			row = append(row, md5, sha1)
		}

		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
