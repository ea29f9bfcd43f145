package export

import (
	"encoding/json"
	"time"

	"github.com/mkoster/diskview/internal/image"
)

// jsonEnvelope is the top-level JSON export document.
type jsonEnvelope struct {
	ExportedAt time.Time   `json:"exportedAt"`
	Format     string      `json:"format"`
	Options    jsonOptions `json:"options"`
	TotalItems int         `json:"totalItems"`
	Items      []*jsonItem `json:"items"`
}

// jsonOptions echoes the export configuration into the envelope so a
// consumer can interpret which optional fields are present.
type jsonOptions struct {
	IncludeMetadata bool `json:"includeMetadata"`
	IncludeDeleted  bool `json:"includeDeleted"`
	IncludeHashes   bool `json:"includeHashes"`
	Flatten         bool `json:"flattenStructure"`
}

type jsonItem struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Size       uint64    `json:"size"`
	Path       string    `json:"path"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	AccessedAt time.Time `json:"accessedAt"`

	Metadata *jsonMetadata `json:"metadata,omitempty"`

	MD5  string `json:"md5,omitempty"`
	SHA1 string `json:"sha1,omitempty"`

	Children []*jsonItem `json:"children,omitempty"`
}

type jsonMetadata struct {
	ParentID      uint64 `json:"parentId"`
	Attributes    uint32 `json:"attributes"`
	Deleted       bool   `json:"deleted"`
	Block         uint64 `json:"block"`
	EntryIndex    int    `json:"entryIndex"`
	ContentDigest string `json:"contentDigest,omitempty"`
}

// encodeJSON produces the JSON envelope. TotalItems always counts nodes by
// full recursive descent, in both structural modes.
func encodeJSON(roots []*image.FileSystemNode, opts Options, now time.Time) ([]byte, error) {
	var items []*jsonItem
	if opts.Flatten {
		items = make([]*jsonItem, 0, len(roots))
		for _, node := range image.CollectNodes(roots) {
			items = append(items, jsonItemFrom(node, opts, false))
		}
	} else {
		items = make([]*jsonItem, 0, len(roots))
		for _, root := range roots {
			items = append(items, jsonItemFrom(root, opts, true))
		}
	}

	envelope := jsonEnvelope{
		ExportedAt: now,
		Format:     string(FormatJSON),
		Options: jsonOptions{
			IncludeMetadata: opts.IncludeMetadata,
			IncludeDeleted:  opts.IncludeDeleted,
			IncludeHashes:   opts.IncludeHashes,
			Flatten:         opts.Flatten,
		},
		TotalItems: image.CountNodes(roots),
		Items:      items,
	}

	return json.MarshalIndent(envelope, "", "  ")
}

func jsonItemFrom(node *image.FileSystemNode, opts Options, recurse bool) *jsonItem {
	item := &jsonItem{
		ID:         node.ID,
		Name:       node.Name,
		Kind:       string(node.Kind),
		Size:       node.Size,
		Path:       node.Path,
		CreatedAt:  node.CreatedAt,
		ModifiedAt: node.ModifiedAt,
		AccessedAt: node.AccessedAt,
	}

	if opts.IncludeMetadata && node.Meta != nil {
		item.Metadata = &jsonMetadata{
			ParentID:      node.Meta.ParentID,
			Attributes:    node.Meta.Attributes,
			Deleted:       node.Meta.Deleted,
			Block:         node.Meta.Block,
			EntryIndex:    node.Meta.EntryIndex,
			ContentDigest: node.Meta.ContentDigest.String(),
		}
	}
	if opts.IncludeHashes && node.Meta != nil {
		item.MD5 = node.Meta.MD5
		item.SHA1 = node.Meta.SHA1
	}

	if recurse {
		for _, child := range node.Children {
			item.Children = append(item.Children, jsonItemFrom(child, opts, true))
		}
	}
	return item
}
