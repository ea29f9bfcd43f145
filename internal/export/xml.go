package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mkoster/diskview/internal/image"
)

// encodeXML produces the XML export: a single <export> root element carrying
// timestamp, format and count attributes, wrapping recursively nested <item>
// elements. Names and paths are emitted inside CDATA sections; deleted items
// carry a deleted="true" attribute.
func encodeXML(roots []*image.FileSystemNode, opts Options, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<export timestamp="%s" format="xml" totalItems="%d">`+"\n",
		now.Format(time.RFC3339), image.CountNodes(roots))

	if opts.Flatten {
		for _, node := range image.CollectNodes(roots) {
			writeXMLItem(&buf, node, opts, 1, false)
		}
	} else {
		for _, root := range roots {
			writeXMLItem(&buf, root, opts, 1, true)
		}
	}

	buf.WriteString("</export>\n")
	return buf.Bytes(), nil
}

func writeXMLItem(buf *bytes.Buffer, node *image.FileSystemNode, opts Options, depth int, recurse bool) {
	indent := strings.Repeat("  ", depth)
	deleted := node.Meta != nil && node.Meta.Deleted

	fmt.Fprintf(buf, `%s<item id="%d" kind="%s" size="%d"`, indent, node.ID, node.Kind, node.Size)
	if deleted {
		buf.WriteString(` deleted="true"`)
	}
	buf.WriteString(">\n")

	fmt.Fprintf(buf, "%s  <name>%s</name>\n", indent, cdata(node.Name))
	fmt.Fprintf(buf, "%s  <path>%s</path>\n", indent, cdata(node.Path))
	fmt.Fprintf(buf, "%s  <created>%s</created>\n", indent, xmlTime(node.CreatedAt))
	fmt.Fprintf(buf, "%s  <modified>%s</modified>\n", indent, xmlTime(node.ModifiedAt))
	fmt.Fprintf(buf, "%s  <accessed>%s</accessed>\n", indent, xmlTime(node.AccessedAt))

	if opts.IncludeMetadata && node.Meta != nil {
		fmt.Fprintf(buf, `%s  <metadata parentId="%d" attributes="%d" block="%d" entryIndex="%d"/>`+"\n",
			indent, node.Meta.ParentID, node.Meta.Attributes, node.Meta.Block, node.Meta.EntryIndex)
	}
	if opts.IncludeHashes && node.Meta != nil && node.Meta.MD5 != "" {
		fmt.Fprintf(buf, "%s  <md5>%s</md5>\n", indent, node.Meta.MD5)
		fmt.Fprintf(buf, "%s  <sha1>%s</sha1>\n", indent, node.Meta.SHA1)
	}

	if recurse && len(node.Children) > 0 {
		fmt.Fprintf(buf, "%s  <children>\n", indent)
		for _, child := range node.Children {
			writeXMLItem(buf, child, opts, depth+2, true)
		}
		fmt.Fprintf(buf, "%s  </children>\n", indent)
	}

	fmt.Fprintf(buf, "%s</item>\n", indent)
}

// cdata wraps s in a CDATA section. A literal "]]>" inside s would terminate
// the section early, so it is split across two adjacent sections.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}

func xmlTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
