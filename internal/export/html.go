package export

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mkoster/diskview/internal/image"
)

// encodeHTML produces a self-contained HTML report: aggregate statistics
// followed by either a flat table or a nested tree fragment. Every
// user-controlled string (names, paths) passes through html.EscapeString.
func encodeHTML(roots []*image.FileSystemNode, opts Options, now time.Time) ([]byte, error) {
	stats := image.ComputeStatistics(roots)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\">\n<title>Disk Image Report</title>\n")
	buf.WriteString("<style>\n" +
		"body{font-family:sans-serif;margin:2em}\n" +
		"table{border-collapse:collapse}\n" +
		"th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}\n" +
		"ul.tree{list-style:none}\n" +
		".deleted{color:#a00;text-decoration:line-through}\n" +
		"</style>\n</head>\n<body>\n")

	fmt.Fprintf(&buf, "<h1>Disk Image Report</h1>\n<p>Generated %s</p>\n",
		html.EscapeString(now.Format(time.RFC3339)))

	buf.WriteString("<h2>Statistics</h2>\n<table>\n")
	fmt.Fprintf(&buf, "<tr><th>Files</th><td>%d</td></tr>\n", stats.FileCount)
	fmt.Fprintf(&buf, "<tr><th>Directories</th><td>%d</td></tr>\n", stats.DirectoryCount)
	fmt.Fprintf(&buf, "<tr><th>Deleted items</th><td>%d</td></tr>\n", stats.DeletedCount)
	fmt.Fprintf(&buf, "<tr><th>Total size</th><td>%s</td></tr>\n", humanize.IBytes(stats.TotalSize))
	if stats.LargestFile != nil {
		fmt.Fprintf(&buf, "<tr><th>Largest file</th><td>%s (%s)</td></tr>\n",
			html.EscapeString(stats.LargestFile.Path), humanize.IBytes(stats.LargestFile.Size))
	}
	fmt.Fprintf(&buf, "<tr><th>Mean file size</th><td>%s</td></tr>\n", humanize.IBytes(stats.MeanFileSize))
	buf.WriteString("</table>\n")

	fmt.Fprintf(&buf, "<h2>Contents (%d items)</h2>\n", image.CountNodes(roots))
	if opts.Flatten {
		writeHTMLTable(&buf, roots, opts)
	} else {
		buf.WriteString("<ul class=\"tree\">\n")
		for _, root := range roots {
			writeHTMLTree(&buf, root, opts)
		}
		buf.WriteString("</ul>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

func writeHTMLTable(buf *bytes.Buffer, roots []*image.FileSystemNode, opts Options) {
	buf.WriteString("<table>\n<tr><th>Path</th><th>Kind</th><th>Size</th><th>Modified</th>")
	if opts.IncludeHashes {
		buf.WriteString("<th>MD5</th>")
	}
	buf.WriteString("</tr>\n")

	for _, node := range image.CollectNodes(roots) {
		class := ""
		if node.Meta != nil && node.Meta.Deleted {
			class = ` class="deleted"`
		}
		fmt.Fprintf(buf, "<tr%s><td>%s</td><td>%s</td><td>%s</td><td>%s</td>",
			class,
			html.EscapeString(node.Path),
			node.Kind,
			humanize.IBytes(node.Size),
			html.EscapeString(htmlTime(node.ModifiedAt)))
		if opts.IncludeHashes {
			md5 := ""
			if node.Meta != nil {
				md5 = node.Meta.MD5
			}
			fmt.Fprintf(buf, "<td><code>%s</code></td>", html.EscapeString(md5))
		}
		buf.WriteString("</tr>\n")
	}
	buf.WriteString("</table>\n")
}

func writeHTMLTree(buf *bytes.Buffer, node *image.FileSystemNode, opts Options) {
	class := ""
	if node.Meta != nil && node.Meta.Deleted {
		class = ` class="deleted"`
	}

	name := node.Name
	if name == "" {
		name = "/"
	}
	fmt.Fprintf(buf, "<li%s>%s", class, html.EscapeString(name))
	if !node.IsContainer() {
		fmt.Fprintf(buf, " <small>(%s)</small>", humanize.IBytes(node.Size))
	}

	if len(node.Children) > 0 {
		buf.WriteString("\n<ul class=\"tree\">\n")
		for _, child := range node.Children {
			writeHTMLTree(buf, child, opts)
		}
		buf.WriteString("</ul>\n")
	}
	buf.WriteString("</li>\n")
}

func htmlTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
