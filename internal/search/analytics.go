package search

import (
	"sort"
	"time"

	"github.com/mkoster/diskview/internal/image"
)

// Analytic query defaults.
const (
	// DefaultLargeFileThreshold is 100 MiB
	DefaultLargeFileThreshold uint64 = 100 * 1024 * 1024

	// DefaultRecentDays bounds the "recently modified" window
	DefaultRecentDays = 7
)

// FindDuplicateFiles groups file nodes by their MD5-shaped hash and returns
// the groups with at least two members. Groups (and members within a group)
// keep tree order.
func (e *Engine) FindDuplicateFiles() [][]*image.FileSystemNode {
	byHash := make(map[string][]*image.FileSystemNode)
	var hashOrder []string

	for _, node := range e.index.Nodes() {
		if node.IsContainer() || node.Meta == nil || node.Meta.MD5 == "" {
			continue
		}
		if _, seen := byHash[node.Meta.MD5]; !seen {
			hashOrder = append(hashOrder, node.Meta.MD5)
		}
		byHash[node.Meta.MD5] = append(byHash[node.Meta.MD5], node)
	}

	var groups [][]*image.FileSystemNode
	for _, hash := range hashOrder {
		if group := byHash[hash]; len(group) >= 2 {
			groups = append(groups, group)
		}
	}
	return groups
}

// FindLargeFiles returns file nodes with size >= threshold, sorted by
// descending size. A zero threshold means DefaultLargeFileThreshold.
func (e *Engine) FindLargeFiles(threshold uint64) []*image.FileSystemNode {
	if threshold == 0 {
		threshold = DefaultLargeFileThreshold
	}

	var files []*image.FileSystemNode
	for _, node := range e.index.Nodes() {
		if !node.IsContainer() && node.Size >= threshold {
			files = append(files, node)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Size > files[j].Size
	})
	return files
}

// FindRecentFiles returns file nodes modified within the last days days,
// sorted by descending modification time. Non-positive days means
// DefaultRecentDays.
func (e *Engine) FindRecentFiles(days int) []*image.FileSystemNode {
	if days <= 0 {
		days = DefaultRecentDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	var files []*image.FileSystemNode
	for _, node := range e.index.Nodes() {
		if !node.IsContainer() && node.ModifiedAt.After(cutoff) {
			files = append(files, node)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})
	return files
}

// FindDeletedFiles returns every node with the deleted flag set, in tree
// order.
func (e *Engine) FindDeletedFiles() []*image.FileSystemNode {
	var deleted []*image.FileSystemNode
	for _, node := range e.index.Nodes() {
		if node.Meta != nil && node.Meta.Deleted {
			deleted = append(deleted, node)
		}
	}
	return deleted
}
