package image

// Statistics aggregates the reconstructed forest for report headers and the
// CLI summary.
type Statistics struct {
	FileCount      int
	DirectoryCount int
	DeletedCount   int

	// TotalSize is the sum of file sizes in bytes
	TotalSize uint64

	// LargestFile is nil when the forest holds no files
	LargestFile *FileSystemNode

	// MeanFileSize is TotalSize / FileCount, 0 when there are no files
	MeanFileSize uint64
}

// ComputeStatistics scans the whole forest once.
func ComputeStatistics(roots []*FileSystemNode) Statistics {
	var stats Statistics

	for _, node := range CollectNodes(roots) {
		if node.Meta != nil && node.Meta.Deleted {
			stats.DeletedCount++
		}

		if node.IsContainer() {
			stats.DirectoryCount++
			continue
		}

		stats.FileCount++
		stats.TotalSize += node.Size
		if stats.LargestFile == nil || node.Size > stats.LargestFile.Size {
			stats.LargestFile = node
		}
	}

	if stats.FileCount > 0 {
		stats.MeanFileSize = stats.TotalSize / uint64(stats.FileCount)
	}
	return stats
}
