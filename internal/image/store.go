package image

// RecordStore holds decoded FileRecords keyed by identifier.
//
// Identifiers are unique: the first decode of an identifier wins and later
// inserts with the same identifier are ignored. Decoding is idempotent per
// offset, so a record reached twice (for example through a cyclic index)
// carries the same values both times and the first-wins rule cannot lose
// information.
//
// The store also preserves insertion order so that hierarchy building and
// tree-order listings are deterministic regardless of map iteration.
type RecordStore struct {
	records map[uint64]*FileRecord
	order   []uint64
}

// NewRecordStore creates an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[uint64]*FileRecord),
	}
}

// Insert adds a record unless its identifier is already present. It reports
// whether the record was stored.
func (s *RecordStore) Insert(rec *FileRecord) bool {
	if _, exists := s.records[rec.ID]; exists {
		return false
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return true
}

// Get returns the record for id, or nil.
func (s *RecordStore) Get(id uint64) *FileRecord {
	return s.records[id]
}

// Contains reports whether id is present.
func (s *RecordStore) Contains(id uint64) bool {
	_, ok := s.records[id]
	return ok
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	return len(s.records)
}

// All returns the records in insertion order.
func (s *RecordStore) All() []*FileRecord {
	out := make([]*FileRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}
