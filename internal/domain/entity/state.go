package entity

import "encoding/json"

// State JSON keys. The "app:" prefix is the namespace discipline of the
// persisted blob; other prefixes are reserved for future session data.
const (
	stateKeySeenIDs    = "app:last_seen_post_ids"
	stateKeyLastResult = "app:last_result"
	stateKeyHistory    = "app:history"
)

// DefaultHistoryMax is the default bound on the persisted run history.
const DefaultHistoryMax = 10

// State is the durable watermark of the ingestion pipeline: the set of post
// ids already processed plus a bounded history of run results. In memory the
// seen ids behave as a set; on disk they are an ordered sequence.
//
// State is mutated only at pipeline commit boundaries and is not safe for
// concurrent use.
type State struct {
	// SeenPostIDs holds the already-ingested post ids in insertion order,
	// without duplicates.
	SeenPostIDs []string

	// LastResult is the most recent run result, nil before the first run.
	LastResult *IngestionResult

	// History holds past run results, newest last, bounded by the
	// configured maximum.
	History []IngestionResult

	seen map[string]struct{}
}

// NewState returns an empty state.
func NewState() *State {
	return &State{seen: make(map[string]struct{})}
}

// HasSeen reports whether the post id has been committed before.
func (s *State) HasSeen(id string) bool {
	s.ensureIndex()
	_, ok := s.seen[id]
	return ok
}

// MarkSeen adds post ids to the watermark. Already-present ids are ignored,
// so insertion order stays stable.
func (s *State) MarkSeen(ids ...string) {
	s.ensureIndex()
	for _, id := range ids {
		if _, dup := s.seen[id]; dup {
			continue
		}
		s.seen[id] = struct{}{}
		s.SeenPostIDs = append(s.SeenPostIDs, id)
	}
}

// RecordResult stores the run result as the latest and appends it to the
// history, dropping the oldest entries when the bound is exceeded.
// maxHistory values below 1 fall back to DefaultHistoryMax.
func (s *State) RecordResult(result IngestionResult, maxHistory int) {
	if maxHistory < 1 {
		maxHistory = DefaultHistoryMax
	}
	r := result
	s.LastResult = &r
	s.History = append(s.History, result)
	if overflow := len(s.History) - maxHistory; overflow > 0 {
		s.History = append([]IngestionResult(nil), s.History[overflow:]...)
	}
}

func (s *State) ensureIndex() {
	if s.seen != nil {
		return
	}
	s.seen = make(map[string]struct{}, len(s.SeenPostIDs))
	for _, id := range s.SeenPostIDs {
		s.seen[id] = struct{}{}
	}
}

// stateBlob is the on-disk shape of State.
type stateBlob struct {
	SeenPostIDs []string          `json:"app:last_seen_post_ids"`
	LastResult  *IngestionResult  `json:"app:last_result,omitempty"`
	History     []IngestionResult `json:"app:history"`
}

// MarshalJSON serializes the state as a single JSON blob with the
// "app:"-prefixed keys.
func (s *State) MarshalJSON() ([]byte, error) {
	blob := stateBlob{
		SeenPostIDs: s.SeenPostIDs,
		LastResult:  s.LastResult,
		History:     s.History,
	}
	if blob.SeenPostIDs == nil {
		blob.SeenPostIDs = []string{}
	}
	if blob.History == nil {
		blob.History = []IngestionResult{}
	}
	return json.Marshal(blob)
}

// UnmarshalJSON restores the state from its on-disk blob, deduplicating seen
// ids defensively in case the blob was edited by hand.
func (s *State) UnmarshalJSON(data []byte) error {
	var blob stateBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return err
	}
	*s = State{
		LastResult: blob.LastResult,
		History:    blob.History,
		seen:       make(map[string]struct{}, len(blob.SeenPostIDs)),
	}
	s.MarkSeen(blob.SeenPostIDs...)
	return nil
}
