package audit

// Entry is one decision record in the hash-chained JSONL ledger.
// All fields are scalars so json.Marshal output is deterministic.
type Entry struct {
	User      string  `json:"user"`
	Allowed   bool    `json:"allowed"`
	Policy    string  `json:"policy"`
	Risk      float64 `json:"risk"`
	Timestamp int64   `json:"timestamp"` // whole seconds since epoch
	PrevHash  string  `json:"prev_hash"`
}

// Sink receives decision records.
type Sink interface {
	Record(entry Entry) error
}
