package index

// SkipReason classifies why an article directory was excluded from a build.
type SkipReason string

const (
	ReasonMissingMetadata SkipReason = "missing_metadata"
	ReasonInvalidField    SkipReason = "invalid_field"
	ReasonIDMismatch      SkipReason = "id_mismatch"
	ReasonContentMissing  SkipReason = "content_missing"
	ReasonUnreadable      SkipReason = "unreadable"
)

// Skipped records one excluded directory. Ref is the directory name (usually
// the would-be article id); Detail carries the offending field or path.
type Skipped struct {
	Ref    string     `json:"ref"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Report summarizes a build: how many articles made it into the snapshot and
// which directories were skipped, with reasons. A non-empty Skipped list does
// not make the build a failure.
type Report struct {
	Indexed int       `json:"indexed"`
	Skipped []Skipped `json:"skipped"`
}
