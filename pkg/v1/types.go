package v1

// RewriteRequest describes one rewrite pass. Key and Value fall back to the
// client's configured trailer when empty.
type RewriteRequest struct {
	Ref    string `json:"ref,omitempty"`
	Root   string `json:"root,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// MessageChange is one commit whose message a rewrite would change.
type MessageChange struct {
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
	Diff    string `json:"diff"`
}

// RewriteReport summarizes a rewrite pass.
type RewriteReport struct {
	Ref       string          `json:"ref"`
	OldHead   string          `json:"old_head"`
	NewHead   string          `json:"new_head"`
	Rewritten int             `json:"rewritten"`
	Unchanged int             `json:"unchanged"`
	Published bool            `json:"published"`
	Changes   []MessageChange `json:"changes,omitempty"`
}

// CheckRequest describes a read-only trailer audit.
type CheckRequest struct {
	Ref   string `json:"ref,omitempty"`
	Root  string `json:"root,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// CheckedCommit is one audited commit.
type CheckedCommit struct {
	Hash       string `json:"hash"`
	Subject    string `json:"subject"`
	HasTrailer bool   `json:"has_trailer"`
}

// CheckReport summarizes a trailer audit.
type CheckReport struct {
	Present int             `json:"present"`
	Missing int             `json:"missing"`
	Commits []CheckedCommit `json:"commits"`
}
