package api

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . CommitExtractor

// CommitExtractor pulls the commit identifiers out of a build document. The
// field carrying them differs between build server products, so the schema is
// pluggable rather than hard-coded.
type CommitExtractor interface {
	ExtractCommits(doc BuildDocument) []string
}

// GitCommitExtractor reads the commits of a git-backed build: the changeset
// items, falling back to the last built revision when the build had no
// changes of its own.
type GitCommitExtractor struct{}

func (GitCommitExtractor) ExtractCommits(doc BuildDocument) []string {
	var hashes []string
	for _, item := range doc.ChangeSet.Items {
		if item.CommitID != "" {
			hashes = append(hashes, item.CommitID)
		}
	}

	if len(hashes) > 0 {
		return hashes
	}

	for _, action := range doc.Actions {
		if action.LastBuiltRevision != nil && action.LastBuiltRevision.SHA1 != "" {
			hashes = append(hashes, action.LastBuiltRevision.SHA1)
		}
	}

	return hashes
}
