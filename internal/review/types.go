package review

// FileDiff is one changed file and its cleaned diff text.
type FileDiff struct {
	Filename string `json:"filename"`
	Diff     string `json:"diff"`
}

// Cluster is a logical group of related file diffs.
type Cluster struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Files       []FileDiff `json:"files"`
}

// ClusterSet is the decoded result of the clustering stage.
type ClusterSet struct {
	Clusters []Cluster `json:"clusters"`
}

// Finding is a single review issue located in a code snippet.
// Severity is one of "high", "medium", "low".
type Finding struct {
	CodeSnippet string `json:"code_snippet"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Issue       string `json:"issue"`
	Suggestion  string `json:"suggestion"`
	Severity    string `json:"severity"`
}

// ClusterReview holds the findings for one cluster.
type ClusterReview struct {
	ClusterName string    `json:"cluster_name"`
	Findings    []Finding `json:"reviews"`
}
