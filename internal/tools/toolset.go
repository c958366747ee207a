package tools

// NewSearchTools builds the filesystem search toolset (find_files,
// find_text_in_files, read_file), all confined to the same working root.
// The toolset never mutates the filesystem.
func NewSearchTools(rootDir string) []Tool {
	return []Tool{
		NewFindFilesTool(rootDir),
		NewGrepTool(rootDir),
		NewReadFileTool(rootDir),
	}
}
