package model

// OutputFile is a compiled artifact bound to a target path. Produced by an
// adapter during compile; consumed by the planner and executor; discarded
// after the run.
type OutputFile struct {
	// Path is relative for project-scope outputs, "~/"-prefixed for
	// user-scope outputs, and may be expanded to an absolute path by a
	// destination adapter at plan time.
	Path string

	Content     []byte
	Target      Target
	ContentHash ContentHash

	// SourcePath is the originating asset's SourcePath, embedded in the
	// output's footer marker ("source: <rel-path>").
	SourcePath string

	// Diagnostics holds non-fatal, per-file notes produced while compiling
	// this output (e.g. a dangerous-tool warning).
	Diagnostics []string
}

// NewOutputFile constructs an OutputFile and computes its ContentHash from
// content.
func NewOutputFile(path string, content []byte, target Target, sourcePath string) OutputFile {
	return OutputFile{
		Path:        path,
		Content:     content,
		Target:      target,
		ContentHash: HashBytes(content),
		SourcePath:  sourcePath,
	}
}
