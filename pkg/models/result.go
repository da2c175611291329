package models

// Result is the classification of a single source file against the target
// tree. Results are created in directory-walk order and never mutated after
// creation; they live for a single run and are not persisted.
type Result struct {
	// SourcePath is the absolute path of the file in the source tree
	SourcePath string

	// TargetPath is the corresponding absolute path in the target tree,
	// derived by replacing the source root prefix with the target root
	TargetPath string

	// RelativePath is the path relative to both roots
	RelativePath string

	// Size is the source file size in bytes at classification time
	Size int64

	// Action is the classification outcome
	Action Action
}

// GroupByAction partitions results into per-action sequences, preserving the
// original discovery order within each group. A fixed switch over the
// three-variant enumeration is all the grouping this model ever needs.
func GroupByAction(results []Result) map[Action][]Result {
	grouped := make(map[Action][]Result, 3)
	for _, r := range results {
		switch r.Action {
		case ActionCopy:
			grouped[ActionCopy] = append(grouped[ActionCopy], r)
		case ActionModify:
			grouped[ActionModify] = append(grouped[ActionModify], r)
		case ActionNone:
			grouped[ActionNone] = append(grouped[ActionNone], r)
		}
	}
	return grouped
}

// TableHeaders returns the column headers used when rendering results
func TableHeaders() []string {
	return []string{"Source Path", "Target Path", "Action"}
}
