package models

// Action represents what should be done for a source file relative to the
// target tree. The three kinds are mutually exclusive and exhaustive: every
// discovered source file maps to exactly one of them.
type Action string

const (
	// ActionCopy copies the file; the target path does not exist
	ActionCopy Action = "copy"
	// ActionModify overwrites the target; it exists but content differs
	ActionModify Action = "modify"
	// ActionNone leaves the target alone; it exists and is identical
	ActionNone Action = "no_action"
)

// MutatesTarget returns true for actions that write to the target tree
func (a Action) MutatesTarget() bool {
	switch a {
	case ActionCopy, ActionModify:
		return true
	default:
		return false
	}
}

// DisplayName returns the human-readable name of the action
func (a Action) DisplayName() string {
	switch a {
	case ActionCopy:
		return "Copy"
	case ActionModify:
		return "Modify"
	case ActionNone:
		return "No Action"
	default:
		return string(a)
	}
}
