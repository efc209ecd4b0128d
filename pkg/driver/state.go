package driver

// State is the position of a driver in its object block.
type State int

const (
	// ExpectHeader waits for the "Begin Object" line.
	ExpectHeader State = iota

	// InBody reads properties and dispatches nested blocks.
	InBody

	// InNestedBlock is inside a nested block handled by a sub-driver.
	InNestedBlock

	// Done has consumed "End Object".
	Done
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case ExpectHeader:
		return "expect_header"
	case InBody:
		return "in_body"
	case InNestedBlock:
		return "in_nested_block"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
