package emit

// Kind is what happened to one artifact file.
type Kind string

const (
	KindCreated   Kind = "created"
	KindUpdated   Kind = "updated"
	KindUnchanged Kind = "unchanged"
	KindNoMatch   Kind = "no-match"
)

// Outcome records the result of emitting one artifact file.
type Outcome struct {
	Artifact string `json:"artifact"`
	Table    string `json:"table,omitempty"`
	Path     string `json:"path"`
	Kind     Kind   `json:"outcome"`
}

// OK reports whether the artifact is in its expected state.
func (o Outcome) OK() bool { return o.Kind != KindNoMatch }
