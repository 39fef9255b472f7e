package domain

// FlashKind is the channel a notice is shown in.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash holds the notices pending for one session.
type Flash struct {
	Success []string `json:"success,omitempty"`
	Error   []string `json:"error,omitempty"`
}

// IsEmpty reports whether no notice is pending.
func (f Flash) IsEmpty() bool {
	return len(f.Success) == 0 && len(f.Error) == 0
}
