package publish

// Secret holds a credential read from the environment. Its value is never
// exposed through formatting, so accidental logging stays harmless.
type Secret string

const secretRedacted = "[REDACTED]"

// String ...
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return secretRedacted
}

// GoString ...
func (s Secret) GoString() string {
	return s.String()
}
