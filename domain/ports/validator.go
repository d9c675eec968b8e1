package ports

// Validatable is implemented by settings types that carry semantic
// constraints beyond their schema. Validate runs after decoding.
type Validatable interface {
	Validate() error
}
