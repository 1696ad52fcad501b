package bundle

import (
	"encoding/json"
	"fmt"
)

// DeserializationError reports an artifact that exists but cannot be read
// back into a valid bundle.
type DeserializationError struct {
	Source string
	Err    error
}

func (e *DeserializationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("corrupt model artifact: %v", e.Err)
	}
	return fmt.Sprintf("corrupt model artifact %s: %v", e.Source, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// Encode serializes a bundle into its artifact form.
func Encode(b *Bundle) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("cannot encode nil bundle")
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}

	return data, nil
}

// Decode parses an artifact. Any malformed, version-mismatched or
// inconsistent artifact yields a *DeserializationError.
func Decode(source string, data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &DeserializationError{Source: source, Err: err}
	}

	if err := b.Validate(); err != nil {
		return nil, &DeserializationError{Source: source, Err: err}
	}

	return &b, nil
}
