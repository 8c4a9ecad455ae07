package contracts

import "fmt"

// DecodeError: the input could not be read as any supported container.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedModeError: no safe color-mode conversion path exists for the
// requested target format.
type UnsupportedModeError struct {
	Mode   string
	Target string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("no conversion path from mode %q to format %q", e.Mode, e.Target)
}

// InvalidParameterError: a request parameter is out of range or unknown.
type InvalidParameterError struct {
	Name  string
	Value string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Name, e.Value)
}

// WriteError: the encoded result could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
