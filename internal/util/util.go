package util

// Pointer returns a pointer to a copy of v. Used to fill the pointer fields of
// config overrides from plain values.
func Pointer[T any](v T) *T {
	return &v
}
