package port

// Authorizer decides whether a caller-supplied credential may perform writes.
type Authorizer interface {
	Validate(credential string) bool
}
