package entity

// Operator is the caller authenticated by a bearer token on the operator API.
type Operator struct {
	ID   string
	Name string
}
