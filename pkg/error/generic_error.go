package error

// GenericError is the contract every typed error in this package satisfies,
// letting the REST recovery middleware map panics to HTTP responses.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}
