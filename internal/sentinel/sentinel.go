package sentinel

var _ error = Error("")

// Error is a sentinel error backed by a string constant. Declaring sentinels
// as consts keeps them immutable, unlike errors.New values stored in vars.
//
// Error is comparable, so the == fallback of errors.Is matches it through
// wrapped error chains without a custom Is method.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
