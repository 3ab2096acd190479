package tikmate

import "errors"

// Виды отказов при обращении к TikMate. Клиенту API они не различаются,
// но позволяют проверять поведение в тестах и логах.
var (
	ErrNetwork           = errors.New("tikmate: network error")
	ErrUpstreamRejected  = errors.New("tikmate: lookup rejected")
	ErrMalformedResponse = errors.New("tikmate: malformed response")
)
