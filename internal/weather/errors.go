package weather

import "fmt"

// FetchError reports a transport-level failure or a non-success status from
// a provider endpoint. Status is zero when the request never got a response.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s request failed with status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a response body that could not be decoded
// or is missing a required section.
type MalformedResponseError struct {
	Endpoint string
	Section  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s response is missing the %q section", e.Endpoint, e.Section)
}
