package api_keys

import "fmt"

var _ error = KeyNotFoundError{}

type KeyNotFoundError struct {
	DB string
}

func (err KeyNotFoundError) Error() string {
	return fmt.Sprintf("api key for db %s not found", err.DB)
}
