package engine

import (
	"errors"

	"github.com/anatolykoptev/go_clip/internal/sheet"
)

var (
	// ErrMalformedPayload: the remote answered with an unexpected shape.
	ErrMalformedPayload = sheet.ErrMalformedPayload
	// ErrTransport: the request failed or kept failing after retries.
	ErrTransport = errors.New("remote transport failure")
	// ErrMutationRejected: the script endpoint answered without success.
	ErrMutationRejected = errors.New("mutation rejected")
	// ErrNotFound is returned by KVStore backends on a miss.
	ErrNotFound = errors.New("cache: not found")
)
