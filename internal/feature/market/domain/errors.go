// Package domain defines domain-level errors for the market feature.
package domain

import "errors"

// Domain errors for market tracking operations.
// Upper layers match them with errors.Is.
var (
	// ErrMissingCredential indicates that the upstream API cannot be used because no API key is configured.
	// It is terminal for the asset class: polling never starts.
	ErrMissingCredential = errors.New("API key not found. Please check your environment variables")

	// ErrUnknownAsset indicates that the selected asset is not one of the tracked identifiers.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrInvalidTimeRange indicates that a time range string is outside the supported enumeration.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrMalformedResponse indicates that an upstream response did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrDuplicateAsset indicates that a quote result set contained the same identifier twice.
	ErrDuplicateAsset = errors.New("duplicate asset in quote result")

	// ErrUnavailable indicates that the asset class is in a terminal error state.
	ErrUnavailable = errors.New("asset class unavailable")
)
