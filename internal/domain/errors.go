package domain

import "errors"

var (
	ErrSourceUnreadable  = errors.New("source unreadable")
	ErrUnrecognizedName  = errors.New("unrecognized issue name")
	ErrNoExtractableText = errors.New("no extractable text in document")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrRunNotFound       = errors.New("archive run not found")
)
