// Package normalize reduces the backend's list responses, whose shape is not
// reliable, to a concrete slice. Callers never see the raw union.
package normalize

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"

	"hospital-portal/internal/apperr"
)

type Shape int

const (
	ShapeList Shape = iota + 1
	ShapeEmpty
	ShapeEnvelope
	ShapeUnknown
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeEmpty:
		return "empty"
	case ShapeEnvelope:
		return "envelope"
	case ShapeUnknown:
		return "unknown"
	}
	return "invalid"
}

type Result[T any] struct {
	Shape Shape
	Items []T
	// set only for ShapeUnknown
	Err error
}

// paginated responses (Spring Page) carry the list under content
type envelope struct {
	Content json.RawMessage `json:"content"`
}

// Decode tries list, empty, envelope and unknown in that order. Items is
// never nil.
func Decode[T any](raw []byte) Result[T] {
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '[' {
		items, err := decodeItems[T](raw)
		if err != nil {
			return unknown[T](err)
		}
		return Result[T]{Shape: ShapeList, Items: items}
	}

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return Result[T]{Shape: ShapeEmpty, Items: []T{}}
	}

	if raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return unknown[T](err)
		}
		content := bytes.TrimSpace(env.Content)
		if len(content) > 0 && content[0] == '[' {
			items, err := decodeItems[T](content)
			if err != nil {
				return unknown[T](err)
			}
			return Result[T]{Shape: ShapeEnvelope, Items: items}
		}
		return unknown[T](errors.New("object without a content list"))
	}

	return unknown[T](errors.New("response is neither a list nor an object"))
}

func decodeItems[T any](raw []byte) ([]T, error) {
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func unknown[T any](cause error) Result[T] {
	return Result[T]{
		Shape: ShapeUnknown,
		Items: []T{},
		Err:   apperr.Wrap(cause, apperr.KindMalformedResponse, "unexpected response from server", ""),
	}
}
