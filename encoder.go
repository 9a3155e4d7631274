package taskq

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Encoder turns list pages into cache payloads and back.
type Encoder interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

var (
	pageJSON = sonic.Config{
		SortMapKeys:    true,
		CopyString:     true,
		ValidateString: true,
	}.Froze()
	strictPageJSON = sonic.Config{
		SortMapKeys:           true,
		CopyString:            true,
		ValidateString:        true,
		DisallowUnknownFields: true,
	}.Froze()
)

// JSONEncoder stores pages as JSON. With Strict set, a payload carrying
// fields the current ListResult does not know fails to decode, so pages
// cached by an older build are treated as corrupt and recomputed.
type JSONEncoder struct {
	Strict bool
}

func (e *JSONEncoder) api() sonic.API {
	if e.Strict {
		return strictPageJSON
	}
	return pageJSON
}

func (e *JSONEncoder) Encode(v any) ([]byte, error) {
	b, err := e.api().Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("taskq: encode page: %w", err)
	}
	return b, nil
}

func (e *JSONEncoder) Decode(data []byte, v any) error {
	if err := e.api().Unmarshal(data, v); err != nil {
		return fmt.Errorf("taskq: decode page: %w", err)
	}
	return nil
}
