package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ledgerline/erp-client/internal/apierrors"
)

// listKeys are the envelope fields the API uses to carry collections, in lookup order.
var listKeys = []string{"data", "items", "results"}

// decodeList accepts a bare JSON array or an object carrying the array under one of listKeys.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", apierrors.ErrUnexpectedResponse)
	}
	switch body[0] {
	case '[':
		return unmarshalList[T](body)
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %s", apierrors.ErrUnexpectedResponse, err)
		}
		for _, key := range listKeys {
			raw, found := envelope[key]
			if !found {
				continue
			}
			raw = bytes.TrimSpace(raw)
			if bytes.Equal(raw, []byte("null")) {
				return []T{}, nil
			}
			if len(raw) > 0 && raw[0] == '[' {
				return unmarshalList[T](raw)
			}
		}
	}
	return nil, fmt.Errorf("%w: expected a list, got %s", apierrors.ErrUnexpectedResponse, snippet(body))
}

func unmarshalList[T any](raw []byte) ([]T, error) {
	output := []T{}
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrUnexpectedResponse, err)
	}
	return output, nil
}

// decodeEntity accepts the entity object itself or the object wrapped in a "data" field.
func decodeEntity[T any](body []byte) (T, error) {
	var output T
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return output, fmt.Errorf("%w: expected an object, got %s", apierrors.ErrUnexpectedResponse, snippet(body))
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return output, fmt.Errorf("%w: %s", apierrors.ErrUnexpectedResponse, err)
	}
	if raw, found := envelope["data"]; found {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return output, fmt.Errorf("%w: expected an object in data, got %s", apierrors.ErrUnexpectedResponse, snippet(raw))
		}
		body = raw
	}
	if err := json.Unmarshal(body, &output); err != nil {
		return output, fmt.Errorf("%w: %s", apierrors.ErrUnexpectedResponse, err)
	}
	return output, nil
}

func snippet(body []byte) string {
	if len(body) > 64 {
		return string(body[:64]) + "..."
	}
	return string(body)
}
