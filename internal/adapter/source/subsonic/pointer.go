package subsonic

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mmcdole/juke/internal/domain"
)

// Lookup resolves an RFC 6901 JSON pointer (e.g. "/subsonic-response/playlist/entry")
// against doc. It returns false when any segment is absent, and a ParseError
// when an intermediate value cannot be descended into.
func Lookup(doc json.RawMessage, pointer string) (json.RawMessage, bool, error) {
	if pointer == "" {
		return doc, true, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, false, &domain.ParseError{Reason: "invalid pointer " + strconv.Quote(pointer)}
	}

	cur := doc
	for _, token := range strings.Split(pointer[1:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")

		switch kindOf(cur) {
		case '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(cur, &obj); err != nil {
				return nil, false, &domain.ParseError{Field: token, Reason: "malformed object"}
			}
			next, ok := obj[token]
			if !ok {
				return nil, false, nil
			}
			cur = next
		case '[':
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 {
				return nil, false, nil
			}
			var arr []json.RawMessage
			if err := json.Unmarshal(cur, &arr); err != nil {
				return nil, false, &domain.ParseError{Field: token, Reason: "malformed array"}
			}
			if idx >= len(arr) {
				return nil, false, nil
			}
			cur = arr[idx]
		default:
			return nil, false, nil
		}
	}
	return cur, true, nil
}

// kindOf returns the first significant byte of a JSON value
// ('{', '[', '"', 'n', 't', 'f', or a digit/minus), or 0 when empty.
func kindOf(raw json.RawMessage) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isObject(raw json.RawMessage) bool { return kindOf(raw) == '{' }

func isArray(raw json.RawMessage) bool { return kindOf(raw) == '[' }
