package lockdown

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"
)

var (
	errNotObject   = errors.New("top-level value is not an object")
	errInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// manifest is a decoded top-level JSON object. Section values stay raw
// until a configured key asks for them.
type manifest map[string]json.RawMessage

func decodeManifest(data []byte) (manifest, error) {
	// encoding/json would silently replace bad bytes with U+FFFD.
	if !utf8.Valid(data) {
		return nil, errInvalidUTF8
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errNotObject
	}
	return m, nil
}

// entry is one package/version pair of a dependency section.
type entry struct {
	Package string
	Version string
}

// section returns the string-valued entries under key in declaration order.
// The second result is false when the key is absent or its value is not an
// object. Entries with non-string values are left out. A repeated package
// keeps its first position and takes its last value.
func (m manifest) section(key string) ([]entry, bool) {
	raw, ok := m[key]
	if !ok {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false
	}

	type slot struct {
		entry
		str bool
	}
	var slots []slot
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		name, ok := tok.(string)
		if !ok {
			return nil, false
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		version, isString := value.(string)

		if i, seen := index[name]; seen {
			slots[i].Version = version
			slots[i].str = isString
			continue
		}
		index[name] = len(slots)
		slots = append(slots, slot{entry: entry{Package: name, Version: version}, str: isString})
	}

	entries := make([]entry, 0, len(slots))
	for _, s := range slots {
		if s.str {
			entries = append(entries, s.entry)
		}
	}
	return entries, true
}
