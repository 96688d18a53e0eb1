package normalize

import (
	"net/url"
	"strings"
)

// bracket key-path parsing for query strings and form bodies:
//   a=1        -> {"a": "1"}
//   a[]=1&a[]=2 -> {"a": ["1", "2"]}
//   b[x]=3     -> {"b": {"x": "3"}}
// keys nest arbitrarily deep; "a[][x]" is left unspecified and the parser
// simply stops descending at the array marker.

// pathToken is one step of a parsed bracket key. isArray marks the "[]"
// append token; otherwise Key is a map key.
type pathToken struct {
	Key     string
	isArray bool
}

// splitKeyPath tokenizes a raw key like "b[x][y]" or "a[]".
func splitKeyPath(raw string) []pathToken {
	head, rest, found := strings.Cut(raw, "[")
	toks := []pathToken{{Key: head}}
	if !found {
		return toks
	}
	for rest != "" {
		inner, tail, ok := strings.Cut(rest, "]")
		if !ok {
			// unbalanced bracket: treat the remainder as a literal key
			toks = append(toks, pathToken{Key: rest})
			break
		}
		if inner == "" {
			toks = append(toks, pathToken{isArray: true})
		} else {
			toks = append(toks, pathToken{Key: inner})
		}
		rest = strings.TrimPrefix(tail, "[")
		if tail == rest && tail != "" {
			// garbage between brackets; keep it as a literal key
			toks = append(toks, pathToken{Key: tail})
			break
		}
	}
	return toks
}

// assign deep-merges one (path, value) pair into acc. An array token appends
// to a slice under the preceding key; a map token descends, creating
// intermediate maps as needed. A scalar already present under a key is
// overwritten when the shapes conflict.
func assign(acc map[string]interface{}, path []pathToken, value string) {
	if len(path) == 0 {
		return
	}
	tok := path[0]
	if len(path) == 1 || path[1].isArray {
		if len(path) > 1 {
			list, _ := acc[tok.Key].([]interface{})
			acc[tok.Key] = append(list, value)
			return
		}
		acc[tok.Key] = value
		return
	}
	child, ok := acc[tok.Key].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		acc[tok.Key] = child
	}
	assign(child, path[1:], value)
}

// ParsePairs decodes an urlencoded pair list ("a=1&b[x]=2") into a nested
// map using the bracket key-path rules. Pairs that fail URL unescaping are
// skipped rather than failing the whole parse.
func ParsePairs(raw string) map[string]interface{} {
	out := map[string]interface{}{}
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		assign(out, splitKeyPath(key), val)
	}
	return out
}
