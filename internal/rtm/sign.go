package rtm

import (
	"crypto/md5"
	"encoding/hex"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Query is a request's parameter set in the order it will be encoded.
type Query = orderedmap.OrderedMap[string, string]

// NewQuery returns an empty Query.
func NewQuery() *Query {
	return orderedmap.New[string, string]()
}

// Sign computes api_sig for params: names sorted case-insensitively, each
// name immediately followed by its value, the shared secret in front, MD5 of
// the result as lowercase hex. An api_sig already present is ignored.
func Sign(secret string, params *Query) string {
	keys := make([]string, 0, params.Len())
	for pair := params.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == "api_sig" {
			continue
		}
		keys = append(keys, pair.Key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	var b strings.Builder
	b.WriteString(secret)
	for _, k := range keys {
		v, _ := params.Get(k)
		b.WriteString(k)
		b.WriteString(v)
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
