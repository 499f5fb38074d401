package params

import (
	"net/url"
	"strings"
	"time"
)

// DefaultBatchSize is the list length above which a parameter is split into batches.
const DefaultBatchSize = 100

// Encoded is the query-string form of a parameter value.
type Encoded struct {
	// Text is the encoded value. Empty when Batchable is true.
	Text string

	// Batchable reports that the value is a List longer than the threshold
	// and must be split before it can be sent.
	Batchable bool
}

// Encode converts a value into its query-string representation.
// Lists longer than threshold are reported as Batchable instead of being joined.
func Encode(v Value, threshold int) Encoded {
	if threshold <= 0 {
		threshold = DefaultBatchSize
	}

	switch val := v.(type) {
	case Scalar:
		return Encoded{Text: url.QueryEscape(string(val))}
	case Date:
		return Encoded{Text: time.Time(val).Format(DateLayout)}
	case RawDate:
		return Encoded{Text: strings.ReplaceAll(string(val), "-", "")}
	case List:
		if len(val) > threshold {
			return Encoded{Batchable: true}
		}
		return Encoded{Text: joinList(val)}
	default:
		return Encoded{}
	}
}

// joinList escapes each element and joins them with ','.
// Commas inside elements are escaped, so DecodeList can split unambiguously.
func joinList(items []string) string {
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = url.QueryEscape(item)
	}
	return strings.Join(escaped, ",")
}

// DecodeList reverses the list encoding produced by Encode.
// An empty fragment decodes to an empty list, so List{} and List{""} both
// encode to "" and the latter does not survive a round trip.
func DecodeList(fragment string) ([]string, error) {
	if fragment == "" {
		return []string{}, nil
	}

	parts := strings.Split(fragment, ",")
	out := make([]string, len(parts))
	for i, part := range parts {
		item, err := url.QueryUnescape(part)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}
