package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrMultipleBatchParams is returned in strict mode when more than one
// parameter exceeds the batch threshold.
var ErrMultipleBatchParams = errors.New("more than one list parameter exceeds the batch size")

// PlanOptions controls request planning.
type PlanOptions struct {
	// BatchSize is both the split threshold and the chunk size (default 100).
	BatchSize int

	// Strict rejects calls with more than one oversized list parameter
	// instead of batching only the first one.
	Strict bool
}

// Plan is the ordered set of query strings needed for one call.
type Plan struct {
	// Queries holds one query string per request, each starting with the endpoint path.
	Queries []string

	// BatchParam names the parameter that was split, empty when not batched.
	BatchParam string

	// Signature is the ordered "name=value" form of every argument,
	// with the batched parameter in its full, unsplit form.
	Signature []string
}

// Batched reports whether the plan carries more than one request.
func (p *Plan) Batched() bool {
	return p.BatchParam != ""
}

// Split partitions seq into chunks of at most chunkSize elements.
// Order is preserved and no element is dropped or duplicated.
func Split(seq []string, chunkSize int) [][]string {
	if chunkSize <= 0 {
		chunkSize = DefaultBatchSize
	}
	if len(seq) <= chunkSize {
		return [][]string{seq}
	}

	chunks := make([][]string, 0, (len(seq)+chunkSize-1)/chunkSize)
	for start := 0; start < len(seq); start += chunkSize {
		end := start + chunkSize
		if end > len(seq) {
			end = len(seq)
		}
		chunks = append(chunks, seq[start:end])
	}
	return chunks
}

// BuildPlan assembles the query strings for a call to path.
//
// The base query is "<path>?ispandas=1&field=<fields>" followed by every
// non-nil parameter in declaration order. The first list parameter longer
// than the batch size is split, producing one query per chunk; any later
// oversized list is joined in full into every query.
func BuildPlan(path string, fields []string, params []Param, opts PlanOptions) (*Plan, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	plan := &Plan{}
	var prefix, suffix strings.Builder
	var chunks [][]string
	var oversized []string

	prefix.WriteString(path)
	prefix.WriteString("?ispandas=1&field=")
	prefix.WriteString(joinList(fields))

	for _, p := range params {
		if p.Value == nil {
			continue
		}

		enc := Encode(p.Value, batchSize)
		if enc.Batchable {
			list := p.Value.(List)
			oversized = append(oversized, p.Name)
			plan.Signature = append(plan.Signature, p.Name+"="+joinList(list))

			if plan.BatchParam == "" {
				plan.BatchParam = p.Name
				chunks = Split(list, batchSize)
				continue
			}
			enc.Text = joinList(list)
		} else {
			plan.Signature = append(plan.Signature, p.Name+"="+enc.Text)
		}

		target := &prefix
		if plan.BatchParam != "" {
			target = &suffix
		}
		fmt.Fprintf(target, "&%s=%s", p.Name, enc.Text)
	}

	if len(oversized) > 1 {
		if opts.Strict {
			return nil, fmt.Errorf("%w: %s", ErrMultipleBatchParams, strings.Join(oversized, ", "))
		}
		log.Warn().
			Str("path", path).
			Str("batched", plan.BatchParam).
			Strs("unbatched", oversized[1:]).
			Msg("Multiple oversized list parameters, only the first is batched")
	}

	if plan.BatchParam == "" {
		plan.Queries = []string{prefix.String()}
		return plan, nil
	}

	plan.Queries = make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		plan.Queries = append(plan.Queries,
			fmt.Sprintf("%s&%s=%s%s", prefix.String(), plan.BatchParam, joinList(chunk), suffix.String()))
	}

	log.Debug().
		Str("path", path).
		Str("batch_param", plan.BatchParam).
		Int("chunks", len(chunks)).
		Msg("Planned batched request")

	return plan, nil
}
