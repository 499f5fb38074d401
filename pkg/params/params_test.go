package params

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

func makeSeq(n int) []string {
	seq := make([]string, n)
	for i := range seq {
		seq[i] = fmt.Sprintf("%06d.XSHE", i)
	}
	return seq
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		value     Value
		want      string
		batchable bool
	}{
		{
			name:  "scalar is escaped",
			value: Scalar("a b&c"),
			want:  "a+b%26c",
		},
		{
			name:  "int scalar",
			value: Int(42),
			want:  "42",
		},
		{
			name:  "float scalar",
			value: Float(1.5),
			want:  "1.5",
		},
		{
			name:  "date",
			value: Date(time.Date(2024, 1, 31, 15, 4, 5, 0, time.UTC)),
			want:  "20240131",
		},
		{
			name:  "raw date strips dashes",
			value: RawDate("2024-01-31"),
			want:  "20240131",
		},
		{
			name:  "short list",
			value: List{"000001.XSHE", "600000.XSHG"},
			want:  "000001.XSHE,600000.XSHG",
		},
		{
			name:  "list at threshold",
			value: List(makeSeq(100)),
			want:  strings.Join(makeSeq(100), ","),
		},
		{
			name:      "list over threshold",
			value:     List(makeSeq(101)),
			batchable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.value, 100)
			if got.Batchable != tt.batchable {
				t.Errorf("Batchable = %v, want %v", got.Batchable, tt.batchable)
			}
			if got.Text != tt.want {
				t.Errorf("Text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestListRoundTrip(t *testing.T) {
	original := List{"a,b", "c d", "e"}

	enc := Encode(original, DefaultBatchSize)
	got, err := DecodeList(enc.Text)
	if err != nil {
		t.Fatalf("DecodeList() error = %v", err)
	}

	if !reflect.DeepEqual([]string(original), got) {
		t.Errorf("DecodeList(Encode(x)) = %v, want %v", got, original)
	}
}

func TestDecodeList_EmptyValues(t *testing.T) {
	tests := []struct {
		name  string
		value List
		want  []string
	}{
		{"empty list", List{}, []string{}},
		{"single empty element collapses", List{""}, []string{}},
		{"two empty elements survive", List{"", ""}, []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := Encode(tt.value, DefaultBatchSize)
			got, err := DecodeList(enc.Text)
			if err != nil {
				t.Fatalf("DecodeList() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeList(Encode(%q)) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		chunkSize  int
		wantChunks []int
	}{
		{"empty", 0, 100, []int{0}},
		{"single element", 1, 100, []int{1}},
		{"exactly chunk size", 100, 100, []int{100}},
		{"one over", 101, 100, []int{100, 1}},
		{"two and a half", 250, 100, []int{100, 100, 50}},
		{"default chunk size", 150, 0, []int{100, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := makeSeq(tt.n)
			chunks := Split(seq, tt.chunkSize)

			if len(chunks) != len(tt.wantChunks) {
				t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(tt.wantChunks))
			}

			var joined []string
			for i, chunk := range chunks {
				if len(chunk) != tt.wantChunks[i] {
					t.Errorf("len(chunks[%d]) = %d, want %d", i, len(chunk), tt.wantChunks[i])
				}
				joined = append(joined, chunk...)
			}

			if len(seq) > 0 && !reflect.DeepEqual(joined, seq) {
				t.Error("concatenated chunks do not equal the input sequence")
			}
		})
	}
}

func TestBuildPlan_Unbatched(t *testing.T) {
	plan, err := BuildPlan("/price/daily", []string{"code", "close"}, []Param{
		P("code", List{"000001.XSHE", "600000.XSHG"}),
		P("start", Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))),
		P("end", RawDate("2024-01-31")),
		P("fq", nil),
		P("count", Int(5)),
	}, PlanOptions{})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}

	want := "/price/daily?ispandas=1&field=code,close&code=000001.XSHE,600000.XSHG&start=20240102&end=20240131&count=5"
	if len(plan.Queries) != 1 {
		t.Fatalf("len(Queries) = %d, want 1", len(plan.Queries))
	}
	if plan.Queries[0] != want {
		t.Errorf("Queries[0] = %q, want %q", plan.Queries[0], want)
	}
	if plan.Batched() {
		t.Error("Batched() = true, want false")
	}
	if len(plan.Signature) != 4 {
		t.Errorf("len(Signature) = %d, want 4", len(plan.Signature))
	}
}

func TestBuildPlan_Batched(t *testing.T) {
	codes := makeSeq(250)

	plan, err := BuildPlan("/price/daily", []string{"code"}, []Param{
		P("date", RawDate("2024-01-31")),
		P("code", List(codes)),
		P("fq", Scalar("pre")),
	}, PlanOptions{BatchSize: 100})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}

	if !plan.Batched() || plan.BatchParam != "code" {
		t.Fatalf("BatchParam = %q, want %q", plan.BatchParam, "code")
	}
	if len(plan.Queries) != 3 {
		t.Fatalf("len(Queries) = %d, want 3", len(plan.Queries))
	}

	for i, q := range plan.Queries {
		if !strings.HasPrefix(q, "/price/daily?ispandas=1&field=code&date=20240131&code=") {
			t.Errorf("Queries[%d] has unexpected prefix: %q", i, q)
		}
		if !strings.HasSuffix(q, "&fq=pre") {
			t.Errorf("Queries[%d] has unexpected suffix: %q", i, q)
		}
	}

	var recovered []string
	for _, q := range plan.Queries {
		fragment := strings.TrimSuffix(q[strings.Index(q, "&code=")+len("&code="):], "&fq=pre")
		items, err := DecodeList(fragment)
		if err != nil {
			t.Fatalf("DecodeList() error = %v", err)
		}
		recovered = append(recovered, items...)
	}
	if !reflect.DeepEqual(recovered, codes) {
		t.Error("batched chunks do not reassemble into the original list")
	}
}

func TestBuildPlan_MultipleOversized(t *testing.T) {
	params := []Param{
		P("code", List(makeSeq(150))),
		P("other", List(makeSeq(120))),
	}

	plan, err := BuildPlan("/x", nil, params, PlanOptions{})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if plan.BatchParam != "code" {
		t.Errorf("BatchParam = %q, want %q", plan.BatchParam, "code")
	}
	if len(plan.Queries) != 2 {
		t.Fatalf("len(Queries) = %d, want 2", len(plan.Queries))
	}
	full := "&other=" + strings.Join(makeSeq(120), ",")
	for i, q := range plan.Queries {
		if !strings.HasSuffix(q, full) {
			t.Errorf("Queries[%d] does not carry the full second list", i)
		}
	}

	_, err = BuildPlan("/x", nil, params, PlanOptions{Strict: true})
	if !errors.Is(err, ErrMultipleBatchParams) {
		t.Errorf("strict BuildPlan() error = %v, want ErrMultipleBatchParams", err)
	}
}
