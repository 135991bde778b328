package predictctl

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/status"

	"predictord/internal/model"
	"predictord/internal/tensor"
	"predictord/pkg/types"
)

// referenceTolerance bounds the per-value difference, relative to the
// expected magnitude, between a served result and the local reference.
const referenceTolerance = 1e-4

// LoadOptions shapes a predict run.
type LoadOptions struct {
	Count       int
	Concurrency int
	Rows        int
	Seed        int64
	Weights     bool
	// Timeout bounds each request; zero means none.
	Timeout time.Duration
	// Reference is a local copy of the served model. When set, every result
	// is compared value by value with the reference's answer to the same
	// request. Without it only ids and output shapes are checked.
	Reference model.Handle
}

// Summary aggregates a predict run.
type Summary struct {
	Sent     int
	OK       int
	Mismatch int
	Errors   map[string]int
	Elapsed  time.Duration
	P50      time.Duration
	P99      time.Duration
	Max      time.Duration
}

// Failed returns the number of requests that did not succeed.
func (s *Summary) Failed() int { return s.Sent - s.OK }

func (s *Summary) Write(w io.Writer) {
	rate := 0.0
	if s.Elapsed > 0 {
		rate = float64(s.Sent) / s.Elapsed.Seconds()
	}
	fmt.Fprintf(w, "sent=%d ok=%d failed=%d elapsed=%s rate=%.1f/s\n", s.Sent, s.OK, s.Failed(), s.Elapsed.Round(time.Millisecond), rate)
	fmt.Fprintf(w, "latency p50=%s p99=%s max=%s\n", s.P50, s.P99, s.Max)
	if s.Mismatch > 0 {
		fmt.Fprintf(w, "mismatched results: %d\n", s.Mismatch)
	}
	codes := make([]string, 0, len(s.Errors))
	for c := range s.Errors {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "error %s: %d\n", c, s.Errors[c])
	}
}

// runLoad sends o.Count generated requests with at most o.Concurrency in
// flight and checks every result against its request (and against
// o.Reference when set).
func runLoad(ctx context.Context, b backend, sig types.Signature, o LoadOptions) (*Summary, error) {
	if o.Count <= 0 {
		return nil, fmt.Errorf("count must be > 0")
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Rows <= 0 {
		o.Rows = 1
	}
	gen := model.NewRequestGenerator(sig, o.Seed)
	if o.Weights {
		gen = gen.WithWeights()
	}
	reqs := make([]types.PredictionRequest, o.Count)
	for i := range reqs {
		reqs[i] = gen.Next("req-"+strconv.Itoa(i), o.Rows)
	}
	var want [][]types.Tensor
	if o.Reference != nil {
		var err error
		if want, err = referenceOutputs(ctx, o.Reference, reqs); err != nil {
			return nil, fmt.Errorf("reference model: %w", err)
		}
	}

	sum := &Summary{Errors: map[string]int{}}
	lat := make([]time.Duration, 0, o.Count)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	start := time.Now()
	for i, req := range reqs {
		var expect []types.Tensor
		if want != nil {
			expect = want[i]
		}
		g.Go(func() error {
			rctx, cancel := gctx, context.CancelFunc(func() {})
			if o.Timeout > 0 {
				rctx, cancel = context.WithTimeout(gctx, o.Timeout)
			}
			t0 := time.Now()
			res, err := b.Predict(rctx, req)
			d := time.Since(t0)
			cancel()

			mu.Lock()
			defer mu.Unlock()
			sum.Sent++
			lat = append(lat, d)
			switch {
			case err != nil || res == nil || res.Status != types.StatusOK:
				sum.Errors[errCode(res, err)]++
				logger.Debug().Str("id", req.ID).Err(err).Msg("predict failed")
			case !matches(req, res, sig, expect):
				sum.Mismatch++
				sum.Errors["mismatch"]++
			default:
				sum.OK++
			}
			return nil
		})
	}
	_ = g.Wait()
	sum.Elapsed = time.Since(start)

	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
	if n := len(lat); n > 0 {
		sum.P50 = lat[(n-1)/2]
		sum.P99 = lat[(n-1)*99/100]
		sum.Max = lat[n-1]
	}
	return sum, ctx.Err()
}

// referenceOutputs answers every request locally, one request per batch.
func referenceOutputs(ctx context.Context, ref model.Handle, reqs []types.PredictionRequest) ([][]types.Tensor, error) {
	out := make([][]types.Tensor, len(reqs))
	for i, req := range reqs {
		batch, err := tensor.Concat([]types.PredictionRequest{req})
		if err != nil {
			return nil, err
		}
		res, err := ref.Execute(ctx, batch)
		if err != nil {
			return nil, err
		}
		out[i] = res.Tensors
	}
	return out, nil
}

// matches reports whether res answers req: same id and one row per request
// row in every declared output. When want is non-nil every value must also
// agree with it, which catches rows delivered to the wrong caller.
func matches(req types.PredictionRequest, res *types.PredictionResult, sig types.Signature, want []types.Tensor) bool {
	if res.ID != req.ID || len(res.Outputs) != len(sig.Outputs) {
		return false
	}
	for i, out := range res.Outputs {
		if len(out.Values) != req.Rows()*sig.Outputs[i].Dim {
			return false
		}
	}
	if want == nil {
		return true
	}
	if len(want) != len(res.Outputs) {
		return false
	}
	for i, out := range res.Outputs {
		if len(want[i].Values) != len(out.Values) {
			return false
		}
		for j, v := range out.Values {
			w := float64(want[i].Values[j])
			if math.Abs(float64(v)-w) > referenceTolerance*(1+math.Abs(w)) {
				return false
			}
		}
	}
	return true
}

func errCode(res *types.PredictionResult, err error) string {
	if res != nil && res.Code != "" {
		return res.Code
	}
	if err == nil {
		return "error"
	}
	if s, ok := status.FromError(err); ok {
		return strings.ToLower(s.Code().String())
	}
	if he, ok := err.(*httpError); ok {
		return "http_" + strconv.Itoa(he.Status)
	}
	return "transport"
}
