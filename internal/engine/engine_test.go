package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"predictord/pkg/types"
)

func TestEveryRequestGetsItsOwnRows(t *testing.T) {
	fx := &fakeExecutor{maxConc: 2}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 8, MaxWait: time.Millisecond})
	e.Start()

	const n = 200
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			id := fmt.Sprintf("r%d", i)
			res, err := e.Predict(ctx, markerRequest(id, float32(i)))
			if err != nil {
				errs <- fmt.Errorf("%s: %v", id, err)
				return
			}
			if res.ID != id || len(res.Outputs) != 1 || len(res.Outputs[0].Values) != 1 || res.Outputs[0].Values[0] != float32(2*i) {
				errs <- fmt.Errorf("%s: wrong result %+v", id, res)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	st := e.Status()
	if st.SucceededTotal != n || st.FailedTotal != 0 {
		t.Fatalf("status counts: %+v", st)
	}
	if st.Outstanding != 0 || st.Pending != 0 {
		t.Fatalf("expected drained engine, got outstanding=%d pending=%d", st.Outstanding, st.Pending)
	}
	total := 0
	for _, s := range fx.batchSizes() {
		if s > 8 {
			t.Fatalf("batch of %d exceeds cap", s)
		}
		total += s
	}
	if total != n {
		t.Fatalf("executed %d requests, want %d", total, n)
	}
}

func TestBatchSizeCap(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 4, MaxWait: 30 * time.Millisecond, Dispatchers: 1})
	var fs []*Future
	for i := 0; i < 10; i++ {
		fs = append(fs, mustEnqueue(t, e, markerRequest(fmt.Sprint(i), float32(i))))
	}
	e.Start()
	for i, f := range fs {
		res, err := waitResult(t, f)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		expectValues(t, res, float32(2*i))
	}
	got := fx.batchSizes()
	want := []int{4, 4, 2}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("batch sizes: got %v want %v", got, want)
	}
}

func TestTimeFlushesUndersizedBatch(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 64, MaxWait: 30 * time.Millisecond})
	e.Start()

	start := time.Now()
	res, err := waitResult(t, mustEnqueue(t, e, markerRequest("solo", 21)))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	expectValues(t, res, 42)
	if elapsed < 30*time.Millisecond {
		t.Fatalf("batch dispatched after %v, before max wait", elapsed)
	}
	if got := fx.batchSizes(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("batch sizes: %v", got)
	}
}

func TestBatchFailureFailsEveryMember(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1, failNext: 1}
	pub := NewMemoryPublisher()
	e := newTestEngine(t, fx, Config{MaxBatchSize: 3, MaxWait: 20 * time.Millisecond, Dispatchers: 1, Publisher: pub})
	fs := []*Future{
		mustEnqueue(t, e, markerRequest("a", 1)),
		mustEnqueue(t, e, markerRequest("b", 2)),
		mustEnqueue(t, e, markerRequest("c", 3)),
	}
	e.Start()

	var first *ExecutionError
	for _, f := range fs {
		res, err := waitResult(t, f)
		var xerr *ExecutionError
		if !errors.As(err, &xerr) {
			t.Fatalf("expected ExecutionError, got %v", err)
		}
		if first == nil {
			first = xerr
		} else if xerr != first {
			t.Fatalf("members received different errors: %v vs %v", xerr, first)
		}
		if res.Status != types.StatusError || res.Code != "execution_error" || res.ID != f.ID() {
			t.Fatalf("unexpected failed result: %+v", res)
		}
	}
	if first.Size != 3 {
		t.Fatalf("error size: %d", first.Size)
	}

	// The loop keeps serving after a failed batch.
	res, err := waitResult(t, mustEnqueue(t, e, markerRequest("d", 4)))
	if err != nil {
		t.Fatalf("request after failure: %v", err)
	}
	expectValues(t, res, 8)
	if pub.Count(EventBatchFailed) != 1 || pub.Count(EventBatchExecuted) != 1 {
		t.Fatalf("events: %+v", pub.Events())
	}
	if e.Status().LastError == "" {
		t.Fatalf("expected last error in status")
	}
}

func TestGateSerializesExecutions(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1, delay: 10 * time.Millisecond}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 1, Dispatchers: 5})
	var fs []*Future
	for i := 0; i < 5; i++ {
		fs = append(fs, mustEnqueue(t, e, markerRequest(fmt.Sprint(i), float32(i))))
	}
	e.Start()
	for _, f := range fs {
		if _, err := waitResult(t, f); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if got := fx.calls.Load(); got != 5 {
		t.Fatalf("calls: %d", got)
	}
	if got := fx.peak.Load(); got != 1 {
		t.Fatalf("peak concurrent executions %d, want 1", got)
	}
}

func TestGateBoundsToDeclaredConcurrency(t *testing.T) {
	cases := []struct {
		name     string
		declared int
		override int
		want     int64
	}{
		{"declared", 3, 0, 3},
		{"lowered", 4, 1, 1},
		{"override above declared ignored", 2, 8, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := &fakeExecutor{maxConc: tc.declared, delay: 15 * time.Millisecond}
			e := newTestEngine(t, fx, Config{MaxBatchSize: 1, Dispatchers: 8, MaxConcurrency: tc.override})
			var fs []*Future
			for i := 0; i < 12; i++ {
				fs = append(fs, mustEnqueue(t, e, markerRequest(fmt.Sprint(i), 1)))
			}
			e.Start()
			for _, f := range fs {
				if _, err := waitResult(t, f); err != nil {
					t.Fatalf("Wait: %v", err)
				}
			}
			if got := fx.peak.Load(); got > tc.want {
				t.Fatalf("peak %d exceeds limit %d", got, tc.want)
			}
			if got := e.Status().Batching.MaxConcurrency; int64(got) != tc.want {
				t.Fatalf("reported concurrency %d, want %d", got, tc.want)
			}
		})
	}
}

func TestShutdownFlushesPending(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	pub := NewMemoryPublisher()
	e := newTestEngine(t, fx, Config{MaxBatchSize: 64, MaxWait: time.Hour, Publisher: pub})
	e.Start()
	a := mustEnqueue(t, e, markerRequest("a", 1))
	b := mustEnqueue(t, e, markerRequest("b", 2))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	ra, err := waitResult(t, a)
	if err != nil {
		t.Fatalf("a: %v", err)
	}
	expectValues(t, ra, 2)
	rb, err := waitResult(t, b)
	if err != nil {
		t.Fatalf("b: %v", err)
	}
	expectValues(t, rb, 4)
	if got := fx.batchSizes(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected one flushed batch of 2, got %v", got)
	}

	if _, err := e.Enqueue(markerRequest("late", 3)); !IsShuttingDown(err) {
		t.Fatalf("expected ErrShuttingDown, got %v", err)
	}
	if e.State() != StateStopped || e.Ready() {
		t.Fatalf("state after shutdown: %s", e.State())
	}
	if pub.Count(EventDraining) != 1 || pub.Count(EventStopped) != 1 {
		t.Fatalf("events: %+v", pub.Events())
	}
}

func TestShutdownDeadlineFailsQueuedRequests(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1, block: make(chan struct{}), started: make(chan struct{}, 8)}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 1, Dispatchers: 1})
	e.Start()
	a := mustEnqueue(t, e, markerRequest("a", 1))
	<-fx.started
	b := mustEnqueue(t, e, markerRequest("b", 2))
	c := mustEnqueue(t, e, markerRequest("c", 3))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := e.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	for _, f := range []*Future{b, c} {
		if _, err := waitResult(t, f); !IsShuttingDown(err) {
			t.Fatalf("%s: expected ErrShuttingDown, got %v", f.ID(), err)
		}
	}
	close(fx.block)
	res, err := waitResult(t, a)
	if err != nil {
		t.Fatalf("in-flight request: %v", err)
	}
	expectValues(t, res, 2)
}

func TestShutdownWithoutStartFailsQueued(t *testing.T) {
	e := newTestEngine(t, &fakeExecutor{maxConc: 1}, Config{})
	f := mustEnqueue(t, e, markerRequest("a", 1))
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, err := waitResult(t, f); !IsShuttingDown(err) {
		t.Fatalf("expected ErrShuttingDown, got %v", err)
	}
}

func TestWaitWithdrawsPendingRequest(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	e := newTestEngine(t, fx, Config{MaxWait: time.Hour})
	f := mustEnqueue(t, e, markerRequest("a", 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := f.Wait(ctx)
	if !IsTimeout(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if res.Code != "timeout" {
		t.Fatalf("result code: %q", res.Code)
	}
	st := e.Status()
	if st.Pending != 0 || st.Outstanding != 0 {
		t.Fatalf("withdrawn request still counted: %+v", st)
	}

	e.Start()
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if fx.calls.Load() != 0 {
		t.Fatalf("withdrawn request was executed")
	}
}

func TestWaitAbandonsClaimedRequest(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1, block: make(chan struct{}), started: make(chan struct{}, 1)}
	pub := NewMemoryPublisher()
	e := newTestEngine(t, fx, Config{MaxBatchSize: 1, Publisher: pub})
	e.Start()
	f := mustEnqueue(t, e, markerRequest("a", 1))
	<-fx.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if pub.Count(EventRequestAbandoned) != 1 {
		t.Fatalf("expected abandon event, got %+v", pub.Events())
	}
	if e.Status().Outstanding != 1 {
		t.Fatalf("claimed request should stay outstanding until execution ends")
	}

	close(fx.block)
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("execution never completed")
	}
	if e.Status().Outstanding != 0 {
		t.Fatalf("outstanding not released")
	}
}

func TestQueueTimeoutExpiresWaitingRequests(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1, block: make(chan struct{}), started: make(chan struct{}, 4)}
	pub := NewMemoryPublisher()
	e := newTestEngine(t, fx, Config{MaxBatchSize: 1, Dispatchers: 1, QueueTimeout: 20 * time.Millisecond, Publisher: pub})
	e.Start()
	a := mustEnqueue(t, e, markerRequest("a", 1))
	<-fx.started
	b := mustEnqueue(t, e, markerRequest("b", 2))
	time.Sleep(50 * time.Millisecond)
	close(fx.block)

	if _, err := waitResult(t, a); err != nil {
		t.Fatalf("a: %v", err)
	}
	if _, err := waitResult(t, b); !IsTimeout(err) {
		t.Fatalf("expected queue timeout, got %v", err)
	}
	if fx.calls.Load() != 1 {
		t.Fatalf("expired request executed")
	}
	if pub.Count(EventRequestExpired) != 1 {
		t.Fatalf("events: %+v", pub.Events())
	}
}

func TestQueueTimeoutFiresWhileIdle(t *testing.T) {
	// b sits in the queue while the only dispatcher is stuck on a. No further
	// arrivals wake the assembler; b must still expire once a dispatcher looks.
	fx := &fakeExecutor{maxConc: 1, block: make(chan struct{}), started: make(chan struct{}, 4)}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 1, Dispatchers: 1, MaxWait: 5 * time.Millisecond, QueueTimeout: 30 * time.Millisecond})
	e.Start()
	a := mustEnqueue(t, e, markerRequest("a", 1))
	<-fx.started
	b := mustEnqueue(t, e, markerRequest("b", 2))
	time.Sleep(80 * time.Millisecond)
	close(fx.block)

	if _, err := waitResult(t, a); err != nil {
		t.Fatalf("a: %v", err)
	}
	if _, err := waitResult(t, b); !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if fx.calls.Load() != 1 {
		t.Fatalf("expired request executed")
	}
}

func TestQueueTimeoutBelowMaxWaitIsRaised(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 8, MaxWait: 50 * time.Millisecond, QueueTimeout: 10 * time.Millisecond})
	if got := e.Status().Batching.QueueTimeoutMS; got != 50 {
		t.Fatalf("queue timeout ms = %v, want 50", got)
	}
	e.Start()
	f := mustEnqueue(t, e, markerRequest("lone", 3))
	res, err := waitResult(t, f)
	if err != nil {
		t.Fatalf("lone request should flush at MaxWait, got %v", err)
	}
	if got := res.Outputs[0].Values; len(got) != 1 || got[0] != 6 {
		t.Fatalf("outputs: %v", got)
	}
	if fx.calls.Load() != 1 {
		t.Fatalf("calls = %d", fx.calls.Load())
	}
}

func TestRowCapAndMultiRowDemux(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 64, MaxBatchRows: 4, MaxWait: 10 * time.Millisecond, Dispatchers: 1})
	reqs := []types.PredictionRequest{
		markerRequest("a", 1, 2, 3),
		markerRequest("b", 4, 5, 6),
		markerRequest("c", 7, 8, 9, 10, 11, 12),
		markerRequest("d", 13),
	}
	var fs []*Future
	for _, r := range reqs {
		fs = append(fs, mustEnqueue(t, e, r))
	}
	e.Start()
	for i, f := range fs {
		res, err := waitResult(t, f)
		if err != nil {
			t.Fatalf("%s: %v", f.ID(), err)
		}
		in := reqs[i].Inputs[0].Values
		want := make([]float32, len(in))
		for j, v := range in {
			want[j] = 2 * v
		}
		expectValues(t, res, want...)
	}
	if got := fmt.Sprint(fx.batchRows()); got != "[3 3 6 1]" {
		t.Fatalf("batch rows: %s", got)
	}
}

func TestMultiRowRequestsShareABatch(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 3, MaxWait: time.Hour, Dispatchers: 1})
	a := mustEnqueue(t, e, markerRequest("a", 1, 2))
	b := mustEnqueue(t, e, markerRequest("b", 3))
	c := mustEnqueue(t, e, markerRequest("c", 4, 5, 6))
	e.Start()
	for f, want := range map[*Future][]float32{a: {2, 4}, b: {6}, c: {8, 10, 12}} {
		res, err := waitResult(t, f)
		if err != nil {
			t.Fatalf("%s: %v", f.ID(), err)
		}
		expectValues(t, res, want...)
	}
	if got := fmt.Sprint(fx.batchRows()); got != "[6]" {
		t.Fatalf("batch rows: %s", got)
	}
}

func TestInvalidRequestIsRejectedAlone(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1}
	pub := NewMemoryPublisher()
	e := newTestEngine(t, fx, Config{MaxBatchSize: 2, MaxWait: 10 * time.Millisecond, Publisher: pub})
	e.Start()

	bad := types.PredictionRequest{ID: "bad", Inputs: []types.Tensor{{Name: "z", Kind: types.KindDense, Dim: 1, Values: []float32{1}}}}
	_, err := e.Enqueue(bad)
	if !IsInvalidRequest(err) || !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	res, err := e.Predict(context.Background(), bad)
	if res == nil || res.Code != "invalid_request" || err == nil {
		t.Fatalf("Predict on invalid request: %+v %v", res, err)
	}

	good, err := waitResult(t, mustEnqueue(t, e, markerRequest("good", 5)))
	if err != nil {
		t.Fatalf("good: %v", err)
	}
	expectValues(t, good, 10)
	if st := e.Status(); st.RejectedTotal != 2 || st.SucceededTotal != 1 {
		t.Fatalf("status: %+v", st)
	}
	if pub.Count(EventRequestRejected) != 2 {
		t.Fatalf("events: %+v", pub.Events())
	}
}

func TestPanicInModelFailsBatchOnly(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1, panicN: 1}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 1})
	e.Start()
	_, err := waitResult(t, mustEnqueue(t, e, markerRequest("a", 1)))
	if !IsExecutionError(err) || !strings.Contains(err.Error(), "panic") {
		t.Fatalf("expected execution error from panic, got %v", err)
	}
	res, err := waitResult(t, mustEnqueue(t, e, markerRequest("b", 2)))
	if err != nil {
		t.Fatalf("after panic: %v", err)
	}
	expectValues(t, res, 4)
	if e.Status().InflightExecutions != 0 {
		t.Fatalf("gate slot leaked after panic")
	}
}

func TestMalformedOutputFailsBatch(t *testing.T) {
	fx := &fakeExecutor{maxConc: 1, badRows: true}
	e := newTestEngine(t, fx, Config{MaxBatchSize: 2, MaxWait: time.Hour})
	a := mustEnqueue(t, e, markerRequest("a", 1))
	b := mustEnqueue(t, e, markerRequest("b", 2))
	e.Start()
	for _, f := range []*Future{a, b} {
		if _, err := waitResult(t, f); !IsExecutionError(err) {
			t.Fatalf("%s: expected execution error, got %v", f.ID(), err)
		}
	}
}

func TestCapacityExceeded(t *testing.T) {
	e := newTestEngine(t, &fakeExecutor{maxConc: 1}, Config{MaxOutstanding: 2, MaxWait: time.Hour})
	a := mustEnqueue(t, e, markerRequest("a", 1))
	mustEnqueue(t, e, markerRequest("b", 2))
	if _, err := e.Enqueue(markerRequest("c", 3)); !IsCapacityExceeded(err) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Wait(ctx); !IsTimeout(err) {
		t.Fatalf("expected withdraw, got %v", err)
	}
	mustEnqueue(t, e, markerRequest("d", 4))
}

func TestGeneratedRequestID(t *testing.T) {
	e := newTestEngine(t, &fakeExecutor{maxConc: 1}, Config{MaxWait: time.Millisecond})
	e.Start()
	f := mustEnqueue(t, e, markerRequest("", 1))
	if f.ID() == "" {
		t.Fatal("expected generated id")
	}
	res, err := waitResult(t, f)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.ID != f.ID() {
		t.Fatalf("result id %q, want %q", res.ID, f.ID())
	}
}

func TestStatusReportsPolicyAndState(t *testing.T) {
	e := newTestEngine(t, &fakeExecutor{maxConc: 3}, Config{})
	st := e.Status()
	if st.State != string(StateStarting) || e.Ready() {
		t.Fatalf("state before start: %s", st.State)
	}
	b := st.Batching
	if b.MaxBatchSize != defaultMaxBatchSize || b.MaxOutstanding != defaultMaxOutstanding || b.Dispatchers != 3 || b.MaxConcurrency != 3 {
		t.Fatalf("defaults: %+v", b)
	}
	if b.MaxWaitMS != 2 {
		t.Fatalf("max wait ms: %v", b.MaxWaitMS)
	}
	if st.Model.Name != "fake" {
		t.Fatalf("model: %+v", st.Model)
	}
	e.Start()
	if !e.Ready() {
		t.Fatal("expected ready after Start")
	}
}

func TestNewRejectsNilExecutor(t *testing.T) {
	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("expected error")
	}
}
