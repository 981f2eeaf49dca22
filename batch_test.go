package objectstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/transport"
)

func makeItems(n int) []storetypes.UploadItem {
	items := make([]storetypes.UploadItem, n)
	for i := range items {
		items[i] = storetypes.UploadItem{
			Key:  fmt.Sprintf("batch/item-%02d.json", i),
			Body: strings.NewReader(fmt.Sprintf(`{"n":%d}`, i)),
		}
	}
	return items
}

func outcomeKeys(outcome storetypes.BatchOutcome) []string {
	keys := make([]string, 0, len(outcome))
	for _, o := range outcome {
		keys = append(keys, o.Key)
	}
	return keys
}

// TestClient_AddBatch tests outcome cardinality and per-item results.
func TestClient_AddBatch(t *testing.T) {
	tests := []struct {
		name       string
		items      int
		failKeys   map[string]bool
		wantFailed int
	}{
		{name: "empty batch", items: 0},
		{name: "single item", items: 1},
		{name: "full batch", items: 12},
		{
			name:       "failures do not stop the batch",
			items:      6,
			failKeys:   map[string]bool{"batch/item-01.json": true, "batch/item-04.json": true},
			wantFailed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newTestClient(t, storetypes.Config{Region: "eu-west-1", UploadConcurrency: 3})
			fake.PutFunc = func(_ context.Context, in *transport.PutInput) (*transport.PutOutput, error) {
				if tt.failKeys[in.Key] {
					return &transport.PutOutput{StatusCode: http.StatusInternalServerError}, nil
				}
				return &transport.PutOutput{StatusCode: http.StatusOK}, nil
			}
			items := makeItems(tt.items)

			outcome := client.AddBatch(context.Background(), "media", items)

			require.Len(t, outcome, tt.items)
			assert.Equal(t, tt.items, fake.CallCount())
			assert.Len(t, outcome.Failed(), tt.wantFailed)

			want := make([]string, 0, len(items))
			for _, item := range items {
				want = append(want, item.Key)
			}
			assert.ElementsMatch(t, want, outcomeKeys(outcome))

			for _, o := range outcome {
				if tt.failKeys[o.Key] {
					assert.Equal(t, errors.KindStatus, errors.KindOf(o.Err))
					assert.Contains(t, o.Err.Error(), o.Key)
					assert.Empty(t, o.URL)
					continue
				}
				require.True(t, o.OK())
				assert.Equal(t, "https://s3.eu-west-1.amazonaws.com/media/"+o.Key, o.URL)
			}
		})
	}
}

// TestClient_AddBatch_Concurrency tests the in-flight ceiling.
func TestClient_AddBatch_Concurrency(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{UploadConcurrency: 3})
	fake.PutFunc = func(context.Context, *transport.PutInput) (*transport.PutOutput, error) {
		time.Sleep(10 * time.Millisecond)
		return &transport.PutOutput{StatusCode: http.StatusOK}, nil
	}

	outcome := client.AddBatch(context.Background(), "media", makeItems(20))

	require.Len(t, outcome, 20)
	assert.Empty(t, outcome.Failed())
	assert.Equal(t, 3, fake.MaxInFlight())
}

// TestClient_AddBatch_Sequential tests that concurrency 1 uploads one at a time.
func TestClient_AddBatch_Sequential(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{UploadConcurrency: 1})

	outcome := client.AddBatch(context.Background(), "media", makeItems(5))

	require.Len(t, outcome, 5)
	assert.Equal(t, 1, fake.MaxInFlight())
	assert.Equal(t, []string{
		"batch/item-00.json",
		"batch/item-01.json",
		"batch/item-02.json",
		"batch/item-03.json",
		"batch/item-04.json",
	}, outcomeKeys(outcome))
}

// TestClient_AddBatch_CompletionOrder tests that outcomes arrive as uploads finish.
func TestClient_AddBatch_CompletionOrder(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{UploadConcurrency: 2})

	release := make(chan struct{})
	fake.PutFunc = func(_ context.Context, in *transport.PutInput) (*transport.PutOutput, error) {
		if in.Key == "slow.json" {
			<-release
		}
		return &transport.PutOutput{StatusCode: http.StatusOK}, nil
	}

	items := []storetypes.UploadItem{
		{Key: "slow.json", Body: strings.NewReader("{}")},
		{Key: "fast.json", Body: strings.NewReader("{}")},
	}

	var outcome storetypes.BatchOutcome
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		outcome = client.AddBatch(context.Background(), "media", items)
	}()

	require.Eventually(t, func() bool {
		for _, c := range fake.Calls() {
			if c.Key == "fast.json" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
	// let the fast outcome land first
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, []string{"fast.json", "slow.json"}, outcomeKeys(outcome))
}

// TestClient_AddBatch_Limit tests that oversized batches are rejected whole.
func TestClient_AddBatch_Limit(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{MaxBatchSize: 2})

	outcome := client.AddBatch(context.Background(), "media", makeItems(3))

	require.Len(t, outcome, 1)
	assert.False(t, outcome[0].OK())
	assert.Equal(t, errors.KindBatchLimit, errors.KindOf(outcome[0].Err))
	assert.True(t, errors.IsBatchTooLarge(outcome[0].Err))
	assert.Contains(t, outcome[0].Err.Error(), "3 items exceeds the limit of 2")
	assert.Zero(t, fake.CallCount())
}

// TestClient_AddBatch_AtLimit tests that a batch of exactly MaxBatchSize is accepted.
func TestClient_AddBatch_AtLimit(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{MaxBatchSize: 2})

	outcome := client.AddBatch(context.Background(), "media", makeItems(2))

	assert.Len(t, outcome, 2)
	assert.Empty(t, outcome.Failed())
	assert.Equal(t, 2, fake.CallCount())
}

// TestClient_AddBatch_Cancellation tests that a done context fails pending items.
func TestClient_AddBatch_Cancellation(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{UploadConcurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake.PutFunc = func(context.Context, *transport.PutInput) (*transport.PutOutput, error) {
		cancel()
		return &transport.PutOutput{StatusCode: http.StatusOK}, nil
	}

	outcome := client.AddBatch(ctx, "media", makeItems(4))

	require.Len(t, outcome, 4)
	assert.Equal(t, 1, fake.CallCount())

	var canceled int
	for _, o := range outcome {
		if o.OK() {
			assert.Equal(t, "batch/item-00.json", o.Key)
			continue
		}
		canceled++
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.Equal(t, errors.KindTransport, errors.KindOf(o.Err))
	}
	assert.Equal(t, 3, canceled)
}

// TestClient_AddBatch_InvalidItems tests that invalid items fail individually.
func TestClient_AddBatch_InvalidItems(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{})

	outcome := client.AddBatch(context.Background(), "media", []storetypes.UploadItem{
		{Key: "good.json", Body: strings.NewReader("{}")},
		{Key: "", Body: strings.NewReader("{}")},
		{Key: "nil-body.json"},
	})

	require.Len(t, outcome, 3)
	assert.Len(t, outcome.Failed(), 2)
	assert.Equal(t, 1, fake.CallCount())
	for _, o := range outcome.Failed() {
		assert.Equal(t, errors.KindInvalidInput, errors.KindOf(o.Err))
	}
}

// TestClient_AddBatch_TransportErrors tests that transport failures are per item.
func TestClient_AddBatch_TransportErrors(t *testing.T) {
	client, fake := newTestClient(t, storetypes.Config{UploadConcurrency: 4})
	fake.PutFunc = func(context.Context, *transport.PutInput) (*transport.PutOutput, error) {
		return nil, stderrors.New("connection reset")
	}

	outcome := client.AddBatch(context.Background(), "media", makeItems(8))

	require.Len(t, outcome, 8)
	assert.Len(t, outcome.Failed(), 8)
	for _, o := range outcome {
		assert.Contains(t, o.Err.Error(), o.Key)
	}
}
