package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	storeerrors "github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/transport"
)

// FakeTransport is an in-memory transport.Transport that records every call
// and the highest number of calls it saw in flight at once.
//
// Without hooks it behaves like a well-behaved bucket store: puts are stored,
// gets return stored bodies, deletes remove them. Setting a *Func field
// replaces the default behavior for that operation; call accounting still
// applies.
type FakeTransport struct {
	PutFunc           func(context.Context, *transport.PutInput) (*transport.PutOutput, error)
	GetFunc           func(context.Context, *transport.GetInput) (*transport.GetOutput, error)
	DeleteFunc        func(context.Context, *transport.DeleteInput) (*transport.DeleteOutput, error)
	DeleteObjectsFunc func(context.Context, *transport.DeleteObjectsInput) (*transport.DeleteObjectsOutput, error)

	mu          sync.Mutex
	objects     map[string][]byte
	types       map[string]string
	calls       []Call
	inFlight    int
	maxInFlight int
}

// Call records one transport invocation.
type Call struct {
	Op     string
	Bucket string
	Key    string
	Keys   []string
	ACL    string
	Type   string
}

// NewFakeTransport returns an empty FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{objects: make(map[string][]byte), types: make(map[string]string)}
}

// Seed stores an object without recording a call.
func (f *FakeTransport) Seed(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.objects[bucket+"/"+key] = data
}

// Object returns a stored object.
func (f *FakeTransport) Object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	return data, ok
}

// Calls returns a copy of the recorded calls in arrival order.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns the number of recorded calls.
func (f *FakeTransport) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// MaxInFlight returns the highest number of concurrent calls observed.
func (f *FakeTransport) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// PutObject implements transport.Transport.
func (f *FakeTransport) PutObject(ctx context.Context, in *transport.PutInput) (*transport.PutOutput, error) {
	f.enter(Call{Op: "put", Bucket: in.Bucket, Key: in.Key, ACL: string(in.ACL), Type: in.ContentType})
	defer f.leave()

	if f.PutFunc != nil {
		return f.PutFunc(ctx, in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.Seed(in.Bucket, in.Key, data)
	f.mu.Lock()
	f.types[in.Bucket+"/"+in.Key] = in.ContentType
	f.mu.Unlock()
	return &transport.PutOutput{StatusCode: http.StatusOK, ContentLength: int64(len(data))}, nil
}

// GetObject implements transport.Transport.
func (f *FakeTransport) GetObject(ctx context.Context, in *transport.GetInput) (*transport.GetOutput, error) {
	f.enter(Call{Op: "get", Bucket: in.Bucket, Key: in.Key})
	defer f.leave()

	if f.GetFunc != nil {
		return f.GetFunc(ctx, in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := f.Object(in.Bucket, in.Key)
	if !ok {
		return nil, fmt.Errorf("%w: NoSuchKey", storeerrors.ErrObjectNotFound)
	}
	f.mu.Lock()
	contentType := f.types[in.Bucket+"/"+in.Key]
	f.mu.Unlock()
	return &transport.GetOutput{
		StatusCode:    http.StatusOK,
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		ContentType:   contentType,
	}, nil
}

// DeleteObject implements transport.Transport.
func (f *FakeTransport) DeleteObject(ctx context.Context, in *transport.DeleteInput) (*transport.DeleteOutput, error) {
	f.enter(Call{Op: "delete", Bucket: in.Bucket, Key: in.Key})
	defer f.leave()

	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.remove(in.Bucket, in.Key)
	return &transport.DeleteOutput{StatusCode: http.StatusNoContent}, nil
}

// DeleteObjects implements transport.Transport.
func (f *FakeTransport) DeleteObjects(
	ctx context.Context,
	in *transport.DeleteObjectsInput,
) (*transport.DeleteObjectsOutput, error) {
	f.enter(Call{Op: "deleteObjects", Bucket: in.Bucket, Keys: append([]string(nil), in.Keys...)})
	defer f.leave()

	if f.DeleteObjectsFunc != nil {
		return f.DeleteObjectsFunc(ctx, in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := &transport.DeleteObjectsOutput{StatusCode: http.StatusOK}
	for _, key := range in.Keys {
		f.remove(in.Bucket, key)
		out.Deleted = append(out.Deleted, key)
	}
	return out, nil
}

func (f *FakeTransport) enter(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
}

func (f *FakeTransport) leave() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
}

func (f *FakeTransport) remove(bucket, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	delete(f.types, bucket+"/"+key)
}

// ensure lazily allocates the object map so a zero FakeTransport works.
func (f *FakeTransport) ensure() {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	if f.types == nil {
		f.types = make(map[string]string)
	}
}

var _ transport.Transport = (*FakeTransport)(nil)
