package tool

import (
	"context"
	"encoding/json"
	"sync"
)

type (
	CallData struct {
		Name      string `json:"name"`
		Arguments any    `json:"arguments"`
		Result    any    `json:"result"`
	}

	callDataStore struct {
		mtx  sync.Mutex
		data []CallData
	}

	callDataCtxKey struct{}
)

// WithEmptyCallDataStore starts recording tool calls made under ctx.
func WithEmptyCallDataStore(ctx context.Context) context.Context {
	return context.WithValue(ctx, callDataCtxKey{}, &callDataStore{})
}

func GetCallData(ctx context.Context) []CallData {
	store, ok := ctx.Value(callDataCtxKey{}).(*callDataStore)
	if !ok {
		return nil
	}

	store.mtx.Lock()
	defer store.mtx.Unlock()

	data := make([]CallData, len(store.data))
	copy(data, store.data)
	return data
}

func appendCallData(ctx context.Context, data CallData) {
	store, ok := ctx.Value(callDataCtxKey{}).(*callDataStore)
	if !ok {
		return
	}

	store.mtx.Lock()
	defer store.mtx.Unlock()
	store.data = append(store.data, data)
}

// IsErrorResult reports whether a serialized tool result is an error record,
// either {"error": ...} or [{"error": ...}].
func IsErrorResult(raw json.RawMessage) bool {
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Error != ""
	}

	var list []struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list) == 1 && list[0].Error != ""
	}

	return false
}

// IsError reports whether the recorded result is an error record.
func (c CallData) IsError() bool {
	raw, err := json.Marshal(c.Result)
	if err != nil {
		return false
	}
	return IsErrorResult(raw)
}
