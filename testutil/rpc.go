package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// MockRPC is a json-rpc server answering with canned responses, either per method or in sequence.
type MockRPC struct {
	*httptest.Server

	mu        sync.Mutex
	byMethod  map[string][]string
	sequence  []string
	calls     []string
	callCount map[string]int
	stalled   map[string]bool
}

// bounds how long a stalled method holds its request
const maxStall = 10 * time.Second

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// MockJSONRPC answers requests with the responses in order, repeating the last one once exhausted.
func MockJSONRPC(t *testing.T, responses []string) (*MockRPC, func()) {
	return newMockRPC(t, nil, responses)
}

// MockJSONRPCMethods answers each method with its responses in order, repeating the last one once exhausted.
func MockJSONRPCMethods(t *testing.T, byMethod map[string][]string) (*MockRPC, func()) {
	return newMockRPC(t, byMethod, nil)
}

func newMockRPC(t *testing.T, byMethod map[string][]string, sequence []string) (*MockRPC, func()) {
	mock := &MockRPC{
		byMethod:  byMethod,
		sequence:  sequence,
		callCount: map[string]int{},
		stalled:   map[string]bool{},
	}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("could not read rpc request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("invalid rpc request %s: %v", string(body), err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if mock.isStalled(req.Method) {
			select {
			case <-r.Context().Done():
			case <-time.After(maxStall):
			}
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		response, ok := mock.respond(req.Method)
		if !ok {
			t.Errorf("unexpected rpc method %s", req.Method)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(withID(response, req.ID))
	}))
	return mock, mock.Server.Close
}

// Stall makes the server hold requests of a method without answering, like a node that hangs.
func (m *MockRPC) Stall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stalled[method] = true
}

func (m *MockRPC) isStalled(method string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stalled[method] {
		m.calls = append(m.calls, method)
		return true
	}
	return false
}

func (m *MockRPC) respond(method string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
	var responses []string
	index := m.callCount[method]
	if m.byMethod != nil {
		responses = m.byMethod[method]
		m.callCount[method]++
	} else {
		responses = m.sequence
		index = len(m.calls) - 1
	}
	if len(responses) == 0 {
		return "", false
	}
	if index >= len(responses) {
		index = len(responses) - 1
	}
	return responses[index], true
}

// Calls lists the methods requested so far, in order.
func (m *MockRPC) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

func (m *MockRPC) CallCount(method string) int {
	count := 0
	for _, call := range m.Calls() {
		if call == method {
			count++
		}
	}
	return count
}

// withID echoes the request id back, the response template carries a placeholder id.
func withID(response string, id json.RawMessage) []byte {
	var msg map[string]json.RawMessage
	if err := json.Unmarshal([]byte(response), &msg); err != nil || len(id) == 0 {
		return []byte(response)
	}
	if _, ok := msg["jsonrpc"]; !ok {
		return []byte(response)
	}
	msg["id"] = id
	bz, err := json.Marshal(msg)
	if err != nil {
		return []byte(response)
	}
	return bz
}
