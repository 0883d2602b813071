package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestHTTPGenerate(t *testing.T) {
	var gotPrompt, gotMethod, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != generatePath {
			http.NotFound(w, r)
			return
		}
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode("draft intro")
	}))
	defer srv.Close()

	p := NewHTTP("http", srv.URL+"/", time.Second)
	defer p.Close()

	got, err := p.Generate(context.Background(), "write an intro")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "draft intro" {
		t.Errorf("reply = %q", got)
	}
	if gotMethod != http.MethodPost || gotType != "application/json" || gotPrompt != "write an intro" {
		t.Errorf("request = %s %q prompt %q", gotMethod, gotType, gotPrompt)
	}
}

func TestDecodeReply(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"json string", `"hello"`, "hello"},
		{"response field", `{"response":"from response"}`, "from response"},
		{"content field", `{"content":"from content"}`, "from content"},
		{"text field", `{"text":"from text"}`, "from text"},
		{"plain body", "just text\n", "just text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := decodeReply([]byte(tc.payload)); got != tc.want {
				t.Errorf("decodeReply(%q) = %q, want %q", tc.payload, got, tc.want)
			}
		})
	}
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTP("http", srv.URL, time.Second)
	_, err := p.Generate(context.Background(), "x")

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Status != http.StatusBadGateway || se.Body != "upstream down" {
		t.Errorf("status error = %+v", se)
	}
}

func TestHTTPSuggestions(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"array", `["a","b"]`},
		{"wrapped", `{"suggestions":["a","b"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != suggestionsPath {
					http.NotFound(w, r)
					return
				}
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			got, err := NewHTTP("http", srv.URL, time.Second).Suggestions(context.Background())
			if err != nil {
				t.Fatalf("Suggestions: %v", err)
			}
			if !reflect.DeepEqual(got, []string{"a", "b"}) {
				t.Errorf("suggestions = %q", got)
			}
		})
	}
}

func TestHTTPSuggestionsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := NewHTTP("http", srv.URL, time.Second).Suggestions(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}

func TestHTTPHonorsContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := NewHTTP("http", srv.URL, 0).Generate(ctx, "x"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMock("mock", "reply").WithSuggestions("one")

	got, err := m.Generate(context.Background(), "p1")
	if err != nil || got != "reply" {
		t.Fatalf("Generate = %q, %v", got, err)
	}
	if m.Calls() != 1 || !reflect.DeepEqual(m.Prompts(), []string{"p1"}) {
		t.Errorf("calls = %d prompts = %q", m.Calls(), m.Prompts())
	}

	boom := errors.New("boom")
	m.WithGenerateError(boom)
	if _, err := m.Generate(context.Background(), "p2"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	s, err := m.Suggestions(context.Background())
	if err != nil || !reflect.DeepEqual(s, []string{"one"}) {
		t.Errorf("Suggestions = %q, %v", s, err)
	}
}

func TestMockDelayCancelled(t *testing.T) {
	m := NewMock("mock", "slow").SetDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Generate(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want canceled", err)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	if got := r.List(); !reflect.DeepEqual(got, []string{"http", "mock"}) {
		t.Errorf("List = %q", got)
	}

	p, err := r.Create("mock", Options{})
	if err != nil {
		t.Fatalf("Create mock: %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("Name = %q", p.Name())
	}

	if _, err := r.Create("openai", Options{}); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("err = %v, want ErrProviderNotFound", err)
	}
}
