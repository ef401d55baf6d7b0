package core

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/encodeous/quadrant/exchange"
)

func (r *Runtime) debugServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/debug/metrics", http.DefaultServeMux)
	mux.HandleFunc("/debug/inspect", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, r.Inspect())
	})
	mux.HandleFunc("/debug/trace", r.streamTraces)
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// Inspect renders the live state of the node.
func (r *Runtime) Inspect() string {
	sb := strings.Builder{}
	sb.WriteString("Node:\n")
	sb.WriteString(fmt.Sprintf(" - component: %s\n", r.Node.ComponentName()))
	sb.WriteString(fmt.Sprintf(" - gateway: %s (instance %d)\n", r.Node.GatewayComponentName(), r.Node.InstanceId()))
	sb.WriteString(fmt.Sprintf(" - responsibility: %t\n", r.Node.Responsibility()))

	sb.WriteString("\n\nRegion:\n")
	rt := make([]string, 0)
	for _, k := range r.Node.Region().Keys() {
		rt = append(rt, fmt.Sprintf(" - %s", k))
	}
	if len(rt) == 0 {
		rt = append(rt, " (none)")
	}
	slices.Sort(rt)
	sb.WriteString(strings.Join(rt, "\n") + "\n")

	sb.WriteString("\n\nMessages:\n")
	received, sent := r.Context.Received(), r.Context.Sent()
	for _, k := range exchange.Kinds {
		sb.WriteString(fmt.Sprintf(" - %s: received=%d, sent=%d\n", k, received[k], sent[k]))
	}
	sb.WriteString(fmt.Sprintf(" - denm actions: %d\n", r.Context.Actions()))
	sb.WriteString(fmt.Sprintf(" - sequence: %s\n", r.Sequence))
	return sb.String()
}

// traceKinds parses the kind filter of a trace request, empty means every kind.
func traceKinds(req *http.Request) (map[string]bool, error) {
	raw := req.URL.Query().Get("kind")
	if raw == "" {
		return nil, nil
	}
	kinds := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		k, err := exchange.ParseToken(s)
		if err != nil {
			return nil, err
		}
		kinds[k.String()] = true
	}
	return kinds, nil
}

// streamTraces writes every monitor trace as a JSON line until the client leaves.
func (r *Runtime) streamTraces(w http.ResponseWriter, req *http.Request) {
	kinds, err := traceKinds(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ch := make(chan interface{}, 64)
	r.Traces.Register(ch)
	defer func() {
		// the broadcaster may be blocked on ch while we unregister
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-ch:
				case <-done:
					return
				}
			}
		}()
		r.Traces.Unregister(ch)
		close(done)
	}()

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	for {
		select {
		case t := <-ch:
			if tr, ok := t.(Trace); ok && kinds != nil && !kinds[tr.Kind] {
				continue
			}
			if err := enc.Encode(t); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-req.Context().Done():
			return
		}
	}
}

// InspectGet fetches the inspect page of a running node.
func InspectGet(addr string) (string, error) {
	res, err := http.Get("http://" + addr + "/debug/inspect")
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inspect: %s", res.Status)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// TraceGet follows the trace stream of a running node and calls fn for every
// trace of the given kinds, all kinds when none are given. It returns nil once
// ctx is done.
func TraceGet(ctx context.Context, addr string, kinds []string, fn func(Trace) error) error {
	u := url.URL{Scheme: "http", Host: addr, Path: "/debug/trace"}
	if len(kinds) > 0 {
		u.RawQuery = url.Values{"kind": {strings.Join(kinds, ",")}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("trace: %s: %s", res.Status, strings.TrimSpace(string(body)))
	}
	dec := json.NewDecoder(res.Body)
	for {
		var t Trace
		if err := dec.Decode(&t); err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}
