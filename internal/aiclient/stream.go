package aiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// ThinkingRequest asks the backend to stream incremental reasoning text for
// a question about a connected repository.
type ThinkingRequest struct {
	Repo     string `json:"repo"`
	Question string `json:"question"`
	Model    string `json:"model,omitempty"`
}

// ThinkingStream delivers reasoning text incrementally. Events is closed
// when the upstream stream ends; Err reports why, if anything went wrong.
type ThinkingStream struct {
	Events <-chan string

	mu  sync.Mutex
	err error
}

// Err returns the terminal error of the stream, nil on a clean close.
// Only meaningful after Events has been drained.
func (s *ThinkingStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ThinkingStream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// StreamThinking opens an SSE stream from the backend and re-emits its text
// chunks. Cancelling ctx aborts the in-flight read.
func (c *Client) StreamThinking(ctx context.Context, req ThinkingRequest) (*ThinkingStream, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/thinking", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	httpReq.Header.Set("User-Agent", "gittldr-api")

	// The shared client has a request timeout; streams must outlive it.
	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("ai backend: unexpected status %s", resp.Status)
	}

	events := make(chan string)
	stream := &ThinkingStream{Events: events}

	go func() {
		defer close(events)
		defer resp.Body.Close()

		assembler := newChunkAssembler()
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var evbuf sseEventBuffer
		for scanner.Scan() {
			payload, complete := evbuf.Add(scanner.Text())
			if !complete || payload == "" {
				continue
			}
			if payload == doneSentinel {
				break
			}

			for _, text := range assembler.Feed(payload) {
				select {
				case events <- text:
				case <-ctx.Done():
					stream.setErr(ctx.Err())
					return
				}
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			stream.setErr(err)
			return
		}
		if ctx.Err() != nil {
			stream.setErr(ctx.Err())
			return
		}

		// A stream that ends without a blank terminator still owes us its
		// last event.
		if payload, ok := evbuf.Pending(); ok && payload != doneSentinel {
			for _, text := range assembler.Feed(payload) {
				select {
				case events <- text:
				case <-ctx.Done():
					stream.setErr(ctx.Err())
					return
				}
			}
		}

		// Flush whatever the assembler is still holding.
		if rest := assembler.Flush(); rest != "" {
			select {
			case events <- rest:
			case <-ctx.Done():
				stream.setErr(ctx.Err())
			}
		}
	}()

	return stream, nil
}

// ---- SSE framing -----------------------------------------------------------

const doneSentinel = "[DONE]"

// sseEventBuffer assembles one event at a time from raw SSE lines. An event
// may span several `data:` lines; their payloads are joined with newlines
// when the blank terminator line arrives.
type sseEventBuffer struct {
	lines []string
}

// Add consumes one raw line. It returns the completed event payload when the
// line is the blank event terminator and at least one data line preceded it.
func (b *sseEventBuffer) Add(line string) (string, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		if len(b.lines) == 0 {
			// Keep-alive blank line, no event pending.
			return "", false
		}
		payload := strings.Join(b.lines, "\n")
		b.lines = b.lines[:0]
		return payload, true
	}
	if strings.HasPrefix(line, ":") {
		return "", false
	}
	if !strings.HasPrefix(line, "data:") {
		// Other SSE fields (event:, id:, retry:) are not used by the backend.
		return "", false
	}
	data := strings.TrimPrefix(line, "data:")
	data = strings.TrimPrefix(data, " ")
	b.lines = append(b.lines, data)
	return "", false
}

// Pending returns the payload of an event that was never terminated, which
// happens when the upstream closes the connection mid-event.
func (b *sseEventBuffer) Pending() (string, bool) {
	if len(b.lines) == 0 {
		return "", false
	}
	payload := strings.Join(b.lines, "\n")
	b.lines = b.lines[:0]
	return payload, true
}

// thinkingFrame is the JSON body of one data frame.
type thinkingFrame struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Delta string `json:"delta"`
}

// bufferedModel decides whether a provider emits token-level fragments that
// read better when assembled into sentences. Matches on the model id prefix,
// falling back to the frame id when the model field is absent.
func bufferedModel(id string) bool {
	id = strings.ToLower(id)
	for _, prefix := range []string{"deepseek", "o1", "o3"} {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// chunkAssembler accumulates text deltas. For providers that stream
// token-level fragments it holds text until a sentence boundary; for
// everything else each delta is emitted as-is.
type chunkAssembler struct {
	buf      strings.Builder
	buffered bool
	decided  bool
}

func newChunkAssembler() *chunkAssembler {
	return &chunkAssembler{}
}

// Feed consumes one raw data payload and returns zero or more text chunks
// that are ready to emit. Payloads that are not valid JSON frames are passed
// through untouched.
func (a *chunkAssembler) Feed(data string) []string {
	var frame thinkingFrame
	if err := json.Unmarshal([]byte(data), &frame); err != nil {
		// Not a JSON frame; pass the raw payload through.
		return []string{data}
	}
	if frame.Delta == "" {
		return nil
	}

	if !a.decided {
		provider := frame.Model
		if provider == "" {
			provider = frame.ID
		}
		a.buffered = bufferedModel(provider)
		a.decided = true
	}

	if !a.buffered {
		return []string{frame.Delta}
	}

	a.buf.WriteString(frame.Delta)
	if !endsSentence(frame.Delta) {
		return nil
	}
	out := a.buf.String()
	a.buf.Reset()
	return []string{out}
}

// Flush returns any text still held in the buffer.
func (a *chunkAssembler) Flush() string {
	out := a.buf.String()
	a.buf.Reset()
	return out
}

func endsSentence(s string) bool {
	trimmed := strings.TrimRight(s, " ")
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
