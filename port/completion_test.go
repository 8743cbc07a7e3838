package port

import (
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/wippyai/wallet-bridge/envelope"
	gwerrors "github.com/wippyai/wallet-bridge/errors"
)

func drainOne(t *testing.T, p *ChanPort) envelope.Response {
	t.Helper()
	select {
	case raw := <-p.C():
		var resp envelope.Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("bad delivery: %v", err)
		}
		return resp
	default:
		t.Fatal("no delivery enqueued")
		return envelope.Response{}
	}
}

func TestCompletion_ResolveOnce(t *testing.T) {
	p := NewChanPort(4)
	c := NewCompletion(7, p)

	c.Resolve(map[string]string{"status": "sent"})
	c.Resolve("second")
	c.Reject(stderrors.New("late"))

	resp := drainOne(t, p)
	if resp.Outcome != envelope.OutcomeOK {
		t.Fatalf("outcome = %q", resp.Outcome)
	}
	if resp.RequestID != 7 {
		t.Fatalf("request_id = %d", resp.RequestID)
	}

	select {
	case raw, ok := <-p.C():
		if ok {
			t.Fatalf("second delivery leaked: %s", raw)
		}
	default:
	}
}

func TestCompletion_Reject(t *testing.T) {
	p := NewChanPort(4)
	c := NewCompletion(3, p)
	c.Reject(gwerrors.RuntimeUnavailable("executor stopped"))

	resp := drainOne(t, p)
	if resp.Outcome != envelope.OutcomeErr {
		t.Fatalf("outcome = %q", resp.Outcome)
	}
	if resp.Error.Kind != "RuntimeUnavailable" {
		t.Fatalf("kind = %q", resp.Error.Kind)
	}
}

func TestCompletion_ConcurrentSettlers(t *testing.T) {
	p := NewChanPort(64)
	c := NewCompletion(1, p)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				c.Resolve(n)
			} else {
				c.Reject(stderrors.New("x"))
			}
		}(i)
	}
	wg.Wait()

	count := 0
	for {
		select {
		case <-p.C():
			count++
			continue
		default:
		}
		break
	}
	if count != 1 {
		t.Fatalf("delivered %d envelopes, want exactly 1", count)
	}
}

func TestCompletion_NilPortIsNoOpFailure(t *testing.T) {
	c := NewCompletion(5, nil)
	c.Resolve("ignored") // must not panic
}

func TestStream_OrderAndTerminal(t *testing.T) {
	p := NewChanPort(16)
	s := NewStream(9, p)

	for i := 0; i < 5; i++ {
		s.Emit(map[string]int{"seq": i})
	}
	s.Cancelled()
	s.Emit(map[string]int{"seq": 99}) // after terminal: dropped
	s.Errored(stderrors.New("late"))  // second terminal: dropped

	var got []envelope.Response
	for {
		select {
		case raw := <-p.C():
			var resp envelope.Response
			if err := json.Unmarshal(raw, &resp); err != nil {
				t.Fatal(err)
			}
			got = append(got, resp)
			continue
		default:
		}
		break
	}

	if len(got) != 6 {
		t.Fatalf("delivered %d records, want 6", len(got))
	}
	for i := 0; i < 5; i++ {
		var payload struct {
			Seq int `json:"seq"`
		}
		if err := json.Unmarshal(got[i].Payload, &payload); err != nil {
			t.Fatal(err)
		}
		if payload.Seq != i {
			t.Fatalf("record %d out of order: seq=%d", i, payload.Seq)
		}
	}
	terminal := got[5]
	if terminal.Outcome != envelope.OutcomeErr || terminal.Error.Kind != "Cancelled" {
		t.Fatalf("terminal = %+v", terminal)
	}
	if !s.Done() {
		t.Fatal("stream should be done")
	}
}

func TestStream_ErroredPreservesKind(t *testing.T) {
	p := NewChanPort(4)
	s := NewStream(2, p)
	s.Errored(&gwerrors.Error{Kind: gwerrors.Kind("NodeUnreachable"), Detail: "gql endpoint gone"})

	resp := drainOne(t, p)
	if resp.Error.Kind != "NodeUnreachable" {
		t.Fatalf("kind = %q", resp.Error.Kind)
	}
}

func TestChanPort_Close(t *testing.T) {
	p := NewChanPort(1)
	p.Close()
	if err := p.Post([]byte("x")); err != ErrPortClosed {
		t.Fatalf("err = %v, want ErrPortClosed", err)
	}
	p.Close() // idempotent
}

func TestChanPort_FullBuffer(t *testing.T) {
	p := NewChanPort(1)
	if err := p.Post([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := p.Post([]byte("b")); err == nil {
		t.Fatal("expected full-buffer error")
	}
}
