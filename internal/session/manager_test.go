package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pavanbh/career-oracle/internal/llm"
)

type countingClient struct {
	mu        sync.Mutex
	chatCalls int
}

func (c *countingClient) Generate(context.Context, string) (string, error) {
	return "", nil
}

func (c *countingClient) NewChat(context.Context) (llm.Chat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatCalls++
	return &stubChat{}, nil
}

type stubChat struct{}

func (stubChat) Send(context.Context, string) (string, error) { return "ok", nil }

func TestChatHandleCreatedExactlyOnce(t *testing.T) {
	client := &countingClient{}
	m := NewManager(client)

	first, err := m.Chat(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	second, err := m.Chat(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if first != second {
		t.Error("Expected the same chat handle on repeat calls")
	}
	if client.chatCalls != 1 {
		t.Errorf("Expected 1 chat creation, got %d", client.chatCalls)
	}
}

func TestChatHandleCreatedOnceUnderConcurrency(t *testing.T) {
	client := &countingClient{}
	m := NewManager(client)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Chat(context.Background(), "s1"); err != nil {
				t.Errorf("Chat failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if client.chatCalls != 1 {
		t.Errorf("Expected 1 chat creation under concurrency, got %d", client.chatCalls)
	}
}

func TestChatHandlesIsolatedPerSession(t *testing.T) {
	client := &countingClient{}
	m := NewManager(client)

	if _, err := m.Chat(context.Background(), "s1"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if _, err := m.Chat(context.Background(), "s2"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if client.chatCalls != 2 {
		t.Errorf("Expected one handle per session, got %d creations", client.chatCalls)
	}
}

func TestResumeGuardLifecycle(t *testing.T) {
	m := NewManager(&countingClient{})

	if m.ResumeProcessed("s1") {
		t.Error("Expected guard unset for fresh session")
	}

	m.SetResumeResult("s1", []string{"Python"}, "analysis text")
	if !m.ResumeProcessed("s1") {
		t.Error("Expected guard set after recording result")
	}

	skills, analysis, ok := m.ResumeResult("s1")
	if !ok || analysis != "analysis text" || len(skills) != 1 {
		t.Errorf("Unexpected cached result: %v %q %v", skills, analysis, ok)
	}
}

func TestResetResumeKeepsChatHandle(t *testing.T) {
	client := &countingClient{}
	m := NewManager(client)

	if _, err := m.Chat(context.Background(), "s1"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	m.SetResumeResult("s1", []string{"Python"}, "analysis")

	m.ResetResume("s1")

	if m.ResumeProcessed("s1") {
		t.Error("Expected guard cleared after reset")
	}
	if _, _, ok := m.ResumeResult("s1"); ok {
		t.Error("Expected cached result cleared after reset")
	}

	if _, err := m.Chat(context.Background(), "s1"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if client.chatCalls != 1 {
		t.Errorf("Expected chat handle to survive reset, got %d creations", client.chatCalls)
	}
}

func TestCloseSessionDropsState(t *testing.T) {
	client := &countingClient{}
	m := NewManager(client)

	if _, err := m.Chat(context.Background(), "s1"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	m.CloseSession("s1")

	if _, err := m.Chat(context.Background(), "s1"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if client.chatCalls != 2 {
		t.Errorf("Expected a fresh handle after close, got %d creations", client.chatCalls)
	}
}

func TestIdleSessions(t *testing.T) {
	m := NewManager(&countingClient{})
	m.Touch("fresh")

	m.mu.Lock()
	m.sessions["stale"] = &live{lastSeen: time.Now().Add(-2 * time.Hour)}
	m.mu.Unlock()

	ids := m.IdleSessions(time.Hour)
	if len(ids) != 1 || ids[0] != "stale" {
		t.Errorf("Expected only the stale session, got %v", ids)
	}
}

func TestSeenSince(t *testing.T) {
	m := NewManager(&countingClient{})
	m.Touch("fresh")

	m.mu.Lock()
	m.sessions["stale"] = &live{lastSeen: time.Now().Add(-2 * time.Hour)}
	m.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	if !m.SeenSince("fresh", cutoff) {
		t.Error("Expected fresh session to report recent activity")
	}
	if m.SeenSince("stale", cutoff) {
		t.Error("Expected stale session to report no recent activity")
	}
	if m.SeenSince("unknown", cutoff) {
		t.Error("Expected unknown session to report no recent activity")
	}
}
