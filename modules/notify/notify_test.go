package notify

import (
	"sync"
	"testing"
	"time"
)

func TestNotifier_SubscribersReceivePublished(t *testing.T) {
	notifier := New()

	var mu sync.Mutex
	var received []Notification
	done := make(chan struct{}, 1)

	notifier.Subscribe(func(n Notification) {
		mu.Lock()
		received = append(received, n)
		mu.Unlock()
		done <- struct{}{}
	})

	notifier.Success("Produto adicionado com sucesso!")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("received %d notifications, want 1", len(received))
	}
	if received[0].Level != LevelSuccess {
		t.Errorf("Level = %q, want %q", received[0].Level, LevelSuccess)
	}
	if received[0].ID == "" {
		t.Error("notification ID is empty")
	}
}

func TestNotifier_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	notifier := New()

	notifier.Subscribe(func(Notification) {
		panic("broken subscriber")
	})

	done := make(chan struct{}, 1)
	notifier.Subscribe(func(Notification) {
		done <- struct{}{}
	})

	notifier.Error("falhou")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handler never invoked after first panicked")
	}
}

func TestNotifier_RecentIsBoundedAndOrdered(t *testing.T) {
	notifier := New()

	for i := 0; i < recentLimit+10; i++ {
		notifier.Info("message")
	}

	recent := notifier.Recent()
	if len(recent) != recentLimit {
		t.Fatalf("Recent() holds %d notifications, want %d", len(recent), recentLimit)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt.Before(recent[i-1].CreatedAt) {
			t.Fatalf("recent notifications out of order at %d", i)
		}
	}

	notifier.Clear()
	if len(notifier.Recent()) != 0 {
		t.Error("Recent() not empty after Clear()")
	}
}
