package memory

import (
	"context"
	"testing"
)

func TestPublisherCapturesNotifications(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), "analyses", map[string]string{"run_id": "r1"})
	if err != nil || id1 != "memory-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := pub.Publish(context.Background(), "alerts", "payload")
	if err != nil || id2 != "memory-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	notes := pub.Notifications()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notes))
	}
	if notes[0].Topic != "analyses" || notes[1].Topic != "alerts" {
		t.Fatalf("topics not recorded correctly: %+v", notes)
	}

	notes[0].Topic = "modified"
	if pub.Notifications()[0].Topic == "modified" {
		t.Fatal("expected Notifications() to return a copy")
	}
}
