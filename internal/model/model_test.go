// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SCALAR TESTS
// =============================================================================

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{"number", `42`, "42"},
		{"string", `"video_1718_abcd1234"`, "video_1718_abcd1234"},
		{"null", `null`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tc.input), &id); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tc.input, err)
			}
			if id != tc.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tc.input, id, tc.want)
			}
		})
	}
}

func TestID_MarshalKeepsNumbers(t *testing.T) {
	out, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: "7", B: "job_x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":7,"b":"job_x"}` {
		t.Errorf("got %s", out)
	}
}

func TestTimestamp_Layouts(t *testing.T) {
	inputs := []string{
		`"2025-03-01T10:20:30.123456"`,
		`"2025-03-01T10:20:30"`,
		`"2025-03-01T10:20:30Z"`,
		`"2025-03-01T10:20:30+00:00"`,
	}
	for _, in := range inputs {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", in, err)
		}
		if ts.Year() != 2025 || ts.Month() != time.March || ts.Hour() != 10 {
			t.Errorf("Unmarshal(%s) = %v", in, ts.Time)
		}
	}

	var empty Timestamp
	if err := json.Unmarshal([]byte(`null`), &empty); err != nil || !empty.IsZero() {
		t.Errorf("null should give zero time, got %v err %v", empty.Time, err)
	}
}

func TestProgressEvent_Decode(t *testing.T) {
	raw := `{"job_id":"video_1_ab","step":"completed","message":"done","progress":100,"data":{"video_id":42}}`
	var ev ProgressEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.JobID != "video_1_ab" || ev.Data.VideoID != "42" || !ev.IsTerminal() {
		t.Errorf("unexpected decode: %+v", ev)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AddAndClear(t *testing.T) {
	conv := NewConversation("session_a")
	conv.AddUserMessage("hi")
	conv.AddAIMessage("hello", time.Time{})

	if conv.MessageCount() != 2 {
		t.Fatalf("Expected 2 messages, got %d", conv.MessageCount())
	}
	if last := conv.GetLastAIMessage(); last == nil || last.Content != "hello" {
		t.Errorf("GetLastAIMessage() = %+v", last)
	}
	if conv.GetLastMessage().Timestamp.IsZero() {
		t.Error("zero timestamp should be replaced with now")
	}

	conv.Clear("session_b")
	if !conv.IsEmpty() || conv.SessionID != "session_b" {
		t.Errorf("Clear did not reset: %+v", conv)
	}
}

func TestConversation_Prune(t *testing.T) {
	conv := NewConversation("s")
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddUserMessage(strings.Repeat("x", i%5+1))
	}
	if conv.MessageCount() != MaxMessages {
		t.Errorf("Expected %d messages after prune, got %d", MaxMessages, conv.MessageCount())
	}
}

func TestConversation_CloneIsDeep(t *testing.T) {
	conv := NewConversation("s")
	msg := conv.AddAIMessage("video", time.Now())
	msg.Video = &VideoRef{ID: "9", Title: "t"}

	clone := conv.Clone()
	clone.Messages[0].Video.Title = "changed"
	if msg.Video.Title != "t" {
		t.Error("Clone shares VideoRef with original")
	}
}

// =============================================================================
// MESSAGE TYPE TESTS
// =============================================================================

func TestParseMessageType(t *testing.T) {
	if mt, ok := ParseMessageType(" Brainstorm "); !ok || mt != TypeBrainstorm {
		t.Errorf("ParseMessageType(Brainstorm) = %q, %v", mt, ok)
	}
	if _, ok := ParseMessageType("poetry"); ok {
		t.Error("unknown type should not parse")
	}
	if got := TypePlanning.Placeholder(); got != "📋 Nhập tin nhắn planning..." {
		t.Errorf("Placeholder() = %q", got)
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("Xin chào\nthế giới")
	if got := msg.Preview(4); got != "Xin ..." {
		t.Errorf("Preview(4) = %q", got)
	}
	if got := msg.Preview(0); got != "Xin chào thế giới" {
		t.Errorf("Preview(0) = %q", got)
	}
}

func TestVideoRef_URLs(t *testing.T) {
	ref := VideoRef{ID: "42"}
	if ref.FileURL() != "/api/videos/42/file" || ref.PageURL() != "/videos/42" {
		t.Errorf("unexpected urls %s %s", ref.FileURL(), ref.PageURL())
	}
}
