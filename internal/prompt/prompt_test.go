package prompt

import (
	"reflect"
	"strings"
	"testing"

	"github.com/antoniostano/kyra/internal/memory"
)

func TestBuildEmptyWindow(t *testing.T) {
	msgs := Build(Persona("u1"), nil, "Summarize my options")

	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != RoleSystem {
		t.Fatalf("msgs[0].Role = %q, want %q", msgs[0].Role, RoleSystem)
	}
	if msgs[1].Role != RoleUser || msgs[1].Content != "Summarize my options" {
		t.Fatalf("msgs[1] = %+v, want trailing user message", msgs[1])
	}
}

func TestBuildReplaysWindowInOrder(t *testing.T) {
	window := []memory.TurnRecord{
		{Role: memory.RoleUser, Content: "first question"},
		{Role: memory.RoleAssistant, Content: "first answer"},
		{Role: memory.RoleUser, Content: "second question"},
		{Role: memory.RoleAssistant, Content: "second answer"},
	}

	msgs := Build(Persona("u1"), window, "third question")

	if len(msgs) != 6 {
		t.Fatalf("len(msgs) = %d, want 6", len(msgs))
	}
	if msgs[0].Role != RoleSystem {
		t.Fatalf("msgs[0].Role = %q, want exactly one leading system message", msgs[0].Role)
	}
	for i, turn := range window {
		if msgs[i+1].Role != turn.Role || msgs[i+1].Content != turn.Content {
			t.Fatalf("msgs[%d] = %+v, want window turn %+v replayed verbatim", i+1, msgs[i+1], turn)
		}
	}
	last := msgs[len(msgs)-1]
	if last.Role != RoleUser || last.Content != "third question" {
		t.Fatalf("last message = %+v, want the new user input", last)
	}
	for i, m := range msgs[1:] {
		if m.Role == RoleSystem {
			t.Fatalf("msgs[%d] has role system, want the system message only first", i+1)
		}
	}
}

func TestBuildIsPure(t *testing.T) {
	window := []memory.TurnRecord{
		{Role: memory.RoleUser, Content: "q"},
		{Role: memory.RoleAssistant, Content: "a"},
	}

	first := Build(Persona("u1"), window, "again")
	second := Build(Persona("u1"), window, "again")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Build() not deterministic: %+v vs %+v", first, second)
	}
}

func TestPersonaInterpolatesUser(t *testing.T) {
	p := Persona("marco")
	if !strings.Contains(p, "marco") {
		t.Fatalf("Persona() = %q, want the user identifier interpolated", p)
	}
	if Persona("marco") != Persona("marco") {
		t.Fatalf("Persona() not deterministic")
	}
}

func TestWrapExcerptKeepsText(t *testing.T) {
	wrapped := WrapExcerpt("welcome to example.com")
	if !strings.Contains(wrapped, "welcome to example.com") {
		t.Fatalf("WrapExcerpt() = %q, want the excerpt embedded", wrapped)
	}
}
