package statemachine

import (
	"errors"
	"reflect"
	"testing"

	"epaws/internal/platform/sentinel"
)

type light string

const (
	green  light = "green"
	yellow light = "yellow"
	red    light = "red"
	broken light = "broken"
)

func newLights() *Machine[light] {
	return New("light", map[light][]light{
		green:  {yellow, broken},
		yellow: {red, broken},
		red:    {green, broken},
	})
}

func TestCheck(t *testing.T) {
	m := newLights()

	if err := m.Check(green, yellow); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
	if err := m.Check(green, red); !errors.Is(err, sentinel.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := m.Check(broken, green); !errors.Is(err, sentinel.ErrInvalidTransition) {
		t.Fatalf("expected terminal state to block, got %v", err)
	}
	if err := m.Check(green, "blue"); !errors.Is(err, sentinel.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestTerminalAndNext(t *testing.T) {
	m := newLights()

	if !m.Terminal(broken) || m.Terminal(green) || m.Terminal("blue") {
		t.Fatalf("terminal detection mismatch")
	}
	if got := m.Next(green); !reflect.DeepEqual(got, []light{broken, yellow}) {
		t.Fatalf("unexpected next %v", got)
	}
}
