package jsonx

import (
	stderrors "errors"
	"testing"

	"github.com/sweetpotato0/docqa/pkg/errors"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecodePlain(t *testing.T) {
	out, err := Decode[payload](`{"name":"a","count":2}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out.Name != "a" || out.Count != 2 {
		t.Fatalf("unexpected payload: %#v", out)
	}
}

func TestDecodeFenced(t *testing.T) {
	raw := "```json\n{\"name\":\"b\",\"count\":7}\n```"
	out, err := Decode[payload](raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out.Name != "b" || out.Count != 7 {
		t.Fatalf("unexpected payload: %#v", out)
	}
}

func TestDecodeInvalidIsMalformed(t *testing.T) {
	_, err := Decode[payload]("not json at all")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errors.IsMalformed(err) {
		t.Fatalf("got %v, want MalformedOutputError", err)
	}
	var me *errors.MalformedOutputError
	if !stderrors.As(err, &me) || me.Raw != "not json at all" {
		t.Fatalf("malformed error should carry the raw output, got %+v", me)
	}
}
