package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type echoHandler struct {
	err error
}

type echoParams struct {
	Text string `json:"text"`
}

func (h *echoHandler) Handle(_ context.Context, p echoParams) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "echo: " + p.Text, nil
}

func TestWrapHandler_Success(t *testing.T) {
	fn := WrapHandler[echoParams](&echoHandler{})

	result, _, err := fn(context.Background(), &sdkmcp.CallToolRequest{}, &echoParams{Text: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}
	text := result.Content[0].(*sdkmcp.TextContent).Text
	if text != "echo: hi" {
		t.Errorf("got %q", text)
	}
}

func TestWrapHandler_NilParams(t *testing.T) {
	fn := WrapHandler[echoParams](&echoHandler{})

	result, _, err := fn(context.Background(), &sdkmcp.CallToolRequest{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := result.Content[0].(*sdkmcp.TextContent).Text
	if text != "echo: " {
		t.Errorf("nil params should become zero value, got %q", text)
	}
}

func TestWrapHandler_ErrorBecomesToolError(t *testing.T) {
	fn := WrapHandler[echoParams](&echoHandler{err: errors.New("boom")})

	result, _, err := fn(context.Background(), &sdkmcp.CallToolRequest{}, &echoParams{})
	if err != nil {
		t.Fatalf("handler errors must map to IsError, not protocol errors: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError result")
	}
	text := result.Content[0].(*sdkmcp.TextContent).Text
	if !strings.Contains(text, "boom") {
		t.Errorf("error text missing cause: %q", text)
	}
}

func TestTail(t *testing.T) {
	if got := tail("short", 10); got != "short" {
		t.Errorf("tail(short) = %q", got)
	}
	long := strings.Repeat("x", 50) + "END"
	got := tail(long, 10)
	if !strings.HasSuffix(got, "END") {
		t.Errorf("tail must keep the end of the text: %q", got)
	}
	if len(got) > 11+len("…") {
		t.Errorf("tail too long: %d", len(got))
	}
}
