package assembler

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
)

func TestWriteAudio_LengthIsSum(t *testing.T) {
	parts := [][]byte{
		bytes.Repeat([]byte{0x01}, 100),
		bytes.Repeat([]byte{0x02}, 250),
		{},
		bytes.Repeat([]byte{0x03}, 7),
	}

	var buf bytes.Buffer
	n, err := WriteAudio(&buf, parts)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()
	if len(out) != 357 || n != 357 {
		t.Fatalf("len = %d, written = %d, want 357", len(out), n)
	}
	if out[0] != 0x01 || out[100] != 0x02 || out[356] != 0x03 {
		t.Error("parts are out of order")
	}
}

func TestWriteAudio_CountsBytes(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteAudio(&buf, [][]byte{[]byte("ab"), []byte("cde")})
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || buf.String() != "abcde" {
		t.Errorf("n=%d buf=%q", n, buf.String())
	}
}

func TestAssembleText(t *testing.T) {
	if got := AssembleText([]string{"Hello. ", "World."}); got != "Hello. World." {
		t.Errorf("AssembleText() = %q", got)
	}
}

func TestIsStructured(t *testing.T) {
	tests := map[string]bool{
		"":             true,
		"json":         true,
		"verbose_json": true,
		"text":         false,
		"srt":          false,
		"vtt":          false,
	}
	for format, want := range tests {
		if got := IsStructured(format); got != want {
			t.Errorf("IsStructured(%q) = %v, want %v", format, got, want)
		}
	}
}

func TestEncodeTranscriptJSON(t *testing.T) {
	resp := openai.AudioResponse{
		Task:     "transcribe",
		Language: "english",
		Duration: 3.5,
		Text:     "hello there",
	}

	out, err := EncodeTranscriptJSON(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(out), "\n") {
		t.Error("output should end with newline")
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["text"] != "hello there" || decoded["language"] != "english" {
		t.Errorf("decoded = %v", decoded)
	}
	if _, ok := decoded["segments"]; ok {
		t.Error("empty segments should be omitted")
	}
}

func TestExtractTranscript(t *testing.T) {
	var resp openai.AudioResponse
	raw := `{"text":"a b","language":"en","duration":2,"segments":[{"id":0,"start":0,"end":1,"text":"a"},{"id":1,"start":1,"end":2,"text":" b"}]}`
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatal(err)
	}

	tr := ExtractTranscript(resp)
	if tr.Text != "a b" || tr.Language != "en" || len(tr.Segments) != 2 {
		t.Fatalf("transcript = %+v", tr)
	}
	if tr.Segments[1].Start != 1 || tr.Segments[1].Text != " b" {
		t.Errorf("segment = %+v", tr.Segments[1])
	}
}
