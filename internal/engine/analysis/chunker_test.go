package analysis

import (
	"fmt"
	"strings"
	"testing"
)

func normalized(s string) string { return strings.Join(strings.Fields(s), " ") }

func buildTranscript(paragraphs, sentences int) string {
	paras := make([]string, 0, paragraphs)
	for p := 0; p < paragraphs; p++ {
		var sb strings.Builder
		for s := 0; s < sentences; s++ {
			fmt.Fprintf(&sb, "Paragraph %d sentence %d talks about markets and strategy. ", p, s)
		}
		paras = append(paras, strings.TrimSpace(sb.String()))
	}
	return strings.Join(paras, "\n\n")
}

func TestChunk_SingleSegmentPassthrough(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		words      int
	}{
		{name: "short text", transcript: "  Hello there, podcast listeners.\n\nSecond paragraph. ", words: 6},
		{name: "empty", transcript: "", words: 0},
		{name: "exactly at limit", transcript: strings.Repeat("a", 100), words: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewChunker(ChunkConfig{MaxChunkSize: 100, OverlapSize: 10, PreserveContext: true}).Chunk(tt.transcript)
			if res.Status != StatusOK {
				t.Fatalf("status = %q, want ok", res.Status)
			}
			if len(res.Segments) != 1 {
				t.Fatalf("got %d segments, want 1", len(res.Segments))
			}
			seg := res.Segments[0]
			if seg.Text != tt.transcript {
				t.Errorf("text = %q, want %q", seg.Text, tt.transcript)
			}
			if !seg.Complete || seg.HasOverlap || seg.Index != 1 {
				t.Errorf("unexpected flags: %+v", seg)
			}
			if seg.WordCount != tt.words {
				t.Errorf("word count = %d, want %d", seg.WordCount, tt.words)
			}
			if seg.End != len(tt.transcript) {
				t.Errorf("end = %d, want %d", seg.End, len(tt.transcript))
			}
		})
	}
}

func TestChunk_CoverageAndSizeBound(t *testing.T) {
	transcripts := map[string]string{
		"paragraphs":      buildTranscript(8, 4),
		"one paragraph":   buildTranscript(1, 30),
		"long word":       "short words here " + strings.Repeat("x", 150) + " and a tail. " + buildTranscript(2, 3),
		"unicode":         strings.Repeat("Привет мир, это подкаст о рынках. ", 40),
		"messy spacing":   strings.ReplaceAll(buildTranscript(5, 3), ". ", ".   \n "),
		"no punctuation":  strings.Repeat("word ", 400),
		"blank lines run": "First part.\n\n\n\n   \n\nSecond part. " + buildTranscript(3, 5),
	}
	configs := []ChunkConfig{
		{MaxChunkSize: 120, OverlapSize: 0, PreserveContext: true},
		{MaxChunkSize: 120, OverlapSize: 40, PreserveContext: true},
		{MaxChunkSize: 300, OverlapSize: 100, PreserveContext: true},
		{MaxChunkSize: 130, PreserveContext: false},
		{MaxChunkSize: 500, PreserveContext: false},
	}

	for name, transcript := range transcripts {
		for _, cfg := range configs {
			if !cfg.PreserveContext && name == "long word" {
				continue // a window cut may fall inside a word longer than the window
			}
			t.Run(fmt.Sprintf("%s/max=%d/ctx=%v", name, cfg.MaxChunkSize, cfg.PreserveContext), func(t *testing.T) {
				res := NewChunker(cfg).Chunk(transcript)
				if res.Status != StatusOK {
					t.Fatalf("status = %q (%v)", res.Status, res.Err)
				}
				if len(res.Segments) < 2 {
					t.Fatalf("expected a split, got %d segment(s)", len(res.Segments))
				}

				cores := make([]string, 0, len(res.Segments))
				for i, seg := range res.Segments {
					if seg.Index != i+1 {
						t.Errorf("segment %d has index %d", i, seg.Index)
					}
					core := seg.Core()
					if n := runeLen(core); n > cfg.MaxChunkSize && len(strings.Fields(core)) != 1 {
						t.Errorf("segment %d core has %d chars, limit %d", seg.Index, n, cfg.MaxChunkSize)
					}
					if got, want := normalized(transcript[seg.Start:seg.End]), normalized(core); got != want {
						t.Errorf("segment %d offsets cover %q, core is %q", seg.Index, got, want)
					}
					cores = append(cores, core)
				}
				if got, want := normalized(strings.Join(cores, " ")), normalized(transcript); got != want {
					t.Errorf("cores do not reconstruct the transcript\n got: %q\nwant: %q", got, want)
				}
			})
		}
	}
}

func TestChunk_Overlap(t *testing.T) {
	cfg := ChunkConfig{MaxChunkSize: 200, OverlapSize: 60, PreserveContext: true}
	res := NewChunker(cfg).Chunk(buildTranscript(6, 3))
	if len(res.Segments) < 3 {
		t.Fatalf("expected several segments, got %d", len(res.Segments))
	}
	if res.Segments[0].HasOverlap {
		t.Error("first segment must not carry overlap")
	}
	for i := 1; i < len(res.Segments); i++ {
		seg, prev := res.Segments[i], res.Segments[i-1]
		if !seg.HasOverlap {
			t.Errorf("segment %d: expected overlap", seg.Index)
			continue
		}
		if strings.Contains(seg.Core(), ContinuationMarker) {
			t.Errorf("segment %d: core contains the continuation marker", seg.Index)
		}
		injected := strings.TrimSuffix(seg.Text, ContinuationMarker+seg.Core())
		if injected == seg.Text {
			t.Fatalf("segment %d: text does not end with marker+core", seg.Index)
		}
		if !strings.HasSuffix(prev.Core(), injected) {
			t.Errorf("segment %d: overlap %q is not the tail of the previous segment", seg.Index, injected)
		}
		if runeLen(injected) != seg.OverlapLen || seg.OverlapLen > cfg.OverlapSize {
			t.Errorf("segment %d: overlap length %d, injected %d runes", seg.Index, seg.OverlapLen, runeLen(injected))
		}
	}
}

func TestChunk_NoOverlapWithoutContext(t *testing.T) {
	res := NewChunker(ChunkConfig{MaxChunkSize: 150, OverlapSize: 50}).Chunk(buildTranscript(4, 4))
	for _, seg := range res.Segments {
		if seg.HasOverlap || seg.Text != seg.Core() {
			t.Errorf("segment %d: sliding window must not inject overlap", seg.Index)
		}
	}
}

func TestChunk_CompleteFlags(t *testing.T) {
	t.Run("paragraph packing is complete", func(t *testing.T) {
		res := NewChunker(ChunkConfig{MaxChunkSize: 400, PreserveContext: true}).Chunk(buildTranscript(6, 3))
		for _, seg := range res.Segments {
			if !seg.Complete {
				t.Errorf("segment %d should be complete", seg.Index)
			}
		}
	})
	t.Run("forced sentence split is incomplete", func(t *testing.T) {
		res := NewChunker(ChunkConfig{MaxChunkSize: 150, PreserveContext: true}).Chunk(buildTranscript(1, 10))
		for _, seg := range res.Segments {
			if seg.Complete {
				t.Errorf("segment %d should be marked incomplete", seg.Index)
			}
		}
	})
	t.Run("sliding window lands on sentence ends", func(t *testing.T) {
		res := NewChunker(ChunkConfig{MaxChunkSize: 130}).Chunk(buildTranscript(1, 10))
		for _, seg := range res.Segments {
			if !strings.HasSuffix(seg.Text, ".") {
				t.Errorf("segment %d does not end a sentence: %q", seg.Index, seg.Text)
			}
			if !seg.Complete {
				t.Errorf("segment %d should be complete", seg.Index)
			}
		}
	})
}

func TestChunk_OversizedWordKept(t *testing.T) {
	long := strings.Repeat("x", 50)
	res := NewChunker(ChunkConfig{MaxChunkSize: 20, PreserveContext: true}).Chunk("short words here " + long + " tail words")
	found := false
	for _, seg := range res.Segments {
		if seg.Core() == long {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized word missing from segments: %+v", res.Segments)
	}
}

func TestChunk_FailureReturnsWholeTranscript(t *testing.T) {
	c := NewChunker(ChunkConfig{MaxChunkSize: 10, PreserveContext: true})
	c.split = func(string) []chunkPiece { panic("boom") }

	transcript := "this transcript is longer than ten characters"
	res := c.Chunk(transcript)
	if res.Status != StatusFailed || res.Err == nil {
		t.Fatalf("status = %q, err = %v; want failed with error", res.Status, res.Err)
	}
	if len(res.Segments) != 1 || res.Segments[0].Text != transcript {
		t.Fatalf("expected the whole transcript as one segment, got %+v", res.Segments)
	}
	if !strings.Contains(res.Segments[0].Err, "boom") {
		t.Errorf("segment error = %q", res.Segments[0].Err)
	}
}

func TestNewChunker_Defaults(t *testing.T) {
	c := NewChunker(ChunkConfig{MaxChunkSize: -1, OverlapSize: -5})
	if c.cfg.MaxChunkSize != DefaultMaxChunkSize || c.cfg.OverlapSize != 0 {
		t.Errorf("got %+v", c.cfg)
	}
}
