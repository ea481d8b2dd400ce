package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	paragraphBreakRe = regexp.MustCompile(`\n\s*\n`)
	sentenceEndRe    = regexp.MustCompile(`[.!?]\s+`)
	wordRe           = regexp.MustCompile(`\S+`)
)

// ChunkResult is the output of Chunker.Chunk.
type ChunkResult struct {
	Segments []Segment
	Status   Status
	Err      error
}

// Chunker splits transcripts into bounded segments.
type Chunker struct {
	cfg   ChunkConfig
	split func(string) []chunkPiece // overridable in tests
}

// NewChunker returns a Chunker for cfg. Non-positive sizes fall back to defaults.
func NewChunker(cfg ChunkConfig) *Chunker {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.OverlapSize < 0 {
		cfg.OverlapSize = 0
	}
	return &Chunker{cfg: cfg}
}

// piece is a trimmed span of the transcript.
type piece struct {
	text       string
	start, end int
}

type chunkPiece struct {
	piece
	complete bool
}

// Chunk splits transcript. It never fails: on an internal error the whole
// transcript comes back as a single segment carrying the error.
func (c *Chunker) Chunk(transcript string) (res ChunkResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("chunk transcript: %v", r)
			slog.Warn("chunker: split failed, using whole transcript", slog.Any("error", err))
			seg := wholeSegment(transcript)
			seg.Err = err.Error()
			res = ChunkResult{Segments: []Segment{seg}, Status: StatusFailed, Err: err}
		}
	}()

	if runeLen(transcript) <= c.cfg.MaxChunkSize {
		return ChunkResult{Segments: []Segment{wholeSegment(transcript)}, Status: StatusOK}
	}

	split := c.split
	if split == nil {
		if c.cfg.PreserveContext {
			split = c.splitByParagraph
		} else {
			split = c.splitSliding
		}
	}

	pieces := split(transcript)
	segs := make([]Segment, 0, len(pieces))
	for i, p := range pieces {
		segs = append(segs, Segment{
			Index:     i + 1,
			Text:      p.text,
			Start:     p.start,
			End:       p.end,
			WordCount: len(strings.Fields(p.text)),
			CharCount: runeLen(p.text),
			Complete:  p.complete,
		})
	}
	if len(segs) == 0 {
		segs = append(segs, wholeSegment(transcript))
	}
	if c.cfg.PreserveContext && c.cfg.OverlapSize > 0 && len(segs) > 1 {
		c.addOverlap(segs)
	}

	slog.Debug("chunker: split transcript",
		slog.Int("chars", runeLen(transcript)),
		slog.Int("segments", len(segs)))
	return ChunkResult{Segments: segs, Status: StatusOK}
}

func wholeSegment(transcript string) Segment {
	return Segment{
		Index:     1,
		Text:      transcript,
		Start:     0,
		End:       len(transcript),
		WordCount: len(strings.Fields(transcript)),
		CharCount: runeLen(transcript),
		Complete:  true,
	}
}

// splitByParagraph packs paragraphs, breaking oversized ones by sentence and then by word.
func (c *Chunker) splitByParagraph(t string) []chunkPiece {
	return c.pack(paragraphs(t), "\n\n", true, c.splitParagraph)
}

func (c *Chunker) splitParagraph(p piece) []chunkPiece {
	return c.pack(sentences(p), " ", false, c.splitSentence)
}

func (c *Chunker) splitSentence(p piece) []chunkPiece {
	locs := wordRe.FindAllStringIndex(p.text, -1)
	words := make([]piece, 0, len(locs))
	for _, l := range locs {
		words = append(words, piece{text: p.text[l[0]:l[1]], start: p.start + l[0], end: p.start + l[1]})
	}
	return c.pack(words, " ", false, nil)
}

// pack greedily joins units with sep while the joined text stays within the limit.
// Units larger than the limit are handed to oversize, or emitted as they are.
func (c *Chunker) pack(units []piece, sep string, complete bool, oversize func(piece) []chunkPiece) []chunkPiece {
	limit := c.cfg.MaxChunkSize
	sepLen := runeLen(sep)

	var out []chunkPiece
	var cur []piece
	curLen := 0
	flush := func() {
		if len(cur) == 0 {
			return
		}
		texts := make([]string, len(cur))
		for i, u := range cur {
			texts[i] = u.text
		}
		out = append(out, chunkPiece{
			piece:    piece{text: strings.Join(texts, sep), start: cur[0].start, end: cur[len(cur)-1].end},
			complete: complete,
		})
		cur, curLen = nil, 0
	}

	for _, u := range units {
		n := runeLen(u.text)
		if n > limit {
			flush()
			if oversize != nil {
				out = append(out, oversize(u)...)
			} else {
				out = append(out, chunkPiece{piece: u})
			}
			continue
		}
		add := n
		if len(cur) > 0 {
			add += sepLen
		}
		if len(cur) > 0 && curLen+add > limit {
			flush()
			add = n
		}
		cur = append(cur, u)
		curLen += add
	}
	flush()
	return out
}

// splitSliding cuts fixed windows, pulling each cut back to the last sentence
// end (or failing that, the last space) within the trailing window.
func (c *Chunker) splitSliding(t string) []chunkPiece {
	var out []chunkPiece
	pos := 0
	for pos < len(t) {
		end := advanceRunes(t, pos, c.cfg.MaxChunkSize)
		atSentence := end == len(t)
		if end < len(t) {
			from := retreatRunes(t, pos, end, sentenceSearchWindow)
			window := t[from:end]
			if locs := sentenceEndRe.FindAllStringIndex(window, -1); len(locs) > 0 {
				end = from + locs[len(locs)-1][1]
				atSentence = true
			} else if i := strings.LastIndexFunc(t[pos:end], unicode.IsSpace); i > 0 {
				_, size := utf8.DecodeRuneInString(t[pos+i:])
				end = pos + i + size
			}
		}
		if p, ok := trimSpan(t, pos, end); ok {
			out = append(out, chunkPiece{piece: p, complete: atSentence})
		}
		pos = end
	}
	return out
}

// addOverlap prefixes each segment after the first with the trailing partial
// sentence of its predecessor.
func (c *Chunker) addOverlap(segs []Segment) {
	for i := 1; i < len(segs); i++ {
		tail := lastRunes(segs[i-1].Core(), c.cfg.OverlapSize)
		if parts := sentenceEndRe.Split(tail, -1); len(parts) > 1 {
			tail = parts[len(parts)-1]
		}
		tail = strings.TrimSpace(tail)
		if tail == "" {
			continue
		}
		segs[i].Text = tail + ContinuationMarker + segs[i].Text
		segs[i].coreStart = len(tail) + len(ContinuationMarker)
		segs[i].HasOverlap = true
		segs[i].OverlapLen = runeLen(tail)
	}
}

// paragraphs splits t at blank lines, trimming and dropping empty paragraphs.
func paragraphs(t string) []piece {
	var out []piece
	prev := 0
	for _, m := range paragraphBreakRe.FindAllStringIndex(t, -1) {
		if p, ok := trimSpan(t, prev, m[0]); ok {
			out = append(out, p)
		}
		prev = m[1]
	}
	if p, ok := trimSpan(t, prev, len(t)); ok {
		out = append(out, p)
	}
	return out
}

// sentences splits a paragraph after each terminator, keeping the terminator.
func sentences(p piece) []piece {
	var out []piece
	prev := 0
	for _, m := range sentenceEndRe.FindAllStringIndex(p.text, -1) {
		if s, ok := trimSpan(p.text, prev, m[0]+1); ok {
			s.start += p.start
			s.end += p.start
			out = append(out, s)
		}
		prev = m[1]
	}
	if s, ok := trimSpan(p.text, prev, len(p.text)); ok {
		s.start += p.start
		s.end += p.start
		out = append(out, s)
	}
	return out
}

func trimSpan(t string, start, end int) (piece, bool) {
	sub := t[start:end]
	left := len(sub) - len(strings.TrimLeftFunc(sub, unicode.IsSpace))
	right := len(strings.TrimRightFunc(sub, unicode.IsSpace))
	if right <= left {
		return piece{}, false
	}
	return piece{text: sub[left:right], start: start + left, end: start + right}, true
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// advanceRunes returns the byte offset n runes after pos.
func advanceRunes(s string, pos, n int) int {
	i := pos
	for k := 0; k < n && i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// retreatRunes returns the byte offset n runes before end, not below floor.
func retreatRunes(s string, floor, end, n int) int {
	i := end
	for k := 0; k < n && i > floor; k++ {
		_, size := utf8.DecodeLastRuneInString(s[floor:i])
		i -= size
	}
	return i
}

func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return s[retreatRunes(s, 0, len(s), n):]
}
