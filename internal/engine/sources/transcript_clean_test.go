package sources

import "testing"

func TestCleanTranscript(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"annotations", "[Music] hello   world . This is (laughs) great !And more", "hello world. This is great! And more"},
		{"newlines", "first line\nsecond\tline", "first line second line"},
		{"sentence gap", "It works.Then it fails?Maybe", "It works. Then it fails? Maybe"},
		{"lowercase after period kept", "version 1.5 ships", "version 1.5 ships"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTranscript(tt.in); got != tt.want {
				t.Errorf("CleanTranscript(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSRT(t *testing.T) {
	srt := "\ufeff1\r\n00:00:01,000 --> 00:00:04,000\r\nHello there\r\n\r\n2\r\n00:00:05,000 --> 00:00:07,500\r\nGeneral Kenobi\r\nyou are a bold one\r\n"
	if got, want := ParseSRT(srt), "Hello there General Kenobi you are a bold one"; got != want {
		t.Errorf("ParseSRT() = %q, want %q", got, want)
	}
	if got := ParseSRT("plain text\nfile"); got != "plain text file" {
		t.Errorf("ParseSRT(plain) = %q", got)
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"not a url", ""},
		{"https://example.com/path", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractVideoID(tt.in); got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"@lexfridman", "lexfridman"},
		{"lexfridman", "lexfridman"},
		{" @naval ", "naval"},
		{"https://www.youtube.com/@naval/videos", "naval"},
		{"https://www.youtube.com/@All-In.Pod?sub=1", "All-In.Pod"},
		{"", ""},
		{"ab", ""},
		{"bad handle!", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHandle(tt.in); got != tt.want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
