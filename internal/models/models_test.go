package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/club100/internal/shared"
)

func intPtr(v int) *int { return &v }

func TestSongValidate(t *testing.T) {
	tests := []struct {
		name    string
		song    Song
		wantErr bool
	}{
		{"valid", Song{URL: "https://youtu.be/x", Title: "X"}, false},
		{"valid with start", Song{URL: "https://youtu.be/x", Start: intPtr(30)}, false},
		{"missing url", Song{Title: "X"}, true},
		{"negative start", Song{URL: "https://youtu.be/x", Start: intPtr(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.song.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSnippetValidate(t *testing.T) {
	tests := []struct {
		name    string
		snippet Snippet
		wantErr bool
	}{
		{"tts with text", Snippet{Kind: SnippetTTS, Text: "Skål!"}, false},
		{"tts without text", Snippet{Kind: SnippetTTS}, true},
		{"upload with url", Snippet{Kind: SnippetUpload, AudioURL: "data:audio/webm;base64,AAA"}, false},
		{"upload without url", Snippet{Kind: SnippetUpload}, true},
		{"unknown kind", Snippet{Kind: "beep", Text: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.snippet.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrackItem(t *testing.T) {
	t.Run("JSON shape", func(t *testing.T) {
		data, err := json.Marshal(SongItem(Song{URL: "u", Title: "T"}))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		want := `{"type":"song","song":{"url":"u","title":"T"}}`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}

		data, _ = json.Marshal(SnippetItem(Snippet{Kind: SnippetTTS, Text: "hi"}))
		want = `{"type":"snippet","snippet":{"type":"tts","text":"hi"}}`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := EffectItem(Effect{ID: "airhorn"}).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := (TrackItem{Type: ItemSong}).Validate(); err == nil {
			t.Error("expected error for song item without payload")
		}
		if err := (TrackItem{Type: "video"}).Validate(); !errors.Is(err, shared.ErrUnknownItemType) {
			t.Errorf("expected ErrUnknownItemType, got %v", err)
		}
	})

	t.Run("Label", func(t *testing.T) {
		tests := []struct {
			item TrackItem
			want string
		}{
			{SongItem(Song{URL: "u", Title: "Perfect", Artist: "Ed Sheeran"}), "Ed Sheeran - Perfect"},
			{SongItem(Song{URL: "u"}), "u"},
			{SnippetItem(Snippet{Kind: SnippetTTS, Text: "Skål"}), "Skål"},
			{SnippetItem(Snippet{Kind: SnippetUpload, AudioURL: "a.webm"}), "[upload] a.webm"},
			{EffectItem(Effect{ID: "horn"}), "horn"},
		}
		for _, tt := range tests {
			if got := tt.item.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		}
	})

	t.Run("Clone does not alias", func(t *testing.T) {
		orig := SongItem(Song{URL: "u", Start: intPtr(5)})
		clone := orig.Clone()
		clone.Song.URL = "changed"
		*clone.Song.Start = 99

		if orig.Song.URL != "u" || *orig.Song.Start != 5 {
			t.Errorf("clone mutated original: %+v", orig.Song)
		}
	})

	t.Run("CountSongs", func(t *testing.T) {
		items := []TrackItem{
			SongItem(Song{URL: "a"}),
			SnippetItem(Snippet{Kind: SnippetTTS, Text: "x"}),
			SongItem(Song{URL: "b"}),
		}
		if got := CountSongs(items); got != 2 {
			t.Errorf("CountSongs() = %d, want 2", got)
		}
	})
}

func TestMarshalItems(t *testing.T) {
	t.Run("nil encodes as empty array", func(t *testing.T) {
		data, err := MarshalItems(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("got %s, want []", data)
		}
	})

	t.Run("UnmarshalItems rejects invalid items", func(t *testing.T) {
		_, err := UnmarshalItems([]byte(`[{"type":"song","song":{"title":"no url"}}]`))
		if err == nil || !strings.Contains(err.Error(), "item 0") {
			t.Errorf("expected item 0 error, got %v", err)
		}
	})

	t.Run("UnmarshalItems rejects malformed JSON", func(t *testing.T) {
		if _, err := UnmarshalItems([]byte(`{`)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestRenderJob(t *testing.T) {
	job := NewRenderJob("da", 4)
	if job.Status() != JobSubmitted {
		t.Errorf("expected submitted, got %s", job.Status())
	}
	if err := job.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	job.Complete("job-1", "mix.mp3", "http://worker/download/job-1")
	if job.Status() != JobCompleted || job.JobID() != "job-1" {
		t.Errorf("unexpected job state: %s %s", job.Status(), job.JobID())
	}

	failed := NewRenderJob("en", 1)
	failed.Fail(errors.New("boom"))
	if failed.Status() != JobFailed || failed.ErrorMessage() != "boom" {
		t.Errorf("unexpected failed state: %s %q", failed.Status(), failed.ErrorMessage())
	}

	if err := NewRenderJob("", 1).Validate(); err == nil {
		t.Error("expected error for missing language")
	}
}
