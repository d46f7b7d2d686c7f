package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/services"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/tasks"
	th "github.com/desertthunder/club100/internal/testing"
)

func sampleTimeline() []models.TrackItem {
	start := 75
	return []models.TrackItem{
		models.SongItem(models.Song{URL: "https://youtu.be/a", Title: "Shape of You", Artist: "Ed Sheeran", Start: &start}),
		models.SnippetItem(models.Snippet{Kind: models.SnippetTTS, Text: "Drik!"}),
		models.EffectItem(models.Effect{ID: "airhorn", Name: "Air Horn", AudioURL: "data:audio/mp3;base64,AAA"}),
		models.SongItem(models.Song{URL: "https://youtu.be/b", Title: "Never Gonna Give You Up", Artist: "Rick Astley"}),
		models.SnippetItem(models.Snippet{Kind: models.SnippetUpload, AudioURL: "https://cdn/upload.mp3"}),
	}
}

func TestExporters(t *testing.T) {
	items := sampleTimeline()

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(items)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		decoded, err := models.UnmarshalItems(data)
		if err != nil {
			t.Fatalf("exported JSON does not decode: %v", err)
		}
		if len(decoded) != len(items) {
			t.Fatalf("expected %d items, got %d", len(items), len(decoded))
		}
		if decoded[0].Song.Title != "Shape of You" || *decoded[0].Song.Start != 75 {
			t.Errorf("first song not preserved: %+v", decoded[0].Song)
		}
	})

	t.Run("ExportToJSON Empty", func(t *testing.T) {
		data, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %q", data)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(items)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Position,Type,Title,Artist,URL,Start,Text,AudioURL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,song,Shape of You,Ed Sheeran,https://youtu.be/a,75,,") {
			t.Errorf("CSV missing first song row, got: %s", output)
		}
		if !strings.Contains(output, "2,snippet,tts,,,,Drik!,") {
			t.Errorf("CSV missing snippet row, got: %s", output)
		}
		if !strings.Contains(output, "3,effect,Air Horn,,,,airhorn,") {
			t.Errorf("CSV missing effect row, got: %s", output)
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != len(items)+1 {
			t.Errorf("expected %d lines, got %d", len(items)+1, len(lines))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(items, "da")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Club 100",
			"**Language**: da",
			"**Songs**: 2",
			"**Items**: 5",
			"1. [Ed Sheeran - Shape of You](https://youtu.be/a) from 1:15",
			"2. _snippet_: Drik!",
			"3. _effect_: Air Horn",
			"5. _snippet_: [upload] https://cdn/upload.mp3",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Without Language", func(t *testing.T) {
		data, _ := ExportToMarkdown(nil, "")
		if strings.Contains(string(data), "**Language**") {
			t.Error("expected no language line")
		}
		if !strings.Contains(string(data), "**Items**: 0") {
			t.Error("expected zero item count")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(items)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Songs: 2") {
			t.Errorf("text missing song count")
		}
		if !strings.Contains(output, "4. [song] Rick Astley - Never Gonna Give You Up") {
			t.Errorf("text missing fourth item, got:\n%s", output)
		}
	})
}

func TestFormats(t *testing.T) {
	t.Run("ParseFormat", func(t *testing.T) {
		tests := []struct {
			in   string
			want Format
		}{
			{"", FormatJSON},
			{"JSON", FormatJSON},
			{"csv", FormatCSV},
			{"md", FormatMarkdown},
			{"markdown", FormatMarkdown},
			{" text ", FormatText},
			{"txt", FormatText},
		}
		for _, tt := range tests {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Errorf("ParseFormat(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		}
	})

	t.Run("ParseFormat Unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Extension", func(t *testing.T) {
		if FormatMarkdown.Extension() != "md" || FormatCSV.Extension() != "csv" {
			t.Error("unexpected extensions")
		}
	})

	t.Run("Export Unknown", func(t *testing.T) {
		if _, err := Export(nil, Format("xml"), ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("FormatOffset", func(t *testing.T) {
		for in, want := range map[int]string{0: "0:00", 9: "0:09", 75: "1:15", 600: "10:00", -4: "0:00"} {
			if got := FormatOffset(in); got != want {
				t.Errorf("FormatOffset(%d) = %q, want %q", in, got, want)
			}
		}
	})
}

func TestWriters(t *testing.T) {
	items := sampleTimeline()

	t.Run("WriteTimelineExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteTimelineExport(items, FormatCSV, "da", "")
			if err != nil {
				t.Fatalf("WriteTimelineExport failed: %v", err)
			}
			if path != "timeline.csv" {
				t.Errorf("expected timeline.csv, got %s", path)
			}
			th.AssertFileExists(t, path)

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, "Shape of You") {
				t.Error("CSV export missing track data")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "order.json")

			got, err := WriteTimelineExport(items, FormatJSON, "", path)
			if err != nil {
				t.Fatalf("WriteTimelineExport failed: %v", err)
			}
			if got != path {
				t.Errorf("expected %s, got %s", path, got)
			}

			var decoded []models.TrackItem
			if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &decoded); err != nil {
				t.Fatalf("export is not valid JSON: %v", err)
			}
			if len(decoded) != len(items) {
				t.Errorf("expected %d items, got %d", len(items), len(decoded))
			}
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing", "dir", "order.txt")
			if _, err := WriteTimelineExport(items, FormatText, "", path); err == nil {
				t.Error("expected error for missing directory")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(items, "en", "")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.Directory != "club100" {
				t.Errorf("expected club100 directory, got %s", result.Directory)
			}
			th.AssertDirExists(t, result.Directory)

			if len(result.Files) != 2 {
				t.Fatalf("expected 2 files, got %d", len(result.Files))
			}
			readme := filepath.Join(result.Directory, "README.md")
			th.AssertFileExists(t, readme)
			th.AssertFileExists(t, filepath.Join(result.Directory, "timeline.json"))

			if !strings.Contains(th.MustReadFile(t, readme), "**Language**: en") {
				t.Error("README missing language")
			}
		})

		t.Run("WithCustomDirectory", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "party")
			result, err := WriteMarkdownExport(items, "da", dir)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			th.AssertDirExists(t, dir)
			if result.Files[0] != filepath.Join(dir, "README.md") {
				t.Errorf("unexpected first file %s", result.Files[0])
			}
		})
	})

	t.Run("WriteImportReport", func(t *testing.T) {
		result := &tasks.ImportResult{
			Songs:    []models.Song{{URL: "u1"}, {URL: "u2"}},
			Found:    []string{"Ed Sheeran Shape of You", "https://youtu.be/x"},
			NotFound: []string{"zzzz no match"},
			Lines:    3,
		}

		var buf bytes.Buffer
		if err := WriteImportReport(&buf, result); err != nil {
			t.Fatalf("WriteImportReport failed: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"Imported 2 of 3 lines",
			"Found (2):",
			"✓ Ed Sheeran Shape of You",
			"Not found (1):",
			"✗ zzzz no match",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("report missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("WriteImportReport Nothing Missing", func(t *testing.T) {
		var buf bytes.Buffer
		_ = WriteImportReport(&buf, &tasks.ImportResult{Found: []string{"a"}, Songs: []models.Song{{URL: "a"}}, Lines: 1})
		if strings.Contains(buf.String(), "Not found") {
			t.Error("expected no not-found section")
		}
	})

	t.Run("WriteImportReport Write Error", func(t *testing.T) {
		if err := WriteImportReport(&th.FWriter{}, &tasks.ImportResult{}); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("WriteSongs", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteSongs(&buf, []models.Song{
			{URL: "https://youtu.be/a", Title: "Shape of You", Artist: "Ed Sheeran"},
			{URL: "https://youtu.be/b"},
		})
		if err != nil {
			t.Fatalf("WriteSongs failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "1. Ed Sheeran - Shape of You") {
			t.Errorf("missing first song, got:\n%s", output)
		}
		if !strings.Contains(output, "2. https://youtu.be/b") {
			t.Errorf("untitled song should fall back to URL, got:\n%s", output)
		}
	})

	t.Run("WriteSongs Empty", func(t *testing.T) {
		var buf bytes.Buffer
		_ = WriteSongs(&buf, nil)
		if buf.String() != "No results\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("WriteSongs Write Error", func(t *testing.T) {
		if err := WriteSongs(&th.FWriter{}, nil); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestJobListings(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("WriteRenderJobs", func(t *testing.T) {
		done := models.RestoreRenderJob("id-1", "job-abc", "da", models.JobCompleted,
			"http://worker/download/job-abc", "club100.mp3", 12, "", now.Add(-2*time.Hour), now.Add(-2*time.Hour))
		failed := models.RestoreRenderJob("id-2", "", "en", models.JobFailed,
			"", "", 3, "worker down", now.Add(-3*24*time.Hour), now.Add(-3*24*time.Hour))

		var buf bytes.Buffer
		if err := WriteRenderJobs(&buf, []*models.RenderJob{done, failed}, now); err != nil {
			t.Fatalf("WriteRenderJobs failed: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"job-abc", "completed", "12 items", "2 hours ago", "http://worker/download/job-abc",
			"id-2", "failed", "3 days ago", "error: worker down",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("job list missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("WriteRenderJobs Empty", func(t *testing.T) {
		var buf bytes.Buffer
		_ = WriteRenderJobs(&buf, nil, now)
		if buf.String() != "No render jobs\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("WriteWorkerJobs", func(t *testing.T) {
		jobs := []services.WorkerJob{
			{ID: "w1", Status: "done", CreatedAt: now.Add(-5 * time.Minute).Format(time.RFC3339), OutputPath: "/out/w1.mp3"},
			{ID: "w2", Status: "running", CreatedAt: "garbage"},
		}

		var buf bytes.Buffer
		if err := WriteWorkerJobs(&buf, jobs, now); err != nil {
			t.Fatalf("WriteWorkerJobs failed: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"w1", "5 minutes ago", "/out/w1.mp3", "w2", "unknown"} {
			if !strings.Contains(output, want) {
				t.Errorf("worker job list missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("WriteWorkerJobs Write Error", func(t *testing.T) {
		if err := WriteWorkerJobs(&th.FWriter{}, nil, now); err == nil {
			t.Error("expected write error")
		}
	})
}
