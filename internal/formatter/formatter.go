// package formatter renders timelines, import reports and render jobs for output (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/services"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/tasks"
	"github.com/dustin/go-humanize"
)

// Format names a timeline export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts the names and common aliases of the supported export formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// Extension is the file extension used when writing the format.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Export renders items in the given format.
func Export(items []models.TrackItem, format Format, language string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(items)
	case FormatCSV:
		return ExportToCSV(items)
	case FormatMarkdown:
		return ExportToMarkdown(items, language)
	case FormatText:
		return ExportToText(items)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

// ExportToJSON writes the timeline in the same shape the render worker accepts.
func ExportToJSON(items []models.TrackItem) ([]byte, error) {
	if items == nil {
		items = []models.TrackItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts a timeline to CSV with columns: Position, Type, Title, Artist, URL, Start, Text, AudioURL
func ExportToCSV(items []models.TrackItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Type", "Title", "Artist", "URL", "Start", "Text", "AudioURL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range items {
		if err := writer.Write(csvRecord(i+1, item)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func csvRecord(pos int, item models.TrackItem) []string {
	record := []string{strconv.Itoa(pos), string(item.Type), "", "", "", "", "", ""}
	switch {
	case item.Song != nil:
		record[2] = item.Song.Title
		record[3] = item.Song.Artist
		record[4] = item.Song.URL
		if item.Song.Start != nil {
			record[5] = strconv.Itoa(*item.Song.Start)
		}
	case item.Snippet != nil:
		record[2] = string(item.Snippet.Kind)
		record[6] = item.Snippet.Text
		record[7] = item.Snippet.AudioURL
	case item.Effect != nil:
		record[2] = item.Effect.Name
		record[6] = item.Effect.ID
		record[7] = item.Effect.AudioURL
	}
	return record
}

// ExportToMarkdown renders the running order as a numbered Markdown list.
func ExportToMarkdown(items []models.TrackItem, language string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Club 100\n\n")
	if language != "" {
		buf.WriteString(fmt.Sprintf("**Language**: %s\n", language))
	}
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", models.CountSongs(items)))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(items)))

	buf.WriteString("## Running order\n\n")
	for i, item := range items {
		switch item.Type {
		case models.ItemSong:
			line := item.Label()
			if item.Song != nil && item.Song.URL != "" {
				line = fmt.Sprintf("[%s](%s)", line, item.Song.URL)
			}
			if item.Song != nil && item.Song.Start != nil {
				line += fmt.Sprintf(" from %s", FormatOffset(*item.Song.Start))
			}
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
		default:
			buf.WriteString(fmt.Sprintf("%d. _%s_: %s\n", i+1, item.Type, item.Label()))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a timeline to plain text format
func ExportToText(items []models.TrackItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Songs: %d\n", models.CountSongs(items)))
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(items)))

	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, item.Type, item.Label()))
	}

	return buf.Bytes(), nil
}

// FormatOffset renders a start offset in seconds as m:ss.
func FormatOffset(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// WriteTimelineExport writes items to path in the given format.
//
// Defaults to timeline.{ext} in the working directory.
func WriteTimelineExport(items []models.TrackItem, format Format, language, path string) (string, error) {
	if path == "" {
		path = "timeline." + format.Extension()
	}

	data, err := Export(items, format, language)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport writes a Markdown running order and a JSON copy of the timeline into outputDir.
//
// Creates {dir}/README.md and {dir}/timeline.json; the directory defaults to "club100".
func WriteMarkdownExport(items []models.TrackItem, language, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "club100"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	mdData, err := ExportToMarkdown(items, language)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}
	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	jsonData, err := ExportToJSON(items)
	if err != nil {
		return nil, err
	}
	jsonFile := filepath.Join(outputDir, "timeline.json")
	if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write timeline file: %w", err)
	}
	result.Files = append(result.Files, jsonFile)

	return result, nil
}

// WriteImportReport writes the found and not-found lines of an import.
func WriteImportReport(w io.Writer, result *tasks.ImportResult) error {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Imported %d of %d lines\n", len(result.Songs), result.Lines))

	if len(result.Found) > 0 {
		buf.WriteString(fmt.Sprintf("\nFound (%d):\n", len(result.Found)))
		for _, line := range result.Found {
			buf.WriteString(fmt.Sprintf("  ✓ %s\n", line))
		}
	}

	if len(result.NotFound) > 0 {
		buf.WriteString(fmt.Sprintf("\nNot found (%d):\n", len(result.NotFound)))
		for _, line := range result.NotFound {
			buf.WriteString(fmt.Sprintf("  ✗ %s\n", line))
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write import report: %w", err)
	}
	return nil
}

// WriteSongs writes a numbered list of search results.
func WriteSongs(w io.Writer, songs []models.Song) error {
	var buf bytes.Buffer

	if len(songs) == 0 {
		buf.WriteString("No results\n")
	}
	for i, s := range songs {
		label := s.DisplayTitle()
		if s.Artist != "" {
			label = s.Artist + " - " + label
		}
		buf.WriteString(fmt.Sprintf("%d. %s\n   %s\n", i+1, label, s.URL))
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write songs: %w", err)
	}
	return nil
}

// WriteRenderJobs writes locally recorded render submissions, ages relative to now.
func WriteRenderJobs(w io.Writer, jobs []*models.RenderJob, now time.Time) error {
	var buf bytes.Buffer

	if len(jobs) == 0 {
		buf.WriteString("No render jobs\n")
	}
	for _, job := range jobs {
		name := job.JobID()
		if name == "" {
			name = job.ID()
		}
		buf.WriteString(fmt.Sprintf("%s  %-9s  %s  %d items  %s\n",
			name, job.Status(), job.Language(), job.ItemCount(),
			humanize.RelTime(job.CreatedAt(), now, "ago", "from now")))
		switch {
		case job.DownloadURL() != "":
			buf.WriteString(fmt.Sprintf("    %s\n", job.DownloadURL()))
		case job.ErrorMessage() != "":
			buf.WriteString(fmt.Sprintf("    error: %s\n", job.ErrorMessage()))
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write render jobs: %w", err)
	}
	return nil
}

// WriteWorkerJobs writes the worker's job table, ages relative to now.
func WriteWorkerJobs(w io.Writer, jobs []services.WorkerJob, now time.Time) error {
	var buf bytes.Buffer

	if len(jobs) == 0 {
		buf.WriteString("No worker jobs\n")
	}
	for _, job := range jobs {
		age := "unknown"
		if created := job.Created(); !created.IsZero() {
			age = humanize.RelTime(created, now, "ago", "from now")
		}
		buf.WriteString(fmt.Sprintf("%s  %-9s  %s\n", job.ID, job.Status, age))
		if job.OutputPath != "" {
			buf.WriteString(fmt.Sprintf("    %s\n", job.OutputPath))
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write worker jobs: %w", err)
	}
	return nil
}
