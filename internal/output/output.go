package output

import (
	"fmt"
	"io"
	"os"
)

// Report is the outcome of one run.
type Report struct {
	Tool    string   `json:"tool"`
	Version string   `json:"version"`
	Mode    string   `json:"mode"`
	Range   string   `json:"range"`
	Repo    RepoInfo `json:"repo"`
	Files   []string `json:"files,omitempty"`
	Tests   []uint64 `json:"tests"`
	Trailer string   `json:"trailer"`
}

// RepoInfo identifies the analysed repository.
type RepoInfo struct {
	Root   string `json:"root"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}
