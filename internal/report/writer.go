package report

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/samber/oops"
)

// Writer renders the digest and emits timestamp-named artifacts into the
// output directory. A failure writing one artifact does not stop the others.
type Writer struct {
	outputDir  string
	includeRSS bool
}

func NewWriter(outputDir string, includeRSS bool) *Writer {
	return &Writer{outputDir: outputDir, includeRSS: includeRSS}
}

// Paths lists where each artifact was written; empty when that artifact failed
type Paths struct {
	HTML string
	JSON string
	RSS  string
}

// Write emits the HTML report, the JSON archive, and optionally the RSS
// feed. All artifacts are attempted; the returned error joins whatever
// failed.
func (w *Writer) Write(d *digest.Digest) (Paths, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return Paths{}, oops.With("output_dir", w.outputDir).Wrapf(err, "failed to create output directory")
	}

	stamp := d.GeneratedAt.Format("20060102_150405")
	var paths Paths
	var errs []error

	if html, err := RenderHTML(d); err != nil {
		errs = append(errs, err)
	} else if p, err := w.writeFile("digest_"+stamp+".html", []byte(html)); err != nil {
		errs = append(errs, err)
	} else {
		paths.HTML = p
	}

	if data, err := RenderJSON(d); err != nil {
		errs = append(errs, err)
	} else if p, err := w.writeFile("digest_"+stamp+".json", data); err != nil {
		errs = append(errs, err)
	} else {
		paths.JSON = p
	}

	if w.includeRSS {
		if rss, err := RenderRSS(d); err != nil {
			errs = append(errs, err)
		} else if p, err := w.writeFile("digest_"+stamp+".xml", []byte(rss)); err != nil {
			errs = append(errs, err)
		} else {
			paths.RSS = p
		}
	}

	return paths, errors.Join(errs...)
}

func (w *Writer) writeFile(name string, data []byte) (string, error) {
	path := filepath.Join(w.outputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Error("Failed to write artifact", "path", path, "error", err)
		return "", oops.With("path", path).Wrap(err)
	}
	slog.Info("Saved artifact", "path", path)
	return path, nil
}
