package sink

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sneakerdata/stockx-crawler/internal/model"
)

// CSVSink writes one delimited file per listing page under
// <root>/<categoryPath>/page<N>.csv. Parent directories are created as
// needed and an existing page file is overwritten, so re-running a
// crawl over unchanged site state reproduces the same bytes.
type CSVSink struct {
	root   string
	logger *slog.Logger
}

func NewCSV(root string) *CSVSink {
	return &CSVSink{
		root:   root,
		logger: slog.Default().With("component", "csv_sink"),
	}
}

// WritePage commits a page's batch. An empty batch still produces a
// header-only file: a future reader can tell a visited-but-empty page
// from one never crawled.
func (s *CSVSink) WritePage(categoryPath string, page int, batch model.PageBatch) error {
	target := s.pagePath(categoryPath, page)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create category directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(model.Header()); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range batch {
		if err := writer.Write(record.Row()); err != nil {
			f.Close()
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv records: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close page file: %w", err)
	}

	s.logger.Debug("wrote page file", "path", target, "records", len(batch))
	return nil
}

// PageExists reports whether a page file from a previous run is
// already on disk.
func (s *CSVSink) PageExists(categoryPath string, page int) bool {
	_, err := os.Stat(s.pagePath(categoryPath, page))
	return err == nil
}

func (s *CSVSink) pagePath(categoryPath string, page int) string {
	return filepath.Join(s.root, filepath.FromSlash(categoryPath), fmt.Sprintf("page%d.csv", page))
}
