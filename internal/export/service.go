package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the monthly report.
type Config struct {
	// Dir receives a copy of every report; empty disables writing files.
	Dir string
	// ExportOnStart runs one export right after Start.
	ExportOnStart bool
	Caption       string
}

// Service builds reports on demand and on the first day of every month.
type Service struct {
	config   Config
	source   SnapshotSource
	writer   func() ExcelWriter
	notifier Notifier
	logger   *zerolog.Logger
	now      func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewService creates the export service. notifier may be nil.
func NewService(cfg Config, source SnapshotSource, writerFactory func() ExcelWriter, notifier Notifier, logger *zerolog.Logger) *Service {
	if writerFactory == nil {
		writerFactory = NewExcelizeWriter
	}
	if cfg.Caption == "" {
		cfg.Caption = "Monthly room booking report"
	}
	l := logger.With().Str("component", "export").Logger()
	return &Service{
		config:   cfg,
		source:   source,
		writer:   writerFactory,
		notifier: notifier,
		logger:   &l,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Write renders the report for the current year to w.
func (s *Service) Write(ctx context.Context, w io.Writer) error {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read collections: %w", err)
	}

	excel := s.writer()
	defer excel.Close()

	if err := WriteReport(excel, snap, s.now().Year()); err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := excel.Save(w); err != nil {
		return fmt.Errorf("save excel: %w", err)
	}
	return nil
}

// Filename names the report of the previous month.
func (s *Service) Filename() string {
	now := s.now()
	return GenerateFilename(time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location()))
}

// RunExport builds the report, stores it in Dir and sends it through the notifier.
// It returns the path written, if any.
func (s *Service) RunExport(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := s.Write(ctx, &buf); err != nil {
		return "", err
	}

	filename := s.Filename()
	var path string
	if s.config.Dir != "" {
		if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
			return "", fmt.Errorf("create export directory: %w", err)
		}
		path = filepath.Join(s.config.Dir, filename)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		s.logger.Info().Str("path", path).Msg("Report written")
	}

	if s.notifier != nil {
		if err := s.notifier.SendDocument(ctx, filename, bytes.NewReader(buf.Bytes()), s.config.Caption); err != nil {
			return path, fmt.Errorf("send document: %w", err)
		}
		s.logger.Info().Str("filename", filename).Msg("Report sent")
	}
	return path, nil
}

// Start begins the monthly scheduler.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if s.config.ExportOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runScheduled()
		}()
	}

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().Msg("Export service started")
}

// Stop waits for a running export to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("Export service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	nextRun := s.nextFirstOfMonth()
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()
	s.logger.Info().Time("next_run", nextRun).Msg("Next export scheduled")

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.runScheduled()

			nextRun = s.nextFirstOfMonth()
			timer.Reset(time.Until(nextRun))
			s.logger.Info().Time("next_run", nextRun).Msg("Next export scheduled")
		}
	}
}

func (s *Service) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if _, err := s.RunExport(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled export failed")
	}
}

// nextFirstOfMonth is 00:01 on the first day of next month.
func (s *Service) nextFirstOfMonth() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 1, 0, 0, now.Location())
}
