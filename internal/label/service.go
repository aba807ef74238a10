package label

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/sensor-label/internal/extraction"
)

// ErrEmptyBatch is returned when a batch contains no documents
var ErrEmptyBatch = errors.New("at least one document is required")

const defaultConcurrency = 4

// Extractor defines the interface for label text extraction
type Extractor interface {
	// Extract converts OCR text into structured label fields
	Extract(text string) extraction.Result
}

// Document is one OCR text submitted for extraction
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// BatchResult pairs a document ID with its extraction result
type BatchResult struct {
	ID     string            `json:"id"`
	Result extraction.Result `json:"result"`
}

// Service handles label extraction and serial validation
type Service struct {
	extractor   Extractor
	concurrency int
}

// NewService creates a new Service with the default batch concurrency
func NewService(extractor Extractor) *Service {
	return NewServiceWithConcurrency(extractor, defaultConcurrency)
}

// NewServiceWithConcurrency creates a new Service that runs at most
// concurrency extractions of a batch at once
func NewServiceWithConcurrency(extractor Extractor, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// Extract runs the extractor over a single OCR text
func (s *Service) Extract(text string) extraction.Result {
	result := s.extractor.Extract(text)
	slog.Debug("Extracted label",
		"manufacturer", result.Manufacturer,
		"model", result.ModelName,
		"serial_source", result.SerialSource,
		"lot_source", result.LotSource,
		"confidence", result.Confidence,
	)
	return result
}

// Validate checks a serial number against the declared manufacturer
func (s *Service) Validate(serial, manufacturer string) bool {
	valid := extraction.ValidateSerialNumber(serial, manufacturer)
	if !valid {
		slog.Debug("Rejected serial number", "manufacturer", manufacturer, "length", len(serial))
	}
	return valid
}

// ExtractBatch extracts every document in parallel and returns the results
// in input order. Documents not yet started when ctx is cancelled are skipped
// and the batch fails.
func (s *Service) ExtractBatch(ctx context.Context, docs []Document) ([]BatchResult, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyBatch
	}

	results := make([]BatchResult, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = BatchResult{ID: doc.ID, Result: s.Extract(doc.Text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Batch extraction stopped", "documents", len(docs), "error", err)
		return nil, fmt.Errorf("extracting batch: %w", err)
	}
	return results, nil
}
