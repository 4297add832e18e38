// Package export turns query results back into cataloged datasets so they
// can be queried like any upload.
package export

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sucharith-p/personal-data-lake/internal/codec"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
	"github.com/sucharith-p/personal-data-lake/internal/service/ingest"
)

// Service runs a query and ingests its result set as a new dataset.
type Service struct {
	engine  domain.QueryEngine
	ingest  *ingest.Service
	logger  *slog.Logger
	nowFunc func() time.Time // injectable for default-name tests
}

// NewService creates an export service.
func NewService(engine domain.QueryEngine, ingestSvc *ingest.Service, logger *slog.Logger) *Service {
	return &Service{engine: engine, ingest: ingestSvc, logger: logger, nowFunc: time.Now}
}

// Export executes sqlQuery and stores the result under name in the given
// format. An unrecognized format is rejected before anything runs, and an
// empty result set is rejected before anything is written.
func (s *Service) Export(ctx context.Context, sqlQuery, format, name string) (*domain.DatasetRecord, error) {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sqlQuery) == "" {
		return nil, domain.ErrValidation("query is required")
	}

	result, err := s.engine.Run(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	if result.RowCount == 0 {
		return nil, domain.ErrEmptyResult("query returned no rows")
	}

	if name == "" {
		name = "export_" + s.nowFunc().UTC().Format("20060102_150405")
	}
	displayName := name + "." + string(f)

	ds := &codec.Dataset{Columns: result.Columns, Rows: result.Rows}
	record, err := s.ingest.Ingest(ctx, displayName, ds, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("query result exported",
		"dataset", displayName, "rows", result.RowCount, "format", string(f))
	return record, nil
}
