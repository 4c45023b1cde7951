package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/hospitalops/estadia-api/internal/model"
)

// Pipeline drives a full read of a CSV export through the mapper. A missing
// or unopenable file is a hard error; individual malformed rows are soft
// failures collected as row-error strings so a partial export still loads.
type Pipeline struct {
	mapper    *Mapper
	delimiter rune
	logger    zerolog.Logger
}

func NewPipeline(mapper *Mapper, delimiter rune, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		mapper:    mapper,
		delimiter: delimiter,
		logger:    logger,
	}
}

// IngestPatients reads the CMBD/GRD export and returns the mapped episodes
// together with the per-row warnings accumulated along the way.
func (p *Pipeline) IngestPatients(path string) ([]*model.PatientEpisode, []string, error) {
	reader, err := NewReader(path, p.delimiter)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	var (
		patients  []*model.PatientEpisode
		rowErrors []string
	)
	for {
		raw, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrors = append(rowErrors, fmt.Sprintf("fila %d: %v", reader.RowNum()+1, err))
				p.logger.Warn().Err(err).Int64("row", reader.RowNum()+1).Msg("fila CSV malformada, omitida")
				continue
			}
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}

		patient, warnings := p.mapper.MapRow(raw)
		for _, w := range warnings {
			rowErrors = append(rowErrors, fmt.Sprintf("fila %d: %s", reader.RowNum(), w))
		}
		patients = append(patients, patient)
	}

	p.logger.Info().
		Str("file", path).
		Int("patients", len(patients)).
		Int("row_errors", len(rowErrors)).
		Msg("carga de pacientes completada")
	return patients, rowErrors, nil
}

// IngestGestiones reads the gestión form export. The file is optional at the
// call site; this function itself still treats an unopenable path as an error
// and lets the caller decide how much to care.
func (p *Pipeline) IngestGestiones(path string) ([]*model.GestionRecord, []string, error) {
	reader, err := NewReader(path, p.delimiter)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	var (
		records   []*model.GestionRecord
		rowErrors []string
	)
	for {
		raw, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrors = append(rowErrors, fmt.Sprintf("fila %d: %v", reader.RowNum()+1, err))
				p.logger.Warn().Err(err).Int64("row", reader.RowNum()+1).Msg("fila CSV malformada, omitida")
				continue
			}
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}

		records = append(records, p.mapper.MapGestionRow(raw))
	}

	p.logger.Info().
		Str("file", path).
		Int("gestiones", len(records)).
		Msg("carga de gestiones completada")
	return records, rowErrors, nil
}
