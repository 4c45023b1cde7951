package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospitalops/estadia-api/internal/model"
	"github.com/hospitalops/estadia-api/internal/normalize"
	"github.com/hospitalops/estadia-api/internal/risk"
)

// Patient export columns, byte-for-byte as they appear in the CMBD/GRD CSV.
// The doubled interior spaces are real.
const (
	colEpisode   = "Episodio CMBD"
	colName      = "Nombre"
	colRUT       = "RUT"
	colAge       = "Edad en años"
	colSex       = "Sexo  (Desc)"
	colDiagnosis = "Diagnóstico   Principal"
	colService   = "Servicio Ingreso (Descripción)"
	colAdmission = "Fecha Ingreso completa"
	colDischarge = "Fecha Completa"
	colSeverity  = "IR Gravedad  (desc)"
	colMortality = "IR Mortalidad (desc)"
	colStay      = "Estancia del Episodio"
	colInsurance = "Prevision (Desc)"
)

// Gestión form export columns.
const (
	colGesEpisode      = "Episodio:"
	colGesLastModified = "Última Modificación"
	colGesAction       = "¿Qué gestión se solicito?"
	colGesAdmission    = "Fecha admisión"
	colGesDischarge    = "Fecha alta"
	colGesBed          = "CAMA"
	colGesDiagnosis    = "Texto libre diagnóstico admisión"
	colGesAgreement    = "Convenio"
	colGesInsurer      = "Nombre de la aseguradora"
	colGesPartialValue = " Valor parcial "
	colGesCompleted    = "concretado"
	colGesDays         = "Días Hospitalización"
)

// Defaults shown to the operator when source data is missing. They are
// deliberately visible in the UI as a signal of incomplete exports.
const (
	defaultEpisode   = "Sin episodio"
	defaultName      = "Paciente"
	defaultRUT       = "12.345.678-9"
	defaultDiagnosis = "Sin diagnóstico"
	defaultService   = "Sin servicio"
	defaultInsurance = "Sin previsión"
)

// Mapper converts raw CSV rows into canonical records. Mapping never fails:
// a malformed row degrades to documented defaults, and the returned warnings
// say what was defaulted.
type Mapper struct {
	classifier *risk.Classifier
	logger     zerolog.Logger
	now        func() time.Time
}

func NewMapper(classifier *risk.Classifier, logger zerolog.Logger) *Mapper {
	return &Mapper{
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// MapRow builds a PatientEpisode from one raw row. If anything panics while
// mapping, a fully-defaulted placeholder is returned so that one bad row
// never aborts the batch.
func (m *Mapper) MapRow(raw map[string]string) (p *model.PatientEpisode, warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			p = m.placeholder()
			warnings = append(warnings, fmt.Sprintf("fila irrecuperable, registro por defecto sustituido: %v", r))
		}
	}()

	now := m.now()

	episode := strings.TrimSpace(raw[colEpisode])
	id := episode
	if id == "" {
		id = syntheticID()
		warnings = append(warnings, "episodio ausente, id sintético asignado: "+id)
		m.logger.Warn().
			Str("synthetic_id", id).
			Msg("fila sin episodio CMBD; el id generado no es estable entre recargas")
	}
	if episode == "" {
		episode = defaultEpisode
	}

	age := 0
	if s := strings.TrimSpace(raw[colAge]); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			warnings = append(warnings, fmt.Sprintf("edad no numérica %q, usando 0", s))
		} else {
			age = v
		}
	}

	admission := normalize.ParseDate(raw[colAdmission])
	if admission == nil {
		if strings.TrimSpace(raw[colAdmission]) != "" {
			warnings = append(warnings, fmt.Sprintf("fecha de ingreso inválida %q, usando fecha actual", raw[colAdmission]))
		}
		admission = &now
	}

	discharge := normalize.ParseDate(raw[colDischarge])
	if discharge == nil && strings.TrimSpace(raw[colDischarge]) != "" {
		warnings = append(warnings, fmt.Sprintf("fecha de egreso inválida %q, ignorada", raw[colDischarge]))
	}

	stay := 0
	if s := strings.TrimSpace(raw[colStay]); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			warnings = append(warnings, fmt.Sprintf("estancia no numérica %q, usando 0", s))
		} else {
			stay = v
		}
	} else {
		// Column absent: derive from the admission date.
		end := now
		if discharge != nil {
			end = *discharge
		}
		stay = normalize.DaysBetween(*admission, end)
	}

	severity := raw[colSeverity]
	mortality := raw[colMortality]

	return &model.PatientEpisode{
		ID:               id,
		EpisodeID:        episode,
		Name:             defaulted(raw[colName], defaultName),
		RUT:              defaulted(raw[colRUT], defaultRUT),
		Age:              age,
		Sex:              mapSex(raw[colSex]),
		Diagnosis:        defaulted(raw[colDiagnosis], defaultDiagnosis),
		Service:          defaulted(raw[colService], defaultService),
		AdmissionDate:    *admission,
		DischargeDate:    discharge,
		LengthOfStayDays: stay,
		Severity:         strings.TrimSpace(severity),
		Mortality:        strings.TrimSpace(mortality),
		Insurance:        defaulted(raw[colInsurance], defaultInsurance),
		RiskTier:         m.classifier.Classify(stay, nil, severity, mortality),
		Status:           m.classifier.DeriveStatus(discharge, stay),
		CreatedAt:        *admission,
		UpdatedAt:        *admission,
	}, warnings
}

// MapGestionRow builds a GestionRecord. Every field is free text; missing
// columns become empty strings.
func (m *Mapper) MapGestionRow(raw map[string]string) *model.GestionRecord {
	return &model.GestionRecord{
		Episode:             strings.TrimSpace(raw[colGesEpisode]),
		LastModified:        raw[colGesLastModified],
		RequestedAction:     raw[colGesAction],
		AdmissionDate:       raw[colGesAdmission],
		DischargeDate:       raw[colGesDischarge],
		Bed:                 raw[colGesBed],
		AdmissionDiagnosis:  raw[colGesDiagnosis],
		Agreement:           raw[colGesAgreement],
		InsurerName:         raw[colGesInsurer],
		PartialValue:        strings.TrimSpace(raw[colGesPartialValue]),
		Completed:           raw[colGesCompleted],
		HospitalizationDays: raw[colGesDays],
	}
}

// placeholder is the fully-defaulted record substituted when mapping blows
// up entirely.
func (m *Mapper) placeholder() *model.PatientEpisode {
	now := m.now()
	id := syntheticID()
	return &model.PatientEpisode{
		ID:            id,
		EpisodeID:     defaultEpisode,
		Name:          defaultName,
		RUT:           defaultRUT,
		Sex:           model.SexFemale,
		Diagnosis:     defaultDiagnosis,
		Service:       defaultService,
		AdmissionDate: now,
		Insurance:     defaultInsurance,
		RiskTier:      m.classifier.Classify(0, nil, "", ""),
		Status:        m.classifier.DeriveStatus(nil, 0),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// mapSex reproduces the lossy binary mapping of the source data: anything
// that does not look male is tagged female. There is no unknown category.
func mapSex(s string) string {
	if strings.Contains(strings.ToLower(s), "hombre") {
		return model.SexMale
	}
	return model.SexFemale
}

func defaulted(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func syntheticID() string {
	return uuid.NewString()[:9]
}
