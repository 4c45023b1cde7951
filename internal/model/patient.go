package model

import (
	"time"
)

// RiskTier is the traffic-light summary risk classification.
type RiskTier string

const (
	RiskTierGreen  RiskTier = "verde"
	RiskTierYellow RiskTier = "amarillo"
	RiskTierRed    RiskTier = "rojo"
)

// PatientStatus describes where an episode sits in the stay lifecycle.
type PatientStatus string

const (
	PatientStatusActive           PatientStatus = "activo"
	PatientStatusPendingDischarge PatientStatus = "alta_pendiente"
	PatientStatusDischarged       PatientStatus = "dado_alta"
)

// Sex values as rendered in the dashboard. The source data carries only a
// binary descriptor; anything that is not recognizably male maps to female.
const (
	SexMale   = "Masculino"
	SexFemale = "Femenino"
)

// PatientEpisode is one hospital admission-to-discharge record built from a
// CMBD/GRD CSV row. Field names in JSON match what the dashboard expects.
type PatientEpisode struct {
	ID                  string        `json:"id"`
	EpisodeID           string        `json:"episodio_cmbd"`
	Name                string        `json:"nombre"`
	RUT                 string        `json:"rut"`
	Age                 int           `json:"edad"`
	Sex                 string        `json:"sexo"`
	Diagnosis           string        `json:"diagnostico"`
	Service             string        `json:"servicio"`
	AdmissionDate       time.Time     `json:"fechaIngreso"`
	DischargeDate       *time.Time    `json:"fechaEgreso"`
	LengthOfStayDays    int           `json:"estancia"`
	Severity            string        `json:"gravedad"`
	Mortality           string        `json:"mortalidad"`
	OverstayProbability *float64      `json:"prob_sobre_estadia,omitempty"`
	Insurance           string        `json:"prevision"`
	RiskTier            RiskTier      `json:"nivel_riesgo_global"`
	Status              PatientStatus `json:"estado"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// PatientFilters compose with logical AND; zero values impose no constraint.
type PatientFilters struct {
	Search  string
	Service string
	Risk    string
	Status  string
	AgeMin  *int
	AgeMax  *int
}

// PatientPage is the paginated list response.
type PatientPage struct {
	Patients   []*PatientEpisode `json:"patients"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// PatientStats aggregates the current snapshot. Averages are rounded to one
// decimal and are zero, never NaN, on an empty collection.
type PatientStats struct {
	Total              int     `json:"total"`
	Hombres            int     `json:"hombres"`
	Mujeres            int     `json:"mujeres"`
	Activos            int     `json:"activos"`
	AltaPendiente      int     `json:"altaPendiente"`
	DadosAlta          int     `json:"dadosAlta"`
	RiesgoVerde        int     `json:"riesgoVerde"`
	RiesgoAmarillo     int     `json:"riesgoAmarillo"`
	RiesgoRojo         int     `json:"riesgoRojo"`
	EdadPromedio       float64 `json:"edadPromedio"`
	EstanciaPromedio   float64 `json:"estanciaPromedio"`
	ServiciosUnicos    int     `json:"serviciosUnicos"`
	DiagnosticosUnicos int     `json:"diagnosticosUnicos"`
}

// CreatePatientRequest adds a display-only patient to the overlay list. The
// entry is never written back to the source CSV and disappears on reload.
type CreatePatientRequest struct {
	Name          string `json:"nombre" binding:"required"`
	RUT           string `json:"rut" binding:"required"`
	Age           int    `json:"edad" binding:"gte=0"`
	Sex           string `json:"sexo"`
	Diagnosis     string `json:"diagnostico"`
	Service       string `json:"servicio"`
	Insurance     string `json:"prevision"`
	AdmissionDate string `json:"fechaIngreso"`
}
