package model

// GestionRecord is one case-management ("gestión") form response tied to an
// episode. All fields are free text, exactly as exported by the form backend.
type GestionRecord struct {
	Episode             string `json:"episodio"`
	LastModified        string `json:"ultimaModificacion"`
	RequestedAction     string `json:"gestionSolicitada"`
	AdmissionDate       string `json:"fechaAdmision"`
	DischargeDate       string `json:"fechaAlta"`
	Bed                 string `json:"cama"`
	AdmissionDiagnosis  string `json:"diagnosticoAdmision"`
	Agreement           string `json:"convenio"`
	InsurerName         string `json:"nombreAseguradora"`
	PartialValue        string `json:"valorParcial"`
	Completed           string `json:"concretado"`
	HospitalizationDays string `json:"diasHospitalizacion"`
}

// EpisodeGestiones is the response for a per-episode gestión lookup.
type EpisodeGestiones struct {
	EpisodeID string           `json:"episodioCmbd"`
	Total     int              `json:"total"`
	Episodes  []*GestionRecord `json:"episodios"`
}
