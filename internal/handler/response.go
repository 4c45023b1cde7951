package handler

// ErrorResponse is the error envelope every endpoint uses. The dashboard
// only ever reads the "error" field.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResponse acknowledges a locally stored CSV upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// ReloadResponse reports the snapshot counts after a manual reload.
type ReloadResponse struct {
	Message   string `json:"message"`
	Patients  int    `json:"patients"`
	Gestiones int    `json:"gestiones"`
	RowErrors int    `json:"rowErrors"`
}
