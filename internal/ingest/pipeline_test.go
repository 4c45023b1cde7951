package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalops/estadia-api/internal/model"
)

const patientsCSV = "\ufeff" +
	"Episodio CMBD;Nombre;RUT;Edad en años;Sexo  (Desc);Diagnóstico   Principal;Servicio Ingreso (Descripción);Fecha Ingreso completa;Fecha Completa;IR Gravedad  (desc);IR Mortalidad (desc);Estancia del Episodio;Prevision (Desc)\n" +
	"EP-1;Ana Rojas;9.876.543-3;45;Mujer;Colecistitis aguda;Cirugía;02/07/2025 08:15;09/07/2025;Menor;Menor;7;FONASA\n" +
	"\n" +
	"EP-2;Luis Pérez;12.345.678-5;80;Hombre;Insuficiencia cardíaca;Medicina Interna;15/06/2025;;Mayor;Moderada;;ISAPRE\n" +
	"EP-3;;;noventa;Mujer;;;01/07/2025;;;;20;\n"

const gestionCSV = "\ufeff" +
	"Episodio:;Última Modificación;¿Qué gestión se solicito?;Fecha admisión;Fecha alta;CAMA;Texto libre diagnóstico admisión;Convenio;Nombre de la aseguradora; Valor parcial ;concretado;Días Hospitalización\n" +
	"EP-1;01/08/2025 10:00;Solicitud de rescate;02/07/2025;09/07/2025;210-A;Colecistitis;GES;Consalud;$500.000;Sí;7\n" +
	"EP-1;05/08/2025 16:20;Evaluación social;02/07/2025;;210-A;Colecistitis;GES;Consalud;;No;12\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testPipeline() *Pipeline {
	return NewPipeline(testMapper(), ';', zerolog.Nop())
}

func TestIngestPatients(t *testing.T) {
	path := writeTemp(t, "pacientes.csv", patientsCSV)

	patients, rowErrors, err := testPipeline().IngestPatients(path)
	require.NoError(t, err)

	// Three data rows; the blank line between them is skipped.
	require.Len(t, patients, 3)

	ana := patients[0]
	assert.Equal(t, "EP-1", ana.ID)
	assert.Equal(t, "Ana Rojas", ana.Name)
	assert.Equal(t, model.SexFemale, ana.Sex)
	assert.Equal(t, 7, ana.LengthOfStayDays)
	assert.Equal(t, model.PatientStatusDischarged, ana.Status)

	luis := patients[1]
	assert.Equal(t, model.SexMale, luis.Sex)
	assert.Equal(t, model.RiskTierRed, luis.RiskTier, "gravedad Mayor fuerza rojo")
	assert.Nil(t, luis.DischargeDate)
	// Stay column is empty: derived from admission (15/06) to now (20/08).
	assert.Equal(t, 67, luis.LengthOfStayDays)

	anon := patients[2]
	assert.Equal(t, "Paciente", anon.Name)
	assert.Equal(t, 0, anon.Age)

	// Row-level warnings carry the 1-based row number of the source file.
	require.NotEmpty(t, rowErrors)
	for _, e := range rowErrors {
		assert.Regexp(t, `^fila \d+: `, e)
	}
}

func TestIngestPatientsMissingFile(t *testing.T) {
	_, _, err := testPipeline().IngestPatients(filepath.Join(t.TempDir(), "no-existe.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestGestiones(t *testing.T) {
	path := writeTemp(t, "gestion.csv", gestionCSV)

	records, rowErrors, err := testPipeline().IngestGestiones(path)
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, records, 2)

	assert.Equal(t, "EP-1", records[0].Episode)
	assert.Equal(t, "Solicitud de rescate", records[0].RequestedAction)
	assert.Equal(t, "$500.000", records[0].PartialValue)
	assert.Equal(t, "Evaluación social", records[1].RequestedAction)
}
