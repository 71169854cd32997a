package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/signintech/gopdf"

	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
)

// Common DejaVuSans locations; the font carries the accented characters
// the Spanish report text needs.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Renderer produces diagnosis report PDFs.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render lays out the structured diagnosis fields into a PDF document and
// returns its bytes.
func (r *Renderer) Render(patientID string, data triage.ReportData) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load report font, install ttf-dejavu: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 18); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Reporte Médico - %s", patientID))
	pdf.Br(24)

	if err := pdf.SetFont("DejaVu", "", 10); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Fecha: %s", time.Now().Format("02/01/2006 15:04")))
	pdf.Br(24)

	sections := []struct {
		title string
		body  string
	}{
		{"Diagnóstico:", data.Diagnosis},
		{"Recetas Médicas:", data.Prescriptions},
		{"Recomendaciones:", data.Recommendations},
		{"Pruebas:", data.Tests},
	}

	for _, section := range sections {
		if section.body == "" {
			continue
		}
		if err := pdf.SetFont("DejaVu", "", 13); err != nil {
			return nil, err
		}
		pdf.Cell(nil, section.title)
		pdf.Br(16)

		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		lines, _ := pdf.SplitText(section.body, 500)
		for _, line := range lines {
			pdf.Cell(nil, line)
			pdf.Br(13)
		}
		pdf.Br(8)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
