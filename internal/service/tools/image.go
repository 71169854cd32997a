package tools

import (
	"context"
	"fmt"
	"log"
)

// ImagePoster delivers a medical image to the doctor's endpoint.
type ImagePoster interface {
	Post(ctx context.Context, patientID, filename string, image []byte) error
}

// ImageDelivery sends an uploaded medical image to the doctor after the
// patient consents. It is invoked from the upload endpoint rather than by
// intent dispatch.
type ImageDelivery struct {
	confirmer Confirmer
	poster    ImagePoster
}

func NewImageDelivery(confirmer Confirmer, poster ImagePoster) *ImageDelivery {
	return &ImageDelivery{confirmer: confirmer, poster: poster}
}

// Deliver asks for consent and posts the image. Declines and ambiguous
// answers cancel the delivery.
func (t *ImageDelivery) Deliver(ctx context.Context, patientID, filename string, image []byte, patientAnswer string) Outcome {
	prompt := fmt.Sprintf(`Está a punto de enviarse una imagen médica a su doctor.
Paciente: %s

¿Desea continuar con el envío de la imagen? Responda "Sí" para confirmar o "No" para cancelar.

Respuesta del paciente: %s`, patientID, patientAnswer)

	confirmed, err := t.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return Outcome{Status: StatusError, Message: "No se pudo confirmar el envío de la imagen."}
	}
	if !confirmed {
		return Outcome{Status: StatusCancelled, Message: "Paciente optó por no enviar la imagen médica."}
	}

	if err := t.poster.Post(ctx, patientID, filename, image); err != nil {
		log.Printf("[image] delivery failed for patient=%s: %v", patientID, err)
		return Outcome{Status: StatusError, Message: "No se pudo enviar la imagen al doctor. Inténtelo más tarde."}
	}

	return Outcome{Status: StatusSuccess, Message: "Imagen enviada correctamente a su doctor."}
}
