package model

// PatientType classifies a patient at registration.
type PatientType string

const (
	PatientTypeNew PatientType = "New"
	PatientTypeOld PatientType = "Old"
)

func (t PatientType) Valid() bool {
	return t == PatientTypeNew || t == PatientTypeOld
}

type Patient struct {
	Base
	AppointmentDate Date        `db:"appointment_date" json:"appointment_date"`
	Name            string      `db:"name" json:"name"`
	Type            PatientType `db:"patient_type" json:"patient_type"`
	Mobile          string      `db:"mobile" json:"mobile"`
	City            string      `db:"city" json:"city"`
	Problem         string      `db:"problem" json:"problem"`
}

type RegisterPatientRequest struct {
	AppointmentDate Date   `json:"appointment_date"`
	Name            string `json:"name" binding:"required"`
	Type            string `json:"patient_type" binding:"required,patient_type"`
	Mobile          string `json:"mobile" binding:"required"`
	City            string `json:"city" binding:"required"`
	Problem         string `json:"problem" binding:"required"`
}

// PatientOrder selects the listing order of patients.
type PatientOrder int

const (
	// OrderByCreation lists patients in registration order.
	OrderByCreation PatientOrder = iota
	// OrderByAppointmentDesc lists the latest appointment first, ties by id.
	OrderByAppointmentDesc
)
