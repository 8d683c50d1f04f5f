package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ledger/internal/handler"
	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/service/patient"
	"github.com/jwalitptl/clinic-ledger/internal/service/statement"
	"github.com/jwalitptl/clinic-ledger/internal/service/treatment"
)

type Handler struct {
	patients   *patient.Service
	treatments *treatment.Service
	statements *statement.Service
	events     handler.EventEmitter
}

func NewHandler(patients *patient.Service, treatments *treatment.Service, statements *statement.Service, events handler.EventEmitter) *Handler {
	return &Handler{
		patients:   patients,
		treatments: treatments,
		statements: statements,
		events:     events,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.RegisterPatient)
		patients.GET("", h.ListPatients)
		patients.GET("/search", h.FindByMobile)
		patients.GET("/:id", h.GetPatient)
		patients.GET("/:id/treatment", h.GetTreatment)
		patients.PUT("/:id/treatment", h.SaveTreatment)
	}
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.patients.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.EmitEvent(c, h.events, model.EventPatientRegistered, p)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) FindByMobile(c *gin.Context) {
	mobile := c.Query("mobile")
	if mobile == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("mobile query parameter is required"))
		return
	}

	p, err := h.patients.FindByMobile(c.Request.Context(), mobile)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

// ListPatients returns patients in registration order, or latest appointment
// first with ?order=appointment.
func (h *Handler) ListPatients(c *gin.Context) {
	order := model.OrderByCreation
	switch c.Query("order") {
	case "", "created":
	case "appointment":
		order = model.OrderByAppointmentDesc
	default:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("order must be created or appointment"))
		return
	}

	patients, err := h.patients.List(c.Request.Context(), order)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if patients == nil {
		patients = []*model.Patient{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

// GetPatient returns the patient with treatment, payments, notes and totals.
func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	snap, err := h.statements.Snapshot(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(snap))
}

func (h *Handler) GetTreatment(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.treatments.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

// SaveTreatment replaces the whole treatment record. Omitted fields are
// stored empty.
func (h *Handler) SaveTreatment(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.SaveTreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.treatments.Save(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.EmitEvent(c, h.events, model.EventTreatmentSaved, record)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}
