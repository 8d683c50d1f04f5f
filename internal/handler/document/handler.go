package document

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ledger/internal/document"
	"github.com/jwalitptl/clinic-ledger/internal/handler"
	"github.com/jwalitptl/clinic-ledger/internal/service/statement"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
)

type Handler struct {
	svc           *statement.Service
	defaultFormat document.Format
	now           func() time.Time
}

func NewHandler(svc *statement.Service, defaultFormat document.Format) *Handler {
	return &Handler{svc: svc, defaultFormat: defaultFormat, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients/:id/invoice", h.Invoice)
	r.GET("/exports/patients", h.ExportPatients)
}

// Invoice renders into memory first so a failure still produces a JSON error
// instead of a truncated file.
func (h *Handler) Invoice(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.svc.RenderInvoice(c.Request.Context(), id, &buf); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *Handler) ExportPatients(c *gin.Context) {
	format := h.defaultFormat
	if q := c.Query("format"); q != "" {
		f, err := document.ParseFormat(q)
		if err != nil {
			handler.RespondError(c, apperrors.NewBadRequest(err.Error(), err))
			return
		}
		format = f
	}

	var buf bytes.Buffer
	if err := h.svc.ExportSummary(c.Request.Context(), format, &buf); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName(h.now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
