package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ledger/internal/handler"
	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/service/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		log.Warn().
			Str("username", req.Username).
			Str("client_ip", c.ClientIP()).
			Msg("Login failed")
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}
