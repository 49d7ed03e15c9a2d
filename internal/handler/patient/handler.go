package patient

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docmanage/opd-api/internal/handler"
	"github.com/docmanage/opd-api/internal/middleware"
	"github.com/docmanage/opd-api/internal/model"
	"github.com/docmanage/opd-api/internal/service/registry"
	"github.com/docmanage/opd-api/pkg/whatsapp"
)

type Handler struct {
	svc *registry.Service
}

func NewHandler(svc *registry.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	grp := r.Group("/patients")
	{
		grp.GET("", h.List)
		grp.GET("/stats", h.Stats)
		grp.POST("/refresh", h.Refresh)
		grp.GET("/:id", h.Get)
		grp.PUT("/:id", h.Update)
		grp.GET("/:id/history", h.History)
		grp.GET("/:id/whatsapp-link", h.WhatsAppLink)
	}
}

// List returns the actor's visible patients, optionally narrowed by the
// q search parameter (name or phone substring).
func (h *Handler) List(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	patients := h.svc.Search(actor, c.Query("q"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) Stats(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.svc.Stats(actor)))
}

// Refresh re-fetches the sheet and merges it into the canonical set. On
// fetch failure the last-known-good set stays intact and the client gets
// a user-visible message.
func (h *Handler) Refresh(c *gin.Context) {
	count, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse("Failed to fetch data from Google Sheet."))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"patients": count}))
}

func (h *Handler) Get(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	p, err := h.svc.Patient(actor, c.Param("id"))
	if err != nil {
		h.notFound(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	var req model.PatientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)
	p, err := h.svc.UpdatePatient(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, registry.ErrPatientNotFound) {
			h.notFound(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) History(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	p, err := h.svc.Patient(actor, c.Param("id"))
	if err != nil {
		h.notFound(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p.History))
}

// WhatsAppLink returns the templated wa.me link for the patient's
// follow-up message.
func (h *Handler) WhatsAppLink(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	p, err := h.svc.Patient(actor, c.Param("id"))
	if err != nil {
		h.notFound(c, err)
		return
	}
	link := whatsapp.FollowUpLink(p.WhatsAppNumber, p.Name, p.InternalMessage)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"link": link}))
}

// notFound covers both a missing identity and one outside the actor's
// visibility; the two are indistinguishable on purpose.
func (h *Handler) notFound(c *gin.Context, _ error) {
	c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
}
