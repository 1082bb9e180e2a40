package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elfworks/santa-api-go/internal/pairing"
	"github.com/elfworks/santa-api-go/pkg/auth"
	"github.com/elfworks/santa-api-go/pkg/codes"
	"github.com/elfworks/santa-api-go/pkg/mail"
	"github.com/elfworks/santa-api-go/pkg/models"
	"github.com/elfworks/santa-api-go/pkg/storage"
)

//go:embed static/* templates/*
var staticEmbed embed.FS

var revealTmpl = template.Must(template.ParseFS(staticEmbed, "templates/reveal.html"))

// codeAttempts bounds retries when a freshly minted group code collides.
const codeAttempts = 5

// Handler contains dependencies for the route handlers
type Handler struct {
	Store   storage.Store
	Mail    *mail.Dispatcher
	BaseURL string
}

// AuthMiddleware verifies the JWT token for site-admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// OrganizerMiddleware verifies the per-group HMAC token for organizer routes
func (h *Handler) OrganizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Organizer token required"})
			c.Abort()
			return
		}

		if err := auth.VerifyOrganizerToken(c.Param("code"), token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid organizer token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	// Strip "Bearer " if present
	if len(token) > 7 && token[:7] == "Bearer " {
		token = token[7:]
	}
	return token
}

// CreateGroup creates a gift-exchange group, pairs its participants and
// returns the shareable links
func (h *Handler) CreateGroup(c *gin.Context) {
	var input models.CreateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participants, ok := h.buildParticipants(c, input.Participants)
	if !ok {
		return
	}

	assignments, err := pairing.Derange(participants)
	if err != nil {
		h.pairingError(c, err)
		return
	}

	group := &models.Group{
		ID:             codes.NewID(),
		Name:           input.Name,
		OrganizerName:  input.OrganizerName,
		OrganizerEmail: input.OrganizerEmail,
		Participants:   participants,
		Assignments:    assignments,
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := codes.NewGroupCode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate group code"})
			return
		}
		group.Code = code

		err = h.Store.CreateGroup(c.Request.Context(), group)
		if errors.Is(err, storage.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not persist group"})
			return
		}

		h.recordStats(c, storage.Stats{GroupsCreated: 1, PairingsComputed: 1})
		c.JSON(http.StatusCreated, models.GroupResponse{
			ID:             group.ID,
			Code:           group.Code,
			Name:           group.Name,
			OrganizerToken: auth.OrganizerToken(group.Code),
			Links:          h.linksFor(group),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not allocate a unique group code"})
}

// GetGroup returns the public view of a group: names only, no assignments
func (h *Handler) GetGroup(c *gin.Context) {
	group, ok := h.groupByCode(c)
	if !ok {
		return
	}

	names := make([]string, 0, len(group.Participants))
	for _, p := range group.Participants {
		names = append(names, p.DisplayName())
	}

	c.JSON(http.StatusOK, gin.H{
		"code":         group.Code,
		"name":         group.Name,
		"organizer":    group.OrganizerName,
		"participants": names,
		"created_at":   group.CreatedAt,
	})
}

// RevealParticipant shows a participant their assigned receiver. Browsers
// get an HTML page, API clients get JSON.
func (h *Handler) RevealParticipant(c *gin.Context) {
	group, ok := h.groupByCode(c)
	if !ok {
		return
	}

	participant, found := group.ParticipantByID(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
		return
	}

	receiver, found := group.ReceiverFor(participant.ID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No assignment for this participant"})
		return
	}

	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		var buf bytes.Buffer
		err := revealTmpl.Execute(&buf, gin.H{
			"GroupName":   group.Name,
			"Participant": participant.DisplayName(),
			"Receiver":    receiver.DisplayName(),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not render page"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":       group.Name,
		"participant": gin.H{"id": participant.ID, "name": participant.DisplayName()},
		"receiver":    gin.H{"id": receiver.ID, "name": receiver.DisplayName()},
	})
}

// UpdateGroup edits group metadata; empty fields are left unchanged
func (h *Handler) UpdateGroup(c *gin.Context) {
	var input models.UpdateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, ok := h.groupByCode(c)
	if !ok {
		return
	}

	if input.Name != "" {
		group.Name = input.Name
	}
	if input.OrganizerName != "" {
		group.OrganizerName = input.OrganizerName
	}
	if input.OrganizerEmail != "" {
		group.OrganizerEmail = input.OrganizerEmail
	}

	if err := h.Store.UpdateGroupInfo(c.Request.Context(), group); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group updated"})
}

// ReplaceParticipants swaps the participant list for a fresh one, mints new
// ids and recomputes the assignment set. Previously issued links die.
func (h *Handler) ReplaceParticipants(c *gin.Context) {
	var input models.ReplaceParticipantsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, ok := h.groupByCode(c)
	if !ok {
		return
	}

	participants, ok := h.buildParticipants(c, input.Participants)
	if !ok {
		return
	}

	assignments, err := pairing.Derange(participants)
	if err != nil {
		h.pairingError(c, err)
		return
	}

	if err := h.Store.ReplaceParticipants(c.Request.Context(), group.ID, participants, assignments); err != nil {
		h.storeError(c, err)
		return
	}

	group.Participants = participants
	h.recordStats(c, storage.Stats{PairingsComputed: 1})
	c.JSON(http.StatusOK, models.GroupResponse{
		ID:    group.ID,
		Code:  group.Code,
		Name:  group.Name,
		Links: h.linksFor(group),
	})
}

// RegenerateAssignments reshuffles the existing participants. Ids are kept,
// so links keep resolving, but every receiver may change.
func (h *Handler) RegenerateAssignments(c *gin.Context) {
	group, ok := h.groupByCode(c)
	if !ok {
		return
	}

	assignments, err := pairing.Derange(group.Participants)
	if err != nil {
		h.pairingError(c, err)
		return
	}

	if err := h.Store.ReplaceParticipants(c.Request.Context(), group.ID, group.Participants, assignments); err != nil {
		h.storeError(c, err)
		return
	}

	h.recordStats(c, storage.Stats{PairingsComputed: 1})
	c.JSON(http.StatusOK, models.GroupResponse{
		ID:    group.ID,
		Code:  group.Code,
		Name:  group.Name,
		Links: h.linksFor(group),
	})
}

// NotifyGroup emails every participant their personal link
func (h *Handler) NotifyGroup(c *gin.Context) {
	group, ok := h.groupByCode(c)
	if !ok {
		return
	}

	sent, skipped, err := h.Mail.NotifyGroup(c.Request.Context(), group)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Notification run aborted", "sent": sent, "skipped": skipped})
		return
	}

	h.recordStats(c, storage.Stats{MailsSent: sent, MailsSkipped: skipped})
	c.JSON(http.StatusOK, gin.H{"sent": sent, "skipped": skipped})
}

// DeleteGroup removes a group entirely
func (h *Handler) DeleteGroup(c *gin.Context) {
	group, ok := h.groupByCode(c)
	if !ok {
		return
	}

	if err := h.Store.DeleteGroup(c.Request.Context(), group.ID); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// buildParticipants validates the submitted list and mints fresh ids
func (h *Handler) buildParticipants(c *gin.Context, inputs []models.ParticipantInput) ([]models.Participant, bool) {
	if len(inputs) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two participants are required"})
		return nil, false
	}

	participants := make([]models.Participant, len(inputs))
	for i, in := range inputs {
		participants[i] = models.Participant{
			ID:    codes.NewID(),
			Name:  in.Name,
			Email: in.Email,
		}
	}
	return participants, true
}

func (h *Handler) linksFor(group *models.Group) []models.ParticipantLink {
	links := make([]models.ParticipantLink, 0, len(group.Participants))
	for _, p := range group.Participants {
		links = append(links, models.ParticipantLink{
			ID:   p.ID,
			Name: p.DisplayName(),
			URL:  fmt.Sprintf("%s/groups/%s/participant/%s", h.BaseURL, group.Code, p.ID),
		})
	}
	return links
}

func (h *Handler) groupByCode(c *gin.Context) (*models.Group, bool) {
	group, err := h.Store.GroupByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.storeError(c, err)
		return nil, false
	}
	return group, true
}

func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage failure"})
}

func (h *Handler) pairingError(c *gin.Context, err error) {
	if errors.Is(err, pairing.ErrInsufficientParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two participants are required"})
		return
	}
	if errors.Is(err, pairing.ErrDerangementUnobtainable) {
		// Nothing was persisted; the whole operation can simply be retried.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not compute assignments, please retry"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *Handler) recordStats(c *gin.Context, delta storage.Stats) {
	today := time.Now().Format("2006-01-02")
	_ = h.Store.RecordStats(c.Request.Context(), today, delta)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
