package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/http/response"
	"github.com/briarkeep/briarkeep-backend/internal/platform/apierr"
	"github.com/briarkeep/briarkeep-backend/internal/platform/ctxutil"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
	"github.com/briarkeep/briarkeep-backend/internal/services"
)

type CollectionHandler struct {
	log        *logger.Logger
	collection services.CollectionService
}

func NewCollectionHandler(log *logger.Logger, collection services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		log:        log.With("handler", "CollectionHandler"),
		collection: collection,
	}
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing identity"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func tagsJSON(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return datatypes.JSON(raw)
}

type pipeRequest struct {
	Maker         string   `json:"maker" binding:"required"`
	Name          string   `json:"name"`
	Shape         string   `json:"shape"`
	Material      string   `json:"material"`
	FocusTags     []string `json:"focus_tags"`
	ChamberVolume float64  `json:"chamber_volume"`
	Notes         string   `json:"notes"`
}

// GET /api/collection/pipes
func (ch *CollectionHandler) ListPipes(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	pipes, err := ch.collection.ListPipes(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_pipes_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"pipes": pipes})
}

// POST /api/collection/pipes
func (ch *CollectionHandler) CreatePipe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req pipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pipe, err := ch.collection.CreatePipe(c.Request.Context(), userID, &types.Pipe{
		Maker:         req.Maker,
		Name:          req.Name,
		Shape:         req.Shape,
		Material:      req.Material,
		FocusTags:     tagsJSON(req.FocusTags),
		ChamberVolume: req.ChamberVolume,
		Notes:         req.Notes,
	})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "create_pipe_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pipe": pipe})
}

// PATCH /api/collection/pipes/:pipe_id
func (ch *CollectionHandler) UpdatePipe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	pipeID, ok := pathUUID(c, "pipe_id")
	if !ok {
		return
	}
	fields, ok := ch.bindPipeUpdate(c)
	if !ok {
		return
	}
	pipe, err := ch.collection.UpdatePipe(c.Request.Context(), userID, pipeID, fields)
	if err != nil {
		ch.respondCollectionError(c, "update_pipe_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"pipe": pipe})
}

// DELETE /api/collection/pipes/:pipe_id
func (ch *CollectionHandler) DeletePipe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	pipeID, ok := pathUUID(c, "pipe_id")
	if !ok {
		return
	}
	if err := ch.collection.DeletePipe(c.Request.Context(), userID, pipeID); err != nil {
		ch.respondCollectionError(c, "delete_pipe_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/collection/pipes/:pipe_id/photo
func (ch *CollectionHandler) UploadPipePhoto(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	pipeID, ok := pathUUID(c, "pipe_id")
	if !ok {
		return
	}
	url, err := ch.collection.UploadPipePhoto(c.Request.Context(), userID, pipeID, c.ContentType(), c.Request.Body)
	if err != nil {
		ch.respondCollectionError(c, "upload_photo_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"photo_url": url})
}

// DELETE /api/collection/pipes/:pipe_id/photo
func (ch *CollectionHandler) DeletePipePhoto(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	pipeID, ok := pathUUID(c, "pipe_id")
	if !ok {
		return
	}
	if err := ch.collection.DeletePipePhoto(c.Request.Context(), userID, pipeID); err != nil {
		ch.respondCollectionError(c, "delete_photo_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type blendRequest struct {
	Name         string   `json:"name" binding:"required"`
	Brand        string   `json:"brand"`
	BlendType    string   `json:"blend_type"`
	FocusTags    []string `json:"focus_tags"`
	TinsInCellar int      `json:"tins_in_cellar"`
	OpenTins     int      `json:"open_tins"`
	Rating       int      `json:"rating"`
	Notes        string   `json:"notes"`
}

// GET /api/collection/blends
func (ch *CollectionHandler) ListBlends(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	blends, err := ch.collection.ListBlends(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_blends_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"blends": blends})
}

// POST /api/collection/blends
func (ch *CollectionHandler) CreateBlend(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req blendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	blend, err := ch.collection.CreateBlend(c.Request.Context(), userID, &types.Blend{
		Name:         req.Name,
		Brand:        req.Brand,
		BlendType:    req.BlendType,
		FocusTags:    tagsJSON(req.FocusTags),
		TinsInCellar: req.TinsInCellar,
		OpenTins:     req.OpenTins,
		Rating:       req.Rating,
		Notes:        req.Notes,
	})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "create_blend_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"blend": blend})
}

// PATCH /api/collection/blends/:blend_id
func (ch *CollectionHandler) UpdateBlend(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	blendID, ok := pathUUID(c, "blend_id")
	if !ok {
		return
	}
	fields, ok := ch.bindBlendUpdate(c)
	if !ok {
		return
	}
	blend, err := ch.collection.UpdateBlend(c.Request.Context(), userID, blendID, fields)
	if err != nil {
		ch.respondCollectionError(c, "update_blend_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"blend": blend})
}

// DELETE /api/collection/blends/:blend_id
func (ch *CollectionHandler) DeleteBlend(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	blendID, ok := pathUUID(c, "blend_id")
	if !ok {
		return
	}
	if err := ch.collection.DeleteBlend(c.Request.Context(), userID, blendID); err != nil {
		ch.respondCollectionError(c, "delete_blend_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/collection/blends/:blend_id/photo
func (ch *CollectionHandler) UploadBlendPhoto(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	blendID, ok := pathUUID(c, "blend_id")
	if !ok {
		return
	}
	url, err := ch.collection.UploadBlendPhoto(c.Request.Context(), userID, blendID, c.ContentType(), c.Request.Body)
	if err != nil {
		ch.respondCollectionError(c, "upload_photo_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"photo_url": url})
}

// DELETE /api/collection/blends/:blend_id/photo
func (ch *CollectionHandler) DeleteBlendPhoto(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	blendID, ok := pathUUID(c, "blend_id")
	if !ok {
		return
	}
	if err := ch.collection.DeleteBlendPhoto(c.Request.Context(), userID, blendID); err != nil {
		ch.respondCollectionError(c, "delete_photo_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/collection/profile
func (ch *CollectionHandler) GetProfile(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	profile, err := ch.collection.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "get_profile_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"profile": profile})
}

// PUT /api/collection/profile
func (ch *CollectionHandler) PutProfile(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req struct {
		PreferredStyles  []string `json:"preferred_styles"`
		SmokingFrequency string   `json:"smoking_frequency"`
		Goals            []string `json:"goals"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	profile, err := ch.collection.PutProfile(c.Request.Context(), userID, &types.PreferenceProfile{
		PreferredStyles:  tagsJSON(req.PreferredStyles),
		SmokingFrequency: req.SmokingFrequency,
		Goals:            tagsJSON(req.Goals),
	})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "put_profile_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"profile": profile})
}

// bindPipeUpdate turns a partial-update body into the field map the service
// applies. Only fields present in the JSON are touched.
func (ch *CollectionHandler) bindPipeUpdate(c *gin.Context) (map[string]interface{}, bool) {
	var req struct {
		Maker         *string   `json:"maker"`
		Name          *string   `json:"name"`
		Shape         *string   `json:"shape"`
		Material      *string   `json:"material"`
		FocusTags     *[]string `json:"focus_tags"`
		ChamberVolume *float64  `json:"chamber_volume"`
		Notes         *string   `json:"notes"`
		LastSmokedAt  *string   `json:"last_smoked_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	fields := map[string]interface{}{}
	if req.Maker != nil {
		fields["maker"] = *req.Maker
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Shape != nil {
		fields["shape"] = *req.Shape
	}
	if req.Material != nil {
		fields["material"] = *req.Material
	}
	if req.FocusTags != nil {
		fields["focus_tags"] = tagsJSON(*req.FocusTags)
	}
	if req.ChamberVolume != nil {
		fields["chamber_volume"] = *req.ChamberVolume
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.LastSmokedAt != nil {
		fields["last_smoked_at"] = *req.LastSmokedAt
	}
	if len(fields) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("no changes provided"))
		return nil, false
	}
	return fields, true
}

func (ch *CollectionHandler) bindBlendUpdate(c *gin.Context) (map[string]interface{}, bool) {
	var req struct {
		Name         *string   `json:"name"`
		Brand        *string   `json:"brand"`
		BlendType    *string   `json:"blend_type"`
		FocusTags    *[]string `json:"focus_tags"`
		TinsInCellar *int      `json:"tins_in_cellar"`
		OpenTins     *int      `json:"open_tins"`
		Rating       *int      `json:"rating"`
		Notes        *string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Brand != nil {
		fields["brand"] = *req.Brand
	}
	if req.BlendType != nil {
		fields["blend_type"] = *req.BlendType
	}
	if req.FocusTags != nil {
		fields["focus_tags"] = tagsJSON(*req.FocusTags)
	}
	if req.TinsInCellar != nil {
		fields["tins_in_cellar"] = *req.TinsInCellar
	}
	if req.OpenTins != nil {
		fields["open_tins"] = *req.OpenTins
	}
	if req.Rating != nil {
		fields["rating"] = *req.Rating
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if len(fields) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("no changes provided"))
		return nil, false
	}
	return fields, true
}

func (ch *CollectionHandler) respondCollectionError(c *gin.Context, code string, err error) {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		response.RespondError(c, ae.Status, ae.Code, ae.Err)
	case errors.Is(err, services.ErrPipeNotFound), errors.Is(err, services.ErrBlendNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, code, err)
	}
}
