package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messenger/internal/service"
	apperrors "messenger/pkg/errors"
	"messenger/pkg/logger"
)

type MessageHandler struct {
	messageService service.MessageService
	log            logger.Logger
}

func NewMessageHandler(messageService service.MessageService, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		log:            log,
	}
}

type CreateMessageRequest struct {
	SenderID   int64  `json:"senderId" binding:"required"`
	ReceiverID int64  `json:"receiverId" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

type EditMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// History — GET /messages/:senderId/:receiverId, переписка пары по
// возрастанию времени. Пустая переписка — пустой массив, не 404.
func (h *MessageHandler) History(c *gin.Context) {
	senderID, err1 := strconv.ParseInt(c.Param("senderId"), 10, 64)
	receiverID, err2 := strconv.ParseInt(c.Param("receiverId"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ids"})
		return
	}

	messages, err := h.messageService.History(c.Request.Context(), senderID, receiverID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) Create(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	message, err := h.messageService.Create(c.Request.Context(), req.SenderID, req.ReceiverID, req.Text)
	if err != nil {
		h.log.Warn("Create message failed", "error", err)
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, message)
}

func (h *MessageHandler) Edit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	message, err := h.messageService.Edit(c.Request.Context(), id, req.Text)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Your message was updated",
		"data":    message,
	})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your message was deleted"})
}

// Upload — multipart {senderId, receiverId, image...}; сообщение
// создается с путями сохраненных файлов и пустым текстом.
func (h *MessageHandler) Upload(c *gin.Context) {
	senderID, err1 := strconv.ParseInt(c.PostForm("senderId"), 10, 64)
	receiverID, err2 := strconv.ParseInt(c.PostForm("receiverId"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sender or receiver id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	var files []service.UploadFile
	for _, fh := range form.File["image"] {
		f, err := fh.Open()
		if err != nil {
			h.log.Error("Failed to open uploaded file", "error", err, "name", fh.Filename)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload images error"})
			return
		}
		defer f.Close()
		files = append(files, service.UploadFile{Name: fh.Filename, Content: f})
	}

	message, err := h.messageService.Upload(c.Request.Context(), senderID, receiverID, files)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, message)
}
