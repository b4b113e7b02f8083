package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/talent-backend/internal/http/handlers/common"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/storage"
)

// Разрешённые типы вложений: изображения и PDF.
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"application/pdf": true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// MediaHandler управляет загрузкой и удалением вложений.
type MediaHandler struct {
	repo    *repository.MediaRepository
	storage *storage.FileStorage
}

func NewMediaHandler(repo *repository.MediaRepository, storage *storage.FileStorage) *MediaHandler {
	return &MediaHandler{repo: repo, storage: storage}
}

// saveUpload проверяет файл по магическим байтам и сохраняет его.
// Используется загрузкой вложений и multipart-формой спора.
func saveUpload(c *gin.Context, repo *repository.MediaRepository, store *storage.FileStorage, userID uuid.UUID, file *multipart.FileHeader) (*models.MediaFile, error) {
	if file.Size == 0 {
		return nil, fmt.Errorf("файл не может быть пустым")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("неподдерживаемый формат файла %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Расширению не доверяем, тип определяют магические байты
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("не удалось прочитать файл")
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("не удалось определить тип файла")
	}
	if !allowedMimeTypes[kind.MIME.Value] {
		return nil, fmt.Errorf("неподдерживаемый тип файла (%s)", kind.MIME.Value)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("не удалось сбросить позицию файла")
	}

	relativePath, size, err := store.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		return nil, err
	}

	media := &models.MediaFile{
		UserID:   &userID,
		FileName: file.Filename,
		FilePath: filepath.ToSlash(relativePath),
		FileType: kind.MIME.Value,
		FileSize: size,
	}
	if err := repo.Create(c.Request.Context(), media); err != nil {
		return nil, err
	}
	return media, nil
}

// Upload POST /media/files
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}

	media, err := saveUpload(c, h.repo, h.storage, userID, file)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusCreated, media)
}

// Delete DELETE /media/files/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	mediaID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	media, err := h.repo.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			common.RespondError(c, http.StatusNotFound, "файл не найден")
			return
		}
		common.HandleError(c, err)
		return
	}

	// Удалять можно только свои файлы
	if media.UserID == nil || *media.UserID != userID {
		common.RespondError(c, http.StatusForbidden, "у вас нет прав на удаление этого файла")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), mediaID); err != nil {
		common.HandleError(c, err)
		return
	}

	if err := h.storage.Delete(c.Request.Context(), media.FilePath); err != nil {
		common.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
