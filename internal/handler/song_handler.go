package handler

import (
	"fmt"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"karaoke/internal/model"
	"karaoke/internal/repository"
	"karaoke/internal/service"
)

// SongHandler handles catalog endpoints.
type SongHandler struct {
	songService service.SongService
}

// NewSongHandler creates a new song handler.
func NewSongHandler(songService service.SongService) *SongHandler {
	return &SongHandler{songService: songService}
}

// UploadSongRequest represents a catalog upload. FileData is base64.
// The format falls back to FileName's extension, then to "kar".
type UploadSongRequest struct {
	Title      string `json:"title" validate:"required"`
	Artist     string `json:"artist" validate:"required"`
	Genre      string `json:"genre"`
	FileData   string `json:"file_data" validate:"required"`
	FileFormat string `json:"file_format"`
	FileName   string `json:"file_name"`
	Duration   int    `json:"duration" validate:"gte=0"`
}

// SongsResponse lists catalog songs.
type SongsResponse struct {
	Songs []model.Song `json:"songs"`
}

// SongResponse carries one song after an upload.
type SongResponse struct {
	Success bool        `json:"success"`
	Song    *model.Song `json:"song"`
}

// ListSongs godoc
// @Summary List catalog songs
// @Tags songs
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on title or artist"
// @Param genre query string false "Exact genre"
// @Success 200 {object} SongsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /songs [get]
func (h *SongHandler) ListSongs(c echo.Context) error {
	songs, err := h.songService.List(c.Request().Context(), repository.SongFilter{
		Search: c.QueryParam("search"),
		Genre:  c.QueryParam("genre"),
	})
	if err != nil {
		return fail(c, err)
	}
	if songs == nil {
		songs = []model.Song{}
	}
	return c.JSON(http.StatusOK, SongsResponse{Songs: songs})
}

// UploadSong godoc
// @Summary Upload a song file and add it to the catalog
// @Tags songs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadSongRequest true "Song data"
// @Success 201 {object} SongResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /songs [post]
func (h *SongHandler) UploadSong(c echo.Context) error {
	var req UploadSongRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	song, err := h.songService.Upload(c.Request().Context(), service.UploadSongInput{
		Title:      req.Title,
		Artist:     req.Artist,
		Genre:      req.Genre,
		FileData:   req.FileData,
		FileFormat: req.FileFormat,
		FileName:   req.FileName,
		Duration:   req.Duration,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, SongResponse{Success: true, Song: song})
}

// DownloadSong godoc
// @Summary Stream the stored file of a catalog song
// @Tags songs
// @Produce octet-stream
// @Security BearerAuth
// @Param id query int true "Song ID"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /songs/file [get]
func (h *SongHandler) DownloadSong(c echo.Context) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}

	song, body, err := h.songService.OpenFile(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", path.Base(song.FileKey)))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, body)
}
