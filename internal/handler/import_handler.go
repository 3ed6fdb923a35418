package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"property-crm/internal/config"
	"property-crm/internal/models"
	"property-crm/internal/service"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// SessionLister pages through recorded import sessions.
type SessionLister interface {
	GetSessions(ctx context.Context, limit, offset int) ([]models.ImportSession, int, error)
}

type ImportHandler struct {
	imports      *service.ImportService
	excelService *service.ExcelService
	sessions     SessionLister
	cfg          *config.Config
}

// NewImportHandler builds the import endpoints. sessions may be nil when no
// database is configured; the session list is then empty.
func NewImportHandler(imports *service.ImportService, sessions SessionLister, cfg *config.Config) *ImportHandler {
	return &ImportHandler{
		imports:      imports,
		excelService: service.NewExcelService(),
		sessions:     sessions,
		cfg:          cfg,
	}
}

func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	entity := c.Params("entity")
	format := strings.ToLower(c.Query("format", "csv"))

	switch format {
	case "csv":
		text, err := service.GenerateTemplate(entity)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown import entity", err)
		}
		return sendAttachment(c, "text/csv; charset=utf-8", service.TemplateFileName(entity, format), []byte(text))

	case "xlsx":
		content, err := h.excelService.TemplateXLSX(entity)
		if errors.Is(err, service.ErrUnknownEntity) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown import entity", err)
		}
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
		}
		return sendAttachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			service.TemplateFileName(entity, format), content)

	default:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Template format must be csv or xlsx", nil)
	}
}

func (h *ImportHandler) Import(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}
	if h.cfg.UploadMaxSize > 0 && file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d byte upload limit", h.cfg.UploadMaxSize), nil)
	}

	f, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read file", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read file", err)
	}

	summary, err := h.imports.Import(c.UserContext(), service.ImportRequest{
		UserID:   currentUserID(c),
		Entity:   strings.Clone(c.Params("entity")),
		Filename: file.Filename,
		Content:  content,
		DryRun:   c.QueryBool("dry_run"),
	})
	switch {
	case errors.Is(err, service.ErrUnknownEntity):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown import entity", err)
	case errors.Is(err, service.ErrUnsupportedFormat):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only .csv, .json and .xlsx files are allowed", err)
	case err != nil && isParseError(err):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse file: "+err.Error(), err)
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to import records", err)
	}

	switch {
	case summary.TotalRecords == 0:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No records found in the file",
			"data":    summary,
		})

	case summary.SuccessfulRecords == 0:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("No valid %s records found in the file", summary.Entity),
			"data":    summary,
		})

	case summary.DryRun:
		return utils.SuccessResponse(c,
			fmt.Sprintf("Dry run: %d valid, %d invalid records", summary.SuccessfulRecords, summary.FailedRecords), summary)

	case summary.FailedRecords > 0:
		return c.Status(fiber.StatusPartialContent).JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Import completed with %d failed rows. %d records imported successfully.",
				summary.FailedRecords, summary.Imported),
			"data": summary,
		})

	default:
		return utils.SuccessResponse(c, fmt.Sprintf("All %d records imported successfully", summary.Imported), summary)
	}
}

// DownloadErrorReport downloads an error report file
func (h *ImportHandler) DownloadErrorReport(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if !isValidFilename(filename) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filename", nil)
	}

	filePath := filepath.Join(h.cfg.ExportPath, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Error report file not found", nil)
	}

	return c.Download(filePath, filename)
}

func (h *ImportHandler) GetSessions(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)

	sessions := []models.ImportSession{}
	total := 0
	if h.sessions != nil {
		var err error
		sessions, total, err = h.sessions.GetSessions(c.UserContext(), params.Limit, utils.GetOffset(params.Page, params.Limit))
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve import sessions", err)
		}
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Import sessions retrieved successfully", fiber.Map{
		"sessions":   sessions,
		"pagination": pagination,
	}, pagination)
}

func sendAttachment(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}

func isParseError(err error) bool {
	return errors.Is(err, service.ErrMalformedJSON) || errors.Is(err, service.ErrMalformedFile)
}

func currentUserID(c *fiber.Ctx) int {
	id, _ := c.Locals("user_id").(int)
	return id
}

// isValidFilename validates filename to prevent directory traversal
func isValidFilename(filename string) bool {
	if len(filename) == 0 || len(filename) > 255 {
		return false
	}

	dangerousChars := []string{"..", "/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	for _, char := range dangerousChars {
		if strings.Contains(filename, char) {
			return false
		}
	}

	return strings.HasPrefix(filename, "import_errors_") && strings.HasSuffix(filename, ".xlsx")
}
