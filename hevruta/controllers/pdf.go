package controllers

import (
	"context"
	"strings"

	"hevruta/hevruta/sources/storage"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/logging"
	"hevruta/hevruta/utils/types"

	"go.uber.org/zap"
)

// DocumentRenderer turns editor HTML into PDF bytes plus the resolved
// document title.
type DocumentRenderer interface {
	Render(ctx context.Context, rawHTML, fallbackTitle string) ([]byte, string, error)
}

type PDFController struct {
	renderer DocumentRenderer
	store    *storage.MinIOClient // nil disables archiving
}

func NewPDFController(renderer DocumentRenderer, store *storage.MinIOClient) *PDFController {
	return &PDFController{renderer: renderer, store: store}
}

// Export renders the submitted editor content and archives a copy.
// Archiving is best-effort; the user still gets their document when the
// object store is down.
func (c *PDFController) Export(ctx context.Context, userEmail string, req types.PDFRequest) ([]byte, string, error) {
	defer logging.LogDuration(ctx, "pdf_export")()

	if strings.TrimSpace(req.HTML) == "" {
		return nil, "", apperrors.Validation("html required")
	}

	data, title, err := c.renderer.Render(ctx, req.HTML, req.Title)
	if err != nil {
		return nil, "", err
	}

	if c.store != nil {
		key, err := c.store.PutPDF(ctx, data)
		if err != nil {
			logging.AppLogger.Warn("pdf archive failed", zap.Error(err), zap.String("user", userEmail))
		} else {
			logging.AppLogger.Info("pdf archived", zap.String("key", key), zap.String("user", userEmail))
		}
	}

	filename := title + ".pdf"
	return data, filename, nil
}
