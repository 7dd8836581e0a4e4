package services

import (
	"context"
	"fmt"
	"time"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/registry"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// maxExportPages ограничивает выгрузку; при большем объёме файл неполный и это пишется в журнал.
const maxExportPages = 50

type ExportServiceInterface interface {
	Export(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, filters map[string]string) (*excelize.File, string, error)
}

type ExportService struct {
	entities EntityServiceInterface
	logger   *zap.Logger
}

func NewExportService(entities EntityServiceInterface, logger *zap.Logger) ExportServiceInterface {
	return &ExportService{entities: entities, logger: logger.Named("export_service")}
}

// Export выгружает список ресурса в XLSX по его колонкам (без колонки действий).
func (s *ExportService) Export(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, filters map[string]string) (*excelize.File, string, error) {
	items, truncated, err := collectPages(ctx, s.entities, actor, desc, filters, maxExportPages)
	if err != nil {
		return nil, "", err
	}
	if truncated {
		s.logger.Warn("Выгрузка обрезана", zap.String("resource", desc.Key), zap.Int("rows", len(items)))
	}

	view := s.entities.Rows(actor, desc, &PaginatedResult{Items: items, Page: 1, PageSize: len(items), TotalItems: len(items)})

	var columns []registry.ColumnDescriptor
	for _, col := range view.Columns {
		if col.DataKey != registry.ActionsColumnKey {
			columns = append(columns, col)
		}
	}

	f := excelize.NewFile()
	sheet := desc.Label
	if sheet == "" {
		sheet = desc.Key
	}
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("лист выгрузки: %w", err)
	}

	headers := make([]any, 0, len(columns))
	for _, col := range columns {
		headers = append(headers, col.Title)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, row := range view.Rows {
		values := make([]any, 0, len(columns))
		for _, col := range columns {
			values = append(values, row.Cells[col.DataKey])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, "", err
		}
	}
	if len(columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(columns))
		_ = f.SetColWidth(sheet, "A", last, 25)
	}

	fileName := fmt.Sprintf("%s_%s.xlsx", desc.Key, time.Now().Format("2006-01-02"))
	s.logger.Info("Список выгружен", zap.String("resource", desc.Key), zap.Int("rows", len(view.Rows)))
	return f, fileName, nil
}
