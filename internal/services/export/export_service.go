package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/lead"
)

// ExportService renders filtered entity lists as spreadsheet downloads.
type ExportService struct {
	db *gorm.DB
}

// NewExportService creates a new export service
func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

// LeadsWorkbook builds an xlsx workbook of leads matching the filter.
func (s *ExportService) LeadsWorkbook(ctx context.Context, filter lead.ListLeadsFilter) (*excelize.File, error) {
	query := s.db.WithContext(ctx).Model(&models.Lead{}).Preload("Ambassador")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.AmbassadorID != "" {
		query = query.Where("ambassador_id = ?", filter.AmbassadorID)
	}
	if filter.DeveloperID != "" {
		query = query.Where("id IN (?)", s.db.Model(&models.Deal{}).Select("lead_id").Where("developer_id = ?", filter.DeveloperID))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var leads []models.Lead
	if err := query.Order("created_at desc").Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("listing leads for export: %w", err)
	}

	header := []interface{}{"Name", "Email", "Phone", "Status", "Country", "Budget", "Area", "Rooms", "Readiness", "Ambassador", "Created"}
	rows := make([][]interface{}, 0, len(leads))
	for _, l := range leads {
		ambassadorName := ""
		if l.Ambassador != nil {
			ambassadorName = l.Ambassador.FullName
		}
		rows = append(rows, []interface{}{
			l.FullName, l.Email, deref(l.Phone), string(l.Status), l.Country,
			deref(l.Budget), deref(l.PreferredArea), deref(l.Rooms), deref(l.Readiness),
			ambassadorName, l.CreatedAt.Format("2006-01-02"),
		})
	}
	return buildSheet("Leads", header, rows)
}

// AmbassadorsWorkbook builds an xlsx workbook of all ambassadors.
func (s *ExportService) AmbassadorsWorkbook(ctx context.Context) (*excelize.File, error) {
	var ambassadors []models.Ambassador
	if err := s.db.WithContext(ctx).Order("full_name asc").Find(&ambassadors).Error; err != nil {
		return nil, fmt.Errorf("listing ambassadors for export: %w", err)
	}

	header := []interface{}{"Name", "Email", "Phone", "City", "Languages", "Hosts Events", "Referrals", "Closed Deals", "Referral Code"}
	rows := make([][]interface{}, 0, len(ambassadors))
	for _, a := range ambassadors {
		rows = append(rows, []interface{}{
			a.FullName, a.Email, deref(a.Phone), a.City, a.Languages,
			a.HostsEvents, a.TotalReferrals, a.ClosedDeals, a.ReferralCode,
		})
	}
	return buildSheet("Ambassadors", header, rows)
}

// DevelopersWorkbook builds an xlsx workbook of all developers.
func (s *ExportService) DevelopersWorkbook(ctx context.Context) (*excelize.File, error) {
	var developers []models.Developer
	if err := s.db.WithContext(ctx).Order("company_name asc").Find(&developers).Error; err != nil {
		return nil, fmt.Errorf("listing developers for export: %w", err)
	}

	header := []interface{}{"Company", "Contact", "Email", "Phone", "Build Areas", "Project Type", "Price Range"}
	rows := make([][]interface{}, 0, len(developers))
	for _, d := range developers {
		rows = append(rows, []interface{}{
			d.CompanyName, d.ContactName, d.Email, deref(d.Phone),
			d.BuildAreas, d.ProjectType, d.PriceRange,
		})
	}
	return buildSheet("Developers", header, rows)
}

func buildSheet(name string, header []interface{}, rows [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
