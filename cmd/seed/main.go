package main

import (
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/config"
	"github.com/estatelink/backend/internal/database"
	"github.com/estatelink/backend/internal/models"
)

// Seeds a development database with a small, internally consistent data set.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := seed(db); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	log.Println("Seed data created successfully")
}

func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Clear existing data
		for _, model := range []interface{}{
			&models.Deal{}, &models.LeadTask{}, &models.LeadNote{}, &models.Lead{},
			&models.Developer{}, &models.Ambassador{}, &models.UserProfile{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		ambassadors := []*models.Ambassador{
			{
				FullName: "Yael Cohen", Email: "yael@example.com", Phone: ptr("+972-50-111-2222"),
				Country: "Israel", City: "Tel Aviv", Languages: "Hebrew,English,French",
				HostsEvents: true, TotalReferrals: 3, ClosedDeals: 1, ReferralCode: "yael-cohen",
			},
			{
				FullName: "David Levi", Email: "david@example.com", Phone: ptr("+972-50-333-4444"),
				Country: "Israel", City: "Herzliya", Languages: "Hebrew,English",
				TotalReferrals: 2, ReferralCode: "david-levi",
			},
			{
				FullName: "Noa Shapira", Email: "noa@example.com", Phone: ptr("+972-50-555-6666"),
				Country: "Israel", City: "Jerusalem", Languages: "Hebrew,English,Russian",
				HostsEvents: true, TotalReferrals: 1, ReferralCode: "noa-shapira",
			},
		}
		for _, a := range ambassadors {
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}

		developers := []*models.Developer{
			{
				CompanyName: "Azrieli Group", ContactName: "Moshe Azrieli", Email: "moshe@azrieli.com",
				Phone: ptr("+972-3-608-1111"), BuildAreas: "Tel Aviv,Ramat Gan",
				ProjectType: "Mixed", PriceRange: "2M-5M NIS",
			},
			{
				CompanyName: "Africa Israel", ContactName: "Rachel Naor", Email: "rachel@afi.com",
				Phone: ptr("+972-3-608-2222"), BuildAreas: "Herzliya,Netanya",
				ProjectType: "Apartment", PriceRange: "1.5M-3M NIS",
			},
			{
				CompanyName: "Shikun & Binui", ContactName: "Avi Goldstein", Email: "avi@shikunbinui.com",
				Phone: ptr("+972-3-608-3333"), BuildAreas: "Jerusalem,Modiin",
				ProjectType: "Apartment", PriceRange: "1M-2.5M NIS",
			},
			{
				CompanyName: "Azorim", ContactName: "Tamar Regev", Email: "tamar@azorim.com",
				BuildAreas: "Tel Aviv,Herzliya,Netanya", ProjectType: "Penthouse", PriceRange: "3M-8M NIS",
			},
		}
		for _, d := range developers {
			if err := tx.Create(d).Error; err != nil {
				return err
			}
		}

		leads := []*models.Lead{
			{
				FullName: "Michael Green", Email: "michael.g@example.com", Phone: ptr("+972-54-111-0001"),
				Country: "Israel", City: ptr("Tel Aviv"), Status: models.LeadStatusQualified,
				Budget: ptr("2M-3M NIS"), PreferredArea: ptr("Tel Aviv"), Rooms: ptr("4"),
				PropertyType: ptr("Apartment"), Readiness: ptr("3-6 months"),
				Source: models.LeadSourceReferral, ReferralCode: ptr("yael-cohen"), AmbassadorID: &ambassadors[0].ID,
			},
			{
				FullName: "Sarah Johnson", Email: "sarah.j@example.com", Phone: ptr("+1-555-0102"),
				Country: "USA", City: ptr("New York"), Status: models.LeadStatusContacted,
				Budget: ptr("1.5M-2M NIS"), PreferredArea: ptr("Herzliya"), Rooms: ptr("3"),
				PropertyType: ptr("Apartment"), Readiness: ptr("6-12 months"),
				Source: models.LeadSourceReferral, ReferralCode: ptr("yael-cohen"), AmbassadorID: &ambassadors[0].ID,
			},
			{
				FullName: "Pierre Dubois", Email: "pierre@example.com", Phone: ptr("+33-6-1234-5678"),
				Country: "France", City: ptr("Paris"), Status: models.LeadStatusNew,
				Budget: ptr("3M-5M NIS"), PreferredArea: ptr("Tel Aviv"), Rooms: ptr("5"),
				PropertyType: ptr("Penthouse"), Readiness: ptr("Immediate"),
				Source: models.LeadSourceManual, AmbassadorID: &ambassadors[0].ID,
			},
			{
				FullName: "Amit Patel", Email: "amit.p@example.com", Phone: ptr("+972-52-888-9999"),
				Country: "Israel", Status: models.LeadStatusClosedWon,
				Budget: ptr("1M-1.5M NIS"), PreferredArea: ptr("Netanya"), Rooms: ptr("3"),
				PropertyType: ptr("Apartment"), Readiness: ptr("Immediate"),
				Source: models.LeadSourceReferral, ReferralCode: ptr("david-levi"), AmbassadorID: &ambassadors[1].ID,
			},
			{
				FullName: "Elena Volkov", Email: "elena.v@example.com", Phone: ptr("+972-50-777-8888"),
				Country: "Israel", City: ptr("Haifa"), Status: models.LeadStatusMatched,
				Budget: ptr("2M-3M NIS"), PreferredArea: ptr("Herzliya"), Rooms: ptr("4"),
				PropertyType: ptr("Villa"), Readiness: ptr("3-6 months"),
				Source: models.LeadSourceReferral, ReferralCode: ptr("david-levi"), AmbassadorID: &ambassadors[1].ID,
			},
			{
				FullName: "James Wilson", Email: "james.w@example.com", Phone: ptr("+44-7700-900111"),
				Country: "UK", City: ptr("London"), Status: models.LeadStatusNew,
				Budget: ptr("5M+ NIS"), PreferredArea: ptr("Jerusalem"), Rooms: ptr("5+"),
				PropertyType: ptr("Villa"), Readiness: ptr("12+ months"),
				Source: models.LeadSourceManual, AmbassadorID: &ambassadors[2].ID,
			},
		}
		for _, l := range leads {
			if err := tx.Create(l).Error; err != nil {
				return err
			}
		}

		deals := []*models.Deal{
			{
				Stage: models.DealStageClosedWon, LeadID: leads[3].ID, DeveloperID: developers[1].ID,
				AmbassadorID: &ambassadors[1].ID, Notes: ptr("Signed contract for 3-room apartment in Netanya"),
			},
			{
				Stage: models.DealStageNegotiation, LeadID: leads[4].ID, DeveloperID: developers[3].ID,
				AmbassadorID: &ambassadors[1].ID, Notes: ptr("Interested in Herzliya penthouse project"),
			},
		}
		for _, d := range deals {
			if err := tx.Create(d).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func ptr(s string) *string { return &s }
