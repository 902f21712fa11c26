package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateCRMTables creates the initial CRM schema
func CreateCRMTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_crm_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS user_profiles (
					id UUID PRIMARY KEY,
					user_id VARCHAR(255) NOT NULL UNIQUE,
					full_name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					role VARCHAR(20) NOT NULL DEFAULT 'AGENT',
					is_active BOOLEAN DEFAULT TRUE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS ambassadors (
					id UUID PRIMARY KEY,
					full_name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL,
					phone VARCHAR(30),
					country VARCHAR(100) NOT NULL DEFAULT 'Israel',
					city VARCHAR(100),
					languages VARCHAR(255),
					hosts_events BOOLEAN DEFAULT FALSE,
					total_referrals INTEGER NOT NULL DEFAULT 0,
					closed_deals INTEGER NOT NULL DEFAULT 0,
					referral_code VARCHAR(100) NOT NULL UNIQUE,
					user_profile_id UUID UNIQUE REFERENCES user_profiles(id),
					converted_from_lead_id UUID,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_ambassadors_referral_code ON ambassadors(referral_code);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS developers (
					id UUID PRIMARY KEY,
					company_name VARCHAR(255) NOT NULL,
					contact_name VARCHAR(255),
					email VARCHAR(255),
					phone VARCHAR(30),
					build_areas VARCHAR(500),
					project_type VARCHAR(50),
					price_range VARCHAR(100),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS leads (
					id UUID PRIMARY KEY,
					full_name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL,
					phone VARCHAR(30),
					country VARCHAR(100) NOT NULL DEFAULT 'Israel',
					city VARCHAR(100),
					status VARCHAR(30) NOT NULL DEFAULT 'New',
					budget VARCHAR(100),
					preferred_area VARCHAR(100),
					rooms VARCHAR(20),
					property_type VARCHAR(50),
					readiness VARCHAR(50),
					deal_type VARCHAR(50),
					notes TEXT,
					not_relevant_reason VARCHAR(30),
					source VARCHAR(20) NOT NULL DEFAULT 'manual',
					referral_code VARCHAR(100),
					ambassador_id UUID REFERENCES ambassadors(id),
					converted_ambassador_id UUID,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
				CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
				CREATE INDEX IF NOT EXISTS idx_leads_ambassador_id ON leads(ambassador_id);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS deals (
					id UUID PRIMARY KEY,
					lead_id UUID NOT NULL REFERENCES leads(id),
					developer_id UUID NOT NULL REFERENCES developers(id),
					ambassador_id UUID REFERENCES ambassadors(id),
					stage VARCHAR(30) NOT NULL DEFAULT 'Negotiation',
					notes TEXT,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_deals_lead_id ON deals(lead_id);
				CREATE INDEX IF NOT EXISTS idx_deals_developer_id ON deals(developer_id);
				CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS lead_notes (
					id UUID PRIMARY KEY,
					lead_id UUID NOT NULL REFERENCES leads(id),
					content TEXT NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS lead_tasks (
					id UUID PRIMARY KEY,
					lead_id UUID NOT NULL REFERENCES leads(id),
					subject VARCHAR(255) NOT NULL,
					due_date TIMESTAMP WITH TIME ZONE NOT NULL,
					due_time VARCHAR(10),
					completed BOOLEAN DEFAULT FALSE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS attachments (
					id UUID PRIMARY KEY,
					owner_type VARCHAR(20) NOT NULL,
					owner_id UUID NOT NULL,
					file_name VARCHAR(255) NOT NULL,
					content_type VARCHAR(100) NOT NULL,
					url TEXT NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_attachments_owner ON attachments(owner_type, owner_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS attachments;
				DROP TABLE IF EXISTS lead_tasks;
				DROP TABLE IF EXISTS lead_notes;
				DROP TABLE IF EXISTS deals;
				DROP TABLE IF EXISTS leads;
				DROP TABLE IF EXISTS developers;
				DROP TABLE IF EXISTS ambassadors;
				DROP TABLE IF EXISTS user_profiles;
			`).Error
		},
	}
}
