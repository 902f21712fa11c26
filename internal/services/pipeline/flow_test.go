package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/lead"
	"github.com/estatelink/backend/internal/services/referral"
)

// Walks a referral from public submission through matching to a closed deal
// and verifies every counter along the way.
func TestReferralToClosedDealFlow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	referrals := referral.NewReferralService(db, cache.Noop{}, nil)
	leads := lead.NewLeadService(db, cache.Noop{})
	deals := NewDealService(db, cache.Noop{})

	ambassador, err := referrals.CreateAmbassador(ctx, referral.CreateAmbassadorInput{
		FullName: "Yael Cohen",
		Email:    "yael@example.com",
		City:     "Tel Aviv",
	})
	require.NoError(t, err)

	area := "Tel Aviv"
	submitted, err := referrals.SubmitReferral(ctx, referral.SubmitReferralInput{
		AmbassadorID:  ambassador.ID.String(),
		ReferralCode:  ambassador.ReferralCode,
		FullName:      "Michael Green",
		Email:         "michael@example.com",
		PreferredArea: &area,
	})
	require.NoError(t, err)

	azorim := seedDeveloper(t, db, "Azorim", "Tel Aviv,Herzliya,Netanya")
	seedDeveloper(t, db, "Shikun & Binui", "Jerusalem,Modiin")

	suggestions, err := deals.GetSuggestions(ctx, submitted.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, azorim.ID, suggestions[0].ID)

	deal, err := deals.MatchToDeveloper(ctx, submitted.ID, azorim.ID)
	require.NoError(t, err)

	require.NoError(t, deals.UpdateDealStage(ctx, deal.ID, models.DealStageContract))
	require.NoError(t, deals.UpdateDealStage(ctx, deal.ID, models.DealStageClosedWon))

	var closed models.Ambassador
	require.NoError(t, db.First(&closed, "id = ?", ambassador.ID).Error)
	assert.Equal(t, 1, closed.TotalReferrals)
	assert.Equal(t, 1, closed.ClosedDeals)

	loaded, err := leads.GetLead(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusClosedWon, loaded.Status)
	require.Len(t, loaded.Deals, 1)

	// Deleting the lead removes the deal and releases the referral count,
	// but the closed-deal counter keeps its history.
	require.NoError(t, leads.DeleteLead(ctx, submitted.ID))

	var final models.Ambassador
	require.NoError(t, db.First(&final, "id = ?", ambassador.ID).Error)
	assert.Zero(t, final.TotalReferrals)
	assert.Equal(t, 1, final.ClosedDeals)
}
