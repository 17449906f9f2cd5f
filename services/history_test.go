package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"procurement-receipt-api/models"
)

func TestLastInspector(t *testing.T) {
	timeline := []models.HistoryEntry{
		{ActorRole: models.RoleVendor, ActorName: "Acme", Action: models.ActionCreated},
		{ActorRole: models.RoleVendor, ActorName: "Acme", Action: models.ActionSubmitted},
		{ActorRole: models.RoleInspector, ActorName: "Dana", Action: models.ActionReviewed},
		{ActorRole: models.RoleInspector, ActorName: "Erin", Action: models.ActionApproved},
	}
	assert.Equal(t, "Erin", LastInspector(timeline))
}

func TestLastInspectorNoneActed(t *testing.T) {
	timeline := []models.HistoryEntry{
		{ActorRole: models.RoleVendor, ActorName: "Acme", Action: models.ActionCreated},
	}
	assert.Equal(t, "", LastInspector(timeline))
	assert.Equal(t, "", LastInspector(nil))
}
